package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/codebreaker/internal/api/handler"
	"github.com/mcoot/codebreaker/internal/api/middleware"
	"github.com/mcoot/codebreaker/internal/api/response"
	basemiddleware "github.com/mcoot/codebreaker/internal/middleware"
	"github.com/mcoot/codebreaker/internal/push"
	"github.com/mcoot/codebreaker/internal/services/bot"
	"github.com/mcoot/codebreaker/internal/services/lobby"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	LobbyController   *lobby.Controller
	BotService        *bot.Service
	ConnectionManager *push.ConnectionManager
	AllowedOrigins    []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	lobbyHandler := handler.NewLobbyHandler(cfg.LobbyController, cfg.BotService, cfg.Logger)
	gameHandler := handler.NewGameHandler(cfg.LobbyController, cfg.BotService, cfg.Logger)
	botHandler := handler.NewBotHandler(cfg.BotService, cfg.LobbyController, cfg.Logger)
	streamHandler := handler.NewStreamHandler(cfg.ConnectionManager, cfg.AllowedOrigins, cfg.Logger)

	// Logging wraps recovery so recovered panics are logged with their 500
	r.Use(basemiddleware.Logging(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))

	// Lobby routes
	r.HandleFunc("/lobby/create", lobbyHandler.Create).Methods(http.MethodPost)
	r.HandleFunc("/lobby/{id}", lobbyHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/lobby/{id}/join", lobbyHandler.Join).Methods(http.MethodPost)
	r.HandleFunc("/lobby/{id}/leave", lobbyHandler.Leave).Methods(http.MethodPost)

	// Game routes
	r.HandleFunc("/lobby/{id}/start", gameHandler.Start).Methods(http.MethodPost)
	r.HandleFunc("/lobby/{id}/restart", gameHandler.Restart).Methods(http.MethodPost)
	r.HandleFunc("/lobby/{id}/guess", gameHandler.Guess).Methods(http.MethodPost)

	// Bot routes
	r.HandleFunc("/lobby/{id}/bots", botHandler.Add).Methods(http.MethodPost)
	r.HandleFunc("/lobby/{id}/bots/{playerId}", botHandler.Remove).Methods(http.MethodDelete)

	// Push channels
	r.HandleFunc("/lobby/{id}/stream", streamHandler.SSE).Methods(http.MethodGet)
	r.HandleFunc("/lobby/{id}/ws", streamHandler.WebSocket).Methods(http.MethodGet)

	// Health check endpoint
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// CORS wraps the router so preflights reach it before method matching
	return basemiddleware.CORS(cfg.AllowedOrigins)(r)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
}
