package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/codebreaker/internal/api/apierr"
	"github.com/mcoot/codebreaker/internal/api/request"
	"github.com/mcoot/codebreaker/internal/api/response"
	"github.com/mcoot/codebreaker/internal/model"
	"github.com/mcoot/codebreaker/internal/services/bot"
	"github.com/mcoot/codebreaker/internal/services/lobby"
)

// LobbyHandler handles lobby membership endpoints
type LobbyHandler struct {
	lobbyController *lobby.Controller
	botService      *bot.Service
	logger          *slog.Logger
}

// NewLobbyHandler creates a new lobby handler
func NewLobbyHandler(lobbyController *lobby.Controller, botService *bot.Service, logger *slog.Logger) *LobbyHandler {
	return &LobbyHandler{
		lobbyController: lobbyController,
		botService:      botService,
		logger:          logger,
	}
}

// Create handles POST /lobby/create
func (h *LobbyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateLobbyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	cfg := model.DefaultLobbyConfig()
	if req.NumGames != nil {
		cfg.NumGames = *req.NumGames
	}
	if req.MaxWinners != nil {
		cfg.MaxWinners = *req.MaxWinners
	}
	if req.ShowAllGuesses != nil {
		cfg.ShowAllGuesses = *req.ShowAllGuesses
	}
	if req.CodeLength != nil {
		cfg.CodeLength = *req.CodeLength
	}

	lob, err := h.lobbyController.CreateLobby(r.Context(), cfg)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CreateLobbyResponse{
		LobbyID: string(lob.ID),
		Lobby:   response.LobbyFromModel(lob),
	})
}

// Get handles GET /lobby/{id}
func (h *LobbyHandler) Get(w http.ResponseWriter, r *http.Request) {
	lob, err := h.lobbyController.GetLobby(r.Context(), lobbyID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LobbyFromModel(lob))
}

// Join handles POST /lobby/{id}/join
func (h *LobbyHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinLobbyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	lob, player, err := h.lobbyController.JoinLobby(r.Context(), lobbyID(r), req.Name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.JoinLobbyResponseFromModel(lob, player))
}

// Leave handles POST /lobby/{id}/leave. Clients fire this while tearing
// down, so the outcome is only logged and the reply is always 204.
func (h *LobbyHandler) Leave(w http.ResponseWriter, r *http.Request) {
	id := lobbyID(r)

	var req request.LeaveLobbyRequest
	if err := decodeBody(r, &req); err != nil || req.PlayerID == "" {
		response.NoContent(w)
		return
	}

	_, err := h.lobbyController.LeaveLobby(r.Context(), id, model.PlayerID(req.PlayerID))
	switch {
	case err == nil:
		// The leaver may have held the turn, handing it to a bot.
		runBotTurns(r.Context(), h.botService, h.logger, id)
	case errors.Is(err, model.ErrLobbyNotFound), errors.Is(err, model.ErrPlayerNotFound):
		h.logger.Debug("leave ignored",
			slog.String("lobby_id", string(id)),
			slog.String("player_id", req.PlayerID),
			slog.String("reason", err.Error()))
	default:
		h.logger.Warn("leave failed",
			slog.String("lobby_id", string(id)),
			slog.String("player_id", req.PlayerID),
			slog.Int("status", apierr.Status(err)),
			slog.Any("error", err))
	}

	response.NoContent(w)
}
