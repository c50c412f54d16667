package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mcoot/codebreaker/internal/api/apierr"
	"github.com/mcoot/codebreaker/internal/api/request"
	"github.com/mcoot/codebreaker/internal/api/response"
	"github.com/mcoot/codebreaker/internal/model"
	"github.com/mcoot/codebreaker/internal/services/bot"
	"github.com/mcoot/codebreaker/internal/services/lobby"
)

// GameHandler handles round lifecycle and guess endpoints
type GameHandler struct {
	lobbyController *lobby.Controller
	botService      *bot.Service
	logger          *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(lobbyController *lobby.Controller, botService *bot.Service, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		lobbyController: lobbyController,
		botService:      botService,
		logger:          logger,
	}
}

// Start handles POST /lobby/{id}/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	id := lobbyID(r)

	if _, err := h.lobbyController.StartGame(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	// Bots may hold the first turn
	h.processBotActions(r.Context(), id)

	response.JSON(w, http.StatusOK, response.Ack{OK: true})
}

// Restart handles POST /lobby/{id}/restart
func (h *GameHandler) Restart(w http.ResponseWriter, r *http.Request) {
	id := lobbyID(r)

	if _, err := h.lobbyController.RestartGame(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.processBotActions(r.Context(), id)

	response.JSON(w, http.StatusOK, response.Ack{OK: true})
}

// Guess handles POST /lobby/{id}/guess
func (h *GameHandler) Guess(w http.ResponseWriter, r *http.Request) {
	id := lobbyID(r)

	var req request.GuessRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.PlayerID == "" {
		writeError(w, r, h.logger, apierr.NewInvalidRequestError("playerId is required"))
		return
	}

	lob, err := h.lobbyController.SubmitGuess(r.Context(), id, model.PlayerID(req.PlayerID), req.Guess)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if h.processBotActions(r.Context(), id) > 0 {
		if latest, err := h.lobbyController.GetLobby(r.Context(), id); err == nil {
			lob = latest
		}
	}

	response.JSON(w, http.StatusOK, response.LobbyFromModel(lob))
}

// processBotActions lets bots play any turns they now hold. Returns the
// number of actions taken.
func (h *GameHandler) processBotActions(ctx context.Context, id model.LobbyID) int {
	return runBotTurns(ctx, h.botService, h.logger, id)
}

func runBotTurns(ctx context.Context, botService *bot.Service, logger *slog.Logger, id model.LobbyID) int {
	if botService == nil {
		return 0
	}

	actions, err := botService.ProcessBotActions(ctx, id)
	if err != nil {
		logger.Error("bot processing failed",
			slog.String("lobby_id", string(id)),
			slog.Any("error", err))
	}
	return len(actions)
}
