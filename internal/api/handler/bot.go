package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/codebreaker/internal/api/request"
	"github.com/mcoot/codebreaker/internal/api/response"
	"github.com/mcoot/codebreaker/internal/model"
	"github.com/mcoot/codebreaker/internal/services/bot"
	"github.com/mcoot/codebreaker/internal/services/lobby"
)

// BotHandler handles adding and removing computer players
type BotHandler struct {
	botService      *bot.Service
	lobbyController *lobby.Controller
	logger          *slog.Logger
}

// NewBotHandler creates a new bot handler
func NewBotHandler(botService *bot.Service, lobbyController *lobby.Controller, logger *slog.Logger) *BotHandler {
	return &BotHandler{
		botService:      botService,
		lobbyController: lobbyController,
		logger:          logger,
	}
}

// Add handles POST /lobby/{id}/bots
func (h *BotHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req request.AddBotRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	lob, player, err := h.botService.AddBotToLobby(r.Context(), lobbyID(r), req.Strategy)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.JoinLobbyResponseFromModel(lob, player))
}

// Remove handles DELETE /lobby/{id}/bots/{playerId}
func (h *BotHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id := lobbyID(r)
	botID := model.PlayerID(mux.Vars(r)["playerId"])

	lob, err := h.botService.RemoveBotFromLobby(r.Context(), id, botID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	// Removing a bot can hand the turn to another bot
	if actions, err := h.botService.ProcessBotActions(r.Context(), id); err == nil && len(actions) > 0 {
		if latest, err := h.lobbyController.GetLobby(r.Context(), id); err == nil {
			lob = latest
		}
	}

	response.JSON(w, http.StatusOK, response.LobbyFromModel(lob))
}
