package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/codebreaker/internal/api/apierr"
	"github.com/mcoot/codebreaker/internal/model"
)

// writeError writes the mapped error response, logging anything unexpected
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	apierr.WriteError(w, err)
}

// decodeBody decodes a JSON request body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apierr.NewInvalidRequestError("Invalid request body")
}

// lobbyID reads the lobby code from the path. Codes are case-insensitive.
func lobbyID(r *http.Request) model.LobbyID {
	return model.LobbyID(strings.ToUpper(mux.Vars(r)["id"]))
}
