package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/codebreaker/internal/model"
)

// ErrorResponse is the body of every error response. Error is a plain
// message because the web client displays it directly.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Common error codes
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInvalidConfig  = "INVALID_CONFIG"
	CodeInvalidName    = "INVALID_NAME"
	CodeInvalidGuess   = "INVALID_GUESS"
	CodeLobbyNotFound  = "NOT_FOUND"
	CodePlayerNotFound = "PLAYER_NOT_FOUND"
	CodeNoPlayers      = "NO_PLAYERS"
	CodeAlreadyStarted = "ALREADY_STARTED"
	CodeNotStarted     = "NOT_STARTED"
	CodeRoundComplete  = "ROUND_COMPLETE"
	CodeMatchFinished  = "MATCH_FINISHED"
	CodeNotYourTurn    = "NOT_YOUR_TURN"
	CodeUnknownBot     = "UNKNOWN_BOT_STRATEGY"
	CodeNotABot        = "NOT_A_BOT"
	CodeInternalError  = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with a code and message
type httpError struct {
	status  int
	code    string
	message string
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.message, Code: he.code})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError. Domain errors keep their
// wrapped detail in the message; anything unrecognised is hidden.
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	mapped := func(status int, code string) *httpError {
		return &httpError{status, code, err.Error()}
	}

	switch {
	case errors.Is(err, model.ErrInvalidConfig):
		return mapped(http.StatusBadRequest, CodeInvalidConfig)
	case errors.Is(err, model.ErrInvalidName):
		return mapped(http.StatusBadRequest, CodeInvalidName)
	case errors.Is(err, model.ErrInvalidGuess):
		return mapped(http.StatusBadRequest, CodeInvalidGuess)
	case errors.Is(err, model.ErrLobbyNotFound):
		return mapped(http.StatusNotFound, CodeLobbyNotFound)
	case errors.Is(err, model.ErrPlayerNotFound):
		return mapped(http.StatusNotFound, CodePlayerNotFound)
	case errors.Is(err, model.ErrNoPlayers):
		return mapped(http.StatusConflict, CodeNoPlayers)
	case errors.Is(err, model.ErrAlreadyStarted):
		return mapped(http.StatusConflict, CodeAlreadyStarted)
	case errors.Is(err, model.ErrNotStarted):
		return mapped(http.StatusConflict, CodeNotStarted)
	case errors.Is(err, model.ErrRoundComplete):
		return mapped(http.StatusConflict, CodeRoundComplete)
	case errors.Is(err, model.ErrMatchFinished):
		return mapped(http.StatusConflict, CodeMatchFinished)
	case errors.Is(err, model.ErrNotYourTurn):
		return mapped(http.StatusConflict, CodeNotYourTurn)
	case errors.Is(err, model.ErrUnknownBotStrategy):
		return mapped(http.StatusBadRequest, CodeUnknownBot)
	case errors.Is(err, model.ErrNotABot):
		return mapped(http.StatusBadRequest, CodeNotABot)
	default:
		return &httpError{http.StatusInternalServerError, CodeInternalError, "Internal server error"}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, CodeInvalidRequest, message}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, CodeInternalError, "Internal server error"}
}
