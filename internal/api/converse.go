package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/janseva/janseva/internal/dialogue"
)

// maxUtteranceRunes bounds one turn's input; transcribed speech should
// never approach it.
const maxUtteranceRunes = 2000

// Conversationalist processes one citizen turn.
type Conversationalist interface {
	Process(ctx context.Context, sessionID, utterance string) (*dialogue.Response, error)
}

// ConverseHandler serves POST /api/v1/converse.
type ConverseHandler struct {
	orch   Conversationalist
	logger *slog.Logger
}

// NewConverseHandler creates a converse handler.
func NewConverseHandler(orch Conversationalist, logger *slog.Logger) *ConverseHandler {
	return &ConverseHandler{orch: orch, logger: logger}
}

// RegisterRoutes registers the converse route.
func (h *ConverseHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/converse", h.converse)
}

type converseRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
}

func (h *ConverseHandler) converse(w http.ResponseWriter, r *http.Request) {
	var req converseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be JSON", h.logger)
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", "text is required", h.logger)
		return
	}
	if utf8.RuneCountInString(text) > maxUtteranceRunes {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", "text too long", h.logger)
		return
	}

	resp, err := h.orch.Process(r.Context(), req.SessionID, text)
	if err != nil {
		writeFault(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, resp, h.logger)
}
