package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/janseva/janseva/internal/language"
	"github.com/janseva/janseva/internal/retrieval"
	"github.com/janseva/janseva/internal/scheme"
)

// SchemeReader is the retrieval surface the scheme endpoints need.
type SchemeReader interface {
	GetDocument(ctx context.Context, schemeID string) (*scheme.Document, error)
	CheckEligibility(ctx context.Context, schemeID string, profile retrieval.Profile, lang language.Language) (*retrieval.EligibilityResult, error)
}

// SchemeHandler serves the scheme document and eligibility endpoints.
type SchemeHandler struct {
	schemes SchemeReader
	logger  *slog.Logger
}

// NewSchemeHandler creates a scheme handler.
func NewSchemeHandler(schemes SchemeReader, logger *slog.Logger) *SchemeHandler {
	return &SchemeHandler{schemes: schemes, logger: logger}
}

// RegisterRoutes registers the scheme routes.
func (h *SchemeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/schemes/{id}", h.getScheme)
	mux.HandleFunc("POST /api/v1/schemes/{id}/eligibility", h.checkEligibility)
}

func (h *SchemeHandler) getScheme(w http.ResponseWriter, r *http.Request) {
	doc, err := h.schemes.GetDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFault(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, doc, h.logger)
}

type eligibilityRequest struct {
	Profile  retrieval.Profile `json:"profile"`
	Language string            `json:"language,omitempty"`
}

func (h *SchemeHandler) checkEligibility(w http.ResponseWriter, r *http.Request) {
	var req eligibilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be JSON", h.logger)
		return
	}

	lang := language.Language(req.Language)
	if !lang.Valid() {
		lang = language.English
	}

	res, err := h.schemes.CheckEligibility(r.Context(), r.PathValue("id"), req.Profile, lang)
	if err != nil {
		writeFault(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, res, h.logger)
}
