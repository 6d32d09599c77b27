package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/janseva/janseva/internal/faults"
	"github.com/janseva/janseva/internal/issue"
)

// IssueReader is the issue surface the read and comment endpoints need.
type IssueReader interface {
	Get(ctx context.Context, trackingID string) (*issue.Report, error)
	History(ctx context.Context, trackingID string) ([]issue.StatusChange, error)
	Followups(ctx context.Context, trackingID string) ([]issue.Followup, error)
	AddFollowup(ctx context.Context, trackingID, text string) error
}

// IssueHandler serves the issue read and comment endpoints.
type IssueHandler struct {
	issues IssueReader
	logger *slog.Logger
}

// NewIssueHandler creates an issue handler.
func NewIssueHandler(issues IssueReader, logger *slog.Logger) *IssueHandler {
	return &IssueHandler{issues: issues, logger: logger}
}

// RegisterRoutes registers the issue routes.
func (h *IssueHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/issues/{trackingID}", h.getIssue)
	mux.HandleFunc("POST /api/v1/issues/{trackingID}/comments", h.addComment)
}

// issueResponse is a report with its history and comments.
type issueResponse struct {
	*issue.Report
	History   []issue.StatusChange `json:"history,omitempty"`
	Followups []issue.Followup     `json:"followups,omitempty"`
}

func (h *IssueHandler) getIssue(w http.ResponseWriter, r *http.Request) {
	trackingID := r.PathValue("trackingID")

	report, err := h.issues.Get(r.Context(), trackingID)
	if err != nil {
		writeFault(w, err, h.logger)
		return
	}
	history, err := h.issues.History(r.Context(), trackingID)
	if err != nil {
		writeFault(w, err, h.logger)
		return
	}
	followups, err := h.issues.Followups(r.Context(), trackingID)
	if err != nil {
		writeFault(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, issueResponse{Report: report, History: history, Followups: followups}, h.logger)
}

type commentRequest struct {
	Text string `json:"text"`
}

func (h *IssueHandler) addComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be JSON", h.logger)
		return
	}

	trackingID := r.PathValue("trackingID")
	if err := h.issues.AddFollowup(r.Context(), trackingID, strings.TrimSpace(req.Text)); err != nil {
		writeFault(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"tracking_id": trackingID}, h.logger)
}

// StatusUpdater applies a case-system status transition.
type StatusUpdater interface {
	ApplyStatusUpdate(ctx context.Context, trackingID string, next issue.Status, notes string, at time.Time) (*issue.Report, error)
}

// WebhookHandler serves the municipal case-update webhook.
type WebhookHandler struct {
	issues StatusUpdater
	logger *slog.Logger
}

// NewWebhookHandler creates a webhook handler.
func NewWebhookHandler(issues StatusUpdater, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{issues: issues, logger: logger}
}

// RegisterRoutes registers the webhook route.
func (h *WebhookHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/case-updates", h.caseUpdate)
}

type caseUpdateRequest struct {
	TrackingID string    `json:"tracking_id"`
	NewStatus  string    `json:"new_status"`
	Notes      string    `json:"notes,omitempty"`
	Timestamp  time.Time `json:"timestamp,omitempty"`
}

func (h *WebhookHandler) caseUpdate(w http.ResponseWriter, r *http.Request) {
	var req caseUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be JSON", h.logger)
		return
	}
	if req.TrackingID == "" || req.NewStatus == "" {
		writeFault(w, faults.Validationf("tracking_id and new_status are required"), h.logger)
		return
	}

	report, err := h.issues.ApplyStatusUpdate(r.Context(), req.TrackingID, issue.Status(req.NewStatus), req.Notes, req.Timestamp)
	if err != nil {
		writeFault(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, report, h.logger)
}
