package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/janseva/janseva/internal/faults"
)

// writeJSON writes a JSON response with the given status code. Buffer-first
// so headers are only sent after successful encoding and a real 500 can be
// returned when encoding fails.
func writeJSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		// Client disconnects are common and expected.
		logger.Debug("failed to write response body", "error", err)
	}
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, message string, logger *slog.Logger) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message}, logger)
}

// writeFault maps a classified error to its HTTP shape. Unclassified errors
// become an opaque 500; internal detail never reaches the client.
func writeFault(w http.ResponseWriter, err error, logger *slog.Logger) {
	switch faults.KindOf(err) {
	case faults.KindValidation:
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", faults.Message(err), logger)
	case faults.KindNotFound:
		writeError(w, http.StatusNotFound, "not_found", faults.Message(err), logger)
	case faults.KindConflict:
		writeError(w, http.StatusConflict, "conflict", faults.Message(err), logger)
	case faults.KindCapacity:
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "over_capacity", "please retry later", logger)
	case faults.KindTransient:
		w.Header().Set("Retry-After", "5")
		writeError(w, http.StatusServiceUnavailable, "temporarily_unavailable", "please retry shortly", logger)
	default:
		logger.Error("unclassified handler error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", logger)
	}
}

// decodeJSON reads a bounded JSON request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
