package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bahir-ride/api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps a service error onto its HTTP status and stable code.
// Unclassified errors become an opaque 500 so internals never leak.
func httpError(w http.ResponseWriter, err error) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		writeJSON(w, derr.Status, MessageEnvelope{Error: derr.Message, ErrorCode: derr.Code})
		return
	}
	writeError(w, http.StatusInternalServerError, "internal server error")
}
