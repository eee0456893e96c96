package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bahir-ride/api/internal/application/auth"
	"github.com/bahir-ride/api/internal/domain"
)

// StatusHandler exposes the privileged account lifecycle endpoint.
type StatusHandler struct {
	svc *auth.Service
}

func NewStatusHandler(svc *auth.Service) *StatusHandler {
	return &StatusHandler{svc: svc}
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *StatusHandler) Update(w http.ResponseWriter, r *http.Request) {
	identityID := chi.URLParam(r, "id")

	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	status := domain.Status(req.Status)
	switch status {
	case domain.StatusActive, domain.StatusSuspended, domain.StatusInactive:
	default:
		// pending is not reachable by hand; it only exists before first
		// verification.
		httpError(w, domain.ErrInvalidInput.WithMessage("status must be active, suspended or inactive"))
		return
	}

	if err := h.svc.SetStatus(r.Context(), identityID, status); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "status updated"})
}
