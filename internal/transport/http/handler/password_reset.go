package handler

import (
	"net/http"

	"github.com/bahir-ride/api/internal/application/auth"
)

// PasswordResetHandler exposes the three-step reset flow: request a code,
// pre-check it, then submit the new password.
type PasswordResetHandler struct {
	svc *auth.Service
}

func NewPasswordResetHandler(svc *auth.Service) *PasswordResetHandler {
	return &PasswordResetHandler{svc: svc}
}

type resetRequest struct {
	Identifier  string `json:"identifier"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// Forgot always reports success for well-formed identifiers so the endpoint
// can't be used to enumerate accounts.
func (h *PasswordResetHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.svc.RequestPasswordReset(r.Context(), req.Identifier); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "if the account exists, a reset code has been sent"})
}

// VerifyCode checks the reset code without consuming it, so the client can
// show the new-password screen before the final submit.
func (h *PasswordResetHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.svc.VerifyResetCode(r.Context(), req.Identifier, req.Code); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "code valid"})
}

func (h *PasswordResetHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.svc.ConfirmPasswordReset(r.Context(), req.Identifier, req.Code, req.NewPassword); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password updated"})
}
