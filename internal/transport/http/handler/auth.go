package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bahir-ride/api/internal/application/auth"
	"github.com/bahir-ride/api/internal/application/session"
	"github.com/bahir-ride/api/internal/domain"
	"github.com/bahir-ride/api/internal/transport/http/middleware"
)

// AuthEnvelope wraps register/login/verify responses.
type AuthEnvelope struct {
	User      *domain.Identity         `json:"user,omitempty"`
	Passenger *domain.PassengerProfile `json:"passenger,omitempty"`
	Driver    *domain.DriverProfile    `json:"driver,omitempty"`
	Tokens    *session.TokenPair       `json:"tokens,omitempty"`
	Message   string                   `json:"message,omitempty"`
}

// AuthHandler exposes the account lifecycle endpoints.
type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type codeRequest struct {
	Identifier string `json:"identifier"`
	Purpose    string `json:"purpose"`
	Code       string `json:"code"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// purposeOrDefault treats an absent purpose as a login code request, the
// common case for returning clients.
func purposeOrDefault(w http.ResponseWriter, raw string) (domain.OTCPurpose, bool) {
	if raw == "" {
		return domain.PurposeLogin, true
	}
	purpose, err := domain.ParsePurpose(raw)
	if err != nil {
		httpError(w, err)
		return "", false
	}
	return purpose, true
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	identity, err := h.svc.Register(r.Context(), &req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthEnvelope{
		User:    identity,
		Message: "verification code sent",
	})
}

func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	purpose, ok := purposeOrDefault(w, req.Purpose)
	if !ok {
		return
	}

	if err := h.svc.RequestCode(r.Context(), req.Identifier, purpose); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verification code sent"})
}

func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	h.RequestOTP(w, r)
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	purpose, ok := purposeOrDefault(w, req.Purpose)
	if !ok {
		return
	}

	result, err := h.svc.VerifyCode(r.Context(), req.Identifier, purpose, req.Code)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.svc.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{User: result.Identity, Tokens: result.Tokens})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pair, err := h.svc.Refresh(req.RefreshToken)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Tokens: pair})
}

// Logout acknowledges the client discarding its tokens. Sessions are
// stateless; server-side revocation goes through the status endpoint.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	me, err := h.svc.GetCurrentUser(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		User:      me.Identity,
		Passenger: me.Passenger,
		Driver:    me.Driver,
	})
}
