package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bahir-ride/api/internal/application/document"
	"github.com/bahir-ride/api/internal/transport/http/middleware"
)

// DocumentHandler exposes Fayda ID document intake and review.
type DocumentHandler struct {
	svc *document.Service
}

func NewDocumentHandler(svc *document.Service) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// Upload stores the caller's own ID faces.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var input document.UploadInput
	if !decodeBody(w, r, &input) {
		return
	}
	input.IdentityID = claims.UserID

	identity, err := h.svc.Upload(r.Context(), input)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthEnvelope{User: identity, Message: "documents submitted for review"})
}

type documentURLs struct {
	FrontURL string `json:"front_url"`
	BackURL  string `json:"back_url"`
}

// ViewURLs hands review staff short-lived links to a user's stored ID faces.
func (h *DocumentHandler) ViewURLs(w http.ResponseWriter, r *http.Request) {
	identityID := chi.URLParam(r, "id")

	front, back, err := h.svc.ViewURLs(r.Context(), identityID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentURLs{FrontURL: front, BackURL: back})
}
