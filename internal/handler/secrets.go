package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"amzhub/internal/service"
)

type SecretHandler struct {
	svc *service.SecretService
}

func NewSecretHandler(svc *service.SecretService) *SecretHandler {
	return &SecretHandler{svc: svc}
}

// GET /v1/secrets
func (h *SecretHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"secrets": items})
}

// PUT /v1/secrets/{name}
func (h *SecretHandler) Put(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var body struct {
		Value string `json:"value"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid body")
		return
	}
	item, err := h.svc.Put(r.Context(), name, body.Value)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "E_VALIDATION", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"secret": item})
}

// GET /v1/secrets/{name} — returns the decrypted value; value is null when
// the envelope cannot be opened with the current key.
func (h *SecretHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	item, err := h.svc.Get(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "E_NOT_FOUND", "secret not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"secret": item})
}

// DELETE /v1/secrets/{name}
func (h *SecretHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.svc.Delete(r.Context(), name); err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
