package handler

import (
	"errors"
	"fmt"
	"net/http"

	"amzhub/internal/paapi"
	"amzhub/internal/service"
)

type PaapiHandler struct {
	credsSvc *service.CredentialService
	logSvc   *service.LogService
	client   *paapi.Client
}

func NewPaapiHandler(credsSvc *service.CredentialService, logSvc *service.LogService, client *paapi.Client) *PaapiHandler {
	return &PaapiHandler{credsSvc: credsSvc, logSvc: logSvc, client: client}
}

// GET /v1/paapi/config
func (h *PaapiHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	view, err := h.credsSvc.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	if view == nil {
		writeError(w, http.StatusNotFound, "E_NOT_FOUND", "no credentials stored")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"config": view})
}

// PUT /v1/paapi/config
func (h *PaapiHandler) PutConfig(w http.ResponseWriter, r *http.Request) {
	var body paapi.Credentials
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid body")
		return
	}
	view, err := h.credsSvc.Put(r.Context(), body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"config": view})
}

// DELETE /v1/paapi/config
func (h *PaapiHandler) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	if err := h.credsSvc.Delete(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// POST /v1/paapi/lookup
// Body carries the product codes plus, optionally, a forwarded credential set
// that overrides the stored one for this call.
func (h *PaapiHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ItemIDs     []string           `json:"item_ids"`
		Credentials *paapi.Credentials `json:"credentials"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid body")
		return
	}
	if len(body.ItemIDs) == 0 {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "item_ids is required")
		return
	}

	var creds paapi.Credentials
	if body.Credentials != nil {
		creds = *body.Credentials
	} else {
		stored, err := h.credsSvc.Resolve(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
			return
		}
		if stored == nil {
			writeError(w, http.StatusUnprocessableEntity, "E_VALIDATION", "no credentials stored; save them or forward them with the request")
			return
		}
		creds = *stored
	}

	items, err := h.client.LookupItems(r.Context(), creds, body.ItemIDs)
	if err != nil {
		var configErr *paapi.ConfigError
		if errors.As(err, &configErr) {
			writeError(w, http.StatusUnprocessableEntity, "E_VALIDATION", configErr.Error())
			return
		}
		var remoteErr *paapi.RemoteError
		if errors.As(err, &remoteErr) {
			h.logEvent(r, "error", fmt.Sprintf("paapi lookup failed with status %d", remoteErr.StatusCode), remoteErr.Body)
			writeError(w, http.StatusBadGateway, "E_UPSTREAM", remoteErr.Error())
			return
		}
		writeError(w, http.StatusBadGateway, "E_UPSTREAM", err.Error())
		return
	}

	h.logEvent(r, "info", fmt.Sprintf("paapi lookup returned %d items for %d codes", len(items), len(body.ItemIDs)), "")
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *PaapiHandler) logEvent(r *http.Request, level, message, logContext string) {
	if h.logSvc == nil {
		return
	}
	if _, err := h.logSvc.Append(r.Context(), level, message, logContext); err != nil {
		// The event log is best-effort; the lookup result still stands.
		return
	}
}
