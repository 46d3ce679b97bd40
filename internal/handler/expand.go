package handler

import (
	"fmt"
	"net/http"
	"strings"

	"amzhub/internal/service"
)

const maxBatchSize = 100

type ExpandHandler struct {
	svc    *service.ExpandService
	logSvc *service.LogService
}

func NewExpandHandler(svc *service.ExpandService, logSvc *service.LogService) *ExpandHandler {
	return &ExpandHandler{svc: svc, logSvc: logSvc}
}

// POST /v1/expand
// The batch never fails as a whole: every URL gets an outcome, in input
// order.
func (h *ExpandHandler) Expand(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URLs []string `json:"urls"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid body")
		return
	}

	urls := make([]string, 0, len(body.URLs))
	for _, u := range body.URLs {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	if len(urls) == 0 {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "urls is required")
		return
	}
	if len(urls) > maxBatchSize {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", fmt.Sprintf("at most %d urls per batch", maxBatchSize))
		return
	}

	outcomes := h.svc.ExpandBatch(r.Context(), urls)

	resolved := 0
	for _, out := range outcomes {
		if out.Error == "" {
			resolved++
		}
	}
	if h.logSvc != nil {
		_, _ = h.logSvc.Append(r.Context(), "info",
			fmt.Sprintf("expanded %d/%d urls", resolved, len(outcomes)), "")
	}

	writeJSON(w, http.StatusOK, map[string]any{"outcomes": outcomes})
}
