package handler

import (
	"io"
	"net/http"

	"github.com/petlink/petlink/internal/apperror"
	"github.com/petlink/petlink/internal/relay"
)

// RelayHandler forwards AI requests to the external matching service. The
// payloads are opaque here; the upstream's status and body are relayed
// verbatim so the frontend talks to one origin only.
type RelayHandler struct {
	client *relay.Client
}

func NewRelayHandler(client *relay.Client) *RelayHandler {
	return &RelayHandler{client: client}
}

// maxRelayBytes bounds the forwarded body; image payloads arrive base64
// encoded, which inflates them by a third.
const maxRelayBytes = 16 << 20

// Search handles POST /api/ai/search.
func (h *RelayHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, "/api/search")
}

// ReportSighting handles POST /api/ai/report-sighting.
func (h *RelayHandler) ReportSighting(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, "/api/report_sighting")
}

func (h *RelayHandler) forward(w http.ResponseWriter, r *http.Request, path string) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRelayBytes))
	if err != nil {
		writeError(w, apperror.ValidationFailed("body", "request body too large or unreadable"))
		return
	}

	result, err := h.client.Forward(r.Context(), path, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.StatusCode)
	w.Write(result.Body)
}
