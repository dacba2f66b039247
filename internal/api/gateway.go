package api

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"telemetry-pipeline/internal/archive"
	"telemetry-pipeline/internal/payload"
)

// Publisher publishes a validated payload to the queue.
// *queue.BoundPublisher implements it.
type Publisher interface {
	Publish(ctx context.Context, data []byte) error
}

// GatewayHandler serves the publish-mode ingress: POST /data/ validates
// the payload shape, optionally archives the raw body, and hands it to
// the queue instead of the database. The background consumer does the
// rest.
type GatewayHandler struct {
	publisher Publisher
	archiver  archive.Archiver // nil disables archiving
	logger    *log.Logger
}

// NewGatewayHandler creates a publish-mode Handler. archiver may be nil.
func NewGatewayHandler(publisher Publisher, archiver archive.Archiver, logger *log.Logger) *GatewayHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &GatewayHandler{publisher: publisher, archiver: archiver, logger: logger}
}

// Register attaches the gateway routes to mux.
func (h *GatewayHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/data/", h.handleData)
	mux.HandleFunc("/health", HandleHealth)
}

func (h *GatewayHandler) handleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "method not allowed"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": fmt.Sprintf("read body: %v", err)})
		return
	}

	// Reject malformed payloads at the edge so the queue only carries
	// messages the consumer can decode.
	pl, err := payload.Parse(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}
	ts, err := payload.NormalizeTimestamp(pl.TimeStamp)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}

	if h.archiver != nil {
		if _, err := h.archiver.Archive(r.Context(), ts, body); err != nil {
			h.logger.Printf("Archive payload: %v", err)
			writeJSON(w, http.StatusBadGateway, map[string]string{"detail": fmt.Sprintf("archive payload: %v", err)})
			return
		}
	}

	if err := h.publisher.Publish(r.Context(), body); err != nil {
		h.logger.Printf("Publish payload: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"detail": fmt.Sprintf("publish payload: %v", err)})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Data received and published successfully",
	})
}
