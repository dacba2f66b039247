package api

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"telemetry-pipeline/internal/consumer"
	"telemetry-pipeline/internal/processor"
)

// PushHandler adapts the one-shot event path to an HTTP endpoint for
// push-delivery subscriptions. A 2xx response acknowledges delivery;
// any other status makes the delivering infrastructure redeliver, so
// errors are surfaced rather than swallowed.
type PushHandler struct {
	proc   *processor.Processor
	logger *log.Logger
}

// NewPushHandler creates a PushHandler.
func NewPushHandler(proc *processor.Processor, logger *log.Logger) *PushHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &PushHandler{proc: proc, logger: logger}
}

// Register attaches the push route to mux.
func (h *PushHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/push", h.handlePush)
	mux.HandleFunc("/health", HandleHealth)
}

func (h *PushHandler) handlePush(w http.ResponseWriter, r *http.Request) {
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

	rec, err := consumer.HandleEvent(r.Context(), h.proc, body)
	if err != nil {
		h.logger.Printf("POST /push: %v", err)
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Data processed successfully",
		"id":      rec.ID,
	})
}
