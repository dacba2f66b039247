// Package api provides the HTTP ingress surface.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"telemetry-pipeline/internal/processor"
)

// maxBodyBytes bounds how much of a request body is read.
const maxBodyBytes = 1 << 20

// Handler serves the direct-ingest endpoint: POST /data/ runs the body
// through the processing pipeline and persists the result.
type Handler struct {
	proc   *processor.Processor
	logger *log.Logger
}

// NewHandler creates a direct-ingest Handler.
func NewHandler(proc *processor.Processor, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{proc: proc, logger: logger}
}

// Register attaches the ingress routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/data/", h.handleData)
	mux.HandleFunc("/health", HandleHealth)
}

func (h *Handler) handleData(w http.ResponseWriter, r *http.Request) {
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

	rec, err := h.proc.Process(r.Context(), body)
	if err != nil {
		h.logger.Printf("POST /data/: %v", err)
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Data processed successfully",
		"id":      rec.ID,
	})
}

// HandleHealth is the liveness endpoint shared by all binaries.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// statusFor maps pipeline failure kinds to HTTP status codes. Client
// mistakes are 400; storage and queue outages are the backend's fault
// and surface as 502.
func statusFor(err error) int {
	switch processor.KindOf(err) {
	case processor.KindStorage, processor.KindAck:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

// WriteError writes the {"detail": ...} error body used by all
// ingress endpoints.
func WriteError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"detail": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
