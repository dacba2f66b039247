package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telemetry-pipeline/internal/processor"
	"telemetry-pipeline/internal/storage/memory"
)

func pushEnvelope(payload string) string {
	return fmt.Sprintf(`{"message": {"data": %q, "messageId": "m-1"}, "subscription": "data-subscription"}`,
		base64.StdEncoding.EncodeToString([]byte(payload)))
}

func newPushServer(t *testing.T) (*httptest.Server, *memory.ProcessedRecordStore) {
	t.Helper()

	store := memory.NewProcessedRecordStore()
	mux := http.NewServeMux()
	NewPushHandler(processor.New(store), nil).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, store
}

func TestHandlePush_Success(t *testing.T) {
	srv, store := newPushServer(t)

	resp, err := http.Post(srv.URL+"/push", "application/json", strings.NewReader(pushEnvelope(validBody)))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestHandlePush_BadPayloadSurfacesError(t *testing.T) {
	srv, store := newPushServer(t)

	// Non-2xx tells the delivering infrastructure to apply its retry
	// policy.
	resp, err := http.Post(srv.URL+"/push", "application/json",
		strings.NewReader(pushEnvelope(`{"data": [1.0]}`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestHandlePush_BadEnvelope(t *testing.T) {
	srv, _ := newPushServer(t)

	resp, err := http.Post(srv.URL+"/push", "application/json", strings.NewReader(`{"message": {"data": "!!!"}}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
