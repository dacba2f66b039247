package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telemetry-pipeline/internal/archive"
)

// stubPublisher records published payloads.
type stubPublisher struct {
	published [][]byte
	err       error
}

func (p *stubPublisher) Publish(_ context.Context, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, data)
	return nil
}

func newGatewayServer(t *testing.T, pub *stubPublisher, arch archive.Archiver) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	NewGatewayHandler(pub, arch, nil).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGateway_PublishesValidPayload(t *testing.T) {
	pub := &stubPublisher{}
	srv := newGatewayServer(t, pub, nil)

	resp, err := http.Post(srv.URL+"/data/", "application/json", strings.NewReader(validBody))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, pub.published, 1)
	assert.JSONEq(t, validBody, string(pub.published[0]))
}

func TestGateway_RejectsInvalidPayload(t *testing.T) {
	pub := &stubPublisher{}
	srv := newGatewayServer(t, pub, nil)

	cases := []string{
		`{"time_stamp":`,
		`{"data": [1.0, 2.0]}`,
		`{"time_stamp": "2019-05-01T06:00:00Z", "data": [1.0, 2.0]}`,
	}

	for _, c := range cases {
		resp, err := http.Post(srv.URL+"/data/", "application/json", strings.NewReader(c))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body: %s", c)
	}

	assert.Empty(t, pub.published, "rejected payloads must not reach the queue")
}

func TestGateway_ArchivesBeforePublish(t *testing.T) {
	root := t.TempDir()
	pub := &stubPublisher{}
	srv := newGatewayServer(t, pub, archive.NewDirArchiver(root))

	resp, err := http.Post(srv.URL+"/data/", "application/json", strings.NewReader(validBody))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Archive name carries the normalized UTC timestamp.
	got, err := os.ReadFile(filepath.Join(root, "data", "2019-05-01T10:00:00Z.json"))
	require.NoError(t, err)
	assert.JSONEq(t, validBody, string(got))
}

func TestGateway_PublishFailure(t *testing.T) {
	pub := &stubPublisher{err: errors.New("queue unavailable")}
	srv := newGatewayServer(t, pub, nil)

	resp, err := http.Post(srv.URL+"/data/", "application/json", strings.NewReader(validBody))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
