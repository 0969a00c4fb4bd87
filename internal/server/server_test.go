package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/memoria/internal/auth"
	"github.com/mmynk/memoria/internal/blob"
	"github.com/mmynk/memoria/internal/feed"
	"github.com/mmynk/memoria/internal/ingest"
	"github.com/mmynk/memoria/internal/metadata"
	"github.com/mmynk/memoria/internal/metrics"
	"github.com/mmynk/memoria/internal/service"
	"github.com/mmynk/memoria/internal/storage/sqlstore"
)

func newTestServer(t *testing.T) (*httptest.Server, blob.Store) {
	t.Helper()
	dir := t.TempDir()

	store, err := sqlstore.New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	blobs, err := blob.NewLocal(filepath.Join(dir, "blobs"))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := auth.NewSessions(auth.NewJWTManager("test-secret", time.Hour), store)
	m := metrics.New()
	pipeline := ingest.New(store, blobs, metadata.NewExtractor(logger), ingest.WithMetrics(m), ingest.WithLogger(logger))

	handler := NewHandler(Deps{
		Services: service.Services{
			Auth:   service.NewAuthService(auth.NewPasswordAuthenticator(store), sessions, logger),
			Family: service.NewFamilyService(store, logger),
			Album:  service.NewAlbumService(store, logger),
			Photo:  service.NewPhotoService(store, pipeline, logger),
			Feed:   service.NewFeedService(feed.New(store)),
		},
		Sessions: sessions,
		Blobs:    blobs,
		Metrics:  m,
		Logger:   logger,
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		srv.Close()
		store.Close()
	})
	return srv, blobs
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body health
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, ServiceName, body.Service)
	assert.False(t, body.Timestamp.IsZero())
}

func TestFiles(t *testing.T) {
	srv, blobs := newTestServer(t)
	data := []byte("jpeg bytes")
	require.NoError(t, blobs.Put(context.Background(), "abc.jpg", strings.NewReader(string(data)), int64(len(data)), "image/jpeg"))

	resp, err := http.Get(srv.URL + "/files/abc.jpg")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, data, body)

	for _, path := range []string{"/files/missing.jpg", "/files/..", "/files/"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestRPCOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"email":"ana@example.com","password":"secret123","first_name":"Ana","last_name":"García"}`
	resp, err := http.Post(srv.URL+service.AuthRegisterProcedure, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	var registered service.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&registered))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, registered.Token)

	resp, err = http.Post(srv.URL+service.AuthMeProcedure, "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+service.AuthMeProcedure, strings.NewReader(`{}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+registered.Token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	var me service.UserResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	resp.Body.Close()
	assert.Equal(t, registered.User.ID, me.User.ID)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	metricsBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(metricsBody), `memoria_rpc_requests_total{code="ok",procedure="/memoria.v1.AuthService/Register"} 1`)
	assert.Contains(t, string(metricsBody), `code="unauthenticated"`)
}
