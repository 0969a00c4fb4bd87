// Package server assembles the HTTP surface: Connect procedures, blob
// downloads, health and metrics.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/memoria/internal/blob"
	"github.com/mmynk/memoria/internal/metrics"
	"github.com/mmynk/memoria/internal/middleware"
	"github.com/mmynk/memoria/internal/service"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "memoria"

// Deps are the collaborators the handler is built from.
type Deps struct {
	Services service.Services
	Sessions middleware.TokenResolver
	Blobs    blob.Store
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// NewHandler returns the root handler. It serves HTTP/2 without TLS so
// Connect clients can use either protocol version.
func NewHandler(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	service.Register(mux, d.Services, connect.WithInterceptors(
		middleware.LoggingInterceptor(logger, d.Metrics),
		middleware.RequireAuth(d.Sessions, service.PublicProcedures...),
	))

	mux.Handle("GET /files/{name}", filesHandler(d.Blobs, logger))
	mux.HandleFunc("GET /api/health", healthHandler)
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	return h2c.NewHandler(middleware.Logging(logger, middleware.CORS(mux)), &http2.Server{})
}

// New returns an http.Server for handler on addr.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func filesHandler(blobs blob.Store, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		rc, info, err := blobs.Open(r.Context(), name)
		if errors.Is(err, blob.ErrNotFound) || errors.Is(err, blob.ErrInvalidKey) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			logger.Error("Failed to open blob", "key", name, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		defer rc.Close()

		if info.ContentType != "" {
			w.Header().Set("Content-Type", info.ContentType)
		}
		if info.Size > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
		}
		w.Header().Set("Cache-Control", "private, max-age=86400")
		if _, err := io.Copy(w, rc); err != nil {
			logger.Warn("Failed to stream blob", "key", name, "error", err)
		}
	})
}

type health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Service:   ServiceName,
	})
}
