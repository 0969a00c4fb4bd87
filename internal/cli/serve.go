package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/memoria/internal/auth"
	"github.com/mmynk/memoria/internal/config"
	"github.com/mmynk/memoria/internal/feed"
	"github.com/mmynk/memoria/internal/ingest"
	"github.com/mmynk/memoria/internal/metadata"
	"github.com/mmynk/memoria/internal/metrics"
	"github.com/mmynk/memoria/internal/server"
	"github.com/mmynk/memoria/internal/service"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the RPC API, photo files, health and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("addr", ":8080", "Listen address")
	opts.v.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger := slog.Default()

	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "driver", cfg.Database.Driver)

	blobs, err := openBlobs(ctx, cfg.Blob)
	if err != nil {
		return fmt.Errorf("failed to initialize blob store: %w", err)
	}
	logger.Info("Blob store initialized", "backend", cfg.Blob.Backend)

	publisher, err := openPublisher(cfg.Events)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	defer publisher.Close()

	m := metrics.New()
	sessions := auth.NewSessions(auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), store)
	pipeline := ingest.New(store, blobs, metadata.NewExtractor(logger),
		ingest.WithPublisher(publisher),
		ingest.WithMetrics(m),
		ingest.WithLogger(logger),
		ingest.WithWorkers(cfg.Ingest.Workers),
		ingest.WithMaxFileSize(cfg.Ingest.MaxFileSize),
	)

	handler := server.NewHandler(server.Deps{
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
	srv := server.New(cfg.Addr, handler)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Received interrupt signal, shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
