package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/memoria/internal/blob"
	"github.com/mmynk/memoria/internal/config"
	"github.com/mmynk/memoria/internal/events"
	"github.com/mmynk/memoria/internal/storage"
	"github.com/mmynk/memoria/internal/storage/mongostore"
	"github.com/mmynk/memoria/internal/storage/sqlstore"
)

// openStore opens the configured database; schema and indexes are applied
// on open.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (storage.Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlstore.New(cfg.Path)
	case "postgres":
		return sqlstore.NewPostgres(cfg.URL)
	case "mongo":
		return mongostore.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func openBlobs(ctx context.Context, cfg config.BlobConfig) (blob.Store, error) {
	switch cfg.Backend {
	case "local":
		return blob.NewLocal(cfg.Dir)
	case "minio":
		return blob.NewMinio(ctx, cfg.Minio)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}

// openPublisher returns a no-op publisher when no broker is configured.
func openPublisher(cfg config.EventsConfig) (events.Publisher, error) {
	if cfg.URL == "" {
		slog.Info("No AMQP broker configured; upload events are disabled")
		return events.Noop{}, nil
	}
	return events.NewAMQP(cfg.URL, cfg.Queue)
}
