// Package config loads settings from MEMORIA_* environment variables, an
// optional .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mmynk/memoria/internal/blob"
	"github.com/mmynk/memoria/internal/events"
	"github.com/mmynk/memoria/internal/ingest"
)

// EnvPrefix prefixes every environment variable, e.g. MEMORIA_DATABASE_DRIVER.
const EnvPrefix = "MEMORIA"

// Config represents the application configuration
type Config struct {
	Addr      string
	LogLevel  string
	LogFormat string
	Database  DatabaseConfig
	Blob      BlobConfig
	Events    EventsConfig
	Auth      AuthConfig
	Ingest    IngestConfig
}

// DatabaseConfig selects the store. Driver is sqlite, postgres or mongo.
type DatabaseConfig struct {
	Driver        string
	Path          string
	URL           string
	MongoURI      string
	MongoDatabase string
}

// BlobConfig selects where photo bytes live. Backend is local or minio.
type BlobConfig struct {
	Backend string
	Dir     string
	Minio   blob.MinioConfig
}

// EventsConfig enables the AMQP publisher when URL is set.
type EventsConfig struct {
	URL   string
	Queue string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type IngestConfig struct {
	Workers     int
	MaxFileSize int64
}

var defaults = map[string]any{
	"addr":                 ":8080",
	"log.level":            "info",
	"log.format":           "text",
	"database.driver":      "sqlite",
	"database.path":        "./data/memoria.db",
	"database.url":         "",
	"mongo.uri":            "",
	"mongo.database":       "memoria",
	"blob.backend":         "local",
	"blob.dir":             "./data/photos",
	"s3.endpoint":          "",
	"s3.access_key":        "",
	"s3.secret_key":        "",
	"s3.bucket":            "memoria",
	"s3.region":            "us-east-1",
	"s3.use_ssl":           true,
	"amqp.url":             "",
	"amqp.queue":           events.DefaultQueue,
	"auth.jwt_secret":      "",
	"auth.token_ttl":       "168h",
	"ingest.workers":       ingest.DefaultWorkers,
	"ingest.max_file_size": ingest.DefaultMaxFileSize,
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads envFile (missing is fine) and configFile (optional) into v and
// returns the validated configuration.
func Load(v *viper.Viper, envFile, configFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Addr:      v.GetString("addr"),
		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
		Database: DatabaseConfig{
			Driver:        strings.ToLower(v.GetString("database.driver")),
			Path:          v.GetString("database.path"),
			URL:           v.GetString("database.url"),
			MongoURI:      v.GetString("mongo.uri"),
			MongoDatabase: v.GetString("mongo.database"),
		},
		Blob: BlobConfig{
			Backend: strings.ToLower(v.GetString("blob.backend")),
			Dir:     v.GetString("blob.dir"),
			Minio: blob.MinioConfig{
				Endpoint:  v.GetString("s3.endpoint"),
				AccessKey: v.GetString("s3.access_key"),
				SecretKey: v.GetString("s3.secret_key"),
				Bucket:    v.GetString("s3.bucket"),
				Region:    v.GetString("s3.region"),
				UseSSL:    v.GetBool("s3.use_ssl"),
			},
		},
		Events: EventsConfig{
			URL:   v.GetString("amqp.url"),
			Queue: v.GetString("amqp.queue"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
		Ingest: IngestConfig{
			Workers:     v.GetInt("ingest.workers"),
			MaxFileSize: v.GetInt64("ingest.max_file_size"),
		},
	}

	return cfg, nil
}

// ValidateStore checks the settings every command needs.
func (c *Config) ValidateStore() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("MEMORIA_DATABASE_PATH is required for sqlite")
		}
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("MEMORIA_DATABASE_URL is required for postgres")
		}
	case "mongo":
		if c.Database.MongoURI == "" {
			return errors.New("MEMORIA_MONGO_URI is required for mongo")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	return nil
}

// Validate checks the settings needed to serve.
func (c *Config) Validate() error {
	if err := c.ValidateStore(); err != nil {
		return err
	}
	switch c.Blob.Backend {
	case "local":
		if c.Blob.Dir == "" {
			return errors.New("MEMORIA_BLOB_DIR is required for local blobs")
		}
	case "minio":
		if c.Blob.Minio.Endpoint == "" {
			return errors.New("MEMORIA_S3_ENDPOINT is required for minio blobs")
		}
	default:
		return fmt.Errorf("unknown blob backend %q", c.Blob.Backend)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("MEMORIA_AUTH_JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("MEMORIA_AUTH_TOKEN_TTL must be positive")
	}
	if c.Ingest.Workers < 1 {
		return errors.New("MEMORIA_INGEST_WORKERS must be at least 1")
	}
	if c.Ingest.MaxFileSize <= 0 {
		return errors.New("MEMORIA_INGEST_MAX_FILE_SIZE must be positive")
	}
	return nil
}
