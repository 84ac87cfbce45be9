package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/edu-content/pkg/educontent"
	repomemory "github.com/tendant/edu-content/pkg/educontent/repo/memory"
	repopg "github.com/tendant/edu-content/pkg/educontent/repo/postgres"
	fsstorage "github.com/tendant/edu-content/pkg/educontent/storage/fs"
	s3storage "github.com/tendant/edu-content/pkg/educontent/storage/s3"
)

// Backend names registered on the service. Namespace policies route to these.
const (
	LocalBackendName  = "local"
	RemoteBackendName = "remote"
)

// ServerConfig holds the deployment configuration, populated from the
// environment.
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	// DatabaseURL selects the repository: empty or "memory" uses the
	// in-memory repository, a postgres:// URL uses Postgres.
	DatabaseURL string `env:"DATABASE_URL" env-default:""`
	DBSchema    string `env:"DB_SCHEMA" env-default:"educontent"`

	Upload UploadConfig
	S3     S3Config
}

// UploadConfig configures the local filesystem backend.
type UploadConfig struct {
	BaseDir   string `env:"UPLOAD_DIR" env-default:"./data/uploads"`
	URLPrefix string `env:"UPLOAD_URL_PREFIX" env-default:"/uploads"`
}

// S3Config configures the remote object-store backend. When Bucket is empty
// the remote namespaces fall back to the filesystem backend, which keeps
// local development working without credentials.
type S3Config struct {
	Bucket                 string `env:"AWS_S3_BUCKET" env-default:""`
	Region                 string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	AccessKeyID            string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	SecretAccessKey        string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	Endpoint               string `env:"AWS_S3_ENDPOINT" env-default:""`
	UsePathStyle           bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	PresignDuration        int    `env:"AWS_S3_PRESIGN_DURATION" env-default:"3600"`
	PublicBaseURL          string `env:"AWS_S3_PUBLIC_BASE_URL" env-default:""`
	CreateBucketIfNotExist bool   `env:"AWS_S3_CREATE_BUCKET" env-default:"false"`
}

// Load reads the configuration from environment variables and validates it.
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.Upload.BaseDir == "" {
		return errors.New("upload directory is required")
	}
	if c.DatabaseURL != "" && c.DatabaseURL != "memory" &&
		!strings.HasPrefix(c.DatabaseURL, "postgres://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return fmt.Errorf("unsupported DATABASE_URL format: use 'memory' or 'postgresql://...'")
	}
	return nil
}

// UsesPostgres reports whether the configuration selects the Postgres
// repository.
func (c *ServerConfig) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") ||
		strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// BuildService wires a Service from the configuration: repository, the two
// storage backends, and the namespace routing.
func (c *ServerConfig) BuildService(ctx context.Context) (educontent.Service, error) {
	repo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	local, err := fsstorage.New(fsstorage.Config{
		BaseDir:   c.Upload.BaseDir,
		URLPrefix: c.Upload.URLPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build filesystem backend: %w", err)
	}

	options := []educontent.Option{
		educontent.WithRepository(repo),
		educontent.WithBlobStore(LocalBackendName, local),
		educontent.WithPolicies(educontent.DefaultPolicies(LocalBackendName, RemoteBackendName)...),
	}

	if c.S3.Bucket != "" {
		remote, err := s3storage.New(s3storage.Config{
			Region:                 c.S3.Region,
			Bucket:                 c.S3.Bucket,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			PresignDuration:        c.S3.PresignDuration,
			PublicBaseURL:          c.S3.PublicBaseURL,
			CreateBucketIfNotExist: c.S3.CreateBucketIfNotExist,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build S3 backend: %w", err)
		}
		options = append(options, educontent.WithBlobStore(RemoteBackendName, remote))
	} else {
		// No bucket configured: remote namespaces store on the local disk
		// too, keyed under their namespace prefix.
		options = append(options, educontent.WithBlobStore(RemoteBackendName, local))
	}

	return educontent.New(options...)
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context) (educontent.Repository, error) {
	if !c.UsesPostgres() {
		return repomemory.New(), nil
	}

	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if c.DBSchema != "" {
		if cfg.ConnConfig.RuntimeParams == nil {
			cfg.ConnConfig.RuntimeParams = map[string]string{}
		}
		cfg.ConnConfig.RuntimeParams["search_path"] = c.DBSchema
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return repopg.NewWithPool(pool), nil
}
