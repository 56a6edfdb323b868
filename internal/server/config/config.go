// Package config handles configuration for the filedrop server, layering
// defaults, an optional config file, the environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/filedrop/internal/common"
)

const (
	BackendFS = "fs"
	BackendS3 = "s3"
)

// Config holds runtime settings for the filedrop server.
//
// Fields:
//   - Addr: bind address of the HTTP listener.
//   - StorageBackend: "fs" (StorageDir) or "s3" (S3* fields).
//   - MaxUploadSize: payload limit in bytes.
//   - StaticDir: directory served at "/" when set.
//   - CORSAllowOrigins: allowed origins, "*" for any.
//   - UploadRateLimit / UploadRateBurst: per-client uploads per second; 0 disables.
//   - Compress: gzip JSON responses for clients that accept it.
//   - MetricsEnabled: expose Prometheus metrics at /metrics.
//   - ReadHeaderTimeout / IdleTimeout / ShutdownTimeout: HTTP server timings.
//   - LogLevel / LogFormat: slog level name and "json" or "text".
//   - S3RootUser / S3RootPassword / S3Bucket / S3Region / S3BaseEndpoint /
//     S3UsePathStyle / S3Prefix: S3-compatible object storage settings.
type Config struct {
	Addr              string
	StorageBackend    string
	StorageDir        string
	MaxUploadSize     int64
	StaticDir         string
	CORSAllowOrigins  []string
	UploadRateLimit   float64
	UploadRateBurst   int
	Compress          bool
	MetricsEnabled    bool
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	LogLevel          string
	LogFormat         string
	S3RootUser        string
	S3RootPassword    string
	S3Bucket          string
	S3Region          string
	S3BaseEndpoint    string
	S3UsePathStyle    bool
	S3Prefix          string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the S3 credentials are MinIO's local defaults and must be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = ":3000"
	c.StorageBackend = BackendFS
	c.StorageDir = "uploads"
	c.MaxUploadSize = common.DefaultMaxUploadSize
	c.StaticDir = ""
	c.CORSAllowOrigins = []string{"*"}
	c.UploadRateLimit = 0
	c.UploadRateBurst = 10
	c.Compress = true
	c.MetricsEnabled = true
	c.ReadHeaderTimeout = 10 * time.Second
	c.IdleTimeout = 2 * time.Minute
	c.ShutdownTimeout = 15 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "filedrop"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3UsePathStyle = true
	c.S3Prefix = ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file, the environment and finally command-line
// flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr is empty"))
	}
	switch c.StorageBackend {
	case BackendFS:
		if c.StorageDir == "" {
			errs = append(errs, errors.New("storage_dir is required for the fs backend"))
		}
	case BackendS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("s3_bucket is required for the s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.StorageBackend))
	}
	if c.MaxUploadSize <= 0 {
		errs = append(errs, fmt.Errorf("max_upload_size must be positive, got %d", c.MaxUploadSize))
	}
	if c.UploadRateLimit < 0 {
		errs = append(errs, errors.New("upload_rate_limit must not be negative"))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}

	return errors.Join(errs...)
}
