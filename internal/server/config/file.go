package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dmitrijs2005/filedrop/internal/flagx"
	"github.com/dmitrijs2005/filedrop/internal/timex"
)

// FileConfig is the on-disk form of Config, decoded from JSON or TOML.
// Durations use timex.Duration so they can be written as "15s". Zero values
// leave the current setting untouched; booleans are pointers for that reason.
type FileConfig struct {
	Addr              string         `json:"addr" toml:"addr"`
	StorageBackend    string         `json:"storage_backend" toml:"storage_backend"`
	StorageDir        string         `json:"storage_dir" toml:"storage_dir"`
	MaxUploadSize     int64          `json:"max_upload_size" toml:"max_upload_size"`
	StaticDir         string         `json:"static_dir" toml:"static_dir"`
	CORSAllowOrigins  []string       `json:"cors_allow_origins" toml:"cors_allow_origins"`
	UploadRateLimit   float64        `json:"upload_rate_limit" toml:"upload_rate_limit"`
	UploadRateBurst   int            `json:"upload_rate_burst" toml:"upload_rate_burst"`
	Compress          *bool          `json:"compress" toml:"compress"`
	MetricsEnabled    *bool          `json:"metrics_enabled" toml:"metrics_enabled"`
	ReadHeaderTimeout timex.Duration `json:"read_header_timeout" toml:"read_header_timeout"`
	IdleTimeout       timex.Duration `json:"idle_timeout" toml:"idle_timeout"`
	ShutdownTimeout   timex.Duration `json:"shutdown_timeout" toml:"shutdown_timeout"`
	LogLevel          string         `json:"log_level" toml:"log_level"`
	LogFormat         string         `json:"log_format" toml:"log_format"`
	S3RootUser        string         `json:"s3_root_user" toml:"s3_root_user"`
	S3RootPassword    string         `json:"s3_root_password" toml:"s3_root_password"`
	S3Bucket          string         `json:"s3_bucket" toml:"s3_bucket"`
	S3Region          string         `json:"s3_region" toml:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint" toml:"s3_base_endpoint"`
	S3UsePathStyle    *bool          `json:"s3_use_path_style" toml:"s3_use_path_style"`
	S3Prefix          string         `json:"s3_prefix" toml:"s3_prefix"`
}

// parseFile overlays config with the file named by -c / -config.
//
// Files ending in ".toml" are decoded with BurntSushi/toml, everything else
// as JSON. Read or decode errors panic.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlags(os.Args[1:])

	// nothing to load
	if path == "" {
		return
	}

	c := &FileConfig{}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, c); err != nil {
			panic(err)
		}
	} else {
		file, err := os.ReadFile(path)
		if err != nil {
			panic(err)
		}
		if err := json.Unmarshal(file, c); err != nil {
			panic(err)
		}
	}

	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.Addr, c.Addr)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.StorageDir, c.StorageDir)
	if c.MaxUploadSize != 0 {
		config.MaxUploadSize = c.MaxUploadSize
	}
	setString(&config.StaticDir, c.StaticDir)
	if len(c.CORSAllowOrigins) > 0 {
		config.CORSAllowOrigins = c.CORSAllowOrigins
	}
	if c.UploadRateLimit != 0 {
		config.UploadRateLimit = c.UploadRateLimit
	}
	if c.UploadRateBurst != 0 {
		config.UploadRateBurst = c.UploadRateBurst
	}
	setBool(&config.Compress, c.Compress)
	setBool(&config.MetricsEnabled, c.MetricsEnabled)
	if c.ReadHeaderTimeout.Duration != 0 {
		config.ReadHeaderTimeout = c.ReadHeaderTimeout.Duration
	}
	if c.IdleTimeout.Duration != 0 {
		config.IdleTimeout = c.IdleTimeout.Duration
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setBool(&config.S3UsePathStyle, c.S3UsePathStyle)
	setString(&config.S3Prefix, c.S3Prefix)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
