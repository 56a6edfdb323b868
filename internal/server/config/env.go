package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "FILEDROP"

// parseEnv overlays config with FILEDROP_* environment variables, e.g.
// FILEDROP_ADDR or FILEDROP_S3_BUCKET. A ".env" file in the working
// directory is loaded first; variables already set in the environment win
// over it. PORT alone sets the listen port on all interfaces.
func parseEnv(config *Config) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			panic(err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)

	keys := []string{
		"addr", "storage_backend", "storage_dir", "max_upload_size", "static_dir",
		"cors_allow_origins", "upload_rate_limit", "upload_rate_burst", "compress",
		"metrics_enabled", "read_header_timeout", "idle_timeout", "shutdown_timeout",
		"log_level", "log_format", "s3_root_user", "s3_root_password", "s3_bucket",
		"s3_region", "s3_base_endpoint", "s3_use_path_style", "s3_prefix",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	_ = v.BindEnv("port", "PORT")

	if v.IsSet("port") {
		config.Addr = ":" + v.GetString("port")
	}

	str := map[string]*string{
		"addr":             &config.Addr,
		"storage_backend":  &config.StorageBackend,
		"storage_dir":      &config.StorageDir,
		"static_dir":       &config.StaticDir,
		"log_level":        &config.LogLevel,
		"log_format":       &config.LogFormat,
		"s3_root_user":     &config.S3RootUser,
		"s3_root_password": &config.S3RootPassword,
		"s3_bucket":        &config.S3Bucket,
		"s3_region":        &config.S3Region,
		"s3_base_endpoint": &config.S3BaseEndpoint,
		"s3_prefix":        &config.S3Prefix,
	}
	for k, dst := range str {
		if v.IsSet(k) {
			*dst = v.GetString(k)
		}
	}

	if v.IsSet("max_upload_size") {
		config.MaxUploadSize = v.GetInt64("max_upload_size")
	}
	if v.IsSet("cors_allow_origins") {
		config.CORSAllowOrigins = splitList(v.GetString("cors_allow_origins"))
	}
	if v.IsSet("upload_rate_limit") {
		config.UploadRateLimit = v.GetFloat64("upload_rate_limit")
	}
	if v.IsSet("upload_rate_burst") {
		config.UploadRateBurst = v.GetInt("upload_rate_burst")
	}
	if v.IsSet("compress") {
		config.Compress = v.GetBool("compress")
	}
	if v.IsSet("metrics_enabled") {
		config.MetricsEnabled = v.GetBool("metrics_enabled")
	}
	if v.IsSet("s3_use_path_style") {
		config.S3UsePathStyle = v.GetBool("s3_use_path_style")
	}
	if v.IsSet("read_header_timeout") {
		config.ReadHeaderTimeout = v.GetDuration("read_header_timeout")
	}
	if v.IsSet("idle_timeout") {
		config.IdleTimeout = v.GetDuration("idle_timeout")
	}
	if v.IsSet("shutdown_timeout") {
		config.ShutdownTimeout = v.GetDuration("shutdown_timeout")
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
