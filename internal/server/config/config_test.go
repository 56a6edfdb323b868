package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaultConfig()

	assert.Equal(t, ":3000", c.Addr)
	assert.Equal(t, BackendFS, c.StorageBackend)
	assert.Equal(t, "uploads", c.StorageDir)
	assert.Equal(t, int64(100<<20), c.MaxUploadSize)
	assert.Empty(t, c.StaticDir)
	assert.Equal(t, []string{"*"}, c.CORSAllowOrigins)
	assert.Zero(t, c.UploadRateLimit)
	assert.Equal(t, 10, c.UploadRateBurst)
	assert.True(t, c.Compress)
	assert.True(t, c.MetricsEnabled)
	assert.Equal(t, 10*time.Second, c.ReadHeaderTimeout)
	assert.Equal(t, 2*time.Minute, c.IdleTimeout)
	assert.Equal(t, 15*time.Second, c.ShutdownTimeout)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, "admin", c.S3RootUser)
	assert.Equal(t, "secretpassword", c.S3RootPassword)
	assert.Equal(t, "filedrop", c.S3Bucket)
	assert.Equal(t, "us-east-1", c.S3Region)
	assert.Equal(t, "http://127.0.0.1:9000/", c.S3BaseEndpoint)
	assert.True(t, c.S3UsePathStyle)
	require.NoError(t, c.Validate())
}

func TestLoadConfig_UsesDefaultsWithoutOverrides(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"filedrop"}
	t.Setenv("PORT", "")
	chdir(t, t.TempDir())

	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")
	assert.Equal(t, defaultConfig(), c)
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	chdir(t, t.TempDir())
	t.Setenv("PORT", "")

	path := writeTempFile(t, "", "cfg.json", `{"addr": ":4000", "storage_dir": "from-file", "log_level": "warn"}`)
	t.Setenv("FILEDROP_STORAGE_DIR", "from-env")
	t.Setenv("FILEDROP_LOG_LEVEL", "error")
	os.Args = []string{"filedrop", "-c", path, "-l", "debug"}

	c := LoadConfig()

	assert.Equal(t, ":4000", c.Addr)
	assert.Equal(t, "from-env", c.StorageDir)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"s3 ok", func(c *Config) { c.StorageBackend = BackendS3 }, ""},
		{"empty addr", func(c *Config) { c.Addr = "" }, "addr is empty"},
		{"unknown backend", func(c *Config) { c.StorageBackend = "ftp" }, `unknown storage backend "ftp"`},
		{"fs without dir", func(c *Config) { c.StorageDir = "" }, "storage_dir"},
		{"s3 without bucket", func(c *Config) { c.StorageBackend = BackendS3; c.S3Bucket = "" }, "s3_bucket"},
		{"zero size", func(c *Config) { c.MaxUploadSize = 0 }, "max_upload_size"},
		{"negative rate", func(c *Config) { c.UploadRateLimit = -1 }, "upload_rate_limit"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaultConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
