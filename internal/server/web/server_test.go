package web

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/filedrop/internal/logging"
	"github.com/dmitrijs2005/filedrop/internal/models"
)

func TestMetrics_Endpoint(t *testing.T) {
	env := newTestEnv(t, testConfig())

	rec := env.do(uploadRequest(t, "file", "m.txt", "text/plain", []byte("metrics")))
	require.Equal(t, http.StatusOK, rec.Code)
	key := decode[models.UploadResponse](t, rec.Body).Filename

	rec = env.do(httptest.NewRequest(http.MethodGet, "/file/"+key, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `filedrop_request_duration_seconds_count{method="POST",operation="upload",status="200"} 1`)
	assert.Contains(t, body, `filedrop_request_duration_seconds_count{method="GET",operation="file",status="200"} 1`)
	assert.Contains(t, body, "filedrop_uploaded_bytes_total 7")
	assert.Contains(t, body, "filedrop_served_bytes_total 7")
	assert.Contains(t, body, "filedrop_stored_records 1")
}

func TestMetrics_ErrorStatusIsRecorded(t *testing.T) {
	env := newTestEnv(t, testConfig())

	env.do(httptest.NewRequest(http.MethodGet, "/info/missing.txt", nil))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `filedrop_request_duration_seconds_count{method="GET",operation="info",status="404"} 1`)
}

func TestMetrics_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = false
	env := newTestEnv(t, cfg)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompress_JSONOnly(t *testing.T) {
	prev := compressMinSize
	compressMinSize = 0
	t.Cleanup(func() { compressMinSize = prev })

	env := newTestEnv(t, testConfig())

	rec := env.do(uploadRequest(t, "file", "z.txt", "text/plain", []byte("plain bytes")))
	require.Equal(t, http.StatusOK, rec.Code)
	key := decode[models.UploadResponse](t, rec.Body).Filename

	req := httptest.NewRequest(http.MethodGet, "/info/"+key, nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec = env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	info := decode[models.FileInfo](t, zr)
	assert.Equal(t, "z.txt", info.OriginalName)

	req = httptest.NewRequest(http.MethodGet, "/file/"+key, nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec = env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "plain bytes", rec.Body.String())

	payload := []byte(`{"items":[` + strings.Repeat(`{"n":1},`, 500) + `{"n":1}]}`)
	rec = env.do(uploadRequest(t, "file", "d.json", "application/json", payload))
	require.Equal(t, http.StatusOK, rec.Code)
	jsonKey := decode[models.UploadResponse](t, rec.Body).Filename

	req = httptest.NewRequest(http.MethodGet, "/file/"+jsonKey, nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec = env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, strconv.Itoa(len(payload)), rec.Header().Get("Content-Length"))
	assert.Equal(t, payload, rec.Body.Bytes())

	req = httptest.NewRequest(http.MethodGet, "/info/unknown", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec = env.do(req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	zr, err = gzip.NewReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "File not found", decode[models.ErrorResponse](t, zr).Error)
}

func TestUploadRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.UploadRateLimit = 0.001
	cfg.UploadRateBurst = 1
	env := newTestEnv(t, cfg)

	rec := env.do(uploadRequest(t, "file", "a.txt", "text/plain", []byte("1")))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(uploadRequest(t, "file", "a.txt", "text/plain", []byte("2")))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many uploads", decode[models.ErrorResponse](t, rec.Body).Error)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS(t *testing.T) {
	cfg := testConfig()
	cfg.CORSAllowOrigins = []string{"https://drop.example"}
	env := newTestEnv(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://drop.example")
	rec := env.do(req)
	assert.Equal(t, "https://drop.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = env.do(req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t, testConfig())

	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, rec.Header().Get("X-Request-Id"), 36)
}

func TestStaticDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>drop</h1>"), 0o600))

	cfg := testConfig()
	cfg.StaticDir = dir
	env := newTestEnv(t, cfg)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>drop</h1>")

	rec = env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRun_ServesAndStopsOnContextCancel(t *testing.T) {
	env := newTestEnv(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- env.server.Run(ctx)
	}()

	select {
	case <-env.server.Ready():
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + env.server.Addr() + "/health")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	cfg := testConfig()
	cfg.Addr = "127.0.0.1:99999"

	s, err := NewServer(cfg, brokenService{}, logging.Nop())
	require.NoError(t, err)

	assert.Error(t, s.Run(context.Background()))
}
