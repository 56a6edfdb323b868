package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/filedrop/internal/logging"
	"github.com/dmitrijs2005/filedrop/internal/server/blobstore"
	"github.com/dmitrijs2005/filedrop/internal/server/config"
	"github.com/dmitrijs2005/filedrop/internal/server/files"
	"github.com/dmitrijs2005/filedrop/internal/server/keys"
	"github.com/dmitrijs2005/filedrop/internal/server/metadata"
)

type testEnv struct {
	server *Server
	blobs  *blobstore.FSStore
	meta   *metadata.MemoryStore
	cfg    *config.Config
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.Addr = "127.0.0.1:0"
	return cfg
}

func newTestEnv(t *testing.T, cfg *config.Config, opts ...files.Option) *testEnv {
	t.Helper()

	blobs, err := blobstore.NewFSStore(t.TempDir())
	require.NoError(t, err)
	meta := metadata.NewMemoryStore()

	opts = append([]files.Option{files.WithMaxUploadSize(cfg.MaxUploadSize)}, opts...)
	svc := files.NewService(keys.NewGenerator(), blobs, meta, logging.Nop(), opts...)

	s, err := NewServer(cfg, svc, logging.Nop(), WithMetrics(NewMetrics(meta.Len)))
	require.NoError(t, err)

	return &testEnv{server: s, blobs: blobs, meta: meta, cfg: cfg}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

// uploadRequest builds a multipart POST /upload with one file part.
func uploadRequest(t *testing.T, field, filename, contentType string, body []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	pw, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = pw.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(r).Decode(&v))
	return v
}
