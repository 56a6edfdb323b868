package netx

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readSinglePart(t *testing.T, body io.Reader, contentType string) (*multipart.Part, []byte) {
	t.Helper()

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	mr := multipart.NewReader(body, params["boundary"])
	part, err := mr.NextPart()
	require.NoError(t, err)
	data, err := io.ReadAll(part)
	require.NoError(t, err)

	_, err = mr.NextPart()
	require.ErrorIs(t, err, io.EOF)
	return part, data
}

func TestMultipartBody(t *testing.T) {
	body, ct := MultipartBody("file", "hello.txt", "text/plain", strings.NewReader("Hello"))
	defer body.Close()

	part, data := readSinglePart(t, body, ct)
	assert.Equal(t, "file", part.FormName())
	assert.Equal(t, "hello.txt", part.FileName())
	assert.Equal(t, "text/plain", part.Header.Get("Content-Type"))
	assert.Equal(t, "Hello", string(data))
}

func TestMultipartBody_EscapesFilename(t *testing.T) {
	body, ct := MultipartBody("file", `say "hi".txt`, "", strings.NewReader("x"))
	defer body.Close()

	part, _ := readSinglePart(t, body, ct)
	assert.Equal(t, `say "hi".txt`, part.FileName())
	assert.Empty(t, part.Header.Get("Content-Type"))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestMultipartBody_SourceError(t *testing.T) {
	body, _ := MultipartBody("file", "a.bin", "", failingReader{})
	defer body.Close()

	_, err := io.ReadAll(body)
	assert.EqualError(t, err, "boom")
}
