package keys

import (
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestNewKey_Format(t *testing.T) {
	g := NewGenerator()

	key, err := g.NewKey(".txt")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(key, ".txt"))

	raw := strings.TrimSuffix(key, ".txt")
	assert.Len(t, raw, Size*2)
	_, err = hex.DecodeString(raw)
	assert.NoError(t, err, "key body must be hex")
}

func TestNewKey_NoExtension(t *testing.T) {
	key, err := NewGenerator().NewKey("")
	require.NoError(t, err)
	assert.Len(t, key, Size*2)
}

func TestNewKey_RandomSourceFailure(t *testing.T) {
	orig := randReader
	t.Cleanup(func() { randReader = orig })
	randReader = failingReader{}

	_, err := NewGenerator().NewKey(".png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy exhausted")
}

func TestNewKey_ShortRead(t *testing.T) {
	orig := randReader
	t.Cleanup(func() { randReader = orig })
	randReader = io.LimitReader(strings.NewReader(strings.Repeat("x", 64)), 4)

	_, err := NewGenerator().NewKey("")
	require.Error(t, err)
}

func TestNewKey_ConcurrentUnique(t *testing.T) {
	const workers, perWorker = 16, 200

	g := NewGenerator()
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				k, err := g.NewKey(".bin")
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				seen[k] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}

func TestExt(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "test.txt", ".txt"},
		{"last dot wins", "archive.tar.gz", ".gz"},
		{"upper case kept", "PHOTO.JPG", ".JPG"},
		{"no extension", "README", ""},
		{"dot file", ".bashrc", ""},
		{"trailing dot", "name.", ""},
		{"directory stripped", "../../etc/passwd.conf", ".conf"},
		{"windows path", `C:\Users\me\doc.pdf`, ".pdf"},
		{"unsafe characters", "file.t xt", ""},
		{"non ascii", "file.тхт", ""},
		{"too long", "file." + strings.Repeat("a", MaxExtLen+1), ""},
		{"max length", "file." + strings.Repeat("a", MaxExtLen), "." + strings.Repeat("a", MaxExtLen)},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Ext(tt.in))
		})
	}
}
