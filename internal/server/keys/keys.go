// Package keys generates the opaque storage keys handed out for uploads.
//
// A key is 16 bytes from a cryptographically secure source, hex encoded,
// followed by the upload's original extension:
//
//	9f2d4c3a5e6b1a7d0c8e2f4a6b1d3e5f.png
//
// Uniqueness is probabilistic; no collision check is made.
package keys

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
)

// Size is the number of random bytes in a key.
const Size = 16

// MaxExtLen bounds the extension (without the dot) carried into a key.
const MaxExtLen = 16

// randReader is the entropy source. crypto/rand.Reader is safe for
// concurrent use.
var randReader io.Reader = rand.Reader

// Generator produces keys. The zero value is ready to use.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// NewKey returns a fresh key ending with ext. ext is expected in the form
// returned by Ext ("" or ".png"). A failing entropy source is returned as an
// error and must fail the calling request.
func (g *Generator) NewKey(ext string) (string, error) {
	b := make([]byte, Size)
	if _, err := io.ReadFull(randReader, b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b) + ext, nil
}

// Ext returns the extension of a client supplied filename, including the
// dot, or "" when the name has none or it is not safe to embed in a key.
// Dot files such as ".bashrc" have no extension.
func Ext(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	i := strings.LastIndexByte(base, '.')
	if i <= 0 || i == len(base)-1 {
		return ""
	}

	ext := base[i+1:]
	if len(ext) > MaxExtLen {
		return ""
	}
	for _, r := range ext {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return ""
		}
	}
	return "." + ext
}
