// Package blobstore persists and retrieves raw upload payloads by key.
//
// Two backends implement Store: FSStore keeps one file per key under a root
// directory, S3Store keeps one object per key in a bucket. Both stage the
// payload first and only make it visible under its key once the whole
// stream was read within the size limit, so a failed or oversized write
// never leaves a blob behind under the requested key.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/filedrop/internal/common"
)

// maxKeyLen mirrors the usual filesystem name limit.
const maxKeyLen = 255

// Store is the blob persistence contract.
type Store interface {
	// Write consumes r and stores it under key. A positive limit caps the
	// payload size; exceeding it yields common.ErrorPayloadTooLarge and
	// nothing is stored. The returned count is the number of bytes persisted.
	Write(ctx context.Context, key string, r io.Reader, limit int64) (int64, error)

	// Exists reports whether a blob is stored under key. Retrieval does not
	// call it: Open alone decides presence, so there is no window between a
	// check and the read.
	Exists(ctx context.Context, key string) (bool, error)

	// Open returns the stored blob or an error wrapping common.ErrorNotFound.
	// The caller must close the returned Object.
	Open(ctx context.Context, key string) (*Object, error)
}

// Object is an open blob.
type Object struct {
	io.ReadCloser
	Size    int64
	ModTime time.Time
}

// validateKey rejects keys that could escape the store's namespace.
func validateKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("empty key: %w", common.ErrorInvalidKey)
	case len(key) > maxKeyLen:
		return fmt.Errorf("key too long: %w", common.ErrorInvalidKey)
	case strings.HasPrefix(key, "."):
		return fmt.Errorf("key %q: %w", key, common.ErrorInvalidKey)
	}

	for _, r := range key {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '.' || r == '-' || r == '_') {
			return fmt.Errorf("key %q: %w", key, common.ErrorInvalidKey)
		}
	}
	return nil
}

// ctxReader fails reads once ctx is done, so an abandoned upload stops
// consuming its body.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// copyLimited copies r into dst. With a positive limit it reads at most
// limit+1 bytes and reports common.ErrorPayloadTooLarge when the extra byte
// shows up, without buffering the payload.
func copyLimited(ctx context.Context, dst io.Writer, r io.Reader, limit int64) (int64, error) {
	src := io.Reader(ctxReader{ctx: ctx, r: r})
	if limit > 0 {
		src = &io.LimitedReader{R: src, N: limit + 1}
	}

	n, err := io.Copy(dst, src)
	if err != nil {
		return n, err
	}
	if limit > 0 && n > limit {
		return n, fmt.Errorf("more than %d bytes: %w", limit, common.ErrorPayloadTooLarge)
	}
	return n, nil
}
