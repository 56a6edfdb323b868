// Package files orchestrates the upload lifecycle: key assignment, blob
// persistence and metadata registration on ingest, and the matching reads.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/filedrop/internal/common"
	"github.com/dmitrijs2005/filedrop/internal/logging"
	"github.com/dmitrijs2005/filedrop/internal/server/blobstore"
	"github.com/dmitrijs2005/filedrop/internal/server/keys"
	"github.com/dmitrijs2005/filedrop/internal/server/metadata"
)

type KeyGenerator interface {
	NewKey(ext string) (string, error)
}

// Upload is one incoming file as declared by the client.
type Upload struct {
	Filename string
	MimeType string
	Body     io.Reader
}

// Download is an open blob plus its record. Record is nil for blobs that
// have no metadata.
type Download struct {
	Object *blobstore.Object
	Record *metadata.Record
}

type Service struct {
	keys    KeyGenerator
	blobs   blobstore.Store
	meta    metadata.Store
	policy  AcceptancePolicy
	maxSize int64
	now     func() time.Time
	logger  logging.Logger
}

type Option func(*Service)

// WithPolicy replaces the default AcceptAll policy.
func WithPolicy(p AcceptancePolicy) Option {
	return func(s *Service) { s.policy = p }
}

// WithMaxUploadSize sets the payload limit in bytes. Zero or less disables it.
func WithMaxUploadSize(n int64) Option {
	return func(s *Service) { s.maxSize = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(k KeyGenerator, b blobstore.Store, m metadata.Store, l logging.Logger, opts ...Option) *Service {
	s := &Service{
		keys:    k,
		blobs:   b,
		meta:    m,
		policy:  AcceptAll{},
		maxSize: common.DefaultMaxUploadSize,
		now:     time.Now,
		logger:  l.With("module", "files"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxUploadSize returns the configured payload limit.
func (s *Service) MaxUploadSize() int64 {
	return s.maxSize
}

// Ingest stores up under a new key and registers its record. The record is
// created only after the blob was fully written; the size is what was
// actually persisted.
func (s *Service) Ingest(ctx context.Context, up Upload) (metadata.Record, error) {
	if up.Body == nil {
		return metadata.Record{}, common.ErrorNoFile
	}

	mimeType := up.MimeType
	if mimeType == "" {
		mimeType = common.DefaultMimeType
	}

	if err := s.policy.Accept(up.Filename, mimeType); err != nil {
		s.logger.Warn(ctx, "upload rejected", "filename", up.Filename, "mimetype", mimeType, "error", err)
		return metadata.Record{}, err
	}

	key, err := s.keys.NewKey(keys.Ext(up.Filename))
	if err != nil {
		s.logger.Error(ctx, "key generation failed", "error", err)
		return metadata.Record{}, fmt.Errorf("new key: %w", err)
	}

	n, err := s.blobs.Write(ctx, key, up.Body, s.maxSize)
	if err != nil {
		if errors.Is(err, common.ErrorPayloadTooLarge) {
			s.logger.Warn(ctx, "upload too large", "key", key, "limit", s.maxSize)
		} else {
			s.logger.Error(ctx, "blob write failed", "key", key, "error", err)
		}
		return metadata.Record{}, fmt.Errorf("write blob: %w", err)
	}

	rec := metadata.Record{
		Key:          key,
		OriginalName: up.Filename,
		MimeType:     mimeType,
		Size:         n,
		UploadedAt:   s.now().UTC(),
	}
	if err := s.meta.Put(ctx, rec); err != nil {
		// the blob stays behind unreferenced
		s.logger.Error(ctx, "metadata registration failed", "key", key, "error", err)
		return metadata.Record{}, fmt.Errorf("register metadata: %w", err)
	}

	s.logger.Info(ctx, "file stored", "key", key, "size", n, "mimetype", mimeType)
	return rec, nil
}

// Open returns the blob for key. A missing blob is not found even if a
// record exists; a missing record only leaves Download.Record nil.
func (s *Service) Open(ctx context.Context, key string) (*Download, error) {
	obj, err := s.blobs.Open(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "blob open failed", "key", key, "error", err)
		}
		return nil, err
	}

	rec, err := s.meta.Get(ctx, key)
	switch {
	case err == nil:
		return &Download{Object: obj, Record: &rec}, nil
	case errors.Is(err, common.ErrorNotFound):
		return &Download{Object: obj}, nil
	default:
		_ = obj.Close()
		s.logger.Error(ctx, "metadata lookup failed", "key", key, "error", err)
		return nil, fmt.Errorf("lookup metadata: %w", err)
	}
}

// Info returns the record for key without touching the blob store.
func (s *Service) Info(ctx context.Context, key string) (metadata.Record, error) {
	rec, err := s.meta.Get(ctx, key)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "metadata lookup failed", "key", key, "error", err)
	}
	return rec, err
}
