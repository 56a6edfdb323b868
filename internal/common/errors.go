// Package common defines sentinel errors and constants shared by the
// server, its stores and the client. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorInvalidKey    = errors.New("invalid key")

	// Ingest errors.
	ErrorNoFile          = errors.New("no file uploaded")
	ErrorValidation      = errors.New("validation error")
	ErrorPayloadTooLarge = errors.New("payload too large")
	ErrorRejected        = errors.New("payload rejected by policy")

	// Generic failure.
	ErrorInternal = errors.New("internal error")
)
