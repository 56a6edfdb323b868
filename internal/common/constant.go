package common

// UploadFieldName is the multipart form field carrying the uploaded file.
const UploadFieldName = "file"

// DefaultMaxUploadSize is the largest accepted payload, 100 MiB.
const DefaultMaxUploadSize int64 = 100 << 20

// DefaultMimeType is served when a blob has no metadata and stored when the
// client declares no content type.
const DefaultMimeType = "application/octet-stream"
