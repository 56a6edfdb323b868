// Package models holds the JSON bodies exchanged between the filedrop
// server and its clients.
package models

import "time"

// TimestampLayout renders UTC timestamps as ISO-8601 with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	URL          string `json:"url"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimetype"`
}

// FileInfo is returned by GET /info/{key}.
type FileInfo struct {
	OriginalName string `json:"originalName"`
	Filename     string `json:"filename"`
	MimeType     string `json:"mimetype"`
	Size         int64  `json:"size"`
	UploadDate   string `json:"uploadDate"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FormatTimestamp formats t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
