package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/filedrop/internal/common"
	"github.com/dmitrijs2005/filedrop/internal/logging"
	"github.com/dmitrijs2005/filedrop/internal/models"
	"github.com/dmitrijs2005/filedrop/internal/server/files"
)

// multipartOverhead is the room left for boundaries, part headers and other
// form fields on top of the payload limit.
const multipartOverhead = 1 << 20

type handler struct {
	svc     FileService
	logger  logging.Logger
	metrics *Metrics
	now     func() time.Time
}

func (h *handler) upload(c echo.Context) error {
	req := c.Request()
	ctx := req.Context()

	if limit := h.svc.MaxUploadSize(); limit > 0 {
		req.Body = http.MaxBytesReader(c.Response(), req.Body, limit+multipartOverhead)
	}

	mr, err := req.MultipartReader()
	if err != nil {
		return uploadError(fmt.Errorf("%w: %v", common.ErrorValidation, err))
	}

	part, err := nextFilePart(mr)
	if err != nil {
		return uploadError(err)
	}
	defer part.Close()

	rec, err := h.svc.Ingest(ctx, files.Upload{
		Filename: part.FileName(),
		MimeType: part.Header.Get(echo.HeaderContentType),
		Body:     part,
	})
	if err != nil {
		return uploadError(err)
	}
	h.metrics.UploadedBytes.Add(float64(rec.Size))

	return c.JSON(http.StatusOK, models.UploadResponse{
		Success:      true,
		Message:      "File uploaded successfully",
		URL:          fmt.Sprintf("%s://%s/file/%s", c.Scheme(), req.Host, url.PathEscape(rec.Key)),
		Filename:     rec.Key,
		OriginalName: rec.OriginalName,
		Size:         rec.Size,
		MimeType:     rec.MimeType,
	})
}

// nextFilePart advances to the first part of the "file" field that carries a
// filename. Other parts are skipped unread.
func nextFilePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, common.ErrorNoFile
		}
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
		}
		if part.FormName() == common.UploadFieldName && part.FileName() != "" {
			return part, nil
		}
		_ = part.Close()
	}
}

func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, common.ErrorNoFile):
		return echo.NewHTTPError(http.StatusBadRequest, "No file uploaded").SetInternal(err)
	case errors.Is(err, common.ErrorValidation):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid upload request").SetInternal(err)
	case errors.Is(err, common.ErrorPayloadTooLarge), errors.As(err, &maxErr):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File too large").SetInternal(err)
	case errors.Is(err, common.ErrorRejected):
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "File type not accepted").SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Upload failed").SetInternal(err)
	}
}

func (h *handler) file(c echo.Context) error {
	key := c.Param("key")

	d, err := h.svc.Open(c.Request().Context(), key)
	if err != nil {
		return readError(err, "Failed to serve file")
	}
	defer d.Object.Close()

	contentType := common.DefaultMimeType
	header := c.Response().Header()
	if d.Record != nil {
		contentType = d.Record.MimeType
		header.Set(echo.HeaderContentDisposition, contentDisposition(d.Record.OriginalName))
	}
	header.Set(echo.HeaderXContentTypeOptions, "nosniff")
	if d.Object.Size > 0 {
		header.Set(echo.HeaderContentLength, strconv.FormatInt(d.Object.Size, 10))
	}

	if c.Request().Method == http.MethodHead {
		header.Set(echo.HeaderContentType, contentType)
		return c.NoContent(http.StatusOK)
	}

	counted := &countingReader{r: d.Object}
	err = c.Stream(http.StatusOK, contentType, counted)
	h.metrics.ServedBytes.Add(float64(counted.n))
	if err != nil {
		// headers are gone already, nothing left to report to the client
		h.logger.Warn(c.Request().Context(), "blob transfer interrupted", "key", key, "sent", counted.n, "error", err)
	}
	return nil
}

func (h *handler) info(c echo.Context) error {
	rec, err := h.svc.Info(c.Request().Context(), c.Param("key"))
	if err != nil {
		return readError(err, "Failed to get file info")
	}

	return c.JSON(http.StatusOK, models.FileInfo{
		OriginalName: rec.OriginalName,
		Filename:     rec.Key,
		MimeType:     rec.MimeType,
		Size:         rec.Size,
		UploadDate:   models.FormatTimestamp(rec.UploadedAt),
	})
}

func (h *handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "OK",
		Timestamp: models.FormatTimestamp(h.now()),
	})
}

func readError(err error, failure string) error {
	if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorInvalidKey) {
		return echo.NewHTTPError(http.StatusNotFound, "File not found").SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, failure).SetInternal(err)
}

// contentDisposition builds an inline disposition carrying name. The quoted
// filename is an ASCII fallback; names outside printable ASCII are also
// sent as an RFC 5987 filename* parameter.
func contentDisposition(name string) string {
	var b strings.Builder
	extended := false

	b.WriteString(`inline; filename="`)
	for _, r := range name {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			b.WriteByte('_')
		case r > 0x7e:
			b.WriteByte('_')
			extended = true
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')

	if extended {
		b.WriteString("; filename*=UTF-8''")
		b.WriteString(encodeRFC5987(name))
	}
	return b.String()
}

func encodeRFC5987(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || strings.IndexByte("!#$&+-.^_`|~", c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
