package web

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dmitrijs2005/filedrop/internal/logging"
)

// compressMinSize is the smallest response gzhttp will compress.
var compressMinSize = gzhttp.DefaultMinSize

func requestLogger(l logging.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:        true,
		LogURI:           true,
		LogMethod:        true,
		LogLatency:       true,
		LogRemoteIP:      true,
		LogRequestID:     true,
		LogContentLength: true,
		LogResponseSize:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l.Info(c.Request().Context(), "request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
				"bytes_in", v.ContentLength,
				"bytes_out", v.ResponseSize,
			)
			return nil
		},
	})
}

// compress gzips JSON responses for clients that accept it. Requests for
// which skip returns true bypass the wrapper entirely, which keeps blob bodies
// byte-exact whatever content type they were stored with. Errors are
// rendered inside the wrapper so error bodies go through the same writer.
func compress(skip middleware.Skipper) (echo.MiddlewareFunc, error) {
	wrap, err := gzhttp.NewWrapper(
		gzhttp.MinSize(compressMinSize),
		gzhttp.ContentTypes([]string{echo.MIMEApplicationJSON}),
	)
	if err != nil {
		return nil, err
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip != nil && skip(c) {
				return next(c)
			}
			wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				c.SetRequest(r)
				c.SetResponse(echo.NewResponse(w, c.Echo()))
				if err := next(c); err != nil {
					c.Error(err)
				}
			})).ServeHTTP(c.Response(), c.Request())
			return nil
		}
	}, nil
}

// isBlobRoute matches the routes that send stored payloads.
func isBlobRoute(c echo.Context) bool {
	return c.Path() == "/file/:key"
}
