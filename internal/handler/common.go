// Package handler exposes the back-office workflows over HTTP.  Handlers
// bind the request, pass the authenticated operator to a service and
// render its result; failures are returned to echo and rendered by
// ErrorHandler.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/safari-backoffice/internal/apperror"
)

// getUserID returns the operator ID stored by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, apperror.Unauthorized("unauthorized")
}

// pathID parses the :id path parameter.  Anything that is not a positive
// integer cannot name a booking, so it is reported as not found.
func pathID(c echo.Context, resource string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.NotFound(resource)
	}
	return id, nil
}

// flexID accepts an ID sent either as a JSON number or as a numeric
// string.  Empty strings and null decode to zero.
type flexID uint64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return errors.New("invalid id " + strconv.Quote(s))
	}
	*f = flexID(n)
	return nil
}

// optDate accepts "2006-01-02" or an RFC 3339 timestamp.  Empty strings
// and null leave Time nil.
type optDate struct {
	Time *time.Time
}

func (d *optDate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		d.Time = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = nil
		return nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			d.Time = &t
			return nil
		}
	}
	return errors.New("invalid date " + strconv.Quote(s))
}

// bind decodes the request body, reporting malformed input with message.
func bind(c echo.Context, dst any, message string) error {
	if err := c.Bind(dst); err != nil {
		return apperror.Validation(message)
	}
	return nil
}

// ErrorHandler renders every error returned by a handler.  Application
// errors use their public message; echo errors (unknown route, wrong
// method) keep their status; server errors are logged with their cause
// and shown as "Server error".
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		req := c.Request()

		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
			msg, ok := he.Message.(string)
			if !ok {
				msg = http.StatusText(he.Code)
			}
			respond(c, he.Code, echo.Map{"error": msg})
			return
		}

		status, body := apperror.Public(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.Error(err),
			)
		}
		respond(c, status, body)
	}
}

func respond(c echo.Context, status int, body any) {
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}
