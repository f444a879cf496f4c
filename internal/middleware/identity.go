package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// actorID returns the authenticated operator as a string for log fields
// and rate-limit keys, or "anon" before JWTAuth has run.
func actorID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case uint64:
		if v != 0 {
			return strconv.FormatUint(v, 10)
		}
	case string:
		if v != "" {
			return v
		}
	}
	return "anon"
}
