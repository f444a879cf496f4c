package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/safari-backoffice/internal/apperror"
	"github.com/iliyamo/safari-backoffice/internal/utils"
)

// JWTAuth validates a Bearer access token and stores its subject and role
// in the context as "user_id" (uint64) and "role" (string).  Protected
// routes read the operator from there.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return apperror.Unauthorized("missing bearer token")
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(raw))
			if err != nil {
				return apperror.Unauthorized("invalid token")
			}
			c.Set("user_id", claims.UserID)
			c.Set("role", claims.Role)
			return next(c)
		}
	}
}
