package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/safari-backoffice/internal/apperror"
)

// RequireRole rejects requests whose "role" (set by JWTAuth) is not one
// of roles with 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return apperror.Forbidden("forbidden")
			}
			return next(c)
		}
	}
}
