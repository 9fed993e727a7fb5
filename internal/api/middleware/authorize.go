package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/staffdesk/auth-service/internal/core/domain"
	"github.com/staffdesk/auth-service/internal/core/policy"
)

// Authorize enforces the static route authorization table against the
// role claims injected by Auth.
func Authorize() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, _ := c.Get("roles").([]domain.Role)
			if policy.Decide(c.Request().URL.Path, roles) != policy.Allow {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
