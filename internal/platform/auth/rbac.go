package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Authorize reports whether a caller with the given roles may perform an
// operation guarded by the required allow-list. An empty allow-list admits any
// authenticated caller.
func Authorize(roles, required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, req := range required {
		for _, has := range roles {
			if has == req {
				return true
			}
		}
	}
	return false
}

// RequireRole returns middleware enforcing that the caller's role snapshot
// intersects the allow-list. It runs after TokenMiddleware, so a missing
// identity here means missing roles, not a missing token: the result is 403,
// never 401.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRoles := RolesFromContext(c.Request().Context())
			if !Authorize(userRoles, roles) {
				return echo.NewHTTPError(http.StatusForbidden,
					fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
			}
			return next(c)
		}
	}
}
