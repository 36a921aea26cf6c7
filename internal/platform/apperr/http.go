package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// JSON writes the HTTP response for a service-layer error. Unrecognized errors
// become a generic 500; the original error is still returned so the request
// logger records it.
func JSON(c echo.Context, err error) error {
	if ve, ok := AsValidation(err); ok {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "Validation failed",
			"details": ve.Fields,
		})
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
	case errors.Is(err, ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Insufficient permissions"})
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Resource not found"})
	case errors.Is(err, ErrConflict):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if he, ok := err.(*echo.HTTPError); ok {
		return he
	}

	_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	return err
}
