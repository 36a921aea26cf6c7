package patient

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medrec/medrec/internal/platform/apperr"
	"github.com/medrec/medrec/internal/platform/auth"
	"github.com/medrec/medrec/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the patient endpoints onto the authenticated group.
// Reads and writes require ADMIN or STAFF; delete is ADMIN only.
func (h *Handler) RegisterRoutes(protected *echo.Group) {
	staff := protected.Group("/patients", auth.RequireRole(auth.RoleAdmin, auth.RoleStaff))
	staff.GET("", h.List)
	staff.GET("/:id", h.Get)
	staff.POST("", h.Create)
	staff.PUT("/:id", h.Update)

	admin := protected.Group("/patients", auth.RequireRole(auth.RoleAdmin))
	admin.DELETE("/:id", h.Delete)
}

// patientID parses the path parameter. A malformed id is indistinguishable
// from a missing patient, so both report not found.
func patientID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.ErrNotFound
	}
	return id, nil
}

func (h *Handler) List(c echo.Context) error {
	page := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), page.Limit, page.Offset)
	if err != nil {
		return apperr.JSON(c, err)
	}
	if items == nil {
		items = []*Patient{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, page.Limit, page.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": p})
}

func (h *Handler) Create(c echo.Context) error {
	var pl Payload
	if err := c.Bind(&pl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON data provided.")
	}
	p, err := h.svc.Create(c.Request().Context(), &pl)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"data": p})
}

func (h *Handler) Update(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	var pl Payload
	if err := c.Bind(&pl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON data provided.")
	}
	p, err := h.svc.Update(c.Request().Context(), id, &pl)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": p})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := patientID(c)
	if err != nil {
		return apperr.JSON(c, err)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apperr.JSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
