package pharmacy

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pharmanet/pharmanet/internal/platform/auth"
	"github.com/pharmanet/pharmanet/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/pharmacies", h.List)
	api.GET("/pharmacies/:pharmacy_id", h.Get)

	writeGroup := api.Group("", auth.RequireRole(auth.RoleAdmin))
	writeGroup.POST("/pharmacies", h.Create)
	writeGroup.PUT("/pharmacies/:pharmacy_id", h.Update)
	writeGroup.DELETE("/pharmacies/:pharmacy_id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var p Pharmacy
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("pharmacy_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pharmacy_id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "pharmacy not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)

	params := map[string]string{}
	if name := c.QueryParam("name"); name != "" {
		params["name"] = name
	}
	if city := c.QueryParam("city"); city != "" {
		params["city"] = city
	}

	var (
		pharmacies []*Pharmacy
		total      int
		err        error
	)
	if len(params) > 0 {
		pharmacies, total, err = h.svc.Search(c.Request().Context(), params, p.Limit, p.Offset)
	} else {
		pharmacies, total, err = h.svc.List(c.Request().Context(), p.Limit, p.Offset)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(pharmacies, total, p.Limit, p.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("pharmacy_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pharmacy_id")
	}
	var p Pharmacy
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	if err := h.svc.Update(c.Request().Context(), &p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "pharmacy not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("pharmacy_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pharmacy_id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "pharmacy not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
