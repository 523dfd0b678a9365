package pharmacist

import (
	"context"
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
	api.GET("/pharmacists", h.List)
	api.GET("/pharmacists/:id", h.Get)
	api.GET("/pharmacies/:pharmacy_id/pharmacists", h.ListByPharmacy)
	api.POST("/pharmacists/:id/ratings", h.Rate, auth.RequireRole(auth.RolePatient, auth.RoleAdmin))
	api.GET("/pharmacists/:id/scheduled", h.HasScheduled, auth.RequireRole(auth.RoleAdmin, auth.RolePharmacist))

	writeGroup := api.Group("", auth.RequireRole(auth.RoleAdmin))
	writeGroup.POST("/pharmacists", h.Create)
	writeGroup.PUT("/pharmacists/:id", h.Update)
	writeGroup.DELETE("/pharmacists/:id", h.Delete)
	writeGroup.DELETE("/pharmacists/:id/cascade", h.DeleteCascade)
}

type createRequest struct {
	Pharmacist
	PharmacyID uuid.UUID `json:"pharmacy_id"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &req.Pharmacist, req.PharmacyID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, req.Pharmacist)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "pharmacist not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	pharmacists, total, err := h.svc.List(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(pharmacists, total, p.Limit, p.Offset))
}

func (h *Handler) ListByPharmacy(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("pharmacy_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pharmacy_id")
	}
	p := pagination.FromContext(c)
	pharmacists, total, err := h.svc.ListByPharmacy(c.Request().Context(), pharmacyID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(pharmacists, total, p.Limit, p.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p Pharmacist
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	if err := h.svc.Update(c.Request().Context(), &p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "pharmacist not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	return h.deleteWith(c, h.svc.Delete)
}

func (h *Handler) DeleteCascade(c echo.Context) error {
	return h.deleteWith(c, h.svc.DeleteCascade)
}

func (h *Handler) deleteWith(c echo.Context, fn func(ctx context.Context, id uuid.UUID) error) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := fn(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "pharmacist not found")
		case errors.Is(err, ErrHasAppointments):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// HasScheduled reports whether the pharmacist still has scheduled
// appointments, optionally narrowed to one pharmacy via ?pharmacy_id=.
func (h *Handler) HasScheduled(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pharmacyID := uuid.Nil
	if raw := c.QueryParam("pharmacy_id"); raw != "" {
		pharmacyID, err = uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid pharmacy_id")
		}
	}
	has, err := h.svc.HasScheduledAppointments(c.Request().Context(), id, pharmacyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"has_scheduled": has})
}

type rateRequest struct {
	Rating float64 `json:"rating"`
}

func (h *Handler) Rate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req rateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Rate(c.Request().Context(), id, req.Rating); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "pharmacist not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
