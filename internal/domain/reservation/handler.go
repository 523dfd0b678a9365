package reservation

import (
	"errors"
	"net/http"
	"time"

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
	patientGroup := api.Group("", auth.RequireRole(auth.RolePatient, auth.RoleAdmin))
	patientGroup.POST("/reservations", h.Reserve)
	patientGroup.POST("/reservations/:id/cancel", h.Cancel)
	patientGroup.GET("/reservations/:id", h.Get)
	patientGroup.GET("/patients/:patient_id/reservations", h.ListByPatient)

	staffGroup := api.Group("", auth.RequireRole(auth.RolePharmacist, auth.RoleAdmin))
	staffGroup.POST("/reservations/:id/pickup", h.MarkPickedUp)
	staffGroup.GET("/pharmacies/:pharmacy_id/reservations", h.ListByPharmacy)
}

type reserveRequest struct {
	PatientID  uuid.UUID `json:"patient_id"`
	DrugID     uuid.UUID `json:"drug_id"`
	PharmacyID uuid.UUID `json:"pharmacy_id"`
	PickupDate time.Time `json:"pickup_date"`
}

func (h *Handler) Reserve(c echo.Context) error {
	var req reserveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.svc.Reserve(c.Request().Context(), req.PatientID, req.DrugID, req.PharmacyID, req.PickupDate)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, res)
}

type cancelRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.svc.Cancel(c.Request().Context(), id, req.PatientID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MarkPickedUp(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.MarkPickedUp(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	res, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	status := Status(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
	}
	p := pagination.FromContext(c)
	reservations, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, status, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(reservations, total, p.Limit, p.Offset))
}

func (h *Handler) ListByPharmacy(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("pharmacy_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pharmacy_id")
	}
	status := Status(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
	}
	p := pagination.FromContext(c)
	reservations, total, err := h.svc.ListByPharmacy(c.Request().Context(), pharmacyID, status, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(reservations, total, p.Limit, p.Offset))
}

// httpError maps the reservation error taxonomy onto HTTP status codes.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrPatientNotFound),
		errors.Is(err, ErrStockNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotOwner):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrPenaltyLimit),
		errors.Is(err, ErrOutOfStock),
		errors.Is(err, ErrCancelWindow),
		errors.Is(err, ErrNotActive):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidPickupDate):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
