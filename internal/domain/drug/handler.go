package drug

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
	api.GET("/drugs", h.List)
	api.GET("/drugs/:id", h.Get)
	api.GET("/drugs/:id/pharmacies", h.PharmaciesForDrug)
	api.GET("/pharmacies/:pharmacy_id/stock", h.ListStock)

	writeGroup := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RolePharmacist))
	writeGroup.POST("/drugs", h.Create)
	writeGroup.PUT("/drugs/:id", h.Update)
	writeGroup.DELETE("/drugs/:id", h.Delete, auth.RequireRole(auth.RoleAdmin))
	writeGroup.POST("/drugs/:id/substitutes", h.AddSubstitute)
	writeGroup.PUT("/pharmacies/:pharmacy_id/stock/:drug_id", h.UpsertStock)
}

type createRequest struct {
	Drug
	SubstituteIDs []uuid.UUID `json:"substitute_ids"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &req.Drug, req.SubstituteIDs); err != nil {
		if errors.Is(err, ErrSubstituteNotFound) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, req.Drug)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "drug not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)

	var (
		drugs []*Drug
		total int
		err   error
	)
	if name := c.QueryParam("name"); name != "" {
		drugs, total, err = h.svc.Search(c.Request().Context(), name, p.Limit, p.Offset)
	} else {
		drugs, total, err = h.svc.List(c.Request().Context(), p.Limit, p.Offset)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(drugs, total, p.Limit, p.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var d Drug
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d.ID = id
	if err := h.svc.Update(c.Request().Context(), &d); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "drug not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "drug not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type addSubstituteRequest struct {
	SubstituteID uuid.UUID `json:"substitute_id"`
}

func (h *Handler) AddSubstitute(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req addSubstituteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AddSubstitute(c.Request().Context(), id, req.SubstituteID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "drug not found")
		case errors.Is(err, ErrSubstituteNotFound):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type upsertStockRequest struct {
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

func (h *Handler) UpsertStock(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("pharmacy_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pharmacy_id")
	}
	drugID, err := uuid.Parse(c.Param("drug_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid drug_id")
	}
	var req upsertStockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entry := &StockEntry{
		PharmacyID: pharmacyID,
		DrugID:     drugID,
		Quantity:   req.Quantity,
		Price:      req.Price,
	}
	if err := h.svc.UpsertStock(c.Request().Context(), entry); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "drug not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, entry)
}

func (h *Handler) PharmaciesForDrug(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pharmacies, err := h.svc.PharmaciesForDrug(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "drug not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pharmacies)
}

func (h *Handler) ListStock(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("pharmacy_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pharmacy_id")
	}
	p := pagination.FromContext(c)
	entries, total, err := h.svc.ListStockForPharmacy(c.Request().Context(), pharmacyID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(entries, total, p.Limit, p.Offset))
}
