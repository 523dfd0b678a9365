package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type poolHealth struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
}

type healthResponse struct {
	Status  string     `json:"status"`
	Service string     `json:"service"`
	PingMS  int64      `json:"ping_ms"`
	Pool    poolHealth `json:"pool"`
	Error   string     `json:"error,omitempty"`
}

// HealthHandler serves the database side of the health surface. It pings the
// pool with a short deadline and reports ping latency plus pool pressure, so
// an operator can tell a saturated pool from a dead database.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
		defer cancel()

		start := time.Now()
		err := pool.Ping(ctx)
		stat := pool.Stat()

		resp := healthResponse{
			Status:  "healthy",
			Service: "pharmanet",
			PingMS:  time.Since(start).Milliseconds(),
			Pool: poolHealth{
				TotalConns:    stat.TotalConns(),
				IdleConns:     stat.IdleConns(),
				AcquiredConns: stat.AcquiredConns(),
				MaxConns:      stat.MaxConns(),
			},
		}
		if err != nil {
			resp.Status = "unhealthy"
			resp.Error = err.Error()
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
		return c.JSON(http.StatusOK, resp)
	}
}
