package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"eventbooking/internal/delivery/http/helpers"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the data payload for GET /healthz.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

type HealthController struct {
	Logger   *slog.Logger
	Database HealthChecker
}

func NewHealthController(logger *slog.Logger, db HealthChecker) *HealthController {
	return &HealthController{Logger: logger, Database: db}
}

// Health godoc
// @Summary Health check
// @Description Reports whether the database is reachable.
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.status: ok"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Router /healthz [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if err := c.Database.Ping(r.Context()); err != nil {
		c.Logger.WarnContext(r.Context(), "health check failed", "err", err)
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeServiceUnavailable, "database unreachable")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "ok"})
}
