package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness and, when Ping is set, whether the store
// is reachable.
type HealthHandler struct {
	Ping func(ctx context.Context) error
}

// Health returns "ok", or 503 when the store ping fails.
func (h *HealthHandler) Health(c echo.Context) error {
	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			c.Logger().Warnf("health: store unreachable: %v", err)
			return c.String(http.StatusServiceUnavailable, "store unavailable")
		}
	}
	return c.String(http.StatusOK, "ok")
}
