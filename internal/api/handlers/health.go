package handlers

import (
	"context"
	"net/http"
	"time"

	"contentdesk/internal/models"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingerFunc adapts a function to the Pinger interface
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) PingContext(ctx context.Context) error {
	return f(ctx)
}

type HealthHandler struct {
	stores map[string]Pinger
}

// NewHealthHandler checks each named store on every request; nil entries are skipped
func NewHealthHandler(stores map[string]Pinger) *HealthHandler {
	return &HealthHandler{stores: stores}
}

// Health godoc
// @Summary Health check
// @Description Returns the health status of the API and its dependencies
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Failure 503 {object} models.ErrorResponse "Service unavailable"
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	for name, store := range h.stores {
		if store == nil {
			continue
		}
		if err := store.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: name + " connection failed"})
			return
		}
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC(),
	})
}
