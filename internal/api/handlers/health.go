package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/enso-app/enso/internal/dataset"
	"github.com/enso-app/enso/internal/search"
	"github.com/enso-app/enso/internal/store"
)

// HealthHandler reports service health.
type HealthHandler struct {
	store    *store.Store
	provider *dataset.Provider
	engine   *search.Engine
	remote   bool
}

func NewHealthHandler(st *store.Store, provider *dataset.Provider, engine *search.Engine, remote bool) *HealthHandler {
	return &HealthHandler{
		store:    st,
		provider: provider,
		engine:   engine,
		remote:   remote,
	}
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

// Health godoc
// @Summary Health check
// @Description Reports store reachability, dataset size and search mode
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	checks := make(map[string]string)
	status := "ok"
	httpStatus := http.StatusOK

	if count, err := h.store.CountItems(); err != nil {
		checks["store"] = "error: " + err.Error()
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = fmt.Sprintf("ok (%d items)", count)
	}

	checks["dataset"] = fmt.Sprintf("%d records (%s)", len(h.provider.Records()), h.provider.Identity())

	if h.remote {
		checks["search"] = "remote"
	} else {
		checks["search"] = "local"
	}
	size, expired := h.engine.CacheStats()
	checks["search_cache"] = fmt.Sprintf("%d entries, %d expired", size, expired)

	c.JSON(httpStatus, HealthResponse{
		Status:    status,
		Checks:    checks,
		Timestamp: time.Now().Unix(),
	})
}
