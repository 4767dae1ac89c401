package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/enso-app/enso/internal/dataset"
	"github.com/enso-app/enso/internal/feed"
	"github.com/enso-app/enso/internal/models"
	"github.com/enso-app/enso/internal/search"
)

// AdminHandler serves operational endpoints.
type AdminHandler struct {
	provider *dataset.Provider
	engine   *search.Engine
	manager  *feed.Manager
	repeat   int
}

func NewAdminHandler(provider *dataset.Provider, engine *search.Engine, manager *feed.Manager, repeat int) *AdminHandler {
	return &AdminHandler{
		provider: provider,
		engine:   engine,
		manager:  manager,
		repeat:   repeat,
	}
}

// ReloadDataset godoc
// @Summary Reload the dataset after an out-of-band upload
// @Description Re-reads the document store, refreshes the local search corpus and pushes the new working set into every live feed session
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /api/v1/admin/reload [post]
func (h *AdminHandler) ReloadDataset(c *gin.Context) {
	if err := h.provider.Load(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	records := h.provider.Records()
	corpus := make([]models.Item, 0, len(records))
	for _, rec := range records {
		corpus = append(corpus, feed.Normalize(rec))
	}
	h.engine.SetCorpus(corpus)

	// Each session reshuffles its own copy; per-user custom items rejoin the
	// working set on that session's next snapshot poll.
	h.manager.ResetAll(func() ([]models.Item, string) {
		return feed.Assemble(nil, h.provider.Records(), h.repeat, nil), h.provider.Identity()
	})

	c.JSON(http.StatusOK, gin.H{
		"dataset": h.provider.Identity(),
		"size":    len(records),
	})
}
