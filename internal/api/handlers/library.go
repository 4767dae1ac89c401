package handlers

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	middlewares "github.com/enso-app/enso/internal/middleware"
	"github.com/enso-app/enso/internal/models"
	"github.com/enso-app/enso/internal/store"
)

// LibraryHandler manages saved items and like tallies.
type LibraryHandler struct {
	store *store.Store
}

func NewLibraryHandler(st *store.Store) *LibraryHandler {
	return &LibraryHandler{store: st}
}

// ListSaved godoc
// @Summary List the caller's saved items
// @Tags library
// @Produce json
// @Success 200 {array} models.SavedItem
// @Failure 401 {object} map[string]string
// @Router /api/v1/library/saved [get]
func (h *LibraryHandler) ListSaved(c *gin.Context) {
	items, err := h.store.GetSavedItems(middlewares.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if items == nil {
		items = []models.SavedItem{}
	}
	c.JSON(http.StatusOK, items)
}

// SaveItem godoc
// @Summary Save an item to the caller's collection
// @Tags library
// @Accept json
// @Produce json
// @Param request body models.SavedItemRequest true "Item to save"
// @Success 200 {object} models.SavedItem
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/library/saved [put]
func (h *LibraryHandler) SaveItem(c *gin.Context) {
	var req models.SavedItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.store.SaveItem(middlewares.GetUserID(c), req.Item)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, saved)
}

// DeleteSaved godoc
// @Summary Remove an item from the caller's collection
// @Tags library
// @Produce json
// @Param key query string true "Saved item key"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/library/saved [delete]
func (h *LibraryHandler) DeleteSaved(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	deleted, err := h.store.DeleteSavedItem(middlewares.GetUserID(c), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "saved item not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleLike godoc
// @Summary Toggle the caller's like on an item
// @Description The response count stays optimistic when the store write fails; the failure is logged, not rolled back
// @Tags library
// @Accept json
// @Produce json
// @Param request body models.LikeToggleRequest true "Like toggle"
// @Success 200 {object} models.LikeToggleResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/library/likes [post]
func (h *LibraryHandler) ToggleLike(c *gin.Context) {
	var req models.LikeToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := req.Item.LikeKey()
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item has no usable like key"})
		return
	}

	delta := 1
	if !req.Liked {
		delta = -1
	}

	count, err := h.store.AdjustLikeCount(key, delta)
	if err != nil {
		log.Printf("failed to persist like for %s: %v", key, err)
		optimistic := 0
		if req.Liked {
			optimistic = 1
		}
		c.JSON(http.StatusOK, models.LikeToggleResponse{
			Key:    key,
			Count:  optimistic,
			Liked:  req.Liked,
			Synced: false,
		})
		return
	}

	c.JSON(http.StatusOK, models.LikeToggleResponse{
		Key:    key,
		Count:  count,
		Liked:  req.Liked,
		Synced: true,
	})
}

// GetLikeCounts godoc
// @Summary Like tallies for a set of keys
// @Tags library
// @Produce json
// @Param keys query string true "Comma-separated like keys"
// @Success 200 {object} map[string]int
// @Failure 400 {object} map[string]string
// @Router /api/v1/library/likes [get]
func (h *LibraryHandler) GetLikeCounts(c *gin.Context) {
	keysParam := c.Query("keys")
	if keysParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keys is required"})
		return
	}

	// Tallies are stored under escaped keys (LikeKey); the query string
	// arrives once-decoded, so each key is re-escaped before the lookup.
	keys := make([]string, 0, 8)
	for _, key := range strings.Split(keysParam, ",") {
		if key == "" {
			continue
		}
		keys = append(keys, url.QueryEscape(key))
	}
	counts, err := h.store.GetLikeCounts(keys)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, counts)
}
