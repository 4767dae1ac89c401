package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	middlewares "github.com/enso-app/enso/internal/middleware"
	"github.com/enso-app/enso/internal/models"
	"github.com/enso-app/enso/internal/store"
)

// ItemsHandler manages user-submitted custom items.
type ItemsHandler struct {
	store *store.Store
}

func NewItemsHandler(st *store.Store) *ItemsHandler {
	return &ItemsHandler{store: st}
}

// ListCustomItems godoc
// @Summary List the caller's custom items
// @Tags items
// @Produce json
// @Success 200 {array} models.CustomItem
// @Failure 401 {object} map[string]string
// @Router /api/v1/items/custom [get]
func (h *ItemsHandler) ListCustomItems(c *gin.Context) {
	items, err := h.store.GetCustomItems(middlewares.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if items == nil {
		items = []models.CustomItem{}
	}
	c.JSON(http.StatusOK, items)
}

// CreateCustomItem godoc
// @Summary Submit a custom item
// @Tags items
// @Accept json
// @Produce json
// @Param request body models.CustomItemRequest true "Custom item"
// @Success 201 {object} models.CustomItem
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/items/custom [post]
func (h *ItemsHandler) CreateCustomItem(c *gin.Context) {
	var req models.CustomItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.store.CreateCustomItem(middlewares.GetUserID(c), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, item)
}

// DeleteCustomItem godoc
// @Summary Delete one of the caller's custom items
// @Tags items
// @Produce json
// @Param id path string true "Custom item id"
// @Success 204
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/items/custom/{id} [delete]
func (h *ItemsHandler) DeleteCustomItem(c *gin.Context) {
	deleted, err := h.store.DeleteCustomItem(middlewares.GetUserID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "custom item not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
