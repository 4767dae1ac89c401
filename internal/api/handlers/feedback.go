package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	middlewares "github.com/enso-app/enso/internal/middleware"
	"github.com/enso-app/enso/internal/models"
	"github.com/enso-app/enso/internal/store"
)

type FeedbackHandler struct {
	store *store.Store
}

func NewFeedbackHandler(st *store.Store) *FeedbackHandler {
	return &FeedbackHandler{store: st}
}

// Submit godoc
// @Summary Submit feedback
// @Description Persists a free-text submission; the caller is attached when authenticated
// @Tags feedback
// @Accept json
// @Produce json
// @Param request body models.FeedbackRequest true "Feedback"
// @Success 201 {object} models.Feedback
// @Failure 400 {object} map[string]string
// @Router /api/v1/feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req models.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fb, err := h.store.CreateFeedback(middlewares.GetUserID(c), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, fb)
}
