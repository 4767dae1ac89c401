package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	middlewares "github.com/enso-app/enso/internal/middleware"
)

// Me godoc
// @Summary The caller's resolved identity
// @Tags user
// @Produce json
// @Success 200 {object} models.UserDescriptor
// @Failure 401 {object} map[string]string
// @Router /api/v1/me [get]
func Me(c *gin.Context) {
	user := middlewares.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, user)
}
