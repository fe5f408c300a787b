package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SystemHandler struct {
	version string
}

func NewSystemHandler(version string) *SystemHandler {
	return &SystemHandler{version: version}
}

// Root godoc
// @Summary  API banner
// @Tags     system
// @Produce  json
// @Success  200 {object} map[string]string
// @Router   / [get]
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard API is running!",
		"status":  "healthy",
		"version": h.version,
	})
}

// Health godoc
// @Summary  Liveness check
// @Tags     system
// @Produce  json
// @Success  200 {object} map[string]string
// @Router   /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Test godoc
// @Summary  Connectivity check for the frontend
// @Tags     system
// @Produce  json
// @Success  200 {object} map[string]interface{}
// @Router   /api/test [get]
func (h *SystemHandler) Test(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Backend is working!",
		"data":    []string{"test1", "test2", "test3"},
	})
}
