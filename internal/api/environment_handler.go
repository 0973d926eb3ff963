package api

import (
	"net/http"

	"flaggate/internal/dto/req"
	"flaggate/internal/model"
	"flaggate/internal/service"

	"github.com/gin-gonic/gin"
)

type EnvironmentHandler struct {
	svc *service.EnvironmentService
}

func NewEnvironmentHandler(svc *service.EnvironmentService) *EnvironmentHandler {
	return &EnvironmentHandler{svc: svc}
}

func (h *EnvironmentHandler) CreateEnvironment(c *gin.Context) {
	var r req.CreateEnvironmentRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "JSON format error"})
		return
	}

	err := h.svc.CreateEnvironment(c.Request.Context(), model.Environment{
		Key:       r.Key,
		Name:      r.Name,
		Protected: r.Protected,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *EnvironmentHandler) GetEnvironment(c *gin.Context) {
	item, err := h.svc.GetEnvironment(c.Request.Context(), c.Param("key"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *EnvironmentHandler) ListEnvironments(c *gin.Context) {
	items, err := h.svc.ListEnvironments(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
