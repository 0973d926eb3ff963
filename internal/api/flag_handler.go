package api

import (
	"context"
	"net/http"
	"strconv"

	"flaggate/internal/dto/req"
	"flaggate/internal/dto/resp"
	"flaggate/internal/model"

	"github.com/gin-gonic/gin"
)

type FlagProvider interface {
	CreateFlag(ctx context.Context, cfg model.FlagConfig) (int, error)
	UpdateFlag(ctx context.Context, cfg model.FlagConfig, expectedVersion int) (int, error)
	DeleteFlag(ctx context.Context, envKey, flagKey string) error
	GetFlag(ctx context.Context, envKey, flagKey string) (*resp.FlagItem, error)
	ListFlags(ctx context.Context, envKey, search string) ([]resp.FlagItem, error)
	AuditHistory(ctx context.Context, envKey, flagKey string) ([]resp.AuditLogItem, error)
	RecentAudits(ctx context.Context, limit int) ([]resp.AuditLogItem, error)
	Health(ctx context.Context) error
}

type FlagHandler struct {
	service FlagProvider
}

func NewFlagHandler(service FlagProvider) *FlagHandler {
	return &FlagHandler{service: service}
}

func (h *FlagHandler) CreateFlag(c *gin.Context) {
	var r req.CreateFlagRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "JSON format error"})
		return
	}

	version, err := h.service.CreateFlag(c.Request.Context(), model.FlagConfig{
		Key:               r.Key,
		EnvKey:            r.Env,
		Type:              r.Type,
		Enabled:           r.Enabled,
		RolloutPercentage: r.RolloutPercentage,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp.MutationResponse{Version: version})
}

func (h *FlagHandler) UpdateFlag(c *gin.Context) {
	key := c.Param("key")
	var r req.UpdateFlagRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "JSON format error"})
		return
	}

	version, err := h.service.UpdateFlag(c.Request.Context(), model.FlagConfig{
		Key:               key,
		EnvKey:            r.Env,
		Type:              r.Type,
		Enabled:           r.Enabled,
		RolloutPercentage: r.RolloutPercentage,
	}, r.ExpectedVersion)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.MutationResponse{Version: version})
}

func (h *FlagHandler) DeleteFlag(c *gin.Context) {
	key := c.Param("key")
	env := c.Query("env")
	if env == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "env is required"})
		return
	}

	if err := h.service.DeleteFlag(c.Request.Context(), env, key); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FlagHandler) GetFlag(c *gin.Context) {
	key := c.Param("key")
	env := c.Query("env")
	if env == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "env is required"})
		return
	}

	item, err := h.service.GetFlag(c.Request.Context(), env, key)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *FlagHandler) ListFlags(c *gin.Context) {
	env := c.Query("env")
	search := c.Query("search")

	items, err := h.service.ListFlags(c.Request.Context(), env, search)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *FlagHandler) GetFlagAudits(c *gin.Context) {
	key := c.Param("key")
	env := c.Query("env")

	audits, err := h.service.AuditHistory(c.Request.Context(), env, key)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, audits)
}

func (h *FlagHandler) RecentAudits(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be in [1,200]"})
		return
	}

	audits, err := h.service.RecentAudits(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, audits)
}

func (h *FlagHandler) HealthCheck(c *gin.Context) {
	if err := h.service.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
