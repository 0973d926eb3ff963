package api

import (
	"context"
	"net/http"

	"flaggate/internal/dto/resp"

	"github.com/gin-gonic/gin"
)

type Evaluator interface {
	Evaluate(ctx context.Context, flagKey, env, userID string) (resp.EvalResult, error)
}

type EvaluateHandler struct {
	service Evaluator
}

func NewEvaluateHandler(service Evaluator) *EvaluateHandler {
	return &EvaluateHandler{service: service}
}

// Evaluate is the hot read path. A missing flag is a decision (disabled,
// not_found), never a 404; only a store failure surfaces as an error.
func (h *EvaluateHandler) Evaluate(c *gin.Context) {
	key := c.Param("key")
	env := c.Query("env")
	userID := c.Query("user_id")
	if env == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "env is required"})
		return
	}

	result, err := h.service.Evaluate(c.Request.Context(), key, env, userID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "evaluation unavailable"})
		return
	}
	c.JSON(http.StatusOK, result)
}
