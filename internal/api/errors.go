package api

import (
	"errors"
	"net/http"

	"flaggate/internal/repository"
	"flaggate/internal/service"

	"github.com/gin-gonic/gin"
)

// writeError maps service sentinels onto HTTP statuses at one place.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFlagNotFound), errors.Is(err, service.ErrEnvNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrVersionConflict),
		errors.Is(err, repository.ErrFlagExists),
		errors.Is(err, repository.ErrEnvExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidConfig):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
