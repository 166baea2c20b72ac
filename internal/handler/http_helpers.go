package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/photofolio/internal/cache"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// internalError logs err and answers 500 with a generic message.
func (a *API) internalError(c *gin.Context, message string, err error) {
	a.log.Error(message, "path", c.FullPath(), "error", err)
	respondError(c, http.StatusInternalServerError, message)
}

func requiredQuery(c *gin.Context, key string) (string, bool) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		respondError(c, http.StatusBadRequest, key+" is required")
		return "", false
	}
	return value, true
}

// invalidateListings drops cached listings after a write. Failures only cost freshness.
func (a *API) invalidateListings(ctx context.Context) {
	if err := a.cache.Invalidate(ctx, cache.KeyProjectsList); err != nil {
		a.log.Warn("Failed to invalidate listing cache", "error", err)
	}
}
