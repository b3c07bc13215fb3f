package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/task-tracker-api/internal/middleware"
	"github.com/noah-isme/task-tracker-api/internal/models"
	appErrors "github.com/noah-isme/task-tracker-api/pkg/errors"
	"github.com/noah-isme/task-tracker-api/pkg/response"
)

// requireClaims returns the caller's claims or writes 401 and reports false.
func requireClaims(c *gin.Context) (*models.JWTClaims, bool) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}

// analyticsMeta builds the meta block for cached analytics responses.
func analyticsMeta(c *gin.Context, cacheHit bool, start time.Time) map[string]interface{} {
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if _, ok := meta["processing_time_ms"]; !ok {
		meta["processing_time_ms"] = time.Since(start).Milliseconds()
	}
	return meta
}
