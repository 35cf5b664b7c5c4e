package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/lotworks/internal/actorcontext"
	"github.com/smallbiznis/lotworks/internal/config"
	"github.com/smallbiznis/lotworks/internal/orgcontext"
	"go.uber.org/zap"
)

const (
	HeaderOrg  = "X-Org-ID"
	HeaderUser = "X-User-ID"
)

// RequestLogger emits one structured line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// OrgContext resolves the org and acting user from headers set by the
// upstream identity layer and injects them into the request context.
// Requests with no resolvable org are rejected before any business rule
// runs. A configured default org lets single-tenant deployments skip the
// header.
func OrgContext(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := cfg.DefaultOrgID
		if raw := strings.TrimSpace(c.GetHeader(HeaderOrg)); raw != "" {
			parsed, err := snowflake.ParseString(raw)
			if err != nil {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			orgID = parsed.Int64()
		}
		if orgID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)
		if raw := strings.TrimSpace(c.GetHeader(HeaderUser)); raw != "" {
			parsed, err := snowflake.ParseString(raw)
			if err != nil {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			ctx = actorcontext.WithUserID(ctx, parsed.Int64())
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
