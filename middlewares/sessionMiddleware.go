package middlewares

import (
	"context"
	"net/http"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
	"github.com/gin-gonic/gin"
)

func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			c.Next()
			return
		}
		username, exists, err := config.GetRedisValue("Token:" + token)
		if err != nil || !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := context.WithValue(c.Request.Context(), utils.ContextKeyToken, token)
		ctx = context.WithValue(ctx, utils.ContextKeyUsername, username)

		// enrich with the session user's id and admin flag
		if parsed, err := utils.JwtValidate(token); err == nil && parsed.Valid {
			if claims, ok := parsed.Claims.(*utils.JwtCustomClaim); ok {
				ctx = utils.SetUserIdInContext(ctx, claims.ID)
				ctx = utils.SetIsAdminInContext(ctx, claims.Role == "admin")
			}
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
