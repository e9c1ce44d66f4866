package middleware

import (
	"cbt_cms/internal/client"
	"cbt_cms/internal/model"
	"cbt_cms/internal/util"
	"cbt_cms/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware checks the CMS token and hands the upstream token on to the
// exam API client through the request context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, secret)
		if err != nil {
			logger.Log.Debug("JWT解析错误", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Request = c.Request.WithContext(client.WithToken(c.Request.Context(), claims.UpstreamToken))
		c.Next()
	}
}

// RoleMiddleware lets the request through when the viewer holds any of roles.
// superadmin passes every check.
func RoleMiddleware(roles ...model.RoleName) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		viewer := user.Viewer()
		hasRole := viewer.IsSuperadmin()
		for _, role := range roles {
			if hasRole {
				break
			}
			hasRole = viewer.HasRole(role)
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
