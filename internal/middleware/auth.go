package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Thinkbigalways/pethud2.0/internal/errors"
	"github.com/Thinkbigalways/pethud2.0/internal/model"
	"github.com/Thinkbigalways/pethud2.0/internal/util"
)

const identityKey = "identity"

// extractToken 从 Authorization 头或 token cookie 中提取令牌
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	if token, err := c.Cookie("token"); err == nil {
		return token
	}
	return ""
}

// AuthMiddleware 校验会话令牌并把用户身份放入请求上下文
func AuthMiddleware(secret string, blacklist *util.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		token := extractToken(c)
		if token == "" {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
			c.Abort()
			return
		}

		if blacklist != nil && blacklist.IsRevoked(ctx, token) {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Token has been revoked"))
			c.Abort()
			return
		}

		identity, err := util.ValidateToken(secret, token)
		if err != nil {
			util.Logger.Warn("令牌校验失败",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			errors.HandleError(c, errors.Wrap(errors.ErrInvalidToken, "Invalid or expired token", err))
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// CurrentIdentity 从请求上下文取出认证用户身份
func CurrentIdentity(c *gin.Context) (model.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return model.Identity{}, false
	}
	identity, ok := v.(model.Identity)
	return identity, ok
}
