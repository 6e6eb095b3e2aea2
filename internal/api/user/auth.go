package user

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Thinkbigalways/pethud2.0/internal/errors"
	"github.com/Thinkbigalways/pethud2.0/internal/util"
)

// AuthHandler 只负责会话注销。令牌签发由身份协作方完成
type AuthHandler struct {
	secret    string
	blacklist *util.TokenBlacklist
}

func NewAuthHandler(secret string, blacklist *util.TokenBlacklist) *AuthHandler {
	return &AuthHandler{secret: secret, blacklist: blacklist}
}

// Logout 将当前令牌加入黑名单，直到其自然过期
func (h *AuthHandler) Logout(c *gin.Context) {
	token := ""
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
	}
	if token == "" {
		if cookie, err := c.Cookie("token"); err == nil {
			token = cookie
		}
	}
	if token == "" {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
		return
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(h.secret), nil
	})
	if err != nil || !parsed.Valid {
		errors.HandleError(c, errors.Wrap(errors.ErrInvalidToken, "Invalid or expired token", err))
		return
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}

	h.blacklist.Revoke(c.Request.Context(), token, expiresAt)
	errors.HandleSuccess(c, nil, "Logged out")
}
