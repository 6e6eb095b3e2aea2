package util

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Thinkbigalways/pethud2.0/internal/model"
)

// ValidateToken 校验令牌并还原用户身份。
// 令牌由身份协作方签发，本服务只做校验
func ValidateToken(secret, tokenString string) (model.Identity, error) {
	if tokenString == "" {
		return model.Identity{}, errors.New("令牌为空")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("不支持的签名算法")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return model.Identity{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return model.Identity{}, errors.New("无效的令牌")
	}

	id, _ := claims["id"].(string)
	if id == "" {
		return model.Identity{}, errors.New("无效的用户ID")
	}
	username, _ := claims["username"].(string)
	email, _ := claims["email"].(string)

	return model.Identity{ID: id, Username: username, Email: email}, nil
}
