package utils

import (
	"fmt"
	"time"

	"github.com/BerniceZTT/works_end/models"

	"github.com/dgrijalva/jwt-go"
)

var jwtSecret = []byte("your-secret-key")

// SetJWTSecret 设置签名密钥，启动时由配置注入
func SetJWTSecret(key string) {
	if key != "" {
		jwtSecret = []byte(key)
	}
}

// GenerateToken 生成JWT令牌
func GenerateToken(user models.CurrentUser, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"id":       user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      time.Now().Add(ttl).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		Logger.Error().Err(err).Msg("生成token失败")
		return "", err
	}
	return tokenString, nil
}

// ParseToken 解析和验证JWT令牌
func ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	// 验证token并提取claims
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("无效的token")
}

// UserFromClaims 从token负载提取当前用户
func UserFromClaims(claims jwt.MapClaims) (*models.CurrentUser, error) {
	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("无效的用户ID")
	}

	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return nil, fmt.Errorf("无效的用户角色")
	}

	username, ok := claims["username"].(string)
	if !ok {
		// 检查是否有 "name" 字段作为备选
		if name, ok := claims["name"].(string); ok {
			username = name
		} else {
			return nil, fmt.Errorf("无效的用户名")
		}
	}

	return &models.CurrentUser{
		ID:       id,
		Role:     models.UserRole(role),
		Username: username,
	}, nil
}

// HasRole 检查用户角色是否在允许列表中，超级管理员始终通过
func HasRole(role models.UserRole, allowed ...models.UserRole) bool {
	if role == models.UserRoleSUPER_ADMIN {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
