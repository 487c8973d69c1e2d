package utils

import (
	"fmt"

	"github.com/BerniceZTT/works_end/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

// ContextUserKey gin上下文中保存当前用户的键
const ContextUserKey = "user"

// GetUser 获取当前用户信息
func GetUser(c *gin.Context) (*models.CurrentUser, error) {
	currentUser, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, fmt.Errorf("GetUser 未授权访问")
	}

	// 处理不同类型的用户信息
	switch v := currentUser.(type) {
	case *models.CurrentUser:
		return v, nil
	case models.CurrentUser:
		return &v, nil
	case jwt.MapClaims:
		return UserFromClaims(v)
	case map[string]interface{}:
		return UserFromClaims(jwt.MapClaims(v))
	default:
		return nil, fmt.Errorf("无法识别的用户信息类型: %T", currentUser)
	}
}
