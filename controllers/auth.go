package controllers

import (
	"net/http"

	"github.com/BerniceZTT/works_end/models"
	"github.com/BerniceZTT/works_end/utils"

	"github.com/gin-gonic/gin"
)

// roleCapabilities 各角色在提案流程中可执行的操作，前端据此显示按钮
var roleCapabilities = map[models.UserRole][]string{
	models.UserRoleSDO:      {"createProposal", "setStatus", "recordTender", "recordWorkOrder"},
	models.UserRoleENGINEER: {"appendProgress", "removeProgress", "setStatus"},
	models.UserRoleAPPROVER: {"decide"},
	models.UserRoleVIEWER:   {},
}

// ValidateToken 验证Token，返回当前用户和可执行的操作
func ValidateToken(c *gin.Context) {
	user, err := utils.GetUser(c)
	if err != nil {
		utils.HandleError(c, utils.CreateUnauthorizedError())
		return
	}

	if user.ID == "" || user.Role == "" {
		utils.Logger.Info().Str("id", user.ID).Msg("Token验证失败: 用户信息不完整")
		utils.ErrorResponse(c, "无效的token: 用户信息不完整", http.StatusUnauthorized)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
		"capabilities": capabilitiesFor(user.Role),
	}, "")
}

func capabilitiesFor(role models.UserRole) []string {
	if role == models.UserRoleSUPER_ADMIN {
		seen := map[string]bool{}
		all := []string{}
		for _, r := range []models.UserRole{models.UserRoleSDO, models.UserRoleENGINEER, models.UserRoleAPPROVER} {
			for _, capability := range roleCapabilities[r] {
				if !seen[capability] {
					seen[capability] = true
					all = append(all, capability)
				}
			}
		}
		return all
	}
	if caps, ok := roleCapabilities[role]; ok {
		return caps
	}
	return []string{}
}
