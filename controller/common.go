package controller

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/keenmind_auth/constants"
	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/vo"
	"github.com/Xushengqwer/keenmind_auth/service/strategy"
	"github.com/Xushengqwer/keenmind_auth/utils"
)

// clientMeta 建立会话时记录的请求来源
func clientMeta(c *gin.Context) strategy.ClientMeta {
	ua := c.Request.UserAgent()
	return strategy.ClientMeta{
		UserAgent: ua,
		IPAddress: utils.ClientIP(c.Request.Header),
		IsMobile:  utils.IsMobileUserAgent(ua),
	}
}

// redirectToLogin 认证失败统一送回登录页并带上错误标记
func redirectToLogin(c *gin.Context, code string) {
	c.Redirect(http.StatusTemporaryRedirect, constants.LoginPath+"?"+url.Values{"error": {code}}.Encode())
}

// safeRedirect 只接受站内路径，其余一律回到 fallback
func safeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}

func jsonError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, vo.ErrorVO{Error: msg})
}

func toSessionUser(u *dto.AdapterUser) vo.SessionUserVO {
	return vo.SessionUserVO{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Image:  u.Image,
		Status: string(u.Status),
	}
}
