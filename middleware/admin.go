package middleware

import (
	"net/http"

	"github.com/Xushengqwer/go-common/core"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xushengqwer/keenmind_auth/constants"
	"github.com/Xushengqwer/keenmind_auth/service/admin"
)

// AdminGuard 必须放在 SessionAuth 之后。
// 未登录 → 307 /login；非管理员或权限查询失败 → 307 /profile。
func AdminGuard(checker admin.PermissionChecker, logger *core.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Redirect(http.StatusTemporaryRedirect, constants.LoginPath)
			c.Abort()
			return
		}
		isAdmin, err := checker.IsAdmin(c.Request.Context(), user.ID)
		if err != nil {
			logger.Error("查询管理员权限失败", zap.String("userID", user.ID.String()), zap.Error(err))
		}
		if err != nil || !isAdmin {
			c.Redirect(http.StatusTemporaryRedirect, constants.ProfilePath)
			c.Abort()
			return
		}
		c.Next()
	}
}
