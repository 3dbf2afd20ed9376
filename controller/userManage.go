package controller

import (
	"net/http"

	"github.com/Xushengqwer/go-common/core"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xushengqwer/keenmind_auth/models/ids"
	"github.com/Xushengqwer/keenmind_auth/models/vo"
	service "github.com/Xushengqwer/keenmind_auth/service/userManage"
)

// UserManageController 管理员锁定/解锁用户
type UserManageController struct {
	userService service.UserManageService
	logger      *core.ZapLogger
}

func NewUserManageController(userService service.UserManageService, logger *core.ZapLogger) *UserManageController {
	return &UserManageController{userService: userService, logger: logger}
}

// LockUserHandler 锁定用户
// @Summary 锁定用户 (管理员)
// @Description 状态置为 LOCKED，已有会话不会被删除，但访问受保护路径会被拦截
// @Tags 用户管理 (User Management)
// @Produce json
// @Param id path string true "用户 ID（十进制字符串）"
// @Success 200 {object} vo.SuccessVO
// @Failure 400 {object} vo.ErrorVO "ID 非法"
// @Failure 500 {object} vo.ErrorVO
// @Router /admin/api/users/{id}/lock [post]
func (ctrl *UserManageController) LockUserHandler(c *gin.Context) {
	id, ok := ctrl.parseID(c)
	if !ok {
		return
	}
	if err := ctrl.userService.Lock(c.Request.Context(), id); err != nil {
		jsonError(c, http.StatusInternalServerError, "Failed to lock user")
		return
	}
	c.JSON(http.StatusOK, vo.SuccessVO{Success: true})
}

// UnlockUserHandler 解锁用户
// @Summary 解锁用户 (管理员)
// @Tags 用户管理 (User Management)
// @Produce json
// @Param id path string true "用户 ID（十进制字符串）"
// @Success 200 {object} vo.SuccessVO
// @Failure 400 {object} vo.ErrorVO "ID 非法"
// @Failure 500 {object} vo.ErrorVO
// @Router /admin/api/users/{id}/unlock [post]
func (ctrl *UserManageController) UnlockUserHandler(c *gin.Context) {
	id, ok := ctrl.parseID(c)
	if !ok {
		return
	}
	if err := ctrl.userService.Unlock(c.Request.Context(), id); err != nil {
		jsonError(c, http.StatusInternalServerError, "Failed to unlock user")
		return
	}
	c.JSON(http.StatusOK, vo.SuccessVO{Success: true})
}

func (ctrl *UserManageController) parseID(c *gin.Context) (ids.ID, bool) {
	id, err := ids.Decode(c.Param("id"))
	if err != nil {
		ctrl.logger.Warn("用户 ID 非法", zap.String("id", c.Param("id")))
		jsonError(c, http.StatusBadRequest, "Invalid user id")
		return 0, false
	}
	return id, true
}

// RegisterRoutes group 为 /admin/api
func (ctrl *UserManageController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/users/:id/lock", ctrl.LockUserHandler)
	group.POST("/users/:id/unlock", ctrl.UnlockUserHandler)
}
