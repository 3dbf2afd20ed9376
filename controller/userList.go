package controller

import (
	"net/http"

	"github.com/Xushengqwer/go-common/core"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/service/userList"
)

// UserListQueryController 管理后台用户列表
type UserListQueryController struct {
	queryService userList.UserListQueryService
	logger       *core.ZapLogger
}

func NewUserListQueryController(queryService userList.UserListQueryService, logger *core.ZapLogger) *UserListQueryController {
	return &UserListQueryController{queryService: queryService, logger: logger}
}

// ListUsersHandler 分页查询用户
// @Summary 用户列表 (管理员)
// @Description keyword 在用户名、昵称、邮箱、手机号上做不区分大小写的模糊匹配；status 精确匹配
// @Tags 用户管理 (User Management)
// @Produce json
// @Param query query dto.UserQueryDTO false "查询条件"
// @Success 200 {object} vo.UserListVO
// @Failure 400 {object} vo.ErrorVO "查询参数非法"
// @Failure 500 {object} vo.ErrorVO
// @Router /admin/api/users [get]
func (ctrl *UserListQueryController) ListUsersHandler(c *gin.Context) {
	const operation = "UserListQueryController.ListUsersHandler"
	var query dto.UserQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		ctrl.logger.Warn("用户列表查询参数非法", zap.String("operation", operation), zap.Error(err))
		jsonError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	out, err := ctrl.queryService.List(c.Request.Context(), &query)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "Failed to list users")
		return
	}
	c.JSON(http.StatusOK, out)
}

// RegisterRoutes group 为 /admin/api，需已挂载 SessionAuth 与 AdminGuard
func (ctrl *UserListQueryController) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/users", ctrl.ListUsersHandler)
}
