package controller

import (
	"errors"
	"net/http"

	"github.com/Xushengqwer/go-common/core"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xushengqwer/keenmind_auth/middleware"
	"github.com/Xushengqwer/keenmind_auth/models/vo"
	service "github.com/Xushengqwer/keenmind_auth/service/profile"
	"github.com/Xushengqwer/keenmind_auth/service/strategy"
	"github.com/Xushengqwer/keenmind_auth/utils"
)

// UserProfileController 当前用户的资料与账号自助管理，依赖数据库会话
type UserProfileController struct {
	profileService service.UserProfileService
	session        strategy.Handlers
	logger         *core.ZapLogger
}

// NewUserProfileController session 用于注销后清理当前会话与 Cookie
func NewUserProfileController(
	profileService service.UserProfileService,
	session strategy.Handlers,
	logger *core.ZapLogger,
) *UserProfileController {
	return &UserProfileController{
		profileService: profileService,
		session:        session,
		logger:         logger,
	}
}

// GetMyProfileHandler 当前用户资料
// @Summary 获取我的资料
// @Description 返回当前登录用户的基本信息及已绑定的外部账号
// @Tags 资料管理 (Profile)
// @Produce json
// @Success 200 {object} vo.ProfileVO
// @Failure 307 "未登录时跳转到 /login"
// @Failure 404 {object} vo.ErrorVO
// @Router /profile [get]
func (ctrl *UserProfileController) GetMyProfileHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	profile, err := ctrl.profileService.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			jsonError(c, http.StatusNotFound, "User not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UnlinkAccountHandler 解绑外部账号
// @Summary 解绑外部账号
// @Tags 资料管理 (Profile)
// @Produce json
// @Param provider path string true "身份提供方"
// @Param providerAccountId path string true "提供方内的账号 ID"
// @Success 200 {object} vo.SuccessVO
// @Failure 404 {object} vo.ErrorVO "账号不存在或不属于当前用户"
// @Failure 500 {object} vo.ErrorVO
// @Router /profile/accounts/{provider}/{providerAccountId} [delete]
func (ctrl *UserProfileController) UnlinkAccountHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	err := ctrl.profileService.UnlinkAccount(c.Request.Context(), user.ID, c.Param("provider"), c.Param("providerAccountId"))
	if err != nil {
		if errors.Is(err, service.ErrAccountNotOwned) {
			jsonError(c, http.StatusNotFound, "Account not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "Failed to unlink account")
		return
	}
	c.JSON(http.StatusOK, vo.SuccessVO{Success: true})
}

// DeleteMyAccountHandler 注销账号
// @Summary 注销我的账号
// @Description 解绑全部外部账号、删除全部会话并软删除用户，同时清除会话 Cookie
// @Tags 资料管理 (Profile)
// @Produce json
// @Success 200 {object} vo.SuccessVO
// @Failure 500 {object} vo.ErrorVO
// @Router /profile [delete]
func (ctrl *UserProfileController) DeleteMyAccountHandler(c *gin.Context) {
	const operation = "UserProfileController.DeleteMyAccountHandler"
	user, ok := middleware.CurrentUser(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := ctrl.profileService.DeleteOwnAccount(c.Request.Context(), user.ID); err != nil {
		jsonError(c, http.StatusInternalServerError, "Failed to delete account")
		return
	}
	cfg := ctrl.session.Config()
	utils.ClearCookies(c.Writer, cfg.CookieAttrs(), cfg.CookieNames()...)
	ctrl.logger.Info("用户自助注销", zap.String("operation", operation), zap.String("userID", user.ID.String()))
	c.JSON(http.StatusOK, vo.SuccessVO{Success: true})
}

// RegisterRoutes group 需已挂载 SessionAuth
func (ctrl *UserProfileController) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/profile", ctrl.GetMyProfileHandler)
	group.DELETE("/profile", ctrl.DeleteMyAccountHandler)
	group.DELETE("/profile/accounts/:provider/:providerAccountId", ctrl.UnlinkAccountHandler)
}
