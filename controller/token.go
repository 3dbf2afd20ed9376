package controller

import (
	"net/http"

	"github.com/Xushengqwer/go-common/core"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xushengqwer/keenmind_auth/config"
	"github.com/Xushengqwer/keenmind_auth/constants"
	"github.com/Xushengqwer/keenmind_auth/middleware"
	"github.com/Xushengqwer/keenmind_auth/models/enums"
	"github.com/Xushengqwer/keenmind_auth/models/vo"
	"github.com/Xushengqwer/keenmind_auth/service/deeplink"
	"github.com/Xushengqwer/keenmind_auth/service/login/oAuth"
	"github.com/Xushengqwer/keenmind_auth/service/strategy"
	"github.com/Xushengqwer/keenmind_auth/utils"
)

// MobileTokenController 移动端令牌会话：发起登录、登出、深链接交接与当前用户
type MobileTokenController struct {
	providers *oAuth.Registry
	states    *strategy.StateCodec
	tokens    strategy.Handlers
	mobile    config.MobileConfig
	logger    *core.ZapLogger
}

func NewMobileTokenController(
	providers *oAuth.Registry,
	states *strategy.StateCodec,
	tokens strategy.Handlers,
	mobile config.MobileConfig,
	logger *core.ZapLogger,
) *MobileTokenController {
	if mobile.Scheme == "" {
		mobile.Scheme = deeplink.DefaultScheme
	}
	if mobile.AppName == "" {
		mobile.AppName = deeplink.DefaultScheme
	}
	return &MobileTokenController{
		providers: providers,
		states:    states,
		tokens:    tokens,
		mobile:    mobile,
		logger:    logger,
	}
}

// LoginHandler 返回身份提供方授权地址
// @Summary 移动端发起登录
// @Description 生成令牌策略的 state，返回授权地址；回调成功后跳转到 /mapi/redirect
// @Tags 移动端 (Mobile)
// @Produce json
// @Param provider query string false "身份提供方，默认 github"
// @Success 200 {object} vo.RedirectVO
// @Failure 400 {object} vo.ErrorVO "未启用的身份提供方"
// @Router /mapi/login [get]
func (ctrl *MobileTokenController) LoginHandler(c *gin.Context) {
	const operation = "MobileTokenController.LoginHandler"
	providerID := c.DefaultQuery("provider", enums.ProviderGithub)

	provider, err := ctrl.providers.Get(providerID)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Unknown provider")
		return
	}
	state, err := ctrl.states.Encode(strategy.Token, providerID, constants.MobileRedirect+"?provider="+providerID)
	if err != nil {
		ctrl.logger.Error("生成 state 失败", zap.String("operation", operation), zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "Failed to start sign in")
		return
	}
	c.JSON(http.StatusOK, vo.RedirectVO{Redirect: provider.AuthCodeURL(state)})
}

// LogoutHandler 吊销令牌并清除两种名称的 Cookie
// @Summary 移动端登出
// @Description 令牌的 JTI 写入吊销名单，复制出去的令牌同时失效；无令牌时同样返回成功
// @Tags 移动端 (Mobile)
// @Produce json
// @Param Authorization header string false "Bearer <令牌>"
// @Success 200 {object} docs.EmptyResponse
// @Router /mapi/logout [get]
func (ctrl *MobileTokenController) LogoutHandler(c *gin.Context) {
	const operation = "MobileTokenController.LogoutHandler"
	if value := ctrl.tokenValue(c); value != "" {
		if err := ctrl.tokens.SignOut(c.Request.Context(), value); err != nil {
			ctrl.logger.Error("吊销令牌失败", zap.String("operation", operation), zap.Error(err))
		}
	}
	cfg := ctrl.tokens.Config()
	utils.ClearCookies(c.Writer, cfg.CookieAttrs(), cfg.CookieNames()...)
	c.JSON(http.StatusOK, gin.H{})
}

// RedirectHandler 深链接跳转页
// @Summary 唤起 App
// @Description 把令牌放进 <scheme>://login?provider=&token= 并尝试唤起 App，失败时展示提示
// @Tags 移动端 (Mobile)
// @Produce html
// @Param provider query string false "身份提供方，默认 github"
// @Success 200 {string} string "HTML"
// @Failure 403 {object} vo.ErrorVO
// @Router /mapi/redirect [get]
func (ctrl *MobileTokenController) RedirectHandler(c *gin.Context) {
	const operation = "MobileTokenController.RedirectHandler"
	providerID := c.DefaultQuery("provider", enums.ProviderGithub)

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	err := deeplink.Render(c.Writer, deeplink.Page{
		SchemeURL: deeplink.BuildURL(ctrl.mobile.Scheme, providerID, ctrl.tokenValue(c)),
		AppName:   ctrl.mobile.AppName,
	})
	if err != nil {
		ctrl.logger.Error("渲染跳转页失败", zap.String("operation", operation), zap.Error(err))
	}
}

// MeHandler 当前令牌对应的用户
// @Summary 移动端当前用户
// @Tags 移动端 (Mobile)
// @Produce json
// @Param Authorization header string false "Bearer <令牌>"
// @Success 200 {object} vo.MeVO
// @Failure 403 {object} vo.ErrorVO
// @Router /mapi/me [get]
func (ctrl *MobileTokenController) MeHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		jsonError(c, http.StatusForbidden, "Unauthorized")
		return
	}
	c.JSON(http.StatusOK, vo.MeVO{User: toSessionUser(user)})
}

// tokenValue Cookie 优先，其次 Authorization 头
func (ctrl *MobileTokenController) tokenValue(c *gin.Context) string {
	if v := middleware.CookieValue(c, ctrl.tokens.Config().CookieNames()...); v != "" {
		return v
	}
	return utils.BearerToken(c.Request)
}

// RegisterRoutes group 为 /mapi，需已挂载 TokenAuth
func (ctrl *MobileTokenController) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/login", ctrl.LoginHandler)
	group.GET("/logout", ctrl.LogoutHandler)
	group.GET("/redirect", ctrl.RedirectHandler)
	group.GET("/me", ctrl.MeHandler)
}
