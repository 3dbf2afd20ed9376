package controller

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xushengqwer/keenmind_auth/constants"
	"github.com/Xushengqwer/keenmind_auth/metrics"
	"github.com/Xushengqwer/keenmind_auth/middleware"
	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/enums"
	"github.com/Xushengqwer/keenmind_auth/models/vo"
	"github.com/Xushengqwer/keenmind_auth/service/login"
	"github.com/Xushengqwer/keenmind_auth/service/login/auth"
	"github.com/Xushengqwer/keenmind_auth/service/login/oAuth"
	"github.com/Xushengqwer/keenmind_auth/service/strategy"
	"github.com/Xushengqwer/keenmind_auth/utils"
)

// AuthController 浏览器登录流程：发起、回调、登出与会话查询。
// 回调同时服务于移动端，策略由 state 决定。
type AuthController struct {
	providers *oAuth.Registry
	states    *strategy.StateCodec
	selector  *strategy.Selector
	linking   login.LinkingService
	email     auth.EmailAuthService // 未配置 SMTP 时为 nil
	limiter   *middleware.RateLimiter
	recorder  metrics.Recorder
	logger    *core.ZapLogger
}

func NewAuthController(
	providers *oAuth.Registry,
	states *strategy.StateCodec,
	selector *strategy.Selector,
	linking login.LinkingService,
	email auth.EmailAuthService,
	limiter *middleware.RateLimiter,
	recorder metrics.Recorder,
	logger *core.ZapLogger,
) *AuthController {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &AuthController{
		providers: providers,
		states:    states,
		selector:  selector,
		linking:   linking,
		email:     email,
		limiter:   limiter,
		recorder:  recorder,
		logger:    logger,
	}
}

// SignIn 发起 OAuth 登录（数据库会话策略）
// @Summary 发起第三方登录
// @Description 生成签名 state 并写入绑定浏览器的 nonce Cookie，然后 307 跳转到身份提供方授权页，redirectTo 会在回调成功后使用
// @Tags 认证 (Auth)
// @Param provider path string true "身份提供方" Enums(github, wechat)
// @Param redirectTo query string false "登录成功后跳转的站内路径"
// @Success 307 "跳转到身份提供方"
// @Failure 429 {object} docs.SwaggerAPIErrorResponseString "同一 IP 请求过于频繁"
// @Router /api/auth/signin/{provider} [get]
func (ctrl *AuthController) SignIn(c *gin.Context) {
	const operation = "AuthController.SignIn"
	providerID := c.Param("provider")

	provider, err := ctrl.providers.Get(providerID)
	if err != nil {
		ctrl.logger.Warn("未启用的身份提供方", zap.String("operation", operation), zap.String("provider", providerID))
		redirectToLogin(c, constants.ErrorConfiguration)
		return
	}
	handlers, err := ctrl.selector.Handlers(strategy.Database)
	if err != nil {
		ctrl.logger.Error("会话策略不可用", zap.String("operation", operation), zap.Error(err))
		redirectToLogin(c, constants.ErrorConfiguration)
		return
	}
	st := ctrl.states.NewState(strategy.Database, providerID, safeRedirect(c.Query("redirectTo"), ""))
	state, err := ctrl.states.Seal(st)
	if err != nil {
		ctrl.logger.Error("生成 state 失败", zap.String("operation", operation), zap.Error(err))
		redirectToLogin(c, constants.ErrorConfiguration)
		return
	}
	// nonce 同时写进发起登录的浏览器，回调时两边必须一致
	cfg := handlers.Config()
	utils.SetSessionCookie(c.Writer, cfg.NonceCookieAttrs(), cfg.NonceCookieName(), st.Nonce, time.Now().Add(ctrl.states.MaxAge()))
	c.Redirect(http.StatusTemporaryRedirect, provider.AuthCodeURL(state))
}

// SignInEmail 发送魔法链接
// @Summary 邮件登录
// @Description 向邮箱发送一次性登录链接，链接 24 小时内有效且只能使用一次
// @Tags 认证 (Auth)
// @Accept json
// @Produce json
// @Param body body dto.EmailSignInData true "邮箱"
// @Success 200 {object} docs.OKResponse
// @Failure 400 {object} vo.ErrorVO "缺少或非法的邮箱"
// @Failure 429 {object} vo.ErrorVO "同一邮箱发送过于频繁"
// @Failure 429 {object} docs.SwaggerAPIErrorResponseString "同一 IP 请求过于频繁"
// @Failure 500 {object} vo.ErrorVO
// @Router /api/auth/signin/email [post]
func (ctrl *AuthController) SignInEmail(c *gin.Context) {
	const operation = "AuthController.SignInEmail"
	if ctrl.email == nil {
		jsonError(c, http.StatusServiceUnavailable, "Email sign-in is not configured")
		return
	}

	var req dto.EmailSignInData
	if err := c.ShouldBind(&req); err != nil || req.Email == "" {
		jsonError(c, http.StatusBadRequest, "Email is required")
		return
	}
	state, err := ctrl.states.EncodeLink(safeRedirect(req.RedirectTo, ""))
	if err != nil {
		ctrl.logger.Error("生成 state 失败", zap.String("operation", operation), zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "Failed to send verification email")
		return
	}

	err = ctrl.email.RequestLink(c.Request.Context(), req.Email, state, utils.ClientIP(c.Request.Header))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, auth.ErrInvalidEmail):
		jsonError(c, http.StatusBadRequest, "Invalid email")
	case errors.Is(err, auth.ErrCooldown):
		jsonError(c, http.StatusTooManyRequests, "Please wait before requesting another link")
	default:
		jsonError(c, http.StatusInternalServerError, "Failed to send verification email")
	}
}

// Callback 身份提供方回调。
// state 决定会话策略，这里是两种策略唯一的分流点。
// @Summary 登录回调
// @Description 校验 state，完成账号关联并按 state 中的策略建立会话，最后跳转到 redirectTo
// @Tags 认证 (Auth)
// @Param provider path string true "身份提供方" Enums(github, wechat, email)
// @Param state query string true "签名的 state"
// @Param code query string false "OAuth 授权码"
// @Param token query string false "邮件登录令牌"
// @Param email query string false "邮件登录邮箱"
// @Success 307 "登录成功后跳转；失败时跳转到 /login?error=<Code>"
// @Router /api/auth/callback/{provider} [get]
func (ctrl *AuthController) Callback(c *gin.Context) {
	const operation = "AuthController.Callback"
	providerID := c.Param("provider")

	decode := ctrl.states.Decode
	if providerID == enums.ProviderEmail {
		decode = ctrl.states.DecodeLink
	}
	st, err := decode(c.Request.FormValue("state"))
	if err != nil || st.Provider != providerID {
		ctrl.logger.Warn("state 校验失败", zap.String("operation", operation), zap.String("provider", providerID), zap.Error(err))
		ctrl.recorder.RecordSignIn(providerID, "unknown", metrics.ResultDenied)
		redirectToLogin(c, constants.ErrorOAuthCallback)
		return
	}

	var (
		handlers strategy.Handlers
		current  *dto.AdapterUser
		target   string
	)
	switch st.Strategy {
	case strategy.Database:
		handlers, err = ctrl.selector.Handlers(strategy.Database)
		if err != nil {
			break
		}
		// 邮件链接可能在任何浏览器里打开，凭的是邮箱所有权，不参与绑定当前会话
		if providerID != enums.ProviderEmail && !ctrl.nonceMatches(c, handlers.Config(), st.Nonce) {
			ctrl.logger.Warn("state 不属于当前浏览器", zap.String("operation", operation), zap.String("provider", providerID))
			ctrl.recorder.RecordSignIn(providerID, st.Strategy.String(), metrics.ResultDenied)
			redirectToLogin(c, constants.ErrorOAuthCallback)
			return
		}
		current = middleware.ResolveSession(c, handlers, ctrl.logger)
		target = safeRedirect(st.RedirectTo, constants.HomePath)
	case strategy.Token:
		// 移动端每次都是全新登录，不与浏览器会话关联
		handlers, err = ctrl.selector.Handlers(strategy.Token)
		target = safeRedirect(st.RedirectTo, constants.MobileRedirect+"?provider="+providerID)
	default:
		err = errors.New("unsupported strategy")
	}
	if err != nil {
		ctrl.logger.Error("会话策略不可用", zap.String("operation", operation), zap.String("strategy", st.Strategy.String()), zap.Error(err))
		redirectToLogin(c, constants.ErrorConfiguration)
		return
	}
	logFields := []zap.Field{
		zap.String("operation", operation),
		zap.String("provider", providerID),
		zap.String("strategy", st.Strategy.String()),
	}

	user, code := ctrl.authenticate(c, providerID, current)
	if code != "" {
		ctrl.recorder.RecordSignIn(providerID, st.Strategy.String(), metrics.ResultDenied)
		redirectToLogin(c, code)
		return
	}

	// 已登录用户绑定新身份时沿用当前会话
	if current == nil || current.ID != user.ID {
		issued, err := handlers.Establish(c.Request.Context(), user, clientMeta(c))
		if err != nil {
			ctrl.logger.Error("建立会话失败", append(logFields, zap.Error(err))...)
			ctrl.recorder.RecordSignIn(providerID, st.Strategy.String(), metrics.ResultError)
			redirectToLogin(c, constants.ErrorOAuthCallback)
			return
		}
		cfg := handlers.Config()
		utils.SetSessionCookie(c.Writer, cfg.CookieAttrs(), cfg.CookieName, issued.Value, issued.Expires)
	}

	ctrl.recorder.RecordSignIn(providerID, st.Strategy.String(), metrics.ResultSuccess)
	ctrl.logger.Info("登录成功", append(logFields, zap.String("userID", user.ID.String()))...)
	c.Redirect(http.StatusTemporaryRedirect, target)
}

// nonceMatches 比对并清除发起登录时写入的 nonce Cookie
func (ctrl *AuthController) nonceMatches(c *gin.Context, cfg strategy.Config, nonce string) bool {
	name := cfg.NonceCookieName()
	got := middleware.CookieValue(c, name)
	utils.ClearCookies(c.Writer, cfg.NonceCookieAttrs(), name)
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(nonce)) == 1
}

// authenticate 返回登录用户，失败时返回 /login 的错误标记
func (ctrl *AuthController) authenticate(c *gin.Context, providerID string, current *dto.AdapterUser) (*dto.AdapterUser, string) {
	const operation = "AuthController.authenticate"
	ctx := c.Request.Context()

	if providerID == enums.ProviderEmail {
		if ctrl.email == nil {
			return nil, constants.ErrorConfiguration
		}
		user, err := ctrl.email.Verify(ctx, c.Request.FormValue("email"), c.Request.FormValue("token"))
		if err != nil {
			ctrl.logger.Warn("邮件登录校验失败", zap.String("operation", operation), zap.Error(err))
			return nil, constants.ErrorVerification
		}
		return user, ""
	}

	provider, err := ctrl.providers.Get(providerID)
	if err != nil {
		return nil, constants.ErrorConfiguration
	}
	if e := c.Request.FormValue("error"); e != "" {
		ctrl.logger.Info("用户在身份提供方取消授权", zap.String("operation", operation), zap.String("provider", providerID), zap.String("error", e))
		return nil, constants.ErrorOAuthCallback
	}
	code := c.Request.FormValue("code")
	if code == "" {
		return nil, constants.ErrorOAuthCallback
	}

	profile, account, err := provider.Exchange(ctx, code)
	if err != nil {
		ctrl.logger.Warn("换取身份信息失败", zap.String("operation", operation), zap.String("provider", providerID), zap.Error(err))
		return nil, constants.ErrorOAuthCallback
	}
	user, err := ctrl.linking.SignIn(ctx, login.SignInInput{Current: current, Account: *account, Profile: *profile})
	if err != nil {
		if errors.Is(err, login.ErrAccountLinkedElsewhere) {
			return nil, constants.ErrorAccountLinked
		}
		return nil, constants.ErrorOAuthCallback
	}
	return user, ""
}

// SignOut 数据库会话登出
// @Summary 登出
// @Description 删除当前数据库会话并清除 Cookie，未登录时同样返回成功
// @Tags 认证 (Auth)
// @Produce json
// @Success 200 {object} docs.EmptyResponse
// @Router /api/auth/signout [post]
func (ctrl *AuthController) SignOut(c *gin.Context) {
	const operation = "AuthController.SignOut"
	handlers, err := ctrl.selector.Handlers(strategy.Database)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "Sign out failed")
		return
	}
	cfg := handlers.Config()
	if value := middleware.CookieValue(c, cfg.CookieName); value != "" {
		if err := handlers.SignOut(c.Request.Context(), value); err != nil {
			ctrl.logger.Warn("删除会话失败", zap.String("operation", operation), zap.Error(err))
		}
	}
	utils.ClearCookies(c.Writer, cfg.CookieAttrs(), cfg.CookieNames()...)
	c.JSON(http.StatusOK, gin.H{})
}

// Session 当前会话
// @Summary 查询会话
// @Description 返回当前登录用户与会话过期时间，未登录时返回 {}
// @Tags 认证 (Auth)
// @Produce json
// @Success 200 {object} vo.SessionVO
// @Router /api/auth/session [get]
func (ctrl *AuthController) Session(c *gin.Context) {
	handlers, err := ctrl.selector.Handlers(strategy.Database)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	user := middleware.ResolveSession(c, handlers, ctrl.logger)
	if user == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	current, _ := c.Get(constants.ContextSessionKey)
	resp := vo.SessionVO{User: toSessionUser(user)}
	if cur, ok := current.(*strategy.Current); ok {
		resp.Expires = cur.Expires
	}
	c.JSON(http.StatusOK, resp)
}

// Providers 已启用的身份提供方
// @Summary 身份提供方列表
// @Tags 认证 (Auth)
// @Produce json
// @Success 200 {object} docs.ProvidersResponse
// @Router /api/auth/providers [get]
func (ctrl *AuthController) Providers(c *gin.Context) {
	list := ctrl.providers.IDs()
	if ctrl.email != nil {
		list = append(list, enums.ProviderEmail)
	}
	c.JSON(http.StatusOK, gin.H{"providers": list})
}

// RegisterRoutes 注册 /api/auth 下的路由
func (ctrl *AuthController) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/api/auth")
	g.GET("/providers", ctrl.Providers)
	g.GET("/session", ctrl.Session)
	g.GET("/signout", ctrl.SignOut)
	g.POST("/signout", ctrl.SignOut)
	g.GET("/callback/:provider", ctrl.Callback)
	g.POST("/callback/:provider", ctrl.Callback)

	if ctrl.limiter != nil {
		g.GET("/signin/:provider", ctrl.limiter.Middleware("signin_oauth"), ctrl.SignIn)
		g.POST("/signin/email", ctrl.limiter.Middleware("signin_email"), ctrl.SignInEmail)
		return
	}
	g.GET("/signin/:provider", ctrl.SignIn)
	g.POST("/signin/email", ctrl.SignInEmail)
}
