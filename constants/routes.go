package constants

// 页面路径。页面渲染不在本服务内，这里只用于重定向目标与路由授权判断。
const (
	HomePath           = "/"
	LoginPath          = "/login"
	ProfilePath        = "/profile"
	ForgotPasswordPath = "/forgot-password"
	VerifyRequestPath  = "/auth/verify-request"

	AuthAPIPrefix   = "/api/auth/"
	MobileAPIPrefix = "/mapi/"
	MobileLogin     = "/mapi/login"
	MobileLogout    = "/mapi/logout"
	MobileRedirect  = "/mapi/redirect"
)

// 登录失败时追加到 /login?error= 的错误标记
const (
	ErrorAccountLinked = "AccountLinked"
	ErrorOAuthCallback = "OAuthCallback"
	ErrorVerification  = "Verification"
	ErrorConfiguration = "Configuration"
	ErrorAccountLocked = "AccountLocked"
)
