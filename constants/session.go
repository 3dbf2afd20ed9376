package constants

import (
	"time"
)

const (
	// SessionMaxAge 两种会话策略共用的最长有效期
	SessionMaxAge = 14 * 24 * time.Hour

	// SessionUpdateAge 数据库会话剩余时间少于 (MaxAge - UpdateAge) 时才续期，避免每次请求都写库
	SessionUpdateAge = 24 * time.Hour

	// SessionCacheTTL 会话读缓存的最大陈旧窗口
	SessionCacheTTL = time.Hour

	// VerificationTokenTTL 邮件登录链接的有效期
	VerificationTokenTTL = 24 * time.Hour

	// StateMaxAge OAuth state 参数的有效期
	StateMaxAge = 15 * time.Minute

	// EmailCooldown 同一邮箱两次发送登录链接的最小间隔
	EmailCooldown = time.Minute
)

// Cookie 名称。生产环境 (cookie.secure=true) 使用 __Secure- 前缀变体。
const (
	SecureCookiePrefix       = "__Secure-"
	SessionCookieName        = "next-auth.session-token"
	TokenSessionCookieName   = "next-auth.jwt-session-token"
	StateNonceCookieName     = "next-auth.state-nonce"
	PlaceholderEmailFragment = "@unbind."
)

// Redis 键前缀
const (
	SessionCacheKeyPrefix  = "keenmind:auth:session"
	RevokedJTIKeyPrefix    = "keenmind:auth:revoked"
	EmailCooldownKeyPrefix = "keenmind:auth:email_cooldown"
)

// gin.Context 中保存当前用户的键
const (
	ContextUserKey    = "auth.user"
	ContextSessionKey = "auth.session"
	ContextClaimsKey  = "auth.claims"
)
