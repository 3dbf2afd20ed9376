// Package middleware 认证相关的 Gin 中间件。
package middleware

import (
	"errors"

	"github.com/Xushengqwer/go-common/core"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xushengqwer/keenmind_auth/constants"
	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/service/strategy"
	"github.com/Xushengqwer/keenmind_auth/service/token"
	"github.com/Xushengqwer/keenmind_auth/utils"
)

// CurrentUser 取中间件解析出的当前用户
func CurrentUser(c *gin.Context) (*dto.AdapterUser, bool) {
	v, ok := c.Get(constants.ContextUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*dto.AdapterUser)
	return u, ok && u != nil
}

// CookieValue 依次读取给定名称的 Cookie，返回第一个非空值
func CookieValue(c *gin.Context, names ...string) string {
	for _, name := range names {
		if v, err := c.Cookie(name); err == nil && v != "" {
			return v
		}
	}
	return ""
}

// ResolveSession 解析数据库会话，失败时按未登录处理。
// 会话被续期时顺带重写 Cookie。
func ResolveSession(c *gin.Context, handlers strategy.Handlers, logger *core.ZapLogger) *dto.AdapterUser {
	cfg := handlers.Config()
	value := CookieValue(c, cfg.CookieName)
	if value == "" {
		return nil
	}
	current, err := handlers.Resolve(c.Request.Context(), value)
	if err != nil {
		if !errors.Is(err, strategy.ErrNoSession) {
			logger.Warn("解析会话失败，按未登录处理", zap.String("path", c.Request.URL.Path), zap.Error(err))
		}
		return nil
	}
	if current.Refreshed != nil {
		utils.SetSessionCookie(c.Writer, cfg.CookieAttrs(), cfg.CookieName, current.Refreshed.Value, current.Refreshed.Expires)
	}
	user := current.User
	c.Set(constants.ContextUserKey, &user)
	c.Set(constants.ContextSessionKey, current)
	return &user
}

// SessionAuth 数据库策略的路由授权：未登录、强制登录、非 ACTIVE 用户都会被 307 到登录页。
func SessionAuth(handlers strategy.Handlers, logger *core.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := ResolveSession(c, handlers, logger)
		decision := strategy.AuthorizeDatabase(c.Request.URL.Path, c.Request.URL.Query(), user)
		if !decision.Allow {
			c.Redirect(decision.Status, decision.Location)
			c.Abort()
			return
		}
		c.Next()
	}
}

// TokenAuth 令牌策略的路由授权。令牌来自 Cookie 或 Authorization: Bearer，失败时返回 403 JSON。
func TokenAuth(handlers strategy.Handlers, logger *core.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		value := CookieValue(c, handlers.Config().CookieNames()...)
		if value == "" {
			value = utils.BearerToken(c.Request)
		}

		var current *strategy.Current
		err := token.ErrTokenMissing
		if value != "" {
			current, err = handlers.Resolve(c.Request.Context(), value)
		}

		decision := strategy.AuthorizeToken(c.Request.URL.Path, err)
		if !decision.Allow {
			if decision.Status >= 500 {
				logger.Error("令牌校验失败", zap.String("path", c.Request.URL.Path), zap.Error(err))
			}
			c.AbortWithStatusJSON(decision.Status, gin.H{"error": decision.Error})
			return
		}
		if current != nil {
			user := current.User
			c.Set(constants.ContextUserKey, &user)
			c.Set(constants.ContextSessionKey, current)
		}
		c.Next()
	}
}
