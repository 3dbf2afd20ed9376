// Package strategy 两种会话策略：数据库会话（浏览器）与自包含令牌（移动端）。
//
// 策略在发起登录时写入签名的 state，回调入口解码后只做一次显式 switch。
package strategy

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Xushengqwer/keenmind_auth/config"
	"github.com/Xushengqwer/keenmind_auth/constants"
	"github.com/Xushengqwer/keenmind_auth/utils"
)

// Strategy 会话策略
type Strategy string

const (
	Database Strategy = "database"
	Token    Strategy = "token"
)

func (s Strategy) IsValid() bool {
	return s == Database || s == Token
}

func (s Strategy) String() string { return string(s) }

// Config 每种策略构造一次
type Config struct {
	Strategy   Strategy
	CookieName string
	MaxAge     time.Duration
	UpdateAge  time.Duration

	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// NewConfig Secure 时 Cookie 名带 __Secure- 前缀
func NewConfig(s Strategy, cookieCfg *config.CookieConfig, authCfg *config.AuthConfig) (Config, error) {
	var name string
	switch s {
	case Database:
		name = constants.SessionCookieName
	case Token:
		name = constants.TokenSessionCookieName
	default:
		return Config{}, fmt.Errorf("未知的会话策略: %q", s)
	}
	if cookieCfg.Secure {
		name = constants.SecureCookiePrefix + name
	}

	maxAge := authCfg.SessionMaxAge
	if maxAge <= 0 {
		maxAge = constants.SessionMaxAge
	}
	updateAge := authCfg.SessionUpdateAge
	if updateAge <= 0 {
		updateAge = constants.SessionUpdateAge
	}
	path := cookieCfg.Path
	if path == "" {
		path = "/"
	}
	return Config{
		Strategy:   s,
		CookieName: name,
		MaxAge:     maxAge,
		UpdateAge:  updateAge,
		Domain:     cookieCfg.Domain,
		Path:       path,
		Secure:     cookieCfg.Secure,
		SameSite:   utils.ParseSameSiteString(cookieCfg.SameSite),
	}, nil
}

// CookieNames 该策略可能出现的两个 Cookie 名，登出时都要清掉
func (c Config) CookieNames() []string {
	base := strings.TrimPrefix(c.CookieName, constants.SecureCookiePrefix)
	return []string{base, constants.SecureCookiePrefix + base}
}

// NonceCookieName 发起 OAuth 登录时绑定浏览器的 nonce Cookie
func (c Config) NonceCookieName() string {
	if c.Secure {
		return constants.SecureCookiePrefix + constants.StateNonceCookieName
	}
	return constants.StateNonceCookieName
}

// NonceCookieAttrs 身份提供方回跳是跨站的顶层导航，Strict 会让浏览器丢掉 nonce，降为 Lax
func (c Config) NonceCookieAttrs() utils.CookieAttrs {
	attrs := c.CookieAttrs()
	if attrs.SameSite == http.SameSiteStrictMode {
		attrs.SameSite = http.SameSiteLaxMode
	}
	return attrs
}

// CookieAttrs 写 Cookie 时使用的属性
func (c Config) CookieAttrs() utils.CookieAttrs {
	return utils.CookieAttrs{Domain: c.Domain, Path: c.Path, Secure: c.Secure, SameSite: c.SameSite}
}
