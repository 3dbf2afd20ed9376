package utils

import (
	"net/http"
	"strings"
	"time"
)

// CookieAttrs 会话 Cookie 除名称和值以外的属性
type CookieAttrs struct {
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// ParseSameSiteString 将字符串形式的 SameSite 配置转换为 http.SameSite 类型，未识别时为 Lax
func ParseSameSiteString(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// SetSessionCookie 写入 HttpOnly 会话 Cookie
func SetSessionCookie(w http.ResponseWriter, attrs CookieAttrs, name, value string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     attrs.Path,
		Domain:   attrs.Domain,
		Expires:  expires,
		MaxAge:   maxAge,
		Secure:   attrs.Secure,
		HttpOnly: true,
		SameSite: attrs.SameSite,
	})
}

// ClearCookies 让给定名称的 Cookie 立即过期
func ClearCookies(w http.ResponseWriter, attrs CookieAttrs, names ...string) {
	for _, name := range names {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     attrs.Path,
			Domain:   attrs.Domain,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			Secure:   attrs.Secure || strings.HasPrefix(name, "__Secure-"),
			HttpOnly: true,
			SameSite: attrs.SameSite,
		})
	}
}

// BearerToken 取 Authorization: Bearer 后的令牌
func BearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}
