package strategy

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/Xushengqwer/keenmind_auth/constants"
	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/service/token"
)

// Decision 路由授权结果。Allow 为 false 时要么重定向到 Location，要么以 Status 返回 {"error": Error}。
type Decision struct {
	Allow    bool
	Status   int
	Location string
	Error    string
}

func allow() Decision { return Decision{Allow: true} }

func redirect(location string) Decision {
	return Decision{Status: http.StatusTemporaryRedirect, Location: location}
}

var staticSuffixes = []string{".ico", ".txt", ".svg", ".png", ".jpg", ".jpeg"}

// IsPublicPath 数据库策略下无需登录的路径
func IsPublicPath(path string) bool {
	switch path {
	case constants.HomePath, constants.LoginPath, constants.ForgotPasswordPath, "/metrics", "/healthz":
		return true
	}
	if strings.HasPrefix(path, constants.AuthAPIPrefix) || strings.HasPrefix(path, "/swagger/") {
		return true
	}
	for _, ext := range staticSuffixes {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// AuthorizeDatabase 数据库策略的路由授权，user 为 nil 表示未登录。
// 锁定等非 ACTIVE 状态的用户会话仍然有效，只是访问受保护路径时被送回登录页。
func AuthorizeDatabase(path string, query url.Values, user *dto.AdapterUser) Decision {
	if strings.HasPrefix(path, constants.AuthAPIPrefix) {
		return allow()
	}

	if query.Get("forceLogin") == "true" {
		if path == constants.LoginPath {
			return allow()
		}
		return redirect(constants.LoginPath)
	}

	if user != nil && path == constants.LoginPath {
		target := constants.ProfilePath
		if e := query.Get("error"); e != "" {
			target += "?" + url.Values{"error": {e}}.Encode()
		}
		return redirect(target)
	}

	if IsPublicPath(path) {
		return allow()
	}
	if user == nil {
		return redirect(constants.LoginPath)
	}
	if !user.Status.CanAccessProtected() {
		return redirect(constants.LoginPath + "?error=" + constants.ErrorAccountLocked)
	}
	return allow()
}

// IsTokenPublicPath 令牌策略下无需令牌的路径
func IsTokenPublicPath(path string) bool {
	return strings.HasPrefix(path, constants.MobileLogin) || strings.HasPrefix(path, constants.MobileLogout)
}

// AuthorizeToken 令牌策略的路由授权，err 为令牌解析结果。API 调用方拿到的是 403 JSON 而不是重定向。
func AuthorizeToken(path string, err error) Decision {
	if IsTokenPublicPath(path) || err == nil {
		return allow()
	}
	switch {
	case errors.Is(err, token.ErrTokenExpired):
		return Decision{Status: http.StatusForbidden, Error: "Token expired"}
	case errors.Is(err, token.ErrTokenRevoked):
		return Decision{Status: http.StatusForbidden, Error: "Token revoked"}
	case errors.Is(err, token.ErrTokenMissing), errors.Is(err, token.ErrTokenInvalid):
		return Decision{Status: http.StatusForbidden, Error: "Unauthorized"}
	default:
		return Decision{Status: http.StatusServiceUnavailable, Error: "Service unavailable"}
	}
}
