package vo

import (
	"time"

	"github.com/Xushengqwer/keenmind_auth/models/ids"
)

// SessionUserVO 会话中暴露给前端的用户信息
type SessionUserVO struct {
	ID     ids.ID  `json:"id" example:"872817149208"`
	Name   *string `json:"name,omitempty" example:"octocat"`
	Email  *string `json:"email,omitempty" example:"octocat@github.com"`
	Image  *string `json:"image,omitempty"`
	Status string  `json:"status,omitempty" example:"ACTIVE"`
}

// SessionVO GET /api/auth/session 的响应
type SessionVO struct {
	User    SessionUserVO `json:"user"`
	Expires time.Time     `json:"expires"`
}

// RedirectVO /mapi/login 的响应
type RedirectVO struct {
	Redirect string `json:"redirect" example:"https://github.com/login/oauth/authorize?client_id=..."`
}

// MeVO /mapi/me 的响应
type MeVO struct {
	User SessionUserVO `json:"user"`
}

// SuccessVO 简单成功响应
type SuccessVO struct {
	Success bool `json:"success" example:"true"`
}

// ErrorVO 简单错误响应
type ErrorVO struct {
	Error string `json:"error" example:"Unauthorized"`
}
