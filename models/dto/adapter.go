package dto

import (
	"time"

	"github.com/Xushengqwer/keenmind_auth/models/enums"
	"github.com/Xushengqwer/keenmind_auth/models/ids"
)

// AdapterUser 认证流程内部使用的用户视图
// - 更新时只有非 nil 字段会被写入，Status 为空表示不修改
type AdapterUser struct {
	ID            ids.ID           `json:"id"`
	Name          *string          `json:"name,omitempty"`
	Email         *string          `json:"email,omitempty"`
	EmailVerified *time.Time       `json:"emailVerified,omitempty"`
	Image         *string          `json:"image,omitempty"`
	Username      *string          `json:"username,omitempty"`
	Phone         *string          `json:"phone,omitempty"`
	Status        enums.UserStatus `json:"status,omitempty"`
	LastLoginAt   *time.Time       `json:"lastLoginAt,omitempty"`
}

// EmailValue 未设置邮箱时返回空串
func (u *AdapterUser) EmailValue() string {
	if u == nil || u.Email == nil {
		return ""
	}
	return *u.Email
}

// AdapterAccount 外部账号
type AdapterAccount struct {
	UserID            ids.ID            `json:"userId"`
	Type              enums.AccountType `json:"type"`
	Provider          string            `json:"provider"`
	ProviderAccountID string            `json:"providerAccountId"`
	RefreshToken      *string           `json:"refresh_token,omitempty"`
	AccessToken       *string           `json:"access_token,omitempty"`
	ExpiresAt         *int64            `json:"expires_at,omitempty"`
	TokenType         *string           `json:"token_type,omitempty"`
	Scope             *string           `json:"scope,omitempty"`
	IDToken           *string           `json:"id_token,omitempty"`
	SessionState      *string           `json:"session_state,omitempty"`
}

// AdapterSession 数据库会话
type AdapterSession struct {
	SessionToken string    `json:"sessionToken"`
	UserID       ids.ID    `json:"userId"`
	Expires      time.Time `json:"expires"`
	UserAgent    string    `json:"userAgent,omitempty"`
	IPAddress    string    `json:"ipAddress,omitempty"`
	IsMobile     bool      `json:"isMobile,omitempty"`
}

// SessionAndUser 会话及其所属用户，也是 Redis 缓存的载荷
type SessionAndUser struct {
	Session AdapterSession `json:"session"`
	User    AdapterUser    `json:"user"`
}

// AdapterVerificationToken 邮件验证令牌，Token 为哈希后的值
type AdapterVerificationToken struct {
	Identifier string          `json:"identifier"`
	Token      string          `json:"token"`
	Expires    time.Time       `json:"expires"`
	Type       enums.TokenType `json:"type,omitempty"`
	CreatedIP  string          `json:"createdIp,omitempty"`
}

// OAuthProfile 身份提供方返回的用户资料
type OAuthProfile struct {
	// 提供方内的账号 ID，原样保存为字符串
	ID            string  `json:"id"`
	Name          *string `json:"name,omitempty"`
	Email         *string `json:"email,omitempty"`
	Image         *string `json:"image,omitempty"`
	EmailVerified bool    `json:"emailVerified"`
}
