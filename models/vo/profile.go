package vo

import (
	"time"

	"github.com/Xushengqwer/keenmind_auth/models/ids"
)

// AccountVO 已绑定的外部账号
type AccountVO struct {
	Provider          string    `json:"provider" example:"github"`
	ProviderAccountID string    `json:"providerAccountId" example:"583231"`
	Type              string    `json:"type" example:"oauth"`
	CreatedAt         time.Time `json:"created_at"`
}

// ProfileVO 当前用户资料及绑定账号
type ProfileVO struct {
	ID            ids.ID      `json:"id" example:"872817149208"`
	Username      *string     `json:"username,omitempty"`
	Nickname      string      `json:"nickname" example:"小明"`
	Avatar        string      `json:"avatar"`
	Email         *string     `json:"email,omitempty"`
	EmailVerified *time.Time  `json:"email_verified,omitempty"`
	Phone         *string     `json:"phone,omitempty"`
	Status        string      `json:"status" example:"ACTIVE"`
	LastLoginAt   *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	Accounts      []AccountVO `json:"accounts"`
}
