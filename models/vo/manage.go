package vo

import (
	"time"

	"github.com/Xushengqwer/keenmind_auth/models/ids"
)

// UserVO 管理端用户行
type UserVO struct {
	ID          ids.ID     `json:"id" example:"872817149208"`
	Username    *string    `json:"username,omitempty"`
	Nickname    string     `json:"nickname" example:"小明"`
	Avatar      string     `json:"avatar"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Status      string     `json:"status" example:"ACTIVE"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// UserListVO 管理端用户列表
type UserListVO struct {
	Items []UserVO `json:"items"`
	Total int64    `json:"total" example:"42"`
}
