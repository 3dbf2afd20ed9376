package entities

import (
	"time"

	"github.com/Xushengqwer/keenmind_auth/models/ids"
)

// Session 数据库会话策略下的服务端会话
type Session struct {
	ID           ids.ID    `gorm:"primaryKey;autoIncrement"`
	SessionToken string    `gorm:"type:varchar(191);not null;uniqueIndex"`
	UserID       ids.ID    `gorm:"not null;index"`
	Expires      time.Time `gorm:"not null;index"`

	UserAgent string `gorm:"type:varchar(512)"`
	IPAddress string `gorm:"type:varchar(64)"`
	IsMobile  bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpired 过期的会话一律视为不存在
func (s *Session) IsExpired(now time.Time) bool {
	return !s.Expires.After(now)
}
