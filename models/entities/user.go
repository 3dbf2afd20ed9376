package entities

import (
	"time"

	"gorm.io/gorm"

	"github.com/Xushengqwer/keenmind_auth/models/enums"
	"github.com/Xushengqwer/keenmind_auth/models/ids"
)

// User 本地用户
type User struct {
	ID ids.ID `gorm:"primaryKey;autoIncrement"`

	// 登录名，可选，唯一
	Username *string `gorm:"type:varchar(64);uniqueIndex"`

	// 邮箱及其验证时间，EmailVerified 非空即视为已验证
	Email         *string `gorm:"type:varchar(255);index"`
	EmailVerified *time.Time

	Phone         *string `gorm:"type:varchar(32);index"`
	PhoneVerified *time.Time

	// 展示名与头像
	Nickname string `gorm:"type:varchar(255)"`
	Avatar   string `gorm:"type:varchar(512)"`

	Status      enums.UserStatus `gorm:"type:varchar(16);not null;default:ACTIVE;index"`
	LastLoginAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Accounts []Account `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Sessions []Session `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// IsActive 未软删除且未被封禁
func (u *User) IsActive() bool {
	return u != nil && !u.DeletedAt.Valid && u.Status != enums.UserStatusBanned
}
