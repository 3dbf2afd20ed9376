package entities

import (
	"time"

	"github.com/Xushengqwer/keenmind_auth/models/enums"
	"github.com/Xushengqwer/keenmind_auth/models/ids"
)

// VerificationToken 邮件魔法链接令牌，只能使用一次。Token 存储的是哈希值。
type VerificationToken struct {
	ID         ids.ID          `gorm:"primaryKey;autoIncrement"`
	Identifier string          `gorm:"type:varchar(191);not null;uniqueIndex:idx_identifier_token"`
	Token      string          `gorm:"type:varchar(191);not null;uniqueIndex:idx_identifier_token"`
	Expires    time.Time       `gorm:"not null"`
	Type       enums.TokenType `gorm:"type:varchar(32);not null;default:EMAIL_VERIFICATION"`
	Used       bool            `gorm:"not null;default:false"`
	UsedAt     *time.Time
	CreatedIP  string `gorm:"type:varchar(64)"`
	CreatedAt  time.Time
}
