package entities

import (
	"time"

	"github.com/Xushengqwer/keenmind_auth/models/enums"
	"github.com/Xushengqwer/keenmind_auth/models/ids"
)

// Account 绑定到本地用户的外部身份。(provider, provider_account_id) 全局唯一。
type Account struct {
	ID     ids.ID            `gorm:"primaryKey;autoIncrement"`
	UserID ids.ID            `gorm:"not null;index"`
	Type   enums.AccountType `gorm:"type:varchar(16);not null"`

	Provider          string `gorm:"type:varchar(32);not null;uniqueIndex:idx_provider_account"`
	ProviderAccountID string `gorm:"type:varchar(191);not null;uniqueIndex:idx_provider_account"`

	// OAuth 令牌材料
	RefreshToken *string `gorm:"type:text"`
	AccessToken  *string `gorm:"type:text"`
	ExpiresAt    *int64
	TokenType    *string `gorm:"type:varchar(32)"`
	Scope        *string `gorm:"type:varchar(255)"`
	IDToken      *string `gorm:"type:text"`
	SessionState *string `gorm:"type:varchar(255)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
