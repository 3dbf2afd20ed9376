package rdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"gorm.io/gorm"

	"github.com/Xushengqwer/keenmind_auth/models/entities"
)

// VerificationTokenRepository 邮件验证令牌的存取接口
type VerificationTokenRepository interface {
	CreateToken(ctx context.Context, token *entities.VerificationToken) error

	// UseToken 在事务中原子地消费令牌。
	// - 未找到返回 commonerrors.ErrRepoNotFound
	// - 已使用（包括并发下被抢先使用）返回 ErrTokenUsed
	// - 已过期返回 ErrTokenExpired
	UseToken(ctx context.Context, identifier, token string, now time.Time) (*entities.VerificationToken, error)
}

type verificationTokenRepository struct {
	db *gorm.DB
}

// NewVerificationTokenRepository 创建一个新的 verificationTokenRepository 实例。
func NewVerificationTokenRepository(db *gorm.DB) VerificationTokenRepository {
	return &verificationTokenRepository{db: db}
}

func (r *verificationTokenRepository) CreateToken(ctx context.Context, token *entities.VerificationToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("verificationTokenRepo.CreateToken: 保存验证令牌失败: %w", translateError(err))
	}
	return nil
}

func (r *verificationTokenRepository) UseToken(ctx context.Context, identifier, token string, now time.Time) (*entities.VerificationToken, error) {
	var used entities.VerificationToken
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("identifier = ? AND token = ?", identifier, token).First(&used).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return commonerrors.ErrRepoNotFound
			}
			return fmt.Errorf("查询验证令牌失败: %w", err)
		}
		if used.Used {
			return ErrTokenUsed
		}
		if !used.Expires.After(now) {
			return ErrTokenExpired
		}
		// 以 used = false 为条件更新，并发下只有一个事务能命中
		result := tx.Model(&entities.VerificationToken{}).
			Where("id = ? AND used = ?", used.ID, false).
			Updates(map[string]any{"used": true, "used_at": now})
		if result.Error != nil {
			return fmt.Errorf("标记验证令牌失败: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrTokenUsed
		}
		used.Used = true
		used.UsedAt = &now
		return nil
	})
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) || errors.Is(err, ErrTokenUsed) || errors.Is(err, ErrTokenExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("verificationTokenRepo.UseToken: %w", err)
	}
	return &used, nil
}
