package rdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"gorm.io/gorm"

	"github.com/Xushengqwer/keenmind_auth/models/entities"
	"github.com/Xushengqwer/keenmind_auth/models/ids"
)

// SessionRepository 数据库会话的存取接口。
// - 仓库层不判断过期，过期语义由适配层统一处理。
type SessionRepository interface {
	CreateSession(ctx context.Context, session *entities.Session) error

	// GetSessionByToken 未找到返回 commonerrors.ErrRepoNotFound。
	GetSessionByToken(ctx context.Context, token string) (*entities.Session, error)

	UpdateSessionExpires(ctx context.Context, token string, expires time.Time) error

	// DeleteSession 删除并返回被删除的会话，未找到返回 commonerrors.ErrRepoNotFound。
	DeleteSession(ctx context.Context, db *gorm.DB, token string) (*entities.Session, error)

	// ListSessionTokensByUser 用户全部会话的令牌，用于清理缓存
	ListSessionTokensByUser(ctx context.Context, userID ids.ID) ([]string, error)

	// DeleteSessionsByUser 删除用户全部会话，返回被删除的令牌以便清理缓存。
	DeleteSessionsByUser(ctx context.Context, db *gorm.DB, userID ids.ID) ([]string, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建一个新的 sessionRepository 实例。
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) CreateSession(ctx context.Context, session *entities.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("sessionRepo.CreateSession: 创建会话失败 (UserID: %s): %w", session.UserID, translateError(err))
	}
	return nil
}

func (r *sessionRepository) GetSessionByToken(ctx context.Context, token string) (*entities.Session, error) {
	var session entities.Session
	err := r.db.WithContext(ctx).Where("session_token = ?", token).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		return nil, fmt.Errorf("sessionRepo.GetSessionByToken: 查询会话失败: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) UpdateSessionExpires(ctx context.Context, token string, expires time.Time) error {
	err := r.db.WithContext(ctx).Model(&entities.Session{}).
		Where("session_token = ?", token).
		Update("expires", expires).Error
	if err != nil {
		return fmt.Errorf("sessionRepo.UpdateSessionExpires: 延长会话失败: %w", err)
	}
	return nil
}

func (r *sessionRepository) DeleteSession(ctx context.Context, db *gorm.DB, token string) (*entities.Session, error) {
	var session entities.Session
	err := db.WithContext(ctx).Where("session_token = ?", token).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		return nil, fmt.Errorf("sessionRepo.DeleteSession: 查询会话失败: %w", err)
	}
	if err := db.WithContext(ctx).Delete(&session).Error; err != nil {
		return nil, fmt.Errorf("sessionRepo.DeleteSession: 删除会话失败: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) ListSessionTokensByUser(ctx context.Context, userID ids.ID) ([]string, error) {
	var tokens []string
	if err := r.db.WithContext(ctx).Model(&entities.Session{}).
		Where("user_id = ?", userID).
		Pluck("session_token", &tokens).Error; err != nil {
		return nil, fmt.Errorf("sessionRepo.ListSessionTokensByUser: 查询用户会话失败 (UserID: %s): %w", userID, err)
	}
	return tokens, nil
}

func (r *sessionRepository) DeleteSessionsByUser(ctx context.Context, db *gorm.DB, userID ids.ID) ([]string, error) {
	var tokens []string
	if err := db.WithContext(ctx).Model(&entities.Session{}).
		Where("user_id = ?", userID).
		Pluck("session_token", &tokens).Error; err != nil {
		return nil, fmt.Errorf("sessionRepo.DeleteSessionsByUser: 查询用户会话失败 (UserID: %s): %w", userID, err)
	}
	if len(tokens) == 0 {
		return tokens, nil
	}
	if err := db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entities.Session{}).Error; err != nil {
		return nil, fmt.Errorf("sessionRepo.DeleteSessionsByUser: 删除用户会话失败 (UserID: %s): %w", userID, err)
	}
	return tokens, nil
}
