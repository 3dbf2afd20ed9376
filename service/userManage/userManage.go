package userManage

import (
	"context"
	"errors"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/enums"
	"github.com/Xushengqwer/keenmind_auth/models/ids"
	"github.com/Xushengqwer/keenmind_auth/service/adapter"
)

// ErrUserNotFound 目标用户不存在或已注销
var ErrUserNotFound = errors.New("用户不存在")

// UserManageService 管理员对用户状态的变更。
// 锁定只修改状态，不删除已有会话；受保护路由的授权检查会拦截非 ACTIVE 用户。
type UserManageService interface {
	// Lock 将用户状态置为 LOCKED。
	// 返回:
	//  - ErrUserNotFound: ID 不存在或用户已被软删除。
	//  - commonerrors.ErrSystemError: 数据库错误。
	Lock(ctx context.Context, userID ids.ID) error

	// Unlock 将用户状态恢复为 ACTIVE。
	Unlock(ctx context.Context, userID ids.ID) error
}

type userManageService struct {
	adapter adapter.Adapter
	logger  *core.ZapLogger
}

// NewUserManageService 创建 UserManageService。
// 状态写入经由 adapter，以便顺带失效该用户的会话缓存。
func NewUserManageService(ad adapter.Adapter, logger *core.ZapLogger) UserManageService {
	return &userManageService{adapter: ad, logger: logger}
}

func (s *userManageService) Lock(ctx context.Context, userID ids.ID) error {
	return s.setStatus(ctx, "UserManageService.Lock", userID, enums.UserStatusLocked)
}

func (s *userManageService) Unlock(ctx context.Context, userID ids.ID) error {
	return s.setStatus(ctx, "UserManageService.Unlock", userID, enums.UserStatusActive)
}

func (s *userManageService) setStatus(ctx context.Context, operation string, userID ids.ID, status enums.UserStatus) error {
	s.logger.Info("开始变更用户状态",
		zap.String("operation", operation),
		zap.String("userID", userID.String()),
		zap.String("status", string(status)),
	)

	if _, err := s.adapter.UpdateUser(ctx, dto.AdapterUser{ID: userID, Status: status}); err != nil {
		if errors.Is(err, adapter.ErrUserNotFound) {
			s.logger.Warn("尝试变更不存在的用户", zap.String("operation", operation), zap.String("userID", userID.String()))
			return ErrUserNotFound
		}
		s.logger.Error("变更用户状态失败",
			zap.String("operation", operation),
			zap.String("userID", userID.String()),
			zap.Error(err),
		)
		return commonerrors.ErrSystemError
	}

	s.logger.Info("成功变更用户状态", zap.String("operation", operation), zap.String("userID", userID.String()))
	return nil
}
