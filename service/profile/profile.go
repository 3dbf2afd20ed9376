package profile

import (
	"context"
	"errors"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/keenmind_auth/models/entities"
	"github.com/Xushengqwer/keenmind_auth/models/ids"
	"github.com/Xushengqwer/keenmind_auth/models/vo"
	"github.com/Xushengqwer/keenmind_auth/repository/rdb"
	"github.com/Xushengqwer/keenmind_auth/service/adapter"
)

var (
	// ErrProfileNotFound 当前用户已不可认证
	ErrProfileNotFound = errors.New("用户不存在")
	// ErrAccountNotOwned 外部账号不存在或不属于当前用户
	ErrAccountNotOwned = errors.New("外部账号不存在或不属于当前用户")
)

// UserProfileService 用户自助的资料与账号管理。
// 使用场景:
// - 个人资料页展示基本信息与已绑定的登录方式。
// - 解绑某个登录方式，或注销整个账号。
type UserProfileService interface {
	// GetProfile 读取当前用户资料及其绑定的外部账号。
	GetProfile(ctx context.Context, userID ids.ID) (*vo.ProfileVO, error)

	// UnlinkAccount 解绑属于当前用户的外部账号。
	// - 账号不存在或属于其他用户时返回 ErrAccountNotOwned，不做任何修改。
	UnlinkAccount(ctx context.Context, userID ids.ID, provider, providerAccountID string) error

	// DeleteOwnAccount 注销：解绑全部外部账号、删除全部会话并软删除用户。
	// 调用方负责清理当前请求携带的会话 Cookie。
	DeleteOwnAccount(ctx context.Context, userID ids.ID) error
}

type userProfileService struct {
	db          *gorm.DB
	userRepo    rdb.UserRepository
	accountRepo rdb.AccountRepository
	adapter     adapter.Adapter
	logger      *core.ZapLogger
}

func NewUserProfileService(
	db *gorm.DB,
	userRepo rdb.UserRepository,
	accountRepo rdb.AccountRepository,
	ad adapter.Adapter,
	logger *core.ZapLogger,
) UserProfileService {
	return &userProfileService{
		db:          db,
		userRepo:    userRepo,
		accountRepo: accountRepo,
		adapter:     ad,
		logger:      logger,
	}
}

func (s *userProfileService) GetProfile(ctx context.Context, userID ids.ID) (*vo.ProfileVO, error) {
	const operation = "UserProfileService.GetProfile"

	user, err := s.userRepo.GetActiveUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, ErrProfileNotFound
		}
		s.logger.Error("查询用户失败", zap.String("operation", operation), zap.String("userID", userID.String()), zap.Error(err))
		return nil, commonerrors.ErrSystemError
	}

	accounts, err := s.accountRepo.ListAccountsByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询绑定账号失败", zap.String("operation", operation), zap.String("userID", userID.String()), zap.Error(err))
		return nil, commonerrors.ErrSystemError
	}
	return toProfileVO(user, accounts), nil
}

func (s *userProfileService) UnlinkAccount(ctx context.Context, userID ids.ID, provider, providerAccountID string) error {
	const operation = "UserProfileService.UnlinkAccount"
	logFields := []zap.Field{
		zap.String("operation", operation),
		zap.String("userID", userID.String()),
		zap.String("provider", provider),
	}

	account, err := s.accountRepo.GetAccount(ctx, s.db, provider, providerAccountID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return ErrAccountNotOwned
		}
		s.logger.Error("查询外部账号失败", append(logFields, zap.Error(err))...)
		return commonerrors.ErrSystemError
	}
	if account.UserID != userID {
		s.logger.Warn("尝试解绑他人的外部账号", logFields...)
		return ErrAccountNotOwned
	}

	if err := s.adapter.UnlinkAccount(ctx, provider, providerAccountID); err != nil {
		if errors.Is(err, adapter.ErrAccountNotFound) {
			return ErrAccountNotOwned
		}
		s.logger.Error("解绑外部账号失败", append(logFields, zap.Error(err))...)
		return commonerrors.ErrSystemError
	}
	s.logger.Info("已解绑外部账号", logFields...)
	return nil
}

func (s *userProfileService) DeleteOwnAccount(ctx context.Context, userID ids.ID) error {
	const operation = "UserProfileService.DeleteOwnAccount"
	if err := s.adapter.DeleteUser(ctx, userID); err != nil {
		s.logger.Error("注销用户失败", zap.String("operation", operation), zap.String("userID", userID.String()), zap.Error(err))
		return commonerrors.ErrSystemError
	}
	s.logger.Info("用户已注销", zap.String("operation", operation), zap.String("userID", userID.String()))
	return nil
}

func toProfileVO(user *entities.User, accounts []entities.Account) *vo.ProfileVO {
	out := &vo.ProfileVO{
		ID:            user.ID,
		Username:      user.Username,
		Nickname:      user.Nickname,
		Avatar:        user.Avatar,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		Phone:         user.Phone,
		Status:        string(user.Status),
		LastLoginAt:   user.LastLoginAt,
		CreatedAt:     user.CreatedAt,
		Accounts:      make([]vo.AccountVO, 0, len(accounts)),
	}
	for _, a := range accounts {
		out.Accounts = append(out.Accounts, vo.AccountVO{
			Provider:          a.Provider,
			ProviderAccountID: a.ProviderAccountID,
			Type:              string(a.Type),
			CreatedAt:         a.CreatedAt,
		})
	}
	return out
}
