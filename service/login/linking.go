// Package login 外部身份登录回调时的账号关联。
package login

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/keenmind_auth/constants"
	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/entities"
	"github.com/Xushengqwer/keenmind_auth/models/enums"
	"github.com/Xushengqwer/keenmind_auth/repository/rdb"
	"github.com/Xushengqwer/keenmind_auth/service/adapter"
)

var (
	// ErrAccountLinkedElsewhere 外部身份已属于另一个用户
	ErrAccountLinkedElsewhere = errors.New("account already linked to another user")
	// ErrSignInFailed 其它原因导致的登录失败，细节只记日志
	ErrSignInFailed = errors.New("sign in failed")
)

// SignInInput 一次外部身份登录回调的输入
// - Current 为 nil 表示当前没有登录会话
type SignInInput struct {
	Current *dto.AdapterUser
	Account dto.AdapterAccount
	Profile dto.OAuthProfile
}

// LinkingService 登录回调时的账号关联状态机
type LinkingService interface {
	// SignIn 返回本次登录最终对应的用户。
	// 身份已属于其他用户时返回 ErrAccountLinkedElsewhere 且不写入任何数据。
	SignIn(ctx context.Context, in SignInInput) (*dto.AdapterUser, error)
}

type linkingService struct {
	db          *gorm.DB
	userRepo    rdb.UserRepository
	accountRepo rdb.AccountRepository
	logger      *core.ZapLogger
	now         func() time.Time
}

func NewLinkingService(
	db *gorm.DB,
	userRepo rdb.UserRepository,
	accountRepo rdb.AccountRepository,
	logger *core.ZapLogger,
) LinkingService {
	return &linkingService{
		db:          db,
		userRepo:    userRepo,
		accountRepo: accountRepo,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *linkingService) SignIn(ctx context.Context, in SignInInput) (*dto.AdapterUser, error) {
	const operation = "LinkingService.SignIn"
	provider := in.Account.Provider

	var result *entities.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.accountRepo.GetAccount(ctx, tx, provider, in.Account.ProviderAccountID)
		if err != nil && !errors.Is(err, commonerrors.ErrRepoNotFound) {
			return err
		}

		if in.Current == nil {
			if existing != nil {
				owner, err := s.accountRepo.GetUserByAccount(ctx, tx, provider, in.Account.ProviderAccountID)
				if err != nil {
					// 身份存在但用户已封禁或已删除
					return err
				}
				result = owner
				return nil
			}
			result, err = s.signUpOrLinkByEmail(ctx, tx, in)
			return err
		}

		if existing != nil {
			if existing.UserID != in.Current.ID {
				return ErrAccountLinkedElsewhere
			}
			result, err = s.userRepo.GetUserByID(ctx, tx, in.Current.ID)
			return err
		}

		current, err := s.userRepo.GetUserByID(ctx, tx, in.Current.ID)
		if err != nil {
			return err
		}
		if err := s.accountRepo.CreateAccount(ctx, tx, adapter.AccountFromAdapter(withUser(in.Account, current))); err != nil {
			return err
		}
		if email := profileEmail(in.Profile); email != "" && needsEmailUpgrade(current) {
			now := s.now()
			if err := s.userRepo.UpdateUserFields(ctx, tx, current.ID, map[string]any{
				"email":          email,
				"email_verified": now,
			}); err != nil {
				return err
			}
			current.Email = &email
			current.EmailVerified = &now
			s.logger.Info("绑定外部账号时覆盖占位邮箱",
				zap.String("operation", operation),
				zap.String("userID", current.ID.String()),
				zap.String("provider", provider),
			)
		}
		result = current
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAccountLinkedElsewhere), rdb.IsDuplicate(err):
			s.logger.Warn("外部身份已绑定到其他用户",
				zap.String("operation", operation),
				zap.String("provider", provider),
			)
			return nil, ErrAccountLinkedElsewhere
		default:
			s.logger.Error("登录回调处理失败",
				zap.String("operation", operation),
				zap.String("provider", provider),
				zap.Error(err),
			)
			return nil, ErrSignInFailed
		}
	}

	if err := s.userRepo.TouchLastLogin(ctx, result.ID, s.now()); err != nil {
		s.logger.Warn("记录最后登录时间失败", zap.String("operation", operation), zap.String("userID", result.ID.String()), zap.Error(err))
	}
	s.logger.Info("外部身份登录成功",
		zap.String("operation", operation),
		zap.String("userID", result.ID.String()),
		zap.String("provider", provider),
		zap.Bool("linked", in.Current != nil),
	)
	return adapter.ToAdapterUser(result), nil
}

// signUpOrLinkByEmail 未登录且身份未知：邮箱命中已有用户则直接绑定，否则新建用户
func (s *linkingService) signUpOrLinkByEmail(ctx context.Context, tx *gorm.DB, in SignInInput) (*entities.User, error) {
	email := profileEmail(in.Profile)
	if email != "" {
		user, err := s.userRepo.GetActiveUserByEmail(ctx, tx, email)
		switch {
		case err == nil:
			if err := s.accountRepo.CreateAccount(ctx, tx, adapter.AccountFromAdapter(withUser(in.Account, user))); err != nil {
				return nil, err
			}
			return user, nil
		case !errors.Is(err, commonerrors.ErrRepoNotFound):
			return nil, err
		}
	}

	user := &entities.User{
		Status:   enums.UserStatusActive,
		Nickname: deref(in.Profile.Name),
		Avatar:   deref(in.Profile.Image),
	}
	if email != "" {
		now := s.now()
		user.Email = &email
		user.EmailVerified = &now
	}
	if err := s.userRepo.CreateUser(ctx, tx, user); err != nil {
		return nil, err
	}
	if err := s.accountRepo.CreateAccount(ctx, tx, adapter.AccountFromAdapter(withUser(in.Account, user))); err != nil {
		return nil, err
	}
	return user, nil
}

func withUser(account dto.AdapterAccount, user *entities.User) dto.AdapterAccount {
	account.UserID = user.ID
	return account
}

// needsEmailUpgrade 没有邮箱、占位邮箱或邮箱未验证
func needsEmailUpgrade(u *entities.User) bool {
	if u.Email == nil || *u.Email == "" {
		return true
	}
	if strings.Contains(*u.Email, constants.PlaceholderEmailFragment) {
		return true
	}
	return u.EmailVerified == nil
}

func profileEmail(p dto.OAuthProfile) string {
	if p.Email == nil {
		return ""
	}
	return strings.TrimSpace(*p.Email)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
