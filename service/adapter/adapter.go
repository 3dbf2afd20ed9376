// Package adapter 把认证流程需要的持久化操作落到关系数据库与 Redis 会话缓存上。
//
// 所有读取都只返回可认证的用户（未软删除且未封禁）；找不到时返回 nil, nil。
// 会话缓存只在写操作时失效，从不就地更新，陈旧窗口以 TTL 为上限。
package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/keenmind_auth/metrics"
	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/entities"
	"github.com/Xushengqwer/keenmind_auth/models/enums"
	"github.com/Xushengqwer/keenmind_auth/models/ids"
	"github.com/Xushengqwer/keenmind_auth/repository/rdb"
	"github.com/Xushengqwer/keenmind_auth/repository/redis"
)

var (
	// ErrEmailRequired 创建用户时必须提供邮箱
	ErrEmailRequired = errors.New("email is required")
	// ErrAccountAlreadyLinked 外部身份已绑定到某个用户
	ErrAccountAlreadyLinked = errors.New("account already linked to a user")
	// ErrAccountNotFound 解绑时外部账号不存在
	ErrAccountNotFound = errors.New("account not found")
	// ErrUserNotFound 更新时用户不存在
	ErrUserNotFound = errors.New("user not found")
)

// Adapter 认证流程的持久化契约
type Adapter interface {
	CreateUser(ctx context.Context, user dto.AdapterUser) (*dto.AdapterUser, error)
	GetUser(ctx context.Context, id ids.ID) (*dto.AdapterUser, error)
	GetUserByEmail(ctx context.Context, email string) (*dto.AdapterUser, error)
	GetUserByAccount(ctx context.Context, provider, providerAccountID string) (*dto.AdapterUser, error)
	// UpdateUser 只写入非 nil 字段，并让该用户全部会话的缓存失效
	UpdateUser(ctx context.Context, user dto.AdapterUser) (*dto.AdapterUser, error)
	// DeleteUser 深度删除：软删除、状态置 INACTIVE、删除会话与外部账号，在同一事务内完成
	DeleteUser(ctx context.Context, id ids.ID) error

	LinkAccount(ctx context.Context, account dto.AdapterAccount) error
	UnlinkAccount(ctx context.Context, provider, providerAccountID string) error

	CreateSession(ctx context.Context, session dto.AdapterSession) (*dto.AdapterSession, error)
	// GetSessionAndUser 先查缓存再查库；过期会话即使在缓存中也视为不存在
	GetSessionAndUser(ctx context.Context, sessionToken string) (*dto.SessionAndUser, error)
	UpdateSession(ctx context.Context, session dto.AdapterSession) (*dto.AdapterSession, error)
	DeleteSession(ctx context.Context, sessionToken string) (*dto.AdapterSession, error)

	CreateVerificationToken(ctx context.Context, token dto.AdapterVerificationToken) (*dto.AdapterVerificationToken, error)
	// UseVerificationToken 单次消费；不存在、已使用、已过期都返回 nil, nil，原因只记日志
	UseVerificationToken(ctx context.Context, identifier, token string) (*dto.AdapterVerificationToken, error)
}

type adapter struct {
	db          *gorm.DB
	userRepo    rdb.UserRepository
	accountRepo rdb.AccountRepository
	sessionRepo rdb.SessionRepository
	tokenRepo   rdb.VerificationTokenRepository
	cache       redis.SessionCache
	recorder    metrics.Recorder
	logger      *core.ZapLogger
	cacheTTL    time.Duration
	now         func() time.Time
}

// NewAdapter 创建 Adapter。cache 可以为 nil，此时每次都查库。
func NewAdapter(
	db *gorm.DB,
	userRepo rdb.UserRepository,
	accountRepo rdb.AccountRepository,
	sessionRepo rdb.SessionRepository,
	tokenRepo rdb.VerificationTokenRepository,
	cache redis.SessionCache,
	recorder metrics.Recorder,
	logger *core.ZapLogger,
	cacheTTL time.Duration,
) Adapter {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &adapter{
		db:          db,
		userRepo:    userRepo,
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		tokenRepo:   tokenRepo,
		cache:       cache,
		recorder:    recorder,
		logger:      logger,
		cacheTTL:    cacheTTL,
		now:         time.Now,
	}
}

// ---- 用户 ----

func (a *adapter) CreateUser(ctx context.Context, user dto.AdapterUser) (*dto.AdapterUser, error) {
	const operation = "Adapter.CreateUser"
	if user.Email == nil || strings.TrimSpace(*user.Email) == "" {
		return nil, ErrEmailRequired
	}
	entity := UserFromAdapter(user)
	if entity.Status == "" {
		entity.Status = enums.UserStatusActive
	}
	if err := a.userRepo.CreateUser(ctx, a.db, entity); err != nil {
		a.logger.Error("创建用户失败", zap.String("operation", operation), zap.Error(err))
		return nil, err
	}
	a.logger.Info("创建用户成功", zap.String("operation", operation), zap.String("userID", entity.ID.String()))
	return ToAdapterUser(entity), nil
}

func (a *adapter) GetUser(ctx context.Context, id ids.ID) (*dto.AdapterUser, error) {
	user, err := a.userRepo.GetActiveUserByID(ctx, id)
	return a.userOrNil(user, err)
}

func (a *adapter) GetUserByEmail(ctx context.Context, email string) (*dto.AdapterUser, error) {
	user, err := a.userRepo.GetActiveUserByEmail(ctx, a.db, email)
	return a.userOrNil(user, err)
}

func (a *adapter) GetUserByAccount(ctx context.Context, provider, providerAccountID string) (*dto.AdapterUser, error) {
	user, err := a.accountRepo.GetUserByAccount(ctx, a.db, provider, providerAccountID)
	return a.userOrNil(user, err)
}

func (a *adapter) userOrNil(user *entities.User, err error) (*dto.AdapterUser, error) {
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToAdapterUser(user), nil
}

func (a *adapter) UpdateUser(ctx context.Context, user dto.AdapterUser) (*dto.AdapterUser, error) {
	const operation = "Adapter.UpdateUser"
	if _, err := a.userRepo.GetUserByID(ctx, a.db, user.ID); err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, user.ID)
		}
		return nil, err
	}
	if err := a.userRepo.UpdateUserFields(ctx, a.db, user.ID, UpdateFields(user)); err != nil {
		a.logger.Error("更新用户失败", zap.String("operation", operation), zap.String("userID", user.ID.String()), zap.Error(err))
		return nil, err
	}
	a.invalidateUserSessions(ctx, user.ID)

	updated, err := a.userRepo.GetUserByID(ctx, a.db, user.ID)
	if err != nil {
		return nil, err
	}
	return ToAdapterUser(updated), nil
}

func (a *adapter) DeleteUser(ctx context.Context, id ids.ID) error {
	const operation = "Adapter.DeleteUser"
	var tokens []string
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if tokens, err = a.sessionRepo.DeleteSessionsByUser(ctx, tx, id); err != nil {
			return err
		}
		if err := a.accountRepo.DeleteAccountsByUser(ctx, tx, id); err != nil {
			return err
		}
		return a.userRepo.SoftDeleteUser(ctx, tx, id)
	})
	if err != nil {
		a.logger.Error("删除用户事务失败", zap.String("operation", operation), zap.String("userID", id.String()), zap.Error(err))
		return err
	}
	a.invalidate(ctx, tokens...)
	a.logger.Info("用户已删除", zap.String("operation", operation), zap.String("userID", id.String()), zap.Int("sessions", len(tokens)))
	return nil
}

// ---- 外部账号 ----

func (a *adapter) LinkAccount(ctx context.Context, account dto.AdapterAccount) error {
	if err := a.accountRepo.CreateAccount(ctx, a.db, AccountFromAdapter(account)); err != nil {
		if rdb.IsDuplicate(err) {
			return ErrAccountAlreadyLinked
		}
		return err
	}
	return nil
}

func (a *adapter) UnlinkAccount(ctx context.Context, provider, providerAccountID string) error {
	if err := a.accountRepo.DeleteAccount(ctx, a.db, provider, providerAccountID); err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	return nil
}

// ---- 会话 ----

func (a *adapter) CreateSession(ctx context.Context, session dto.AdapterSession) (*dto.AdapterSession, error) {
	entity := &entities.Session{
		SessionToken: session.SessionToken,
		UserID:       session.UserID,
		Expires:      session.Expires,
		UserAgent:    truncate(session.UserAgent, 512),
		IPAddress:    truncate(session.IPAddress, 64),
		IsMobile:     session.IsMobile,
	}
	if err := a.sessionRepo.CreateSession(ctx, entity); err != nil {
		return nil, err
	}
	return ToAdapterSession(entity), nil
}

func (a *adapter) GetSessionAndUser(ctx context.Context, sessionToken string) (*dto.SessionAndUser, error) {
	const operation = "Adapter.GetSessionAndUser"
	now := a.now()

	if a.cache != nil {
		cached, err := a.cache.Get(ctx, sessionToken)
		switch {
		case err == nil:
			if !cached.Session.Expires.After(now) {
				a.invalidate(ctx, sessionToken)
				return nil, nil
			}
			a.recorder.RecordSessionCache(true)
			return cached, nil
		case errors.Is(err, commonerrors.ErrRepoNotFound):
		default:
			a.logger.Warn("读取会话缓存失败，回退到数据库", zap.String("operation", operation), zap.Error(err))
		}
		a.recorder.RecordSessionCache(false)
	}

	session, err := a.sessionRepo.GetSessionByToken(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if session.IsExpired(now) {
		if _, err := a.sessionRepo.DeleteSession(ctx, a.db, sessionToken); err != nil && !errors.Is(err, commonerrors.ErrRepoNotFound) {
			a.logger.Warn("清理过期会话失败", zap.String("operation", operation), zap.Error(err))
		}
		return nil, nil
	}
	user, err := a.userRepo.GetActiveUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, nil
		}
		return nil, err
	}

	result := &dto.SessionAndUser{Session: *ToAdapterSession(session), User: *ToAdapterUser(user)}
	if a.cache != nil {
		ttl := a.cacheTTL
		if remaining := session.Expires.Sub(now); remaining < ttl {
			ttl = remaining
		}
		if err := a.cache.Set(ctx, sessionToken, result, ttl); err != nil {
			a.logger.Warn("写入会话缓存失败", zap.String("operation", operation), zap.Error(err))
		}
	}
	return result, nil
}

func (a *adapter) UpdateSession(ctx context.Context, session dto.AdapterSession) (*dto.AdapterSession, error) {
	if err := a.sessionRepo.UpdateSessionExpires(ctx, session.SessionToken, session.Expires); err != nil {
		return nil, err
	}
	a.invalidate(ctx, session.SessionToken)
	updated, err := a.sessionRepo.GetSessionByToken(ctx, session.SessionToken)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToAdapterSession(updated), nil
}

func (a *adapter) DeleteSession(ctx context.Context, sessionToken string) (*dto.AdapterSession, error) {
	deleted, err := a.sessionRepo.DeleteSession(ctx, a.db, sessionToken)
	a.invalidate(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToAdapterSession(deleted), nil
}

// ---- 验证令牌 ----

func (a *adapter) CreateVerificationToken(ctx context.Context, token dto.AdapterVerificationToken) (*dto.AdapterVerificationToken, error) {
	if token.Type == "" {
		token.Type = enums.TokenTypeEmailVerification
	}
	entity := &entities.VerificationToken{
		Identifier: token.Identifier,
		Token:      token.Token,
		Expires:    token.Expires,
		Type:       token.Type,
		CreatedIP:  truncate(token.CreatedIP, 64),
	}
	if err := a.tokenRepo.CreateToken(ctx, entity); err != nil {
		return nil, err
	}
	return &token, nil
}

func (a *adapter) UseVerificationToken(ctx context.Context, identifier, token string) (*dto.AdapterVerificationToken, error) {
	const operation = "Adapter.UseVerificationToken"
	used, err := a.tokenRepo.UseToken(ctx, identifier, token, a.now())
	if err != nil {
		var reason string
		switch {
		case errors.Is(err, commonerrors.ErrRepoNotFound):
			reason = "not_found"
		case errors.Is(err, rdb.ErrTokenUsed):
			reason = "already_used"
		case errors.Is(err, rdb.ErrTokenExpired):
			reason = "expired"
		default:
			a.logger.Error("消费验证令牌失败", zap.String("operation", operation), zap.Error(err))
			return nil, err
		}
		a.logger.Warn("验证令牌不可用", zap.String("operation", operation), zap.String("reason", reason))
		return nil, nil
	}
	return &dto.AdapterVerificationToken{
		Identifier: used.Identifier,
		Token:      used.Token,
		Expires:    used.Expires,
		Type:       used.Type,
		CreatedIP:  used.CreatedIP,
	}, nil
}

// ---- 缓存 ----

func (a *adapter) invalidate(ctx context.Context, tokens ...string) {
	if a.cache == nil || len(tokens) == 0 {
		return
	}
	if err := a.cache.Invalidate(ctx, tokens...); err != nil {
		a.logger.Warn("会话缓存失效失败", zap.Error(err))
	}
}

func (a *adapter) invalidateUserSessions(ctx context.Context, userID ids.ID) {
	if a.cache == nil {
		return
	}
	tokens, err := a.sessionRepo.ListSessionTokensByUser(ctx, userID)
	if err != nil {
		a.logger.Warn("查询用户会话失败，缓存将在 TTL 后过期", zap.String("userID", userID.String()), zap.Error(err))
		return
	}
	a.invalidate(ctx, tokens...)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
