package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Xushengqwer/go-common/core"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/service/adapter"
	"github.com/Xushengqwer/keenmind_auth/service/token"
)

const sessionTokenLength = 48

// ErrNoSession Cookie 缺失或会话已失效
var ErrNoSession = errors.New("no session")

// ClientMeta 创建会话时记录的客户端信息
type ClientMeta struct {
	UserAgent string
	IPAddress string
	IsMobile  bool
}

// Issued 登录成功后需要写入 Cookie 的值
type Issued struct {
	Value   string
	Expires time.Time
}

// Current 解析出的当前会话
// - Refreshed 非 nil 时调用方应重写 Cookie
type Current struct {
	User      dto.AdapterUser
	Expires   time.Time
	Refreshed *Issued
}

// Handlers 一种会话策略的处理集合
type Handlers interface {
	Config() Config
	// Establish 为已认证用户建立会话
	Establish(ctx context.Context, user *dto.AdapterUser, meta ClientMeta) (*Issued, error)
	// Resolve 由 Cookie 值还原会话，失效时返回 ErrNoSession（令牌策略返回 token 包中的具体错误）
	Resolve(ctx context.Context, value string) (*Current, error)
	// SignOut 让会话失效，value 为空时什么也不做
	SignOut(ctx context.Context, value string) error
}

// Selector 按策略取处理集合
type Selector struct {
	database Handlers
	token    Handlers
}

func NewSelector(database, token Handlers) *Selector {
	return &Selector{database: database, token: token}
}

func (s *Selector) Handlers(st Strategy) (Handlers, error) {
	switch st {
	case Database:
		return s.database, nil
	case Token:
		return s.token, nil
	default:
		return nil, fmt.Errorf("未知的会话策略: %q", st)
	}
}

// ---- 数据库会话 ----

type databaseHandlers struct {
	cfg     Config
	adapter adapter.Adapter
	logger  *core.ZapLogger
	now     func() time.Time
}

func NewDatabaseHandlers(cfg Config, ad adapter.Adapter, logger *core.ZapLogger) Handlers {
	return &databaseHandlers{cfg: cfg, adapter: ad, logger: logger, now: time.Now}
}

func (h *databaseHandlers) Config() Config { return h.cfg }

func (h *databaseHandlers) Establish(ctx context.Context, user *dto.AdapterUser, meta ClientMeta) (*Issued, error) {
	value, err := gonanoid.New(sessionTokenLength)
	if err != nil {
		return nil, fmt.Errorf("生成会话令牌失败: %w", err)
	}
	session, err := h.adapter.CreateSession(ctx, dto.AdapterSession{
		SessionToken: value,
		UserID:       user.ID,
		Expires:      h.now().Add(h.cfg.MaxAge),
		UserAgent:    meta.UserAgent,
		IPAddress:    meta.IPAddress,
		IsMobile:     meta.IsMobile,
	})
	if err != nil {
		return nil, err
	}
	return &Issued{Value: value, Expires: session.Expires}, nil
}

func (h *databaseHandlers) Resolve(ctx context.Context, value string) (*Current, error) {
	if value == "" {
		return nil, ErrNoSession
	}
	found, err := h.adapter.GetSessionAndUser(ctx, value)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNoSession
	}
	current := &Current{User: found.User, Expires: found.Session.Expires}

	// 剩余时间少于 maxAge - updateAge 才续期
	now := h.now()
	if found.Session.Expires.Sub(now) < h.cfg.MaxAge-h.cfg.UpdateAge {
		updated, err := h.adapter.UpdateSession(ctx, dto.AdapterSession{
			SessionToken: value,
			Expires:      now.Add(h.cfg.MaxAge),
		})
		if err != nil {
			h.logger.Warn("会话续期失败", zap.String("userID", found.User.ID.String()), zap.Error(err))
		} else if updated != nil {
			current.Expires = updated.Expires
			current.Refreshed = &Issued{Value: value, Expires: updated.Expires}
		}
	}
	return current, nil
}

func (h *databaseHandlers) SignOut(ctx context.Context, value string) error {
	if value == "" {
		return nil
	}
	_, err := h.adapter.DeleteSession(ctx, value)
	return err
}

// ---- 令牌会话 ----

type tokenHandlers struct {
	cfg     Config
	tokens  token.AuthTokenService
	adapter adapter.Adapter
}

// NewTokenHandlers 令牌自包含，但每次解析仍回查一次用户，已删除或封禁的用户手里的令牌随之失效
func NewTokenHandlers(cfg Config, tokens token.AuthTokenService, ad adapter.Adapter) Handlers {
	return &tokenHandlers{cfg: cfg, tokens: tokens, adapter: ad}
}

func (h *tokenHandlers) Config() Config { return h.cfg }

func (h *tokenHandlers) Establish(ctx context.Context, user *dto.AdapterUser, _ ClientMeta) (*Issued, error) {
	signed, claims, err := h.tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}
	return &Issued{Value: signed, Expires: claims.ExpiresAt.Time}, nil
}

func (h *tokenHandlers) Resolve(ctx context.Context, value string) (*Current, error) {
	claims, err := h.tokens.Resolve(ctx, value)
	if err != nil {
		return nil, err
	}
	user, err := h.adapter.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s is no longer active", token.ErrTokenInvalid, claims.UserID)
	}
	return &Current{User: *user, Expires: claims.ExpiresAt.Time}, nil
}

func (h *tokenHandlers) SignOut(ctx context.Context, value string) error {
	return h.tokens.Revoke(ctx, value)
}
