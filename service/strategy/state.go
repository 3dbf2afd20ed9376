package strategy

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"

	"github.com/Xushengqwer/keenmind_auth/constants"
	"github.com/Xushengqwer/keenmind_auth/dependencies"
	"github.com/Xushengqwer/keenmind_auth/models/enums"
)

const (
	stateVersion = 1
	stateName    = "oauth_state"
	linkName     = "email_state"

	// 签发方与校验方之间允许的时钟偏差
	stateClockSkew = time.Minute
)

// ErrInvalidState state 签名错误、过期、版本或策略未知
var ErrInvalidState = errors.New("invalid state")

// State 随 OAuth 授权请求或邮件链接往返的载荷
type State struct {
	Version    int      `json:"v"`
	Strategy   Strategy `json:"s"`
	Provider   string   `json:"p"`
	RedirectTo string   `json:"r,omitempty"`
	Nonce      string   `json:"n"`
	IssuedAt   int64    `json:"t"`
}

// StateCodec 签名并加密 state。
// OAuth 授权往返与邮件链接使用不同的名称和有效期，两者的密文不能互换。
type StateCodec struct {
	oauth      *securecookie.SecureCookie
	link       *securecookie.SecureCookie
	maxAge     time.Duration
	linkMaxAge time.Duration
	now        func() time.Time
}

// StateOption 调整 StateCodec
type StateOption func(*StateCodec)

// WithClock 替换时钟
func WithClock(now func() time.Time) StateOption {
	return func(c *StateCodec) { c.now = now }
}

// WithLinkMaxAge 邮件链接 state 的有效期，默认与验证令牌一致
func WithLinkMaxAge(d time.Duration) StateOption {
	return func(c *StateCodec) {
		if d > 0 {
			c.linkMaxAge = d
		}
	}
}

// NewStateCodec 密钥由主密钥派生，maxAge <= 0 时使用 15 分钟
func NewStateCodec(secret string, maxAge time.Duration, opts ...StateOption) (*StateCodec, error) {
	hashKey, err := dependencies.DeriveKey(secret, dependencies.KeyInfoStateHash, 64)
	if err != nil {
		return nil, err
	}
	blockKey, err := dependencies.DeriveKey(secret, dependencies.KeyInfoStateBlock, 32)
	if err != nil {
		return nil, err
	}
	if maxAge <= 0 {
		maxAge = constants.StateMaxAge
	}
	c := &StateCodec{
		oauth:      newStateCookie(hashKey, blockKey),
		link:       newStateCookie(hashKey, blockKey),
		maxAge:     maxAge,
		linkMaxAge: constants.VerificationTokenTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// 有效期由 State.IssuedAt 判断，securecookie 自带的时间戳检查关闭
func newStateCookie(hashKey, blockKey []byte) *securecookie.SecureCookie {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(0)
	sc.SetSerializer(securecookie.JSONEncoder{})
	return sc
}

// MaxAge OAuth state 的有效期，nonce Cookie 与之同寿
func (c *StateCodec) MaxAge() time.Duration { return c.maxAge }

// NewState 填入版本、签发时间与随机 nonce
func (c *StateCodec) NewState(s Strategy, provider, redirectTo string) State {
	return State{
		Version:    stateVersion,
		Strategy:   s,
		Provider:   provider,
		RedirectTo: redirectTo,
		Nonce:      uuid.NewString(),
		IssuedAt:   c.now().Unix(),
	}
}

// Seal 编码 OAuth state
func (c *StateCodec) Seal(st State) (string, error) {
	if !st.Strategy.IsValid() {
		return "", fmt.Errorf("%w: strategy %q", ErrInvalidState, st.Strategy)
	}
	encoded, err := c.oauth.Encode(stateName, st)
	if err != nil {
		return "", fmt.Errorf("编码 state 失败: %w", err)
	}
	return encoded, nil
}

func (c *StateCodec) Encode(s Strategy, provider, redirectTo string) (string, error) {
	return c.Seal(c.NewState(s, provider, redirectTo))
}

func (c *StateCodec) Decode(value string) (*State, error) {
	return c.decode(c.oauth, stateName, c.maxAge, value)
}

// EncodeLink 邮件链接里的 state，固定为数据库会话策略
func (c *StateCodec) EncodeLink(redirectTo string) (string, error) {
	encoded, err := c.link.Encode(linkName, c.NewState(Database, enums.ProviderEmail, redirectTo))
	if err != nil {
		return "", fmt.Errorf("编码邮件链接 state 失败: %w", err)
	}
	return encoded, nil
}

func (c *StateCodec) DecodeLink(value string) (*State, error) {
	return c.decode(c.link, linkName, c.linkMaxAge, value)
}

func (c *StateCodec) decode(sc *securecookie.SecureCookie, name string, maxAge time.Duration, value string) (*State, error) {
	if value == "" {
		return nil, ErrInvalidState
	}
	var st State
	if err := sc.Decode(name, value, &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if st.Version != stateVersion {
		return nil, fmt.Errorf("%w: version %d", ErrInvalidState, st.Version)
	}
	if !st.Strategy.IsValid() {
		return nil, fmt.Errorf("%w: strategy %q", ErrInvalidState, st.Strategy)
	}
	age := c.now().Sub(time.Unix(st.IssuedAt, 0))
	if age > maxAge || age < -stateClockSkew {
		return nil, fmt.Errorf("%w: issued %s ago", ErrInvalidState, age.Truncate(time.Second))
	}
	return &st, nil
}
