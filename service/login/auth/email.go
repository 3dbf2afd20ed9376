// Package auth 邮件魔法链接登录。
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"github.com/go-playground/validator/v10"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/Xushengqwer/keenmind_auth/config"
	"github.com/Xushengqwer/keenmind_auth/constants"
	"github.com/Xushengqwer/keenmind_auth/dependencies"
	"github.com/Xushengqwer/keenmind_auth/metrics"
	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/enums"
	"github.com/Xushengqwer/keenmind_auth/repository/redis"
	"github.com/Xushengqwer/keenmind_auth/service/adapter"
	"github.com/Xushengqwer/keenmind_auth/service/login/oAuth"
	"github.com/Xushengqwer/keenmind_auth/service/mail"
)

const rawTokenLength = 32

var (
	// ErrInvalidEmail 邮箱为空或格式错误
	ErrInvalidEmail = errors.New("invalid email")
	// ErrCooldown 同一邮箱发送过于频繁
	ErrCooldown = errors.New("email recently sent, try again later")
	// ErrVerificationFailed 链接无效、已使用或已过期
	ErrVerificationFailed = errors.New("verification failed")
)

// EmailAuthService 邮件魔法链接
type EmailAuthService interface {
	// RequestLink 生成一次性令牌并把登录链接发到邮箱，数据库里只保存令牌的哈希
	RequestLink(ctx context.Context, email, state, ip string) error

	// Verify 消费令牌并返回对应用户；邮箱未注册时直接创建
	Verify(ctx context.Context, email, token string) (*dto.AdapterUser, error)
}

type emailAuthService struct {
	adapter  adapter.Adapter
	cooldown redis.EmailCooldownRepo
	mailer   dependencies.Mailer
	recorder metrics.Recorder
	logger   *core.ZapLogger
	validate *validator.Validate
	hashKey  []byte
	baseURL  string
	window   time.Duration
	now      func() time.Time
}

// NewEmailAuthService SMTP 主机、发件人与主密钥必填
func NewEmailAuthService(
	cfg *config.EmailConfig,
	authCfg *config.AuthConfig,
	ad adapter.Adapter,
	cooldown redis.EmailCooldownRepo,
	mailer dependencies.Mailer,
	recorder metrics.Recorder,
	logger *core.ZapLogger,
) (EmailAuthService, error) {
	var missing []string
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		missing = append(missing, "smtp_host")
	}
	if strings.TrimSpace(cfg.From) == "" {
		missing = append(missing, "from")
	}
	if len(missing) > 0 {
		return nil, errors.Join(oAuth.ErrMissingConfig, errors.New("email 缺少 "+strings.Join(missing, ", ")))
	}
	key, err := dependencies.DeriveKey(authCfg.Secret, dependencies.KeyInfoTokenHash, 32)
	if err != nil {
		return nil, err
	}
	window := cfg.Cooldown
	if window <= 0 {
		window = constants.EmailCooldown
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &emailAuthService{
		adapter:  ad,
		cooldown: cooldown,
		mailer:   mailer,
		recorder: recorder,
		logger:   logger,
		validate: validator.New(),
		hashKey:  key,
		baseURL:  strings.TrimRight(authCfg.BaseURL, "/"),
		window:   window,
		now:      time.Now,
	}, nil
}

func (s *emailAuthService) RequestLink(ctx context.Context, email, state, ip string) error {
	const operation = "EmailAuthService.RequestLink"
	email, err := s.normalize(email)
	if err != nil {
		return err
	}

	acquired, err := s.cooldown.Acquire(ctx, email, s.window)
	if err != nil {
		s.logger.Error("检查邮件发送冷却失败", zap.String("operation", operation), zap.Error(err))
		return commonerrors.ErrServiceBusy
	}
	if !acquired {
		s.logger.Warn("邮件发送过于频繁", zap.String("operation", operation))
		return ErrCooldown
	}

	raw, err := gonanoid.New(rawTokenLength)
	if err != nil {
		s.release(ctx, email)
		return commonerrors.ErrSystemError
	}
	if _, err := s.adapter.CreateVerificationToken(ctx, dto.AdapterVerificationToken{
		Identifier: email,
		Token:      s.hashToken(raw),
		Expires:    s.now().Add(constants.VerificationTokenTTL),
		Type:       enums.TokenTypeEmailVerification,
		CreatedIP:  ip,
	}); err != nil {
		s.logger.Error("保存验证令牌失败", zap.String("operation", operation), zap.Error(err))
		s.release(ctx, email)
		return commonerrors.ErrSystemError
	}

	link := s.linkURL(email, raw, state)
	msg, err := mail.BuildVerificationMessage(link, mail.HostOf(s.baseURL))
	if err != nil {
		s.release(ctx, email)
		return commonerrors.ErrSystemError
	}
	if err := s.mailer.Send(ctx, email, msg.Subject, msg.HTML, msg.Text); err != nil {
		s.logger.Error("发送登录邮件失败", zap.String("operation", operation), zap.Error(err))
		s.release(ctx, email)
		return commonerrors.ErrServiceBusy
	}
	s.recorder.RecordMagicLinkSent()
	s.logger.Info("登录邮件已发送", zap.String("operation", operation), zap.String("ip", ip))
	return nil
}

func (s *emailAuthService) Verify(ctx context.Context, email, token string) (*dto.AdapterUser, error) {
	const operation = "EmailAuthService.Verify"
	email, err := s.normalize(email)
	if err != nil || token == "" {
		return nil, ErrVerificationFailed
	}

	used, err := s.adapter.UseVerificationToken(ctx, email, s.hashToken(token))
	if err != nil {
		s.logger.Error("消费验证令牌失败", zap.String("operation", operation), zap.Error(err))
		return nil, commonerrors.ErrSystemError
	}
	if used == nil {
		return nil, ErrVerificationFailed
	}

	now := s.now()
	user, err := s.adapter.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, commonerrors.ErrSystemError
	}
	if user == nil {
		user, err = s.adapter.CreateUser(ctx, dto.AdapterUser{Email: &email, EmailVerified: &now, LastLoginAt: &now})
		if err != nil {
			s.logger.Error("邮件登录创建用户失败", zap.String("operation", operation), zap.Error(err))
			return nil, commonerrors.ErrSystemError
		}
		return user, nil
	}

	update := dto.AdapterUser{ID: user.ID, LastLoginAt: &now}
	if user.EmailVerified == nil {
		update.EmailVerified = &now
	}
	updated, err := s.adapter.UpdateUser(ctx, update)
	if err != nil {
		s.logger.Error("邮件登录更新用户失败", zap.String("operation", operation), zap.String("userID", user.ID.String()), zap.Error(err))
		return nil, commonerrors.ErrSystemError
	}
	return updated, nil
}

func (s *emailAuthService) normalize(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// hashToken HMAC-SHA256，密钥由主密钥派生
func (s *emailAuthService) hashToken(raw string) string {
	mac := hmac.New(sha256.New, s.hashKey)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *emailAuthService) linkURL(email, raw, state string) string {
	q := url.Values{}
	q.Set("token", raw)
	q.Set("email", email)
	if state != "" {
		q.Set("state", state)
	}
	return oAuth.CallbackURL(s.baseURL, enums.ProviderEmail) + "?" + q.Encode()
}

func (s *emailAuthService) release(ctx context.Context, email string) {
	if err := s.cooldown.Release(ctx, email); err != nil {
		s.logger.Warn("释放邮件冷却失败", zap.Error(err))
	}
}
