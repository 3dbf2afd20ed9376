package token

import (
	"context"
	"errors"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	"github.com/Xushengqwer/keenmind_auth/dependencies"
	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/repository/redis"
)

var (
	// ErrTokenMissing 请求中没有令牌
	ErrTokenMissing = errors.New("token missing")
	// ErrTokenInvalid 签名、签发方或声明不合法
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired 令牌已过期
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenRevoked 令牌的 JTI 已被吊销
	ErrTokenRevoked = errors.New("token revoked")
)

// AuthTokenService 令牌会话策略：签发、解析、吊销。
// - 令牌自包含，没有服务端会话行；登出只能把 JTI 写入吊销名单。
type AuthTokenService interface {
	// Issue 为用户签发令牌
	Issue(ctx context.Context, user *dto.AdapterUser) (string, *dependencies.SessionClaims, error)

	// Resolve 解析令牌并检查吊销名单。返回的错误为 ErrTokenMissing / ErrTokenInvalid / ErrTokenExpired / ErrTokenRevoked 之一，
	// 吊销名单不可用时返回 commonerrors.ErrServiceBusy。
	Resolve(ctx context.Context, tokenString string) (*dependencies.SessionClaims, error)

	// Revoke 吊销令牌。令牌无法解析或已过期时视为成功，目标状态已经达到。
	Revoke(ctx context.Context, tokenString string) error
}

type authTokenService struct {
	tokenBlackRepo redis.TokenBlackRepo
	jwtUtil        dependencies.JWTTokenInterface
	logger         *core.ZapLogger
	now            func() time.Time
}

// NewAuthTokenService 创建一个新的 authTokenService 实例。
func NewAuthTokenService(
	tokenBlackRepo redis.TokenBlackRepo,
	jwtUtil dependencies.JWTTokenInterface,
	logger *core.ZapLogger,
) AuthTokenService {
	return &authTokenService{
		tokenBlackRepo: tokenBlackRepo,
		jwtUtil:        jwtUtil,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *authTokenService) Issue(ctx context.Context, user *dto.AdapterUser) (string, *dependencies.SessionClaims, error) {
	const operation = "AuthTokenService.Issue"
	subject := dependencies.SessionSubject{UserID: user.ID, Email: user.EmailValue()}
	if user.Name != nil {
		subject.Name = *user.Name
	}
	if user.Image != nil {
		subject.Picture = *user.Image
	}
	signed, claims, err := s.jwtUtil.GenerateSessionToken(subject)
	if err != nil {
		s.logger.Error("签发会话令牌失败",
			zap.String("operation", operation),
			zap.String("userID", user.ID.String()),
			zap.Error(err),
		)
		return "", nil, commonerrors.ErrSystemError
	}
	s.logger.Info("签发会话令牌",
		zap.String("operation", operation),
		zap.String("userID", user.ID.String()),
		zap.String("sid", claims.SessionID),
	)
	return signed, claims, nil
}

func (s *authTokenService) Resolve(ctx context.Context, tokenString string) (*dependencies.SessionClaims, error) {
	const operation = "AuthTokenService.Resolve"
	if tokenString == "" {
		return nil, ErrTokenMissing
	}
	claims, err := s.jwtUtil.ParseSessionToken(tokenString)
	if err != nil {
		if dependencies.IsTokenExpired(err) {
			return nil, ErrTokenExpired
		}
		s.logger.Debug("会话令牌无效", zap.String("operation", operation), zap.Error(err))
		return nil, ErrTokenInvalid
	}
	// 声明里已校验过 exp，这里再显式比较一次
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(s.now()) {
		return nil, ErrTokenExpired
	}

	revoked, err := s.tokenBlackRepo.IsJtiBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("检查 JTI 吊销名单失败",
			zap.String("operation", operation),
			zap.String("userID", claims.UserID.String()),
			zap.Error(err),
		)
		return nil, commonerrors.ErrServiceBusy
	}
	if revoked {
		s.logger.Warn("使用已吊销的令牌",
			zap.String("operation", operation),
			zap.String("userID", claims.UserID.String()),
			zap.String("jti", claims.ID),
		)
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

func (s *authTokenService) Revoke(ctx context.Context, tokenString string) error {
	const operation = "AuthTokenService.Revoke"
	if tokenString == "" {
		return nil
	}
	claims, err := s.jwtUtil.ParseSessionToken(tokenString)
	if err != nil {
		s.logger.Warn("登出时解析令牌失败或令牌无效", zap.String("operation", operation), zap.Error(err))
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}

	// 名单条目与令牌同时过期
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.tokenBlackRepo.AddJtiToBlacklist(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("将 JTI 加入吊销名单失败",
			zap.String("operation", operation),
			zap.String("jti", claims.ID),
			zap.String("userID", claims.UserID.String()),
			zap.Duration("ttl", ttl),
			zap.Error(err),
		)
		return commonerrors.ErrServiceBusy
	}
	s.logger.Info("令牌已吊销",
		zap.String("operation", operation),
		zap.String("jti", claims.ID),
		zap.String("userID", claims.UserID.String()),
	)
	return nil
}
