package dependencies

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Xushengqwer/keenmind_auth/models/ids"
)

// JWTTokenInterface 令牌会话策略使用的 JWT 工具
type JWTTokenInterface interface {
	// GenerateSessionToken 为用户签发会话令牌
	// - 输出: 令牌字符串、写入令牌的声明（含 jti 与过期时间）
	GenerateSessionToken(subject SessionSubject) (string, *SessionClaims, error)

	// ParseSessionToken 解析并验证会话令牌。过期时返回的错误满足 IsTokenExpired。
	ParseSessionToken(tokenString string) (*SessionClaims, error)
}

// SessionSubject 写入令牌的用户信息
type SessionSubject struct {
	UserID  ids.ID
	Email   string
	Name    string
	Picture string
}

// SessionClaims 令牌会话的声明
type SessionClaims struct {
	UserID  ids.ID `json:"uid"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	// SessionID 每次登录唯一，用于区分同一用户的多次登录
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// JWTUtility 实现 JWTTokenInterface 接口的结构体
type JWTUtility struct {
	key    []byte
	issuer string
	maxAge time.Duration
	now    func() time.Time
}

// NewJWTUtility 创建 JWTUtility 实例，签名密钥由 AUTH_SECRET 派生
func NewJWTUtility(secret, issuer string, maxAge time.Duration) (*JWTUtility, error) {
	key, err := DeriveKey(secret, KeyInfoJWT, 32)
	if err != nil {
		return nil, err
	}
	return &JWTUtility{key: key, issuer: issuer, maxAge: maxAge, now: time.Now}, nil
}

// GenerateSessionToken 签发 HS256 令牌，exp = iat + maxAge
func (ju *JWTUtility) GenerateSessionToken(subject SessionSubject) (string, *SessionClaims, error) {
	now := ju.now()
	claims := &SessionClaims{
		UserID:    subject.UserID,
		Email:     subject.Email,
		Name:      subject.Name,
		Picture:   subject.Picture,
		SessionID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ju.issuer,
			Subject:   subject.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ju.maxAge)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ju.key)
	if err != nil {
		return "", nil, fmt.Errorf("签名令牌失败: %w", err)
	}
	return signed, claims, nil
}

// ParseSessionToken 解析并验证会话令牌
func (ju *JWTUtility) ParseSessionToken(tokenString string) (*SessionClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(ju.issuer),
		jwt.WithTimeFunc(ju.now),
	)
	token, err := parser.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return ju.key, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.UserID.IsZero() {
		return nil, errors.New("无效的JWT声明")
	}
	return claims, nil
}

// IsTokenExpired 判断解析错误是否由令牌过期引起
func IsTokenExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
