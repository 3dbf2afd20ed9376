package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Xushengqwer/keenmind_auth/constants"
)

// TokenBlackRepo 令牌会话策略下的 JTI 吊销名单。
// - 移动端登出时把令牌的 JTI 写入名单，存活到令牌自然过期为止。
// - Redis 重启会丢失名单，被吊销的令牌在剩余有效期内会重新可用。
type TokenBlackRepo interface {
	// AddJtiToBlacklist ttl 应等于令牌剩余有效期，ttl <= 0 时令牌已过期，无需记录。
	AddJtiToBlacklist(ctx context.Context, jti string, ttl time.Duration) error

	// IsJtiBlacklisted JTI 不在名单中返回 false, nil。
	IsJtiBlacklisted(ctx context.Context, jti string) (bool, error)
}

type tokenBlackRepo struct {
	client *redis.Client
}

// NewTokenBlacklistRepo 创建一个新的 tokenBlackRepo 实例。
func NewTokenBlacklistRepo(client *redis.Client) TokenBlackRepo {
	return &tokenBlackRepo{client: client}
}

// 示例键: "keenmind:auth:revoked:jti:xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"
func (r *tokenBlackRepo) buildBlacklistKey(jti string) string {
	return constants.RevokedJTIKeyPrefix + ":jti:" + jti
}

func (r *tokenBlackRepo) AddJtiToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 || jti == "" {
		return nil
	}
	if err := r.client.Set(ctx, r.buildBlacklistKey(jti), "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("tokenBlackRepo.AddJtiToBlacklist: 将 JTI 加入吊销名单失败 (JTI: %s): %w", jti, err)
	}
	return nil
}

func (r *tokenBlackRepo) IsJtiBlacklisted(ctx context.Context, jti string) (bool, error) {
	exists, err := r.client.Exists(ctx, r.buildBlacklistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("tokenBlackRepo.IsJtiBlacklisted: 检查 JTI 吊销名单失败 (JTI: %s): %w", jti, err)
	}
	return exists == 1, nil
}
