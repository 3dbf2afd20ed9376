package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/redis/go-redis/v9"

	"github.com/Xushengqwer/keenmind_auth/constants"
	"github.com/Xushengqwer/keenmind_auth/models/dto"
)

// SessionCache 数据库会话的读缓存。
// - 只缓存 GetSessionAndUser 的结果，任何写操作都应调用 Invalidate 而不是更新缓存。
// - 缓存内容可能陈旧，最长不超过写入时给定的 TTL。
type SessionCache interface {
	// Get 未命中返回 commonerrors.ErrRepoNotFound。
	Get(ctx context.Context, sessionToken string) (*dto.SessionAndUser, error)

	Set(ctx context.Context, sessionToken string, value *dto.SessionAndUser, ttl time.Duration) error

	// Invalidate 删除一个或多个会话的缓存，key 不存在不算错误。
	Invalidate(ctx context.Context, sessionTokens ...string) error
}

type sessionCache struct {
	client *redis.Client
}

// NewSessionCache 创建一个新的 sessionCache 实例。
func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{client: client}
}

// buildKey 示例键: "keenmind:auth:session:AbC123..."
func (r *sessionCache) buildKey(sessionToken string) string {
	return constants.SessionCacheKeyPrefix + ":" + sessionToken
}

func (r *sessionCache) Get(ctx context.Context, sessionToken string) (*dto.SessionAndUser, error) {
	raw, err := r.client.Get(ctx, r.buildKey(sessionToken)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, commonerrors.ErrRepoNotFound
		}
		return nil, fmt.Errorf("sessionCache.Get: 读取会话缓存失败: %w", err)
	}
	var value dto.SessionAndUser
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("sessionCache.Get: 会话缓存反序列化失败: %w", err)
	}
	return &value, nil
}

func (r *sessionCache) Set(ctx context.Context, sessionToken string, value *dto.SessionAndUser, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("sessionCache.Set: 会话缓存序列化失败: %w", err)
	}
	if err := r.client.Set(ctx, r.buildKey(sessionToken), raw, ttl).Err(); err != nil {
		return fmt.Errorf("sessionCache.Set: 写入会话缓存失败: %w", err)
	}
	return nil
}

func (r *sessionCache) Invalidate(ctx context.Context, sessionTokens ...string) error {
	if len(sessionTokens) == 0 {
		return nil
	}
	keys := make([]string, 0, len(sessionTokens))
	for _, token := range sessionTokens {
		keys = append(keys, r.buildKey(token))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("sessionCache.Invalidate: 删除会话缓存失败: %w", err)
	}
	return nil
}
