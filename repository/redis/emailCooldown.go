package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Xushengqwer/keenmind_auth/constants"
)

// EmailCooldownRepo 限制同一邮箱发送登录链接的频率
type EmailCooldownRepo interface {
	// Acquire 尝试占用冷却窗口。
	// - 返回 true 表示可以发送；false 表示窗口内已经发送过。
	Acquire(ctx context.Context, email string, window time.Duration) (bool, error)

	// Release 发送失败时释放窗口，允许用户立即重试。
	Release(ctx context.Context, email string) error
}

type emailCooldownRepo struct {
	client *redis.Client
}

// NewEmailCooldownRepo 创建一个新的 emailCooldownRepo 实例。
func NewEmailCooldownRepo(client *redis.Client) EmailCooldownRepo {
	return &emailCooldownRepo{client: client}
}

// 邮箱大小写不敏感
func (r *emailCooldownRepo) buildKey(email string) string {
	return constants.EmailCooldownKeyPrefix + ":" + strings.ToLower(strings.TrimSpace(email))
}

func (r *emailCooldownRepo) Acquire(ctx context.Context, email string, window time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.buildKey(email), time.Now().Unix(), window).Result()
	if err != nil {
		return false, fmt.Errorf("emailCooldownRepo.Acquire: 设置发送冷却失败: %w", err)
	}
	return ok, nil
}

func (r *emailCooldownRepo) Release(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, r.buildKey(email)).Err(); err != nil {
		return fmt.Errorf("emailCooldownRepo.Release: 释放发送冷却失败: %w", err)
	}
	return nil
}
