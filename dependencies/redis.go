package dependencies

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Xushengqwer/keenmind_auth/config"
)

// redisOptions Address 可以是主机名（配合 Port）、host:port，或 redis:// 连接串
func redisOptions(cfg *config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	switch {
	case strings.HasPrefix(cfg.Address, "redis://"), strings.HasPrefix(cfg.Address, "rediss://"):
		parsed, err := redis.ParseURL(cfg.Address)
		if err != nil {
			return nil, fmt.Errorf("解析 Redis 连接串失败: %w", err)
		}
		opts = parsed
	case strings.Contains(cfg.Address, ":") || cfg.Port == 0:
		opts = &redis.Options{Addr: cfg.Address}
	default:
		opts = &redis.Options{Addr: fmt.Sprintf("%s:%d", cfg.Address, cfg.Port)}
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	return opts, nil
}

// InitRedis 连接 Redis 并 Ping 确认可用
func InitRedis(cfg *config.RedisConfig, logger *core.ZapLogger) (*redis.Client, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	err = connectWithRetry(logger, "redis", connectAttempts, connectInterval, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return client.Ping(ctx).Err()
	})
	if err != nil {
		logger.Error("无法连接到 Redis", zap.Error(err), zap.String("addr", opts.Addr))
		_ = client.Close()
		return nil, fmt.Errorf("无法连接到 Redis: %w", err)
	}

	logger.Info("成功连接到 Redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return client, nil
}
