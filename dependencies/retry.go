package dependencies

import (
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
)

// 启动阶段连接基础设施的重试参数
const (
	connectAttempts = 5
	connectInterval = 2 * time.Second
)

// connectWithRetry 最多尝试 attempts 次，返回最后一次的错误
func connectWithRetry(logger *core.ZapLogger, target string, attempts int, interval time.Duration, connect func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = connect(); err == nil {
			return nil
		}
		logger.Warn("连接失败，准备重试",
			zap.String("target", target),
			zap.Int("retry", i+1),
			zap.Int("maxRetries", attempts),
			zap.Error(err),
		)
		if i < attempts-1 {
			time.Sleep(interval)
		}
	}
	return err
}
