package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Xushengqwer/keenmind_auth/metrics"
	"github.com/Xushengqwer/keenmind_auth/utils"
)

// RateLimiterConfig 限流参数
type RateLimiterConfig struct {
	Rate            rate.Limit
	Burst           int
	CleanupInterval time.Duration
}

// NewRateLimiterConfig 按每分钟请求数构造，非正值使用默认 10/min、突发 5
func NewRateLimiterConfig(perMinute, burst int) RateLimiterConfig {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 5
	}
	return RateLimiterConfig{
		Rate:            rate.Limit(float64(perMinute) / 60.0),
		Burst:           burst,
		CleanupInterval: 5 * time.Minute,
	}
}

type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter 按客户端 IP 的令牌桶限流，用于登录入口
type RateLimiter struct {
	config   RateLimiterConfig
	recorder metrics.Recorder
	logger   *core.ZapLogger

	mu       sync.Mutex
	limiters map[string]*ipLimiter

	stopCh chan struct{}
	once   sync.Once
}

// NewRateLimiter 创建限流器并启动后台清理
func NewRateLimiter(config RateLimiterConfig, recorder metrics.Recorder, logger *core.ZapLogger) *RateLimiter {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	rl := &RateLimiter{
		config:   config,
		recorder: recorder,
		logger:   logger,
		limiters: make(map[string]*ipLimiter),
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop 停止后台清理，可重复调用
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

// Middleware route 只用于指标标签
func (rl *RateLimiter) Middleware(route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := utils.ClientIP(c.Request.Header)
		if ip == utils.UnknownIP {
			ip = c.ClientIP()
		}
		if !rl.get(ip).Allow() {
			rl.recorder.RecordRateLimited(route)
			rl.logger.Warn("登录入口触发限流", zap.String("route", route), zap.String("ip", ip))

			retryAfter := int(math.Ceil(1.0 / float64(rl.config.Rate)))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			response.RespondError(c, http.StatusTooManyRequests, response.ErrCodeClientRateLimitExceeded, "Too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Size 当前跟踪的 IP 数
func (rl *RateLimiter) Size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if l, ok := rl.limiters[ip]; ok {
		l.lastAccess = time.Now()
		return l.limiter
	}
	l := &ipLimiter{limiter: rate.NewLimiter(rl.config.Rate, rl.config.Burst), lastAccess: time.Now()}
	rl.limiters[ip] = l
	return l.limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup 删除超过两个清理周期未访问的条目
func (rl *RateLimiter) cleanup(now time.Time) {
	ttl := rl.config.CleanupInterval * 2
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, l := range rl.limiters {
		if now.Sub(l.lastAccess) > ttl {
			delete(rl.limiters, ip)
		}
	}
}
