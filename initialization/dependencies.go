package initialization

import (
	"fmt"

	"github.com/Xushengqwer/go-common/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Xushengqwer/keenmind_auth/config"
	"github.com/Xushengqwer/keenmind_auth/constants"
	"github.com/Xushengqwer/keenmind_auth/dependencies"
	"github.com/Xushengqwer/keenmind_auth/metrics"
	"github.com/Xushengqwer/keenmind_auth/utils"
)

// AppDependencies 应用运行所需的基础依赖，在服务层与路由之间共享
type AppDependencies struct {
	Config      *config.KeenmindAuthConfig
	Logger      *core.ZapLogger
	DB          *gorm.DB
	RedisClient *redis.Client
	JwtToken    dependencies.JWTTokenInterface
	Mailer      dependencies.Mailer
	Registry    *prometheus.Registry
	Metrics     *metrics.Collector
}

// SetupDependencies 按顺序初始化基础依赖，任何关键依赖失败都返回错误，由 main 决定退出
func SetupDependencies(cfg *config.KeenmindAuthConfig, logger *core.ZapLogger) (*AppDependencies, error) {
	deps := AppDependencies{Config: cfg, Logger: logger}

	// 1. 自定义校验器 (slug / userstatus / provider)
	if err := utils.RegisterCustomValidators(); err != nil {
		return nil, fmt.Errorf("注册自定义验证器失败: %w", err)
	}
	logger.Info("自定义验证器注册成功")

	// 2. 数据库
	db, err := dependencies.InitDatabase(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("初始化数据库失败: %w", err)
	}
	deps.DB = db

	// 3. Redis：会话缓存、JTI 黑名单、邮件冷却
	redisClient, err := dependencies.InitRedis(&cfg.RedisConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("初始化 Redis 失败: %w", err)
	}
	deps.RedisClient = redisClient

	// 4. JWT，签名密钥由 AUTH_SECRET 派生
	maxAge := cfg.AuthConfig.SessionMaxAge
	if maxAge <= 0 {
		maxAge = constants.SessionMaxAge
	}
	jwtUtil, err := dependencies.NewJWTUtility(cfg.AuthConfig.Secret, cfg.AuthConfig.Issuer, maxAge)
	if err != nil {
		return nil, fmt.Errorf("初始化 JWT 工具失败: %w", err)
	}
	deps.JwtToken = jwtUtil
	logger.Info("JWT 工具初始化成功")

	// 5. SMTP，未配置主机时邮件登录在服务层被禁用
	if cfg.EmailConfig.SMTPHost != "" {
		deps.Mailer = dependencies.NewSMTPMailer(&cfg.EmailConfig)
		logger.Info("SMTP 发信客户端初始化成功")
	}

	// 6. 指标
	deps.Registry = prometheus.NewRegistry()
	deps.Metrics = metrics.NewCollector(deps.Registry)

	logger.Info("所有基础依赖项初始化完成")
	return &deps, nil
}
