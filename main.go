package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	sharedCore "github.com/Xushengqwer/go-common/core"
	sharedTracing "github.com/Xushengqwer/go-common/core/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Xushengqwer/keenmind_auth/config"
	"github.com/Xushengqwer/keenmind_auth/constants"
	"github.com/Xushengqwer/keenmind_auth/initialization"
	"github.com/Xushengqwer/keenmind_auth/router"
)

// @title           Keenmind Auth API
// @version         1.0
// @description     Keenmind 认证服务：第三方登录、魔法链接、会话与后台管理接口

// @host      localhost:8081
// @schemes http https
func main() {
	defaultConfig := os.Getenv("APP_CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "config/config.example.yaml"
	}
	var configFile string
	flag.StringVar(&configFile, "config", defaultConfig, "Path to configuration file")
	flag.Parse()

	// 1. 加载配置
	var cfg config.KeenmindAuthConfig
	if err := sharedCore.LoadConfig(configFile, &cfg); err != nil {
		log.Fatalf("FATAL: 加载配置失败 (%s): %v", configFile, err)
	}
	applyEnvOverrides(&cfg)

	// 2. Logger
	logger, loggerErr := sharedCore.NewZapLogger(cfg.ZapConfig)
	if loggerErr != nil {
		log.Fatalf("FATAL: 初始化 ZapLogger 失败: %v", loggerErr)
	}
	defer func() {
		if err := logger.Logger().Sync(); err != nil {
			log.Printf("WARN: ZapLogger Sync 失败: %v\n", err)
		}
	}()

	if cfg.AuthConfig.Secret == "" {
		logger.Fatal("AUTH_SECRET 未配置")
	}

	// 3. 链路追踪
	if cfg.TracerConfig.Enabled {
		tracerShutdown, err := sharedTracing.InitTracerProvider(constants.ServiceName, constants.ServiceVersion, cfg.TracerConfig)
		if err != nil {
			logger.Fatal("初始化 TracerProvider 失败", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerShutdown(ctx); err != nil {
				logger.Error("关闭 TracerProvider 失败", zap.Error(err))
			}
		}()
		logger.Info("分布式追踪已初始化")
	} else {
		logger.Info("分布式追踪已禁用")
	}

	// 4. 基础依赖与服务
	appDeps, err := initialization.SetupDependencies(&cfg, logger)
	if err != nil {
		logger.Fatal("初始化基础依赖失败", zap.Error(err))
	}
	appServices, err := initialization.SetupServices(appDeps)
	if err != nil {
		logger.Fatal("初始化服务层失败", zap.Error(err))
	}
	defer appServices.SignInLimiter.Stop()

	// 5. 路由与 HTTP 服务
	engine := router.SetupRouter(logger, &cfg, appServices, appDeps)
	port := cfg.ServerConfig.Port
	if port == "" {
		port = "8081"
	}
	serverAddress := fmt.Sprintf(":%s", port)
	srv := &http.Server{
		Addr:    serverAddress,
		Handler: otelhttp.NewHandler(engine, "HTTPServer"),
	}

	go func() {
		logger.Info("HTTP 服务器开始监听", zap.String("address", serverAddress))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器启动失败", zap.Error(err))
		}
	}()

	// 6. 优雅关停
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	recSignal := <-quit
	logger.Info("接收到关停信号", zap.String("signal", recSignal.String()))

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP 服务器优雅关停失败", zap.Error(err))
	}
	if sqlDB, err := appDeps.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if err := appDeps.RedisClient.Close(); err != nil {
		logger.Warn("关闭 Redis 连接失败", zap.Error(err))
	}
	logger.Info("服务已完全关闭")
}

// applyEnvOverrides 部署时用环境变量覆盖文件配置，密钥类只记录被覆盖，不打印值
func applyEnvOverrides(cfg *config.KeenmindAuthConfig) {
	setString := func(env string, dst *string, secret bool) {
		v := os.Getenv(env)
		if v == "" {
			return
		}
		*dst = v
		if secret {
			log.Printf("通过环境变量覆盖了 %s", env)
		} else {
			log.Printf("通过环境变量覆盖了 %s: %s", env, v)
		}
	}
	setBool := func(env string, dst *bool) {
		if b, err := strconv.ParseBool(os.Getenv(env)); err == nil {
			*dst = b
			log.Printf("通过环境变量覆盖了 %s: %t", env, b)
		}
	}

	setString("ZAPCONFIG_LEVEL", &cfg.ZapConfig.Level, false)
	setBool("TRACERCONFIG_ENABLED", &cfg.TracerConfig.Enabled)

	setString("DATABASE_URL", &cfg.DatabaseConfig.DSN, true)
	setString("DATABASE_DRIVER", &cfg.DatabaseConfig.Driver, false)
	setString("REDIS_ADDRESS", &cfg.RedisConfig.Address, false)
	setString("REDIS_PASSWORD", &cfg.RedisConfig.Password, true)

	setString("AUTH_SECRET", &cfg.AuthConfig.Secret, true)
	setString("AUTH_GITHUB_ID", &cfg.GithubConfig.ClientID, false)
	setString("AUTH_GITHUB_SECRET", &cfg.GithubConfig.ClientSecret, true)
	setString("AUTH_WECHAT_APP_ID", &cfg.WechatConfig.AppID, false)
	setString("AUTH_WECHAT_APP_SECRET", &cfg.WechatConfig.Secret, true)
	setString("AUTH_EMAIL_SMTP_HOST", &cfg.EmailConfig.SMTPHost, false)
	setString("AUTH_EMAIL_SMTP_PASSWORD", &cfg.EmailConfig.SMTPPassword, true)
	setString("AUTH_EMAIL_FROM", &cfg.EmailConfig.From, false)

	setBool("COOKIE_SECURE", &cfg.CookieConfig.Secure)
}
