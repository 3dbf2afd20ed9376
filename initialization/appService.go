package initialization

import (
	"fmt"
	"strings"

	"github.com/Xushengqwer/keenmind_auth/constants"
	"github.com/Xushengqwer/keenmind_auth/middleware"
	"github.com/Xushengqwer/keenmind_auth/repository/rdb"
	"github.com/Xushengqwer/keenmind_auth/repository/redis"
	"github.com/Xushengqwer/keenmind_auth/service/adapter"
	"github.com/Xushengqwer/keenmind_auth/service/admin"
	"github.com/Xushengqwer/keenmind_auth/service/login"
	"github.com/Xushengqwer/keenmind_auth/service/login/auth"
	"github.com/Xushengqwer/keenmind_auth/service/login/oAuth"
	"github.com/Xushengqwer/keenmind_auth/service/profile"
	"github.com/Xushengqwer/keenmind_auth/service/strategy"
	"github.com/Xushengqwer/keenmind_auth/service/taxonomy"
	"github.com/Xushengqwer/keenmind_auth/service/token"
	"github.com/Xushengqwer/keenmind_auth/service/userList"
	"github.com/Xushengqwer/keenmind_auth/service/userManage"
)

// AppServices 服务层实例
type AppServices struct {
	Adapter   adapter.Adapter
	Linking   login.LinkingService
	Providers *oAuth.Registry
	// Email 未配置 SMTP 时为 nil
	Email        auth.EmailAuthService
	TokenService token.AuthTokenService

	States   *strategy.StateCodec
	Selector *strategy.Selector
	Database strategy.Handlers
	Token    strategy.Handlers

	ProfileService  profile.UserProfileService
	UserService     userManage.UserManageService
	QueryService    userList.UserListQueryService
	TaxonomyService taxonomy.TaxonomyService
	AdminChecker    admin.PermissionChecker
	SignInLimiter   *middleware.RateLimiter
}

// SetupServices 初始化仓库层与服务层
func SetupServices(deps *AppDependencies) (*AppServices, error) {
	cfg := deps.Config
	logger := deps.Logger
	var err error

	// 1. 关系库仓库
	userRepo := rdb.NewUserRepository(deps.DB)
	accountRepo := rdb.NewAccountRepository(deps.DB)
	sessionRepo := rdb.NewSessionRepository(deps.DB)
	tokenRepo := rdb.NewVerificationTokenRepository(deps.DB)
	userQuery := rdb.NewUserQuery(deps.DB)
	domainRepo := rdb.NewDomainRepository(deps.DB)
	topicRepo := rdb.NewTopicRepository(deps.DB)

	// 2. Redis 仓库
	sessionCache := redis.NewSessionCache(deps.RedisClient)
	tokenBlackRepo := redis.NewTokenBlacklistRepo(deps.RedisClient)
	emailCooldown := redis.NewEmailCooldownRepo(deps.RedisClient)

	// 3. 持久化适配器与账号关联
	cacheTTL := cfg.AuthConfig.SessionCacheTTL
	if cacheTTL <= 0 {
		cacheTTL = constants.SessionCacheTTL
	}
	ad := adapter.NewAdapter(deps.DB, userRepo, accountRepo, sessionRepo, tokenRepo, sessionCache, deps.Metrics, logger, cacheTTL)
	linking := login.NewLinkingService(deps.DB, userRepo, accountRepo, logger)

	// 4. 身份提供方：一项都没配置的提供方不注册；配置了一部分则启动失败
	var providers []oAuth.Provider
	if anySet(cfg.GithubConfig.ClientID, cfg.GithubConfig.ClientSecret) {
		github, err := oAuth.NewGithubProvider(&cfg.GithubConfig, cfg.AuthConfig.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("初始化 GitHub 提供方失败: %w", err)
		}
		providers = append(providers, github)
	} else {
		logger.Warn("GitHub 登录未配置")
	}
	if anySet(cfg.WechatConfig.AppID, cfg.WechatConfig.Secret) {
		wechat, err := oAuth.NewWechatProvider(&cfg.WechatConfig, cfg.AuthConfig.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("初始化微信提供方失败: %w", err)
		}
		providers = append(providers, wechat)
	} else {
		logger.Warn("微信登录未配置")
	}

	var emailService auth.EmailAuthService
	if anySet(cfg.EmailConfig.SMTPHost, cfg.EmailConfig.SMTPPassword) {
		emailService, err = auth.NewEmailAuthService(&cfg.EmailConfig, &cfg.AuthConfig, ad, emailCooldown, deps.Mailer, deps.Metrics, logger)
		if err != nil {
			return nil, fmt.Errorf("初始化邮件登录失败: %w", err)
		}
	} else {
		logger.Warn("邮件登录未配置")
	}

	// 5. 会话策略
	tokenService := token.NewAuthTokenService(tokenBlackRepo, deps.JwtToken, logger)
	states, err := strategy.NewStateCodec(cfg.AuthConfig.Secret, constants.StateMaxAge)
	if err != nil {
		return nil, fmt.Errorf("初始化 state 编解码失败: %w", err)
	}
	dbCfg, err := strategy.NewConfig(strategy.Database, &cfg.CookieConfig, &cfg.AuthConfig)
	if err != nil {
		return nil, err
	}
	tokenCfg, err := strategy.NewConfig(strategy.Token, &cfg.CookieConfig, &cfg.AuthConfig)
	if err != nil {
		return nil, err
	}
	databaseHandlers := strategy.NewDatabaseHandlers(dbCfg, ad, logger)
	tokenHandlers := strategy.NewTokenHandlers(tokenCfg, tokenService, ad)

	// 6. 管理后台
	checker, err := admin.NewStaticAllowList(&cfg.AdminConfig)
	if err != nil {
		return nil, fmt.Errorf("管理员白名单配置错误: %w", err)
	}

	limiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.EmailConfig.RatePerMinute, cfg.EmailConfig.Burst),
		deps.Metrics,
		logger,
	)

	return &AppServices{
		Adapter:         ad,
		Linking:         linking,
		Providers:       oAuth.NewRegistry(providers...),
		Email:           emailService,
		TokenService:    tokenService,
		States:          states,
		Selector:        strategy.NewSelector(databaseHandlers, tokenHandlers),
		Database:        databaseHandlers,
		Token:           tokenHandlers,
		ProfileService:  profile.NewUserProfileService(deps.DB, userRepo, accountRepo, ad, logger),
		UserService:     userManage.NewUserManageService(ad, logger),
		QueryService:    userList.NewUserListQueryService(userQuery, logger),
		TaxonomyService: taxonomy.NewTaxonomyService(domainRepo, topicRepo, logger),
		AdminChecker:    checker,
		SignInLimiter:   limiter,
	}, nil
}

func anySet(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
