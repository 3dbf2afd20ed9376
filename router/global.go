package router

import (
	"net/http"

	"github.com/Xushengqwer/go-common/core"
	commonMiddleware "github.com/Xushengqwer/go-common/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	otelgin "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Xushengqwer/keenmind_auth/config"
	"github.com/Xushengqwer/keenmind_auth/constants"
	"github.com/Xushengqwer/keenmind_auth/controller"
	_ "github.com/Xushengqwer/keenmind_auth/docs"
	"github.com/Xushengqwer/keenmind_auth/initialization"
	"github.com/Xushengqwer/keenmind_auth/metrics"
	"github.com/Xushengqwer/keenmind_auth/middleware"
)

// SetupRouter 创建 Gin 引擎，挂载全局中间件并注册全部路由。
//
// 路由分组:
//   - /api/auth   登录、回调、登出、会话（公开，登录入口按 IP 限流）
//   - /mapi       移动端，令牌策略
//   - /profile    浏览器，数据库会话
//   - /admin/api  数据库会话 + 管理员白名单
func SetupRouter(
	logger *core.ZapLogger,
	cfg *config.KeenmindAuthConfig,
	appServices *initialization.AppServices,
	appDeps *initialization.AppDependencies,
) *gin.Engine {
	logger.Info("开始设置 Gin 路由...")

	router := gin.New()

	// 1. OTel，最先处理追踪上下文
	router.Use(otelgin.Middleware(constants.ServiceName))
	// 2. panic 恢复
	router.Use(commonMiddleware.ErrorHandlingMiddleware(logger))
	// 3. 访问日志
	if baseLogger := logger.Logger(); baseLogger != nil {
		router.Use(commonMiddleware.RequestLoggerMiddleware(baseLogger))
	}
	// 4. 超时
	if cfg.ServerConfig.RequestTimeout > 0 {
		router.Use(commonMiddleware.RequestTimeoutMiddleware(logger, cfg.ServerConfig.RequestTimeout))
	}

	router.GET("/healthz", healthz)
	router.GET("/metrics", gin.WrapH(metrics.Handler(appDeps.Registry)))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authCtrl := controller.NewAuthController(
		appServices.Providers,
		appServices.States,
		appServices.Selector,
		appServices.Linking,
		appServices.Email,
		appServices.SignInLimiter,
		appDeps.Metrics,
		logger,
	)
	mobileCtrl := controller.NewMobileTokenController(
		appServices.Providers,
		appServices.States,
		appServices.Token,
		cfg.MobileConfig,
		logger,
	)
	profileCtrl := controller.NewUserProfileController(appServices.ProfileService, appServices.Database, logger)
	userListCtrl := controller.NewUserListQueryController(appServices.QueryService, logger)
	userManageCtrl := controller.NewUserManageController(appServices.UserService, logger)
	taxonomyCtrl := controller.NewTaxonomyController(appServices.TaxonomyService, logger)

	root := router.Group("")
	authCtrl.RegisterRoutes(root)

	mapi := router.Group("/mapi", middleware.TokenAuth(appServices.Token, logger))
	mobileCtrl.RegisterRoutes(mapi)

	browser := router.Group("", middleware.SessionAuth(appServices.Database, logger))
	profileCtrl.RegisterRoutes(browser)

	adminAPI := router.Group("/admin/api",
		middleware.SessionAuth(appServices.Database, logger),
		middleware.AdminGuard(appServices.AdminChecker, logger),
	)
	userListCtrl.RegisterRoutes(adminAPI)
	userManageCtrl.RegisterRoutes(adminAPI)
	taxonomyCtrl.RegisterRoutes(adminAPI)

	logger.Info("所有路由已注册")
	return router
}

// healthz 存活探针
// @Summary 健康检查
// @Tags 运维 (Ops)
// @Produce json
// @Success 200 {object} docs.HealthResponse
// @Router /healthz [get]
func healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
