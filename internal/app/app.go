// Package app 负责把配置、存储、缓存、核心服务与 HTTP 路由装配在一起，服务端与命令行共用
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shortlink-service/internal/cache"
	"shortlink-service/internal/config"
	"shortlink-service/internal/handler"
	"shortlink-service/internal/middleware"
	"shortlink-service/internal/model"
	"shortlink-service/internal/shortcode"
	"shortlink-service/internal/shortener"
	"shortlink-service/internal/store"
	"shortlink-service/internal/store/gormstore"
	"shortlink-service/internal/store/memstore"
	"shortlink-service/internal/store/redisstore"
	"shortlink-service/pkg/database"
	auth "shortlink-service/pkg/jwt"
	pkgredis "shortlink-service/pkg/redis"

	_ "shortlink-service/docs"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 装配完成的应用实例
type App struct {
	Cfg     *config.Config
	DB      *gorm.DB
	Redis   *redis.Client
	Store   store.Store
	Cache   *cache.Cache
	Service *shortener.Service
	Reaper  *shortener.Reaper
	Tokens  *auth.TokenManager

	rateLimit gin.HandlerFunc
	logger    *zap.Logger
}

// New 按配置构建应用；失败时已打开的连接会被关闭
func New(cfg *config.Config, logger *zap.Logger) (a *App, err error) {
	sugar := logger.Sugar()
	a = &App{Cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.DB, err = database.Open(database.Options{
		Driver:   cfg.Database.Driver,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
		Charset:  cfg.Database.Charset,
		Path:     cfg.Database.Path,
	})
	if err != nil {
		return a, fmt.Errorf("数据库初始化失败: %w", err)
	}
	if err = a.DB.AutoMigrate(&model.User{}); err != nil {
		return a, fmt.Errorf("数据库迁移失败: %w", err)
	}
	sugar.Infof("✅ 数据库连接成功 (%s)", cfg.Database.Driver)

	if a.Store, err = a.openStore(); err != nil {
		return a, err
	}
	sugar.Infof("✅ 短链接存储已就绪 (%s)", cfg.Store.Backend)

	a.Cache, err = cache.New(a.Store, cache.Options{
		Size:         cfg.Cache.Size,
		MaxStaleness: cfg.Cache.MaxStaleness,
		LoadTimeout:  cfg.Cache.LoadTimeout,
	}, sugar)
	if err != nil {
		return a, fmt.Errorf("缓存初始化失败: %w", err)
	}

	a.Service = shortener.New(a.Store, a.Cache, shortcode.NewGenerator(cfg.Shortener.CodeLength), shortener.Options{
		MaxAttempts:     cfg.Shortener.MaxAttempts,
		MinAliasLength:  cfg.Shortener.MinAliasLength,
		MaxAliasLength:  cfg.Shortener.MaxAliasLength,
		ReservedAliases: cfg.Shortener.ReservedAliases,
	}, sugar)
	a.Reaper = shortener.NewReaper(a.Service, cfg.Reaper.Interval, sugar)

	if a.rateLimit, err = middleware.RateLimit(&cfg.RateLimit); err != nil {
		return a, err
	}

	if cfg.Auth.Secret != "" {
		a.Tokens = auth.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.ExpirationHours)
		created, seedErr := handler.EnsureAdmin(a.DB, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
		if seedErr != nil {
			sugar.Errorf("创建管理员失败: %v", seedErr)
		} else if created {
			sugar.Infow("✅ 默认管理员创建成功", "username", cfg.Auth.AdminUsername)
		}
	} else {
		sugar.Warn("未配置 auth.secret，认证与管理接口已关闭")
	}
	return a, nil
}

func (a *App) openStore() (store.Store, error) {
	switch a.Cfg.Store.Backend {
	case "sql":
		st := gormstore.New(a.DB)
		if err := st.Migrate(); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
		return st, nil
	case "redis":
		rdb, err := pkgredis.NewRedisClient(&pkgredis.Options{
			Host:        a.Cfg.Redis.Host,
			Port:        a.Cfg.Redis.Port,
			Password:    a.Cfg.Redis.Password,
			DB:          a.Cfg.Redis.DB,
			PoolSize:    a.Cfg.Redis.PoolSize,
			DialTimeout: a.Cfg.Redis.DialTimeout,
		})
		if err != nil {
			return nil, err
		}
		if rdb == nil {
			return nil, errors.New("redis 存储需要配置 redis.host")
		}
		a.Redis = rdb
		return redisstore.New(rdb, a.Cfg.Store.KeyPrefix, a.Cfg.Store.Retention), nil
	case "memory":
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("不支持的存储后端: %s", a.Cfg.Store.Backend)
	}
}

// Router 构建 HTTP 路由
func (a *App) Router() *gin.Engine {
	if a.Cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.GinZapRecovery(a.logger, true))
	router.Use(middleware.GinZapLogger(a.logger))
	router.Use(a.rateLimit)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	sugar := a.logger.Sugar()
	linkHandler := handler.NewShortLinkHandler(a.Service, a.Cfg.App.BaseURL, sugar)
	var authHandler *handler.AuthHandler
	if a.Tokens != nil {
		authHandler = handler.NewAuthHandler(a.DB, a.Tokens, sugar)
	}
	RegisterRoutes(router, linkHandler, authHandler, a.Tokens)
	return router
}

// RegisterRoutes 注册全部路由；authHandler 为 nil 时不注册认证与管理接口
func RegisterRoutes(router *gin.Engine, linkHandler *handler.ShortLinkHandler, authHandler *handler.AuthHandler, tokens *auth.TokenManager) {
	router.GET("/health", linkHandler.HealthCheck)
	router.GET("/:code", linkHandler.RedirectToOriginal)

	api := router.Group("/api")
	{
		api.POST("/shorten", linkHandler.CreateShortLink)
		api.GET("/stats/:code", linkHandler.GetLinkStats)
	}

	if authHandler == nil || tokens == nil {
		return
	}

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	private := api.Group("")
	private.Use(middleware.AuthMiddleware(tokens))
	{
		private.GET("/me", authHandler.GetCurrentUser)
	}

	admin := private.Group("")
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/links", linkHandler.GetAllLinks)
		admin.GET("/summary", linkHandler.GetSummary)
		admin.DELETE("/links/:code", linkHandler.DeleteLink)
	}
}

// Serve 启动 HTTP 服务并在 ctx 结束时优雅关闭
func (a *App) Serve(ctx context.Context) error {
	sugar := a.logger.Sugar()
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Cfg.Server.Port),
		Handler:      a.Router(),
		ReadTimeout:  time.Duration(a.Cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.Cfg.Server.WriteTimeout) * time.Second,
	}

	if a.Cfg.Reaper.Enabled {
		a.Reaper.Start()
		sugar.Info("✅ 过期清理任务已启动")
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infof("🚀 服务启动成功, 访问 http://localhost:%d", a.Cfg.Server.Port)
		sugar.Infof("📚 Swagger 文档地址: http://localhost:%d/swagger/index.html", a.Cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sugar.Info("正在关闭服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服务关闭失败: %w", err)
	}
	return <-errCh
}

// Close 停止后台任务并释放连接
func (a *App) Close() {
	if a.Reaper != nil {
		a.Reaper.Stop()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.logger.Sugar().Errorf("关闭 Redis 连接失败: %v", err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
