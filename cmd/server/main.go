package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"shortlink-service/internal/app"
	"shortlink-service/internal/config"
	"shortlink-service/pkg/logger"
)

// @title           短链接服务 API
// @version         1.0
// @description     短链接创建、跳转与统计接口
// @BasePath        /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("配置加载失败: %v", err))
	}

	logger.InitLogger(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	})
	defer func() {
		if err := logger.Logger.Sync(); err != nil {
			fmt.Println("日志同步失败:", err)
		}
	}()
	sugaredLogger := logger.Sugar

	application, err := app.New(cfg, logger.Logger)
	if err != nil {
		sugaredLogger.Fatalf("应用初始化失败: %v", err)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Serve(ctx); err != nil {
		sugaredLogger.Errorf("服务异常退出: %v", err)
		return
	}
	sugaredLogger.Info("👋 服务已关闭")
}
