package main

import (
	"fmt"
	"os"

	"shortlink-service/internal/app"
	"shortlink-service/internal/config"
	"shortlink-service/pkg/logger"

	"github.com/spf13/cobra"
)

var configPath string

// rootCmd 命令行入口，直接操作存储，不经过 HTTP
var rootCmd = &cobra.Command{
	Use:           "shortlink",
	Short:         "短链接管理命令行工具",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "配置文件路径")
}

// withApp 加载配置并构建应用，执行完毕后释放资源
func withApp(fn func(a *app.App) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("配置加载失败: %w", err)
	}
	// 命令行只把告警以上写到控制台
	logger.InitLogger(logger.Options{Level: "warn"})
	defer func() { _ = logger.Logger.Sync() }()

	a, err := app.New(cfg, logger.Logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}
