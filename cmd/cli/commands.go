package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shortlink-service/internal/app"
	"shortlink-service/internal/model"
	"shortlink-service/internal/shortener"

	"github.com/spf13/cobra"
)

var (
	aliasFlag  string
	expireFlag time.Duration
)

var shortenCmd = &cobra.Command{
	Use:   "shorten <url>",
	Short: "为长链接创建短码",
	Long: `为长链接创建短码，可指定自定义别名与有效期。

示例:
  shortlink shorten https://example.com/a/very/long/path --alias docs --expire 72h`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			req := shortener.ShortenRequest{LongURL: args[0], CustomAlias: aliasFlag}
			if expireFlag > 0 {
				at := time.Now().Add(expireFlag)
				req.ExpiresAt = &at
			}
			link, err := a.Service.Shorten(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "短码: %s\n短链接: %s/%s\n", link.Code, strings.TrimRight(a.Cfg.App.BaseURL, "/"), link.Code)
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <code>",
	Short: "查看短码的统计信息，不计入点击",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			link, err := a.Service.Stats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printLink(cmd, link, a.Service.Expired(link))
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <code>",
	Short: "删除短码",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			if err := a.Service.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已删除: %s\n", args[0])
			return nil
		})
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "物理删除全部已过期的记录",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			n, err := a.Service.PurgeExpired(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已清理 %d 条过期记录\n", n)
			return nil
		})
	},
}

func printLink(cmd *cobra.Command, link *model.ShortLink, expired bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "短码: %s\n", link.Code)
	fmt.Fprintf(out, "原始链接: %s\n", link.LongURL)
	fmt.Fprintf(out, "点击次数: %d\n", link.Clicks)
	fmt.Fprintf(out, "创建时间: %s\n", link.CreatedAt.Format(time.RFC3339))
	if link.ExpiresAt != nil {
		state := "有效"
		if expired {
			state = "已过期"
		}
		fmt.Fprintf(out, "过期时间: %s (%s)\n", link.ExpiresAt.Format(time.RFC3339), state)
	}
}

func init() {
	shortenCmd.Flags().StringVarP(&aliasFlag, "alias", "a", "", "自定义别名")
	shortenCmd.Flags().DurationVarP(&expireFlag, "expire", "e", 0, "有效期，例如 24h")
	rootCmd.AddCommand(shortenCmd, statsCmd, deleteCmd, purgeCmd)
}
