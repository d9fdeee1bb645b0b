package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"shortlink-service/internal/shortener"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig 生成使用临时 SQLite 文件的配置，多次命令之间共享数据
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`app:
  base_url: http://sho.rt
database:
  driver: sqlite
  path: %s
store:
  backend: sql
reaper:
  enabled: false
`, filepath.Join(dir, "cli.db"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	t.Cleanup(func() {
		aliasFlag = ""
		expireFlag = 0
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_ShortenStatsDelete(t *testing.T) {
	cfgPath := writeConfig(t)

	out, err := run(t, cfgPath, "shorten", "https://example.com/cli", "--alias", "clidoc", "--expire", "24h")
	require.NoError(t, err)
	assert.Contains(t, out, "短码: clidoc")
	assert.Contains(t, out, "http://sho.rt/clidoc")

	out, err = run(t, cfgPath, "stats", "clidoc")
	require.NoError(t, err)
	assert.Contains(t, out, "原始链接: https://example.com/cli")
	assert.Contains(t, out, "点击次数: 0")
	assert.Contains(t, out, "(有效)")

	out, err = run(t, cfgPath, "delete", "clidoc")
	require.NoError(t, err)
	assert.Contains(t, out, "已删除: clidoc")

	_, err = run(t, cfgPath, "stats", "clidoc")
	assert.ErrorIs(t, err, shortener.ErrNotFound)

	out, err = run(t, cfgPath, "purge")
	require.NoError(t, err)
	assert.Contains(t, out, "已清理 0 条过期记录")
}

func TestCLI_ShortenRejectsInvalidURL(t *testing.T) {
	cfgPath := writeConfig(t)

	_, err := run(t, cfgPath, "shorten", "ftp://example.com/file")
	assert.ErrorIs(t, err, shortener.ErrInvalidRequest)
}
