package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
)

func initTestLogger(t *testing.T, level string) (dir string, console *bytes.Buffer) {
	t.Helper()
	dir = t.TempDir()
	console = &bytes.Buffer{}

	config := DefaultLogConfig()
	config.Level = level
	config.LogDir = dir
	config.Compress = false
	config.Console = console
	require.NoError(t, InitLogger(config))
	return dir, console
}

func readLog(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(t, err)
	return string(data)
}

func TestDefaultLogConfig(t *testing.T) {
	config := DefaultLogConfig()
	assert.Equal(t, "info", config.Level)
	assert.Equal(t, "logs", config.LogDir)
	assert.Equal(t, 10, config.MaxSize)
	assert.Equal(t, 3, config.MaxBackups)
	assert.Equal(t, 28, config.MaxAge)
	assert.True(t, config.Compress)
}

func TestInitLogger_LevelFiltering(t *testing.T) {
	dir, console := initTestLogger(t, "info")

	Infof("🔍 [%s] 搜索中...", models.StageSearchTitle.Label())
	Debug("调试信息不应输出")

	main := readLog(t, dir, MainLogFile)
	assert.Contains(t, main, "第1段階(タイトル)")
	assert.NotContains(t, main, "调试信息不应输出")
	assert.Contains(t, console.String(), "搜索中")
}

func TestInitLogger_BadLevelFallsBackToInfo(t *testing.T) {
	dir, _ := initTestLogger(t, "loud")

	Info("信息")
	Debug("调试")

	main := readLog(t, dir, MainLogFile)
	assert.Contains(t, main, "信息")
	assert.NotContains(t, main, "调试")
}

func TestErrorLogOnlyReceivesErrors(t *testing.T) {
	dir, _ := initTestLogger(t, "debug")

	Info("普通信息: 不应进入错误日志")
	Warnf("警告: %d", 1)
	Errorf("阶段出错: %s", models.ErrorSentinel(models.StageOverview))

	errorLog := readLog(t, dir, ErrorLogFile)
	assert.Contains(t, errorLog, "エラー(概要1)")
	assert.NotContains(t, errorLog, "普通信息")
	assert.NotContains(t, errorLog, "警告")
}

func TestWithRun_TagsLines(t *testing.T) {
	dir, _ := initTestLogger(t, "info")

	WithRun("run-123", models.ModeCompletion)
	Info("开始处理")

	main := readLog(t, dir, MainLogFile)
	assert.Contains(t, main, `"run_id":"run-123"`)
	assert.Contains(t, main, `"mode":"complete"`)
}

func TestFilteredWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &FilteredWriter{Writer: &buf, MinLevel: 3}

	n, err := w.Write([]byte("no level"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Empty(t, buf.String())

	_, _ = w.WriteLevel(1, []byte("info"))
	_, _ = w.WriteLevel(3, []byte("error"))
	assert.Equal(t, "error", buf.String())
}
