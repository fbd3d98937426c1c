package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/utils"
)

const (
	// DefaultConfigFile 身份配置的默认路径
	DefaultConfigFile = "configs/headers.yaml"

	// MaxConfigFileSize 1MB
	MaxConfigFileSize = 1 << 20
)

//go:embed headers_template.yaml
var defaultHeaderTemplate string

// HeaderConfigLoader 加载请求头部和 User-Agent 池
type HeaderConfigLoader struct {
	configPath string
}

// NewHeaderConfigLoader 路径为空时使用 DefaultConfigFile
func NewHeaderConfigLoader(configPath string) *HeaderConfigLoader {
	if configPath == "" {
		configPath = DefaultConfigFile
	}
	return &HeaderConfigLoader{configPath: configPath}
}

// Path 配置文件路径
func (hcl *HeaderConfigLoader) Path() string {
	return hcl.configPath
}

// EnsureConfigExists 文件不存在时从内置模板生成
func (hcl *HeaderConfigLoader) EnsureConfigExists() error {
	_, err := os.Stat(hcl.configPath)
	if err == nil || !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(hcl.configPath), 0755); err != nil {
		return fmt.Errorf("无法创建配置目录: %w", err)
	}
	if err := os.WriteFile(hcl.configPath, []byte(defaultHeaderTemplate), 0644); err != nil {
		return fmt.Errorf("无法生成配置文件 [%s]: %w", hcl.configPath, err)
	}
	utils.Infof("📝 已生成身份配置模板: %s", hcl.configPath)
	return nil
}

// prepare 生成缺失的文件并检查大小
func (hcl *HeaderConfigLoader) prepare() error {
	if err := hcl.EnsureConfigExists(); err != nil {
		return &models.ConfigError{FilePath: hcl.configPath, Cause: err}
	}

	info, err := os.Stat(hcl.configPath)
	if err != nil {
		return &models.ConfigError{FilePath: hcl.configPath, Cause: err}
	}
	if info.Size() > MaxConfigFileSize {
		return &models.ConfigError{
			FilePath: hcl.configPath,
			Cause:    fmt.Errorf("配置文件过大: %d 字节 (最大 %d 字节)", info.Size(), MaxConfigFileSize),
		}
	}
	return nil
}

// LoadConfig 读取 headers.yaml
// viper 会把头部名称转为小写,HeaderManager 合并时用 http.Header 规范化
func (hcl *HeaderConfigLoader) LoadConfig() (*models.HeaderConfig, error) {
	if err := hcl.prepare(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(hcl.configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, &models.ConfigError{FilePath: hcl.configPath, Cause: err}
	}

	var cfg models.HeaderConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &models.ConfigError{FilePath: hcl.configPath, Cause: fmt.Errorf("配置绑定失败: %w", err)}
	}
	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}
	cfg.UserAgents = cleanAgents(cfg.UserAgents)
	return &cfg, nil
}

// cleanAgents 去掉空白项和重复项,保持原有顺序
func cleanAgents(agents []string) []string {
	seen := make(map[string]bool, len(agents))
	out := make([]string, 0, len(agents))
	for _, ua := range agents {
		ua = strings.TrimSpace(ua)
		if ua == "" || seen[ua] {
			continue
		}
		seen[ua] = true
		out = append(out, ua)
	}
	return out
}
