package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
)

// Config 应用程序配置
type Config struct {
	Pipeline  models.PipelineConfig `mapstructure:"pipeline"`
	Delays    models.DelayConfig    `mapstructure:"delays"`
	Search    models.SearchConfig   `mapstructure:"search"`
	Proxy     models.ProxyConfig    `mapstructure:"proxy"`
	AreaCodes AreaCodeConfig        `mapstructure:"area_codes"`
	Logging   LoggingConfig         `mapstructure:"logging"`
	Output    OutputConfig          `mapstructure:"output"`
}

// AreaCodeConfig 市外局番表
type AreaCodeConfig struct {
	File   string `mapstructure:"file"`
	Column string `mapstructure:"column"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	BaseDir       string `mapstructure:"base_dir"`
	CheckpointDir string `mapstructure:"checkpoint_dir"`
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".company-scraper"))
		}
	}

	// COMPANY_SCRAPER_PROXY_PASSWORD 等环境变量覆盖配置文件
	v.SetEnvPrefix("COMPANY_SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, &models.ConfigError{FilePath: configPath, Cause: fmt.Errorf("读取配置文件失败: %w", err)}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, &models.ConfigError{FilePath: v.ConfigFileUsed(), Cause: fmt.Errorf("解析配置文件失败: %w", err)}
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 流水线
	v.SetDefault("pipeline.search_results", 5)
	v.SetDefault("pipeline.fetch_timeout", 15*time.Second)
	v.SetDefault("pipeline.page_load_timeout", 30*time.Second)
	v.SetDefault("pipeline.decoy_timeout", 15*time.Second)
	v.SetDefault("pipeline.render_wait", 5*time.Second)
	v.SetDefault("pipeline.settle_wait", 3*time.Second)
	v.SetDefault("pipeline.decoy_every", 5)
	v.SetDefault("pipeline.headless", true)

	// 随机等待区间
	setRange(v, "delays.stage_backoff", 2*time.Second, 4*time.Second)
	setRange(v, "delays.verify_retry", time.Second, 2500*time.Millisecond)
	setRange(v, "delays.lookup_loop", 5*time.Second, 10*time.Second)
	setRange(v, "delays.completion_loop", time.Second, 2*time.Second)
	setRange(v, "delays.decoy", time.Second, 2*time.Second)
	setRange(v, "delays.answer_panel", time.Second, 2*time.Second)
	setRange(v, "delays.listing", 2*time.Second, 3*time.Second)

	// 搜索过滤
	v.SetDefault("search.excluded_domains", []string{
		"ipros", "hotfrog", "baseconnect", "musubu", "appletech", "kensetumap", "ja.wikipedia.org",
	})
	v.SetDefault("search.excluded_paths", []string{
		"/contact", "/inquiry", "/form", "/privacy", "/policy",
	})
	v.SetDefault("search.decoy_urls", []string{
		"https://www.yahoo.co.jp/", "https://www.wikipedia.org/", "https://www.nikkei.com/",
	})

	// 代理 (默认不使用)
	v.SetDefault("proxy.host", "")
	v.SetDefault("proxy.port", 0)
	v.SetDefault("proxy.user", "")
	v.SetDefault("proxy.password", "")

	// 市外局番
	v.SetDefault("area_codes.file", "市外局番リスト.csv")
	v.SetDefault("area_codes.column", "市外局番")

	// 日志
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	// 输出
	v.SetDefault("output.base_dir", "output")
	v.SetDefault("output.checkpoint_dir", "output/checkpoints")
}

func setRange(v *viper.Viper, key string, min, max time.Duration) {
	v.SetDefault(key+".min", min)
	v.SetDefault(key+".max", max)
}

// Validate 验证整体配置
func (c *Config) Validate() error {
	if err := c.Pipeline.Validate(); err != nil {
		return &models.ConfigError{FilePath: "pipeline", Cause: err}
	}
	if err := c.Delays.Validate(); err != nil {
		return &models.ConfigError{FilePath: "delays", Cause: err}
	}
	if err := c.Proxy.Validate(); err != nil {
		return &models.ConfigError{FilePath: "proxy", Cause: err}
	}
	for _, u := range c.Search.DecoyURLs {
		if err := models.ValidateURL(u); err != nil {
			return &models.ConfigError{FilePath: "search.decoy_urls", Cause: fmt.Errorf("%s: %w", u, err)}
		}
	}
	return nil
}

// CLIOverrides 命令行参数 (零值表示未指定)
type CLIOverrides struct {
	NoHeadless    bool
	SearchResults int
	ProxyHost     string
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string
	AreaCodeFile  string
	OutputDir     string
}

// MergeCLIFlags 合并命令行参数到配置,命令行优先于配置文件
func (c *Config) MergeCLIFlags(o CLIOverrides) {
	if o.NoHeadless {
		c.Pipeline.Headless = false
	}
	if o.SearchResults > 0 {
		c.Pipeline.SearchResults = o.SearchResults
	}
	if o.ProxyHost != "" {
		c.Proxy.Host = o.ProxyHost
	}
	if o.ProxyPort > 0 {
		c.Proxy.Port = o.ProxyPort
	}
	if o.ProxyUser != "" {
		c.Proxy.User = o.ProxyUser
	}
	if o.ProxyPassword != "" {
		c.Proxy.Password = o.ProxyPassword
	}
	if o.AreaCodeFile != "" {
		c.AreaCodes.File = o.AreaCodeFile
	}
	if o.OutputDir != "" {
		c.Output.BaseDir = o.OutputDir
	}
}
