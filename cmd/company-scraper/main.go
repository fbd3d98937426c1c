package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/core"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/utils"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile       string
	headerConfigFile string
	verbose          bool
	logLevel         string

	// HTTP头部参数
	headers []string

	// 浏览器与代理
	noHeadless    bool
	proxyHost     string
	proxyPort     int
	proxyUser     string
	proxyPassword string

	// 运行参数
	inputFile     string
	outputFile    string
	outputDir     string
	areaCodeFile  string
	searchResults int
	resume        bool
)

// appConfig 由 PersistentPreRunE 加载
var appConfig *core.Config

var rootCmd = &cobra.Command{
	Use:   "company-scraper",
	Short: "根据电话号码查找公司官网并补全公司信息",
	Long: `company-scraper - 日本企业信息自动获取工具 (Go版本)

两种运行模式:
  • lookup:   电话号码 → 搜索验证官网 → 提取会社名/代表者名/住所/資本金/従業員数
  • complete: 电话号码为空的行 → 官网深入 → Yahoo直接搜索 → Yahoo一览搜索

使用示例:
  # 查找官网和公司信息
  company-scraper lookup -i 電話番号リスト.csv

  # 补全电话号码 (需要 市外局番リスト.csv)
  company-scraper complete -i 企業リスト.xlsx --area-codes 市外局番リスト.csv

  # 被限流中断后从检查点继续
  company-scraper lookup -i 電話番号リスト.csv --resume

  # 验证配置文件
  company-scraper validate-config

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 加载配置
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		// 初始化日志系统
		logConfig := utils.LogConfig{
			Level:      config.Logging.Level,
			LogDir:     config.Logging.LogDir,
			MaxSize:    config.Logging.Rotation.MaxSize,
			MaxBackups: config.Logging.Rotation.MaxBackups,
			MaxAge:     config.Logging.Rotation.MaxAge,
			Compress:   config.Logging.Rotation.Compress,
		}

		// 命令行参数覆盖配置文件
		if logLevel != "" {
			logConfig.Level = logLevel
		} else if verbose {
			logConfig.Level = "debug"
		}

		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		config.MergeCLIFlags(core.CLIOverrides{
			NoHeadless:    noHeadless,
			SearchResults: searchResults,
			ProxyHost:     proxyHost,
			ProxyPort:     proxyPort,
			ProxyUser:     proxyUser,
			ProxyPassword: proxyPassword,
			AreaCodeFile:  areaCodeFile,
			OutputDir:     outputDir,
		})
		if err := config.Validate(); err != nil {
			return err
		}
		appConfig = config

		if verbose {
			utils.Info("详细模式已启用")
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	// 不需要加载配置
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("company-scraper %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
	},
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().StringVar(&headerConfigFile, "header-config", "", "HTTP头部配置文件路径 (默认 configs/headers.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")

	// HTTP头部参数
	rootCmd.PersistentFlags().StringSliceVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")

	// 浏览器与代理
	rootCmd.PersistentFlags().BoolVar(&noHeadless, "no-headless", false, "显示浏览器窗口 (调试用)")
	rootCmd.PersistentFlags().StringVar(&proxyHost, "proxy-host", "", "浏览器代理主机")
	rootCmd.PersistentFlags().IntVar(&proxyPort, "proxy-port", 0, "浏览器代理端口")
	rootCmd.PersistentFlags().StringVar(&proxyUser, "proxy-user", "", "代理用户名")
	rootCmd.PersistentFlags().StringVar(&proxyPassword, "proxy-password", "", "代理密码")

	// 运行参数 (lookup/complete 共用)
	for _, cmd := range []*cobra.Command{lookupCmd, completeCmd} {
		cmd.Flags().StringVarP(&inputFile, "input", "i", "", "输入表格 (.csv/.xlsx)")
		cmd.Flags().StringVarP(&outputFile, "output", "o", "", "输出表格 (默认: <输出目录>/<输入文件名>_result.<扩展名>)")
		cmd.Flags().StringVar(&outputDir, "output-dir", "", "输出目录 (报告/检查点)")
		cmd.Flags().BoolVar(&resume, "resume", false, "从检查点恢复")
		_ = cmd.MarkFlagRequired("input")
	}
	lookupCmd.Flags().IntVar(&searchResults, "search-results", 0, "每次搜索取前N条结果 (1-50)")
	completeCmd.Flags().StringVar(&areaCodeFile, "area-codes", "", "市外局番表路径")

	// 添加子命令
	rootCmd.AddCommand(lookupCmd, completeCmd, validateConfigCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
