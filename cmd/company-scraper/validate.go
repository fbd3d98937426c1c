package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/core"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/utils"
)

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "验证配置文件正确性",
	RunE: func(cmd *cobra.Command, args []string) error {
		utils.Info("🔍 验证HTTP头部配置...")
		headerManager, err := core.NewHeaderManager(headerConfigFile, headers)
		if err != nil {
			return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
		}
		if err := headerManager.LoadConfig(); err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		if err := headerManager.Validate(); err != nil {
			return fmt.Errorf("配置验证失败: %w", err)
		}

		validator := utils.NewHeaderValidator()
		if err := validator.ValidateProxy(appConfig.Proxy); err != nil {
			return fmt.Errorf("代理配置验证失败: %w", err)
		}

		lines := headerManager.SafeHeaderLines()
		utils.Info("✅ 配置验证通过!")
		utils.Infof("当前有效的HTTP头部 (%d个):", len(lines))
		for _, line := range lines {
			utils.Infof("  %s", line)
		}
		utils.Infof("浏览器代理: %s", utils.NewRedactor().Proxy(appConfig.Proxy))

		if areaCodes, err := utils.LoadAreaCodes(appConfig.AreaCodes.File, appConfig.AreaCodes.Column); err != nil {
			utils.Warnf("市外局番表不可用 (complete 模式需要): %v", err)
		} else {
			utils.Infof("市外局番表: %s (%d件)", appConfig.AreaCodes.File, areaCodes.Len())
		}
		return nil
	},
}

// ValidateFlags 验证输入输出路径
func ValidateFlags(input, output string) error {
	if input == "" {
		return fmt.Errorf("必须指定输入文件 (--input)")
	}
	if !utils.IsSupportedTable(input) {
		return fmt.Errorf("不支持的输入文件格式: %s (支持: %v)", input, utils.SupportedTableExts)
	}
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("无法读取输入文件: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("输入路径是目录: %s", input)
	}

	if output == "" {
		return fmt.Errorf("输出文件路径不能为空")
	}
	if !utils.IsSupportedTable(output) {
		return fmt.Errorf("不支持的输出文件格式: %s (支持: %v)", output, utils.SupportedTableExts)
	}
	return nil
}
