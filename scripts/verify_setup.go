package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/config"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/core"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/utils"
)

// setupCheck 一项环境检查
// warn 为 true 时失败只提示,不影响最终结果
type setupCheck struct {
	name string
	warn bool
	run  func() (string, error)
}

func main() {
	fmt.Println("==============================================")
	fmt.Println("  company-scraper 环境验证")
	fmt.Println("==============================================")

	var appConfig *core.Config
	checks := []setupCheck{
		{name: "Go", run: func() (string, error) {
			return fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH), nil
		}},
		{name: "Chrome/Chromium", warn: true, run: func() (string, error) {
			if path, found := launcher.LookPath(); found {
				return path, nil
			}
			return "", errors.New("未找到本地Chrome,首次运行时rod会自动下载Chromium")
		}},
		{name: "配置文件", run: func() (string, error) {
			cfg, err := core.LoadConfig("")
			if err != nil {
				return "", err
			}
			appConfig = cfg
			return "默认配置可用", cfg.Validate()
		}},
		{name: "市外局番表", run: func() (string, error) {
			if appConfig == nil {
				return "", errors.New("配置未加载")
			}
			codes, err := utils.LoadAreaCodes(appConfig.AreaCodes.File, appConfig.AreaCodes.Column)
			if err != nil {
				return "", fmt.Errorf("%w (complete 模式需要,可用 --area-codes 指定)", err)
			}
			return fmt.Sprintf("%s (%d件)", appConfig.AreaCodes.File, codes.Len()), nil
		}},
		{name: "身份配置", run: func() (string, error) {
			loader := config.NewHeaderConfigLoader("")
			cfg, err := loader.LoadConfig()
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s (头部%d个, UA池%d个)", loader.Path(), len(cfg.Headers), len(cfg.UserAgents)), nil
		}},
		{name: "Go模块依赖", run: func() (string, error) {
			if _, err := os.Stat("go.mod"); err != nil {
				return "", errors.New("当前目录没有go.mod")
			}
			if out, err := exec.Command("go", "mod", "download").CombinedOutput(); err != nil {
				return "", fmt.Errorf("go mod download失败: %v\n%s", err, out)
			}
			return "依赖下载完成", nil
		}},
	}

	allOK := true
	for _, c := range checks {
		detail, err := c.run()
		switch {
		case err == nil:
			fmt.Printf("✅ %s: %s\n", c.name, detail)
		case c.warn:
			fmt.Printf("⚠️  %s: %v\n", c.name, err)
		default:
			fmt.Printf("❌ %s: %v\n", c.name, err)
			allOK = false
		}
	}

	fmt.Println("==============================================")
	if !allOK {
		fmt.Println("❌ 环境验证失败,请解决上述问题。")
		os.Exit(1)
	}
	fmt.Println("✅ 环境验证通过!")
	fmt.Println()
	fmt.Println("下一步:")
	fmt.Println("  1. go build ./cmd/company-scraper")
	fmt.Println("  2. ./company-scraper validate-config")
	fmt.Println("  3. ./company-scraper lookup -i 電話番号リスト.csv")
}
