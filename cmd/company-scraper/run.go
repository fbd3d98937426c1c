package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/core"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/crawlers"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/extractors"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/utils"
)

// errStoppedEarly 任务因限流/会话失效/取消提前结束 (结果已保存)
var errStoppedEarly = errors.New("处理提前结束")

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "电话号码 → 官网 + 公司信息",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(models.ModeLookup)
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "补全电话号码为空的行",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(models.ModeCompletion)
	},
}

// pipeline 一次运行所需的组件
type pipeline struct {
	processor core.Processor
	columns   models.ColumnSet
	loop      models.DelayRange
	decoy     core.DecoyVisitor
	session   *crawlers.BrowserSession
}

func runMode(mode models.Mode) error {
	if outputFile == "" {
		outputFile = defaultOutputPath(inputFile, appConfig.Output.BaseDir)
	}
	if err := ValidateFlags(inputFile, outputFile); err != nil {
		return err
	}

	// Ctrl+C 取消当前任务,已处理的结果仍会写出
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	headerManager, err := core.NewHeaderManager(headerConfigFile, headers)
	if err != nil {
		return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
	}
	if err := headerManager.LoadConfig(); err != nil {
		return fmt.Errorf("加载头部配置失败: %w", err)
	}
	if err := headerManager.Validate(); err != nil {
		return fmt.Errorf("头部配置验证失败: %w", err)
	}

	table, err := utils.ReadTable(inputFile)
	if err != nil {
		return err
	}
	utils.Infof("📄 已读取输入: %s (%d行)", inputFile, table.Len())

	p, err := buildPipeline(mode, headerManager)
	if err != nil {
		return err
	}

	columns, err := p.columns.Detect(table)
	if err != nil {
		p.session.Close()
		return err
	}
	records := columns.Records(table)

	reporter := utils.NewReporter(appConfig.Output.BaseDir, appConfig.Output.CheckpointDir)
	report := models.NewRunReport(mode, inputFile, outputFile)
	report.Pipeline = appConfig.Pipeline
	report.Proxy = appConfig.Proxy
	utils.WithRun(report.RunID, mode)

	checkpoint, err := loadCheckpoint(reporter, report, mode)
	if err != nil {
		p.session.Close()
		return err
	}

	var bar *progressbar.ProgressBar
	runner := core.NewRunner(p.processor, core.RunnerConfig{
		Loop:       p.loop,
		Decoy:      p.decoy,
		DecoyEvery: appConfig.Pipeline.DecoyEvery,
		Session:    p.session,
		Checkpoint: checkpoint,
		Sleep:      utils.Sleep,
		Progress: func(pr core.Progress) {
			if bar == nil {
				bar = utils.NewProgressBar(pr.Total, string(mode))
			}
			bar.Describe(pr.Message)
			_ = bar.Set(pr.Done)
		},
	})

	result := runner.Run(ctx, records)
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	if err := core.ApplyOutcomes(table, mode, result.Outcomes); err != nil {
		return err
	}
	if err := utils.WriteTable(outputFile, table); err != nil {
		return err
	}
	utils.Infof("💾 结果已写入: %s", outputFile)

	report.EndTime = time.Now()
	report.Status = result.Status
	report.StatusMsg = result.Message
	report.Stats = result.Stats
	report.Outcomes = sortedOutcomes(result.Outcomes)
	if _, err := reporter.SaveRunReport(report); err != nil {
		utils.Warnf("保存运行报告失败: %v", err)
	}

	if result.Status.StoppedEarly() {
		if _, err := reporter.SaveCheckpoint(checkpoint); err != nil {
			utils.Warnf("%v", err)
		}
		utils.Warnf("⚠️  %s,可使用 --resume 继续", result.Message)
		return fmt.Errorf("%w: %s", errStoppedEarly, result.Message)
	}

	reporter.RemoveCheckpoint(inputFile, mode)
	utils.Info("✨ " + result.Message)
	return nil
}

// buildPipeline 按模式组装获取器和处理器
func buildPipeline(mode models.Mode, headerManager *core.HeaderManager) (*pipeline, error) {
	cfg := appConfig
	session := crawlers.NewBrowserSession(crawlers.BrowserConfig{
		Headless:        cfg.Pipeline.Headless,
		PageLoadTimeout: cfg.Pipeline.PageLoadTimeout,
		SettleWait:      cfg.Pipeline.SettleWait,
		Proxy:           cfg.Proxy,
	}, headerManager.UserAgent, crawlers.NewResourceMonitor(crawlers.ResourceMonitorConfig{}))

	switch mode {
	case models.ModeLookup:
		static := crawlers.NewStaticFetcher(cfg.Pipeline.FetchTimeout, headerManager)
		filter := crawlers.NewCandidateFilter(cfg.Search.ExcludedDomains, cfg.Search.ExcludedPaths)
		search := crawlers.NewCandidateSearch(
			crawlers.NewGoogleSearch(static, ""),
			static,
			filter,
			cfg.Pipeline.SearchResults,
			cfg.Delays.VerifyRetry,
			utils.Sleep,
		)
		render := crawlers.NewBrowserFetcher(session, cfg.Pipeline.PageLoadTimeout, cfg.Pipeline.RenderWait)
		decoyFetcher := crawlers.NewStaticFetcher(cfg.Pipeline.DecoyTimeout, headerManager)

		return &pipeline{
			processor: core.NewLookupProcessor(search, render, cfg.Delays.StageBackoff, utils.Sleep),
			columns:   models.LookupColumns,
			loop:      cfg.Delays.LookupLoop,
			decoy:     crawlers.NewDecoy(decoyFetcher, cfg.Search.DecoyURLs, cfg.Delays.Decoy, utils.Sleep),
			session:   session,
		}, nil

	case models.ModeCompletion:
		areaCodes, err := utils.LoadAreaCodes(cfg.AreaCodes.File, cfg.AreaCodes.Column)
		if err != nil {
			return nil, err
		}
		utils.Infof("✅ 市外局番表已加载: %s (%d件)", cfg.AreaCodes.File, areaCodes.Len())
		validator := extractors.NewValidator(areaCodes)

		browser := crawlers.NewBrowserFetcher(session, cfg.Pipeline.PageLoadTimeout, cfg.Pipeline.SettleWait)
		searchPage := crawlers.NewBrowserFetcher(session, cfg.Pipeline.PageLoadTimeout, 0)
		drill := crawlers.NewDrillDown(browser, validator)
		yahoo := crawlers.NewYahooSearch(searchPage, validator, "", cfg.Delays, utils.Sleep)

		return &pipeline{
			processor: core.NewCompletionProcessor(drill, yahoo),
			columns:   models.CompletionColumns,
			loop:      cfg.Delays.CompletionLoop,
			decoy:     crawlers.NewDecoy(searchPage.WithTimeout(cfg.Pipeline.DecoyTimeout), cfg.Search.DecoyURLs, cfg.Delays.Decoy, utils.Sleep),
			session:   session,
		}, nil
	}
	return nil, fmt.Errorf("未知的运行模式: %s", mode)
}

// loadCheckpoint --resume 时加载已有检查点,否则新建
func loadCheckpoint(reporter *utils.Reporter, report *models.RunReport, mode models.Mode) (*models.Checkpoint, error) {
	if resume {
		cp, err := reporter.LoadCheckpoint(inputFile, mode)
		if err != nil {
			return nil, err
		}
		if cp != nil {
			cp.RunID = report.RunID
			return cp, nil
		}
		utils.Warn("没有找到检查点,从头开始处理")
	}
	return models.NewCheckpoint(report.RunID, mode, inputFile), nil
}

func sortedOutcomes(outcomes map[int]models.Outcome) []models.Outcome {
	list := make([]models.Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		list = append(list, o)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Index < list[j].Index })
	return list
}

// defaultOutputPath <输出目录>/<输入文件名>_result.<扩展名>
func defaultOutputPath(input, dir string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+"_result"+strings.ToLower(ext))
}
