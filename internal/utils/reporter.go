package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
)

// Reporter 运行报告与检查点的写入
type Reporter struct {
	outputDir     string
	checkpointDir string
}

// NewReporter 创建报告生成器
func NewReporter(outputDir, checkpointDir string) *Reporter {
	if checkpointDir == "" {
		checkpointDir = outputDir
	}
	return &Reporter{
		outputDir:     outputDir,
		checkpointDir: checkpointDir,
	}
}

// SaveRunReport 保存运行报告到 reports/run_<id>.json,返回文件路径
func (r *Reporter) SaveRunReport(report *models.RunReport) (string, error) {
	reportsDir := filepath.Join(r.outputDir, "reports")
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return "", fmt.Errorf("创建报告目录失败: %w", err)
	}

	path := filepath.Join(reportsDir, fmt.Sprintf("run_%s.json", report.RunID))
	if err := r.saveJSON(path, report); err != nil {
		return "", err
	}

	Infof("✅ 报告已生成: %s", path)
	return path, nil
}

// CheckpointPath 检查点文件路径
func (r *Reporter) CheckpointPath(inputFile string, mode models.Mode) string {
	return filepath.Join(r.checkpointDir, models.CheckpointFilename(inputFile, mode))
}

// SaveCheckpoint 保存检查点
func (r *Reporter) SaveCheckpoint(cp *models.Checkpoint) (string, error) {
	path := r.CheckpointPath(cp.InputFile, cp.Mode)
	if err := cp.SaveToFile(path); err != nil {
		return "", fmt.Errorf("保存检查点失败: %w", err)
	}
	Infof("💾 检查点已保存: %s (%d 行)", path, len(cp.Outcomes))
	return path, nil
}

// LoadCheckpoint 加载检查点,文件不存在时返回 nil, nil
func (r *Reporter) LoadCheckpoint(inputFile string, mode models.Mode) (*models.Checkpoint, error) {
	path := r.CheckpointPath(inputFile, mode)
	cp, err := models.LoadCheckpointFromFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取检查点失败: %w", err)
	}
	if cp.Mode != mode {
		return nil, fmt.Errorf("检查点模式不匹配: %s (当前 %s)", cp.Mode, mode)
	}
	Infof("♻️  已加载检查点: %s (%d 行已完成)", path, len(cp.Outcomes))
	return cp, nil
}

// RemoveCheckpoint 任务完整结束后删除检查点
func (r *Reporter) RemoveCheckpoint(inputFile string, mode models.Mode) {
	path := r.CheckpointPath(inputFile, mode)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		Warnf("删除检查点失败: %v", err)
	}
}

func (r *Reporter) saveJSON(path string, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("写入报告文件失败: %w", err)
	}

	Debugf("保存报告: %s", path)
	return nil
}

// NewProgressBar 创建进度条
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
