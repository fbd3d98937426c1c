package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/utils"
)

// Processor 单条记录的处理流程
type Processor interface {
	Mode() models.Mode
	IsTarget(r *models.Record) bool
	Process(ctx context.Context, r *models.Record) (models.Outcome, error)
}

// DecoyVisitor 伪装访问
type DecoyVisitor interface {
	Visit(ctx context.Context) error
}

// Progress 进度
type Progress struct {
	Done    int
	Total   int
	Message string
}

// Fraction 完成比例 (0-1)
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Done) / float64(p.Total)
}

// ProgressFunc 进度回调
type ProgressFunc func(p Progress)

// RunnerConfig 批量运行配置
type RunnerConfig struct {
	Loop       models.DelayRange  // 记录之间的随机等待
	Decoy      DecoyVisitor       // 可为nil
	DecoyEvery int                // 每处理N条访问一次伪装站点,0表示不访问
	Progress   ProgressFunc       // 可为nil
	Session    io.Closer          // 浏览器会话,所有退出路径都会关闭
	Checkpoint *models.Checkpoint // 可为nil,已有最终结果的行会被跳过
	Sleep      utils.Sleeper
}

// RunResult 批量运行结果
type RunResult struct {
	Status   models.RunStatus
	Message  string
	Outcomes map[int]models.Outcome
	Stats    models.RunStats
}

// Runner 顺序处理所有记录
type Runner struct {
	processor Processor
	config    RunnerConfig
}

// NewRunner 创建批量运行器
func NewRunner(processor Processor, config RunnerConfig) *Runner {
	return &Runner{processor: processor, config: config}
}

// Run 逐条处理记录
// 限流或会话失效时当前行写入哨兵值,之后的目标行全部记为中断
func (r *Runner) Run(ctx context.Context, records []*models.Record) *RunResult {
	startTime := time.Now()
	defer r.closeSession()

	result := &RunResult{
		Status:   models.RunStatusRunning,
		Outcomes: make(map[int]models.Outcome),
	}
	result.Stats.TotalRows = len(records)

	var targets []*models.Record
	for _, rec := range records {
		if r.processor.IsTarget(rec) {
			targets = append(targets, rec)
		}
	}
	result.Stats.Targets = len(targets)
	utils.Infof("🚀 开始处理 [%s]: 共%d行,目标%d行", r.processor.Mode(), len(records), len(targets))

	processed := 0
	for i, rec := range targets {
		if o, ok := r.config.Checkpoint.Done(rec.Index); ok {
			result.Outcomes[rec.Index] = o
			result.Stats.Resumed++
			result.Stats.Record(o.Status)
			continue
		}

		if ctx.Err() != nil {
			result.Status = models.RunStatusCancelled
			r.interrupt(result, targets[i:])
			break
		}

		r.report(i, len(targets), fmt.Sprintf("%d/%d件目 処理中", i+1, len(targets)))
		utils.Infof("\n==================== [%d/%d] 第%d行 ====================", i+1, len(targets), rec.Index+1)

		out, err := r.processor.Process(ctx, rec)
		out.Index = rec.Index
		processed++
		result.Stats.Processed++

		if status := classify(ctx, &out, err); status != "" {
			result.Status = status
			r.record(result, out)
			utils.Errorf("⛔ 处理中断 (%s): %v", status, err)
			r.interrupt(result, targets[i+1:])
			break
		}
		r.record(result, out)

		if i == len(targets)-1 {
			continue
		}
		if r.config.Decoy != nil && r.config.DecoyEvery > 0 && processed%r.config.DecoyEvery == 0 {
			if err := r.config.Decoy.Visit(ctx); err == nil {
				result.Stats.Decoys++
			}
		}
		if out.Status != models.OutcomeNoPhone {
			_ = utils.SleepJitter(ctx, r.config.Sleep, r.config.Loop)
		}
	}

	if result.Status == models.RunStatusRunning {
		result.Status = models.RunStatusCompleted
	}
	result.Stats.Duration = time.Since(startTime).Seconds()
	result.Message = statusMessage(result)
	r.report(len(targets), len(targets), result.Message)
	printSummary(result)
	return result
}

// classify 把处理错误写入结果,返回非空状态表示整批任务必须停止
func classify(ctx context.Context, out *models.Outcome, err error) models.RunStatus {
	if err == nil {
		return ""
	}

	var se *models.StageError
	switch {
	case errors.Is(err, models.ErrBlocked):
		out.Status = models.OutcomeBlocked
		return models.RunStatusBlocked
	case errors.Is(err, models.ErrSessionInvalid):
		out.Status = models.OutcomeInterrupted
		return models.RunStatusSessionLost
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		out.Status = models.OutcomeInterrupted
		return models.RunStatusCancelled
	case errors.As(err, &se):
		out.Stage = se.Stage
	}

	utils.Errorf("❌ 第%d行处理出错: %v", out.Index+1, err)
	out.Status = models.OutcomeError
	out.Err = err.Error()
	return ""
}

func (r *Runner) record(result *RunResult, out models.Outcome) {
	result.Outcomes[out.Index] = out
	result.Stats.Record(out.Status)
	if r.config.Checkpoint != nil {
		r.config.Checkpoint.Put(out)
	}
}

// interrupt 剩余的目标行记为中断 (已从检查点恢复的行除外)
func (r *Runner) interrupt(result *RunResult, rest []*models.Record) {
	for _, rec := range rest {
		if _, ok := r.config.Checkpoint.Done(rec.Index); ok {
			continue
		}
		out := models.Outcome{Index: rec.Index, Status: models.OutcomeInterrupted}
		result.Outcomes[rec.Index] = out
		result.Stats.Record(out.Status)
	}
}

func (r *Runner) report(done, total int, message string) {
	if r.config.Progress != nil {
		r.config.Progress(Progress{Done: done, Total: total, Message: message})
	}
}

func (r *Runner) closeSession() {
	if r.config.Session == nil {
		return
	}
	if err := r.config.Session.Close(); err != nil {
		utils.Warnf("关闭浏览器会话失败: %v", err)
	}
}

func statusMessage(result *RunResult) string {
	s := result.Stats
	switch result.Status {
	case models.RunStatusBlocked:
		return fmt.Sprintf("被限流拦截,处理已中断 (已处理%d/%d行)", s.Processed+s.Resumed, s.Targets)
	case models.RunStatusSessionLost:
		return fmt.Sprintf("浏览器会话失效,处理已中断 (已处理%d/%d行)", s.Processed+s.Resumed, s.Targets)
	case models.RunStatusCancelled:
		return fmt.Sprintf("已取消 (已处理%d/%d行)", s.Processed+s.Resumed, s.Targets)
	}
	if s.Targets == 0 {
		return "没有需要处理的行"
	}
	return fmt.Sprintf("完成！共处理%d行", s.Targets)
}

// printSummary 打印运行摘要
func printSummary(result *RunResult) {
	s := result.Stats
	utils.Info("\n==================================================")
	utils.Info("📊 运行摘要")
	utils.Info("==================================================")
	utils.Infof("状态: %s", result.Message)
	utils.Infof("总行数: %d (目标: %d)", s.TotalRows, s.Targets)
	utils.Infof("✅ 找到: %d", s.Found)
	utils.Infof("❔ 未找到: %d", s.NotFound)
	if s.NoPhone > 0 {
		utils.Infof("📵 无电话号码: %d", s.NoPhone)
	}
	if s.Errors > 0 {
		utils.Warnf("❌ 出错: %d", s.Errors)
	}
	if s.Interrupted > 0 {
		utils.Warnf("⛔ 中断: %d", s.Interrupted)
	}
	if s.Resumed > 0 {
		utils.Infof("♻️  从检查点恢复: %d", s.Resumed)
	}
	utils.Infof("⏱️  总耗时: %.2f秒", s.Duration)
	utils.Info("==================================================")
}

// recoverStage 把处理过程中的panic转为当前阶段的错误
func recoverStage(stage *models.Stage, err *error) {
	if r := recover(); r != nil {
		utils.Errorf("💥 [%s] 发生panic: %v", stage.Label(), r)
		*err = &models.StageError{Stage: *stage, Err: fmt.Errorf("panic: %v", r)}
	}
}

// ApplyOutcomes 把结果写回表格,保持原有列和行顺序
//   - lookup: 删除旧的输出列后追加 URL 和各字段列
//   - complete: 就地更新电话号码列
func ApplyOutcomes(t *models.Table, mode models.Mode, outcomes map[int]models.Outcome) error {
	switch mode {
	case models.ModeLookup:
		names := []string{"URL"}
		for _, f := range models.Fields {
			names = append(names, string(f))
		}
		t.DropColumns(names...)

		cols := make([]int, len(names))
		for i, name := range names {
			cols[i] = t.EnsureColumn(name)
		}
		for row := range t.Rows {
			o, ok := outcomes[row]
			if !ok {
				continue
			}
			t.Set(row, cols[0], o.URLValue())
			for i, f := range models.Fields {
				t.Set(row, cols[i+1], o.Fields.Get(f))
			}
		}
		return nil

	case models.ModeCompletion:
		col, ok := t.Column(models.CompletionColumns.Phone...)
		if !ok {
			return &models.MissingColumnError{Alternates: models.CompletionColumns.Phone}
		}
		for row := range t.Rows {
			if o, ok := outcomes[row]; ok {
				t.Set(row, col, o.PhoneValue())
			}
		}
		return nil
	}
	return fmt.Errorf("未知的运行模式: %s", mode)
}
