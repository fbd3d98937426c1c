package core

import (
	"context"
	"errors"
	"strings"

	"github.com/yuji-matsuda-cyber/company-scraper/internal/crawlers"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/utils"
)

// HomepageSearcher 从官网深入查找号码
type HomepageSearcher interface {
	FindPhone(ctx context.Context, homepage string) (*crawlers.DrillResult, error)
}

// PhoneSearcher 按公司名和地址搜索号码
type PhoneSearcher interface {
	AnswerPanelPhone(ctx context.Context, name, address string) (string, error)
	ListingPhone(ctx context.Context, name, address string) (string, error)
}

// CompletionProcessor 补全电话号码为空的行
// 顺序: 官网深入 → Yahoo直接搜索 → Yahoo一览搜索,找到即停止
type CompletionProcessor struct {
	homepage HomepageSearcher
	phones   PhoneSearcher
}

// NewCompletionProcessor 创建补全处理器
func NewCompletionProcessor(homepage HomepageSearcher, phones PhoneSearcher) *CompletionProcessor {
	return &CompletionProcessor{homepage: homepage, phones: phones}
}

// Mode 实现 Processor
func (p *CompletionProcessor) Mode() models.Mode {
	return models.ModeCompletion
}

// IsTarget 只处理电话号码为空的行
func (p *CompletionProcessor) IsTarget(r *models.Record) bool {
	return strings.TrimSpace(r.Phone) == ""
}

// Process 依次尝试各阶段
func (p *CompletionProcessor) Process(ctx context.Context, r *models.Record) (out models.Outcome, err error) {
	out = models.Outcome{Index: r.Index}
	stage := models.StageHomepage
	defer recoverStage(&stage, &err)

	if website := models.NormalizeWebsite(r.Website); website != "" {
		result, err := p.homepage.FindPhone(ctx, website)
		if result != nil && len(result.Hops) > 0 {
			stage = result.Hops[len(result.Hops)-1].Stage
		}
		if err != nil {
			return out, stageError(stage, err)
		}
		if result != nil && result.Phone != "" {
			return found(out, result.Phone, result.Stage), nil
		}
	} else {
		utils.Infof("HP列为空或无效,直接使用Yahoo搜索")
	}

	stage = models.StageAnswerPanel
	phone, err := p.phones.AnswerPanelPhone(ctx, r.CompanyName, r.Address)
	if err != nil {
		return out, stageError(stage, err)
	}
	if phone != "" {
		return found(out, phone, stage), nil
	}

	stage = models.StageListing
	phone, err = p.phones.ListingPhone(ctx, r.CompanyName, r.Address)
	if err != nil {
		return out, stageError(stage, err)
	}
	if phone != "" {
		return found(out, phone, stage), nil
	}

	utils.Infof("❌ 第%d行没有找到电话号码", r.Index+1)
	out.Status = models.OutcomeNotFound
	return out, nil
}

func found(out models.Outcome, phone string, stage models.Stage) models.Outcome {
	utils.Infof("✅ [%s] 找到电话号码: %s", stage.Label(), phone)
	out.Status = models.OutcomeFound
	out.Phone = phone
	out.Stage = stage
	return out
}

// stageError 致命错误和取消原样返回,其余错误标记所在阶段
func stageError(stage models.Stage, err error) error {
	var se *models.StageError
	if models.IsFatal(err) || errors.Is(err, context.Canceled) || errors.As(err, &se) {
		return err
	}
	return &models.StageError{Stage: stage, Err: err}
}
