package core

import (
	"context"
	"errors"
	"strings"

	"github.com/yuji-matsuda-cyber/company-scraper/internal/crawlers"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/extractors"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/utils"
)

const (
	titleClause = `(intitle:"会社概要" OR intitle:"会社案内" OR intitle:"企業情報" OR intitle:"会社情報")`
	urlClause   = `(inurl:company OR inurl:profile OR inurl:about OR inurl:corporate)`
)

// lookupStage 查找模式的一个搜索阶段
type lookupStage struct {
	stage models.Stage
	build func(group string) string
}

// lookupStages 按顺序逐级放宽,第一个验证通过的候选即为结果
var lookupStages = []lookupStage{
	{models.StageSearchTitle, func(group string) string { return group + " " + titleClause }},
	{models.StageSearchURLPattern, func(group string) string { return group + " " + urlClause }},
	{models.StageSearchBroad, func(group string) string { return group }},
}

// PhoneFormats 号码的几种书写形式 (带引号)
//   - 11位手机号: xxx-xxxx-xxxx
//   - 10位: xxx-xxx-xxxx 和 xxxx-xx-xxxx
//   - 纯数字总是包含在内
func PhoneFormats(digits string) []string {
	var formats []string
	switch {
	case len(digits) == 11 && hasMobilePrefix(digits):
		formats = append(formats, quote(digits[:3]+"-"+digits[3:7]+"-"+digits[7:]))
	case len(digits) == 10:
		formats = append(formats,
			quote(digits[:3]+"-"+digits[3:6]+"-"+digits[6:]),
			quote(digits[:4]+"-"+digits[4:6]+"-"+digits[6:]),
		)
	}
	return append(formats, quote(digits))
}

// QueryGroup ("a" OR "b" OR ...)
func QueryGroup(digits string) string {
	return "(" + strings.Join(PhoneFormats(digits), " OR ") + ")"
}

func hasMobilePrefix(digits string) bool {
	for _, p := range []string{"070", "080", "090"} {
		if strings.HasPrefix(digits, p) {
			return true
		}
	}
	return false
}

func quote(s string) string {
	return `"` + s + `"`
}

// LookupProcessor 电话号码 → 官网 → 公司信息
type LookupProcessor struct {
	search  *crawlers.CandidateSearch
	render  crawlers.PageFetcher
	backoff models.DelayRange
	sleep   utils.Sleeper
}

// NewLookupProcessor 创建查找处理器
// render 为渲染JS的浏览器获取器,为nil时不做二次渲染
func NewLookupProcessor(search *crawlers.CandidateSearch, render crawlers.PageFetcher, backoff models.DelayRange, sleep utils.Sleeper) *LookupProcessor {
	return &LookupProcessor{
		search:  search,
		render:  render,
		backoff: backoff,
		sleep:   sleep,
	}
}

// Mode 实现 Processor
func (p *LookupProcessor) Mode() models.Mode {
	return models.ModeLookup
}

// IsTarget 查找模式处理所有行
func (p *LookupProcessor) IsTarget(*models.Record) bool {
	return true
}

// Process 逐级搜索并提取公司信息
func (p *LookupProcessor) Process(ctx context.Context, r *models.Record) (out models.Outcome, err error) {
	out = models.Outcome{Index: r.Index}
	stage := models.StageSearchTitle
	defer recoverStage(&stage, &err)

	digits := extractors.DigitsOnly(r.Phone)
	if digits == "" {
		utils.Infof("⏭️  第%d行没有电话号码", r.Index+1)
		out.Status = models.OutcomeNoPhone
		return out, nil
	}

	group := QueryGroup(digits)
	var verified *models.VerifiedPage
	for i, ls := range lookupStages {
		stage = ls.stage
		if i > 0 {
			utils.Warnf("%s没有找到,等待后进入%s", lookupStages[i-1].stage.Label(), ls.stage.Label())
			if err := utils.SleepJitter(ctx, p.sleep, p.backoff); err != nil {
				return out, err
			}
		}

		utils.Infof("🔍 [%s] 搜索中...", ls.stage.Label())
		verified, err = p.search.FindVerified(ctx, ls.stage, ls.build(group), digits)
		if err != nil {
			return out, err
		}
		if verified != nil {
			break
		}
	}

	if verified == nil {
		utils.Infof("❌ 所有阶段都没有找到官网: %s", digits)
		out.Status = models.OutcomeNotFound
		return out, nil
	}

	fields, renderErr := p.extract(ctx, verified)
	if renderErr != nil {
		return out, renderErr
	}

	out.Status = models.OutcomeFound
	out.URL = verified.Candidate
	out.Stage = verified.Stage
	out.Fields = fields
	utils.Infof("✅ 官网: %s (会社名: %s)", out.URL, fields.Get(models.FieldCompanyName))
	return out, nil
}

// extract 先从轻量页面提取,必需字段不全时用浏览器重新渲染一次并补齐空字段
// 会话失效原样返回,其他渲染错误保留已提取的字段
func (p *LookupProcessor) extract(ctx context.Context, verified *models.VerifiedPage) (models.ExtractionResult, error) {
	fields, err := extractors.Extract(verified.Page.HTML)
	if err != nil {
		utils.Warnf("提取失败: %v", err)
		fields = models.NewExtractionResult()
	}
	if fields.MandatoryComplete() || p.render == nil {
		return fields, nil
	}

	utils.Warnf("⚠️  提取不充分 (缺少: %v),用浏览器重新渲染", fields.Missing())
	page, err := p.render.Fetch(ctx, verified.Candidate)
	if err != nil {
		if ctx.Err() != nil {
			return fields, ctx.Err()
		}
		if errors.Is(err, models.ErrSessionInvalid) {
			return fields, err
		}
		utils.Errorf("浏览器渲染失败,保留已提取的字段: %v", err)
		return fields, nil
	}

	rendered, err := extractors.Extract(page.HTML)
	if err != nil {
		utils.Warnf("渲染后提取失败: %v", err)
		return fields, nil
	}
	fields.Merge(rendered)
	return fields, nil
}
