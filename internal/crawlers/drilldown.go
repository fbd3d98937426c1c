package crawlers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/extractors"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/utils"
	"golang.org/x/net/html"
)

// CompanyLinkPatterns 第1层: 会社概要类链接 (按优先级)
var CompanyLinkPatterns = []string{
	"//a[contains(., '会社概要')]",
	"//a[contains(., '企業情報')]",
	"//a[contains(., '会社案内')]",
	"//a[contains(., '私たちについて')]",
	"//a[contains(@href, 'company')]",
	"//a[contains(@href, 'about')]",
	"//a[contains(@href, 'corporate')]",
	"//a[contains(@href, 'profile')]",
	"//a[contains(@href, 'gaiyou')]",
}

// SubCompanyLinkPatterns 第2层: 沿革/拠点/アクセス类链接
var SubCompanyLinkPatterns = []string{
	"//a[contains(., '概要')]",
	"//a[contains(., '沿革')]",
	"//a[contains(., '拠点')]",
	"//a[contains(., '事業所')]",
	"//a[contains(., 'アクセス')]",
	"//a[contains(@href, 'outline')]",
	"//a[contains(@href, 'access')]",
	"//a[contains(@href, 'location')]",
	"//a[contains(@href, 'base')]",
}

var skippedLinkSchemes = []string{"javascript:", "tel:", "mailto:"}

// DrillResult 深入链接的结果
type DrillResult struct {
	Phone string
	Stage models.Stage
	Hops  []models.DrillHop
}

// DrillDown 从首页出发,最多深入两层同域链接寻找电话号码
type DrillDown struct {
	fetcher   PageFetcher
	validator *extractors.Validator
}

// NewDrillDown 创建深入引擎
func NewDrillDown(fetcher PageFetcher, validator *extractors.Validator) *DrillDown {
	return &DrillDown{fetcher: fetcher, validator: validator}
}

// FindPhone 首页 → 会社概要 → 沿革/拠点,找到号码即停止
// 会话失效原样返回;其他获取错误只结束当前层级
func (d *DrillDown) FindPhone(ctx context.Context, homepage string) (*DrillResult, error) {
	result := &DrillResult{}

	homePage, err := d.visit(ctx, result, models.DrillHop{URL: homepage, Depth: 0, Stage: models.StageHomepage})
	if err != nil || homePage == nil {
		return result, err
	}
	if result.Phone != "" {
		utils.Infof("✅ HPトップで番号抽出成功: %s", result.Phone)
		return result, nil
	}

	base := pageBase(homePage)
	siteHost := hostOf(base)

	utils.Infof("首页没有号码,查找会社概要页面...")
	l1, err := findLink(homePage.HTML, base, siteHost, CompanyLinkPatterns, "")
	if err != nil {
		return result, &models.StageError{Stage: models.StageOverview, Err: err}
	}
	if l1 == "" {
		utils.Infof("没有找到会社概要链接")
		return result, nil
	}
	utils.Infof("发现会社概要页面 -> %s", l1)

	overview, err := d.visit(ctx, result, models.DrillHop{URL: l1, Depth: 1, Stage: models.StageOverview, SourceURL: base})
	if err != nil || overview == nil {
		return result, err
	}
	if result.Phone != "" {
		utils.Infof("✅ 概要1で番号抽出成功: %s", result.Phone)
		return result, nil
	}

	utils.Infof("概要1没有号码,查找下一层页面...")
	l2, err := findLink(overview.HTML, pageBase(overview), siteHost, SubCompanyLinkPatterns, stripFragment(l1))
	if err != nil {
		return result, &models.StageError{Stage: models.StageSubOverview, Err: err}
	}
	if l2 == "" {
		return result, nil
	}
	utils.Infof("发现详细页面 -> %s", l2)

	if _, err := d.visit(ctx, result, models.DrillHop{URL: l2, Depth: 2, Stage: models.StageSubOverview, SourceURL: l1}); err != nil {
		return result, err
	}
	if result.Phone != "" {
		utils.Infof("✅ 概要2で番号抽出成功: %s", result.Phone)
	}
	return result, nil
}

// visit 获取一跳并扫描号码,普通获取失败返回 nil, nil
func (d *DrillDown) visit(ctx context.Context, result *DrillResult, hop models.DrillHop) (*models.Page, error) {
	utils.Infof("访问中 [%s]: %s", hop.Stage.Label(), hop.URL)
	result.Hops = append(result.Hops, hop)

	page, err := d.fetcher.Fetch(ctx, hop.URL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if models.IsFatal(err) {
			return nil, err
		}
		utils.Warnf("页面加载失败 [%s],放弃此层: %v", hop.Stage.Label(), err)
		return nil, nil
	}

	if phone := d.validator.PhoneFromHTML(page.HTML); phone != "" {
		result.Phone = phone
		result.Stage = hop.Stage
	}
	return page, nil
}

// findLink 按模式优先级返回第一个有效的同域链接
func findLink(pageHTML, base, siteHost string, patterns []string, previous string) (string, error) {
	doc, err := htmlquery.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return "", fmt.Errorf("解析页面失败: %w", err)
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("无效的页面URL: %w", err)
	}

	for _, pattern := range patterns {
		nodes, err := htmlquery.QueryAll(doc, pattern)
		if err != nil {
			return "", fmt.Errorf("XPath错误 [%s]: %w", pattern, err)
		}
		for _, n := range nodes {
			if link, ok := acceptLink(n, baseURL, siteHost, previous); ok {
				return link, nil
			}
		}
	}
	return "", nil
}

func acceptLink(n *html.Node, base *url.URL, siteHost, previous string) (string, bool) {
	href := strings.TrimSpace(htmlquery.SelectAttr(n, "href"))
	if href == "" {
		return "", false
	}
	lower := strings.ToLower(href)
	for _, scheme := range skippedLinkSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "", false
		}
	}
	// 最后一段含 # 的视为页内锚点
	segments := strings.Split(href, "/")
	if strings.Contains(segments[len(segments)-1], "#") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	if !sameSite(abs.Hostname(), siteHost) {
		return "", false
	}

	link := abs.String()
	if previous != "" && stripFragment(link) == previous {
		return "", false
	}
	return link, true
}

func pageBase(p *models.Page) string {
	if p.FinalURL != "" {
		return p.FinalURL
	}
	return p.URL
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// sameSite 主机名相同 (忽略 www. 前缀)
func sameSite(a, b string) bool {
	norm := func(h string) string {
		return strings.TrimPrefix(strings.ToLower(h), "www.")
	}
	return a != "" && norm(a) == norm(b)
}

func stripFragment(raw string) string {
	before, _, _ := strings.Cut(raw, "#")
	return before
}
