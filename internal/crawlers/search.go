package crawlers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/extractors"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/utils"
)

// DefaultGoogleSearchURL Google检索入口
const DefaultGoogleSearchURL = "https://www.google.com/search"

// SearchEngine 通用网页搜索,返回前n条自然结果的URL
type SearchEngine interface {
	Search(ctx context.Context, query string, n int) ([]string, error)
}

// GoogleSearch 通过页面获取器抓取 Google 结果页
type GoogleSearch struct {
	fetcher PageFetcher
	baseURL string
}

// NewGoogleSearch 创建 Google 搜索, baseURL 为空时使用 DefaultGoogleSearchURL
func NewGoogleSearch(fetcher PageFetcher, baseURL string) *GoogleSearch {
	if baseURL == "" {
		baseURL = DefaultGoogleSearchURL
	}
	return &GoogleSearch{fetcher: fetcher, baseURL: baseURL}
}

// SearchURL 构造检索URL
func (g *GoogleSearch) SearchURL(query string, n int) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("num", strconv.Itoa(n))
	params.Set("hl", "ja")
	return g.baseURL + "?" + params.Encode()
}

// Search 实现 SearchEngine
func (g *GoogleSearch) Search(ctx context.Context, query string, n int) ([]string, error) {
	page, err := g.fetcher.Fetch(ctx, g.SearchURL(query, n))
	if err != nil {
		return nil, err
	}
	if strings.Contains(page.FinalURL, "/sorry/") {
		return nil, fmt.Errorf("%w: Google要求人机验证 (%s)", models.ErrBlocked, page.FinalURL)
	}
	return parseGoogleResults(page.HTML, n)
}

// parseGoogleResults 提取包裹 h3 标题的结果链接
func parseGoogleResults(html string, n int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("解析搜索结果失败: %w", err)
	}

	seen := make(map[string]bool)
	var results []string
	doc.Find("a:has(h3)").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		link := resolveGoogleHref(href)
		if link == "" || seen[link] {
			return true
		}
		seen[link] = true
		results = append(results, link)
		return len(results) < n
	})
	return results, nil
}

// resolveGoogleHref 还原 /url?q= 跳转链接,丢弃 Google 自身的链接
func resolveGoogleHref(href string) string {
	if strings.HasPrefix(href, "/url?") {
		u, err := url.Parse(href)
		if err != nil {
			return ""
		}
		href = u.Query().Get("q")
	}

	u, err := url.Parse(href)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "google.com" || strings.HasSuffix(host, ".google.com") || strings.Contains(host, ".google.") {
		return ""
	}
	return u.String()
}

// CandidateFilter 候选URL排除规则
//   - 域名: 主机名包含关键字 (企业名录/百科类站点)
//   - 路径: URL路径包含关键字 (联系表单/隐私政策类页面)
type CandidateFilter struct {
	domains []string
	paths   []string
}

// NewCandidateFilter 创建过滤器
func NewCandidateFilter(domains, paths []string) *CandidateFilter {
	lower := func(in []string) []string {
		out := make([]string, 0, len(in))
		for _, s := range in {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return &CandidateFilter{domains: lower(domains), paths: lower(paths)}
}

// Excluded 返回URL是否被排除及原因
func (f *CandidateFilter) Excluded(candidate string) (bool, string) {
	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" {
		return true, "URL格式无效"
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range f.domains {
		if strings.Contains(host, d) {
			return true, "排除域名 " + d
		}
	}
	path := strings.ToLower(u.EscapedPath())
	for _, p := range f.paths {
		if strings.Contains(path, p) {
			return true, "排除路径 " + p
		}
	}
	return false, ""
}

// CandidateSearch 搜索 → 过滤 → 轻量获取 → 验证号码
type CandidateSearch struct {
	engine      SearchEngine
	fetcher     PageFetcher
	filter      *CandidateFilter
	results     int
	verifyRetry models.DelayRange
	sleep       utils.Sleeper
}

// NewCandidateSearch 创建候选搜索
func NewCandidateSearch(engine SearchEngine, fetcher PageFetcher, filter *CandidateFilter, results int, verifyRetry models.DelayRange, sleep utils.Sleeper) *CandidateSearch {
	if results <= 0 {
		results = 5
	}
	if sleep == nil {
		sleep = utils.Sleep
	}
	return &CandidateSearch{
		engine:      engine,
		fetcher:     fetcher,
		filter:      filter,
		results:     results,
		verifyRetry: verifyRetry,
		sleep:       sleep,
	}
}

// FindVerified 返回第一个正文包含 phone 的候选页面
// 返回 nil, nil 表示候选已用尽;限流原样返回
func (cs *CandidateSearch) FindVerified(ctx context.Context, stage models.Stage, query, phone string) (*models.VerifiedPage, error) {
	utils.Infof("🔍 [%s] 检索中: %s", stage.Label(), query)

	candidates, err := cs.engine.Search(ctx, query, cs.results)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case models.IsFatal(err):
			return nil, err
		case models.IsTransient(err):
			utils.Warnf("检索失败,视为无结果: %v", err)
			return nil, nil
		default:
			return nil, &models.StageError{Stage: stage, Err: err}
		}
	}

	for _, candidate := range candidates {
		if excluded, reason := cs.filter.Excluded(candidate); excluded {
			utils.Warnf("跳过被排除的候选: %s (%s)", candidate, reason)
			continue
		}

		utils.Infof("发现候选URL: %s", candidate)
		page, err := cs.fetcher.Fetch(ctx, candidate)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if models.IsFatal(err) {
				return nil, err
			}
			utils.Warnf("候选页面获取失败,跳过: %v", err)
			continue
		}

		if extractors.PageContainsPhone(page.HTML, phone) {
			utils.Infof("✅ 验证成功,采用此URL: %s", candidate)
			return &models.VerifiedPage{
				Candidate: candidate,
				Page:      page,
				Query:     query,
				Stage:     stage,
			}, nil
		}

		utils.Warnf("验证失败: 页面中没有目标号码 [%s]", candidate)
		if err := utils.SleepJitter(ctx, cs.sleep, cs.verifyRetry); err != nil {
			return nil, err
		}
	}

	return nil, nil
}
