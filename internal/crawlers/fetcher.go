package crawlers

import (
	"context"

	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
)

// PageFetcher 页面获取策略
//   - StaticFetcher: 轻量HTTP (Colly)
//   - BrowserFetcher: 渲染JS的无头浏览器 (Rod)
//
// 非2xx响应返回 *models.FetchError,限流返回 models.ErrBlocked,
// 浏览器会话失效返回 models.ErrSessionInvalid
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*models.Page, error)
	Name() string
}

// FetcherFunc 函数适配为 PageFetcher (测试用)
type FetcherFunc func(ctx context.Context, url string) (*models.Page, error)

// Fetch 实现 PageFetcher
func (f FetcherFunc) Fetch(ctx context.Context, url string) (*models.Page, error) {
	return f(ctx, url)
}

// Name 实现 PageFetcher
func (f FetcherFunc) Name() string {
	return "func"
}
