package crawlers

import (
	"bytes"
	"compress/flate"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/utils"
	"golang.org/x/net/html/charset"
)

const (
	// StaticFetcherName 轻量获取策略名
	StaticFetcherName = "static"

	// 原始 Content-Type 暂存键,字符集转换推迟到解压之后
	ctxContentType = "original_content_type"
)

// StaticFetcher 轻量HTTP获取器(使用Colly)
// 每次获取克隆基础 collector,回调只作用于本次请求
type StaticFetcher struct {
	collector      *colly.Collector
	headerProvider models.HeaderProvider
	timeout        time.Duration
}

// NewStaticFetcher 创建轻量获取器
func NewStaticFetcher(timeout time.Duration, headerProvider models.HeaderProvider) *StaticFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)

	// 跳过证书验证,中小企业站点的证书经常过期或不匹配
	c.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
		},
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	})
	c.SetRequestTimeout(timeout)

	utils.Debugf("轻量获取器: 超时 %v, TLS证书验证已禁用", timeout)

	return &StaticFetcher{
		collector:      c,
		headerProvider: headerProvider,
		timeout:        timeout,
	}
}

// Name 实现 PageFetcher
func (sf *StaticFetcher) Name() string {
	return StaticFetcherName
}

// Fetch 获取页面,返回解压并转换为UTF-8后的HTML
func (sf *StaticFetcher) Fetch(ctx context.Context, pageURL string) (*models.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := sf.collector.Clone()
	c.Context = ctx

	var (
		page     *models.Page
		fetchErr error
	)

	c.OnRequest(func(r *colly.Request) {
		if sf.headerProvider != nil {
			headers, err := sf.headerProvider.GetHeaders()
			if err != nil {
				utils.Warnf("获取HTTP头部失败: %v", err)
			} else {
				for name, values := range headers {
					if len(values) > 0 {
						r.Headers.Set(name, values[0])
					}
				}
			}
		}
		// 显式声明后标准库不再自动解压, gzip 由 Colly 处理, br/deflate 在 OnResponse 中处理
		r.Headers.Set("Accept-Encoding", "gzip, deflate, br")
	})

	c.OnResponseHeaders(func(r *colly.Response) {
		contentType := r.Headers.Get("Content-Type")
		r.Ctx.Put(ctxContentType, contentType)
		if contentType != "" {
			// 去掉 charset,避免 Colly 在解压前转换字符集
			mediaType, _, _ := strings.Cut(contentType, ";")
			r.Headers.Set("Content-Type", strings.TrimSpace(mediaType))
		}
	})

	c.OnResponse(func(r *colly.Response) {
		body, err := decompressResponse(r.Headers.Get("Content-Encoding"), r.Body)
		if err != nil {
			fetchErr = &models.FetchError{URL: pageURL, StatusCode: r.StatusCode, Err: fmt.Errorf("%w: %v", models.ErrFetchFailed, err)}
			return
		}

		text, err := decodeCharset(body, r.Ctx.Get(ctxContentType))
		if err != nil {
			utils.Debugf("字符集转换失败 [%s]: %v, 使用原始内容", pageURL, err)
			text = string(body)
		}

		page = &models.Page{
			URL:        pageURL,
			FinalURL:   r.Request.URL.String(),
			HTML:       text,
			StatusCode: r.StatusCode,
			Via:        StaticFetcherName,
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = classifyFetchError(pageURL, status, err)
	})

	if err := c.Visit(pageURL); err != nil && fetchErr == nil {
		fetchErr = classifyFetchError(pageURL, 0, err)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if fetchErr != nil {
		if errors.Is(fetchErr, models.ErrBlocked) {
			utils.Warnf("🚫 请求被限流 [%s]", pageURL)
		} else {
			utils.Debugf("获取失败 [%s]: %v", pageURL, fetchErr)
		}
		return nil, fetchErr
	}
	if page == nil {
		return nil, &models.FetchError{URL: pageURL, Err: models.ErrFetchFailed}
	}

	utils.Debugf("获取成功 [%s]: HTTP %d, %d 字节", pageURL, page.StatusCode, len(page.HTML))
	return page, nil
}

// classifyFetchError 统一包装获取错误,429 通过 FetchError.Is 识别为限流
func classifyFetchError(pageURL string, status int, err error) error {
	var fe *models.FetchError
	if errors.As(err, &fe) {
		return fe
	}
	if status >= 300 || status == http.StatusTooManyRequests {
		return &models.FetchError{URL: pageURL, StatusCode: status, Err: err}
	}
	return &models.FetchError{URL: pageURL, Err: fmt.Errorf("%w: %v", models.ErrFetchFailed, err)}
}

// decompressResponse 根据Content-Encoding解压响应体
// gzip 已由 Colly 解压,这里只处理 deflate 和 br
func decompressResponse(contentEncoding string, body []byte) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	switch encoding {
	case "deflate":
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("deflate读取失败: %w", err)
		}
		return decompressed, nil

	case "br":
		decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
		if err != nil {
			return nil, fmt.Errorf("brotli读取失败: %w", err)
		}
		return decompressed, nil

	case "", "gzip", "identity":
		return body, nil

	default:
		utils.Warnf("未知的Content-Encoding: %s", contentEncoding)
		return body, nil
	}
}

// decodeCharset 按 Content-Type 和 <meta charset> 转换为UTF-8 (Shift_JIS/EUC-JP 站点很常见)
func decodeCharset(body []byte, contentType string) (string, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", err
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
