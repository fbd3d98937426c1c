package crawlers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/utils"
)

const (
	// BrowserFetcherName 浏览器获取策略名
	BrowserFetcherName = "browser"

	browserAcceptLanguage = "ja-JP,ja;q=0.9"
)

// BrowserConfig 浏览器会话配置
type BrowserConfig struct {
	Headless        bool
	PageLoadTimeout time.Duration
	SettleWait      time.Duration
	Proxy           models.ProxyConfig
}

// BrowserSession 进程内唯一的浏览器会话
// 首次调用 Page 时启动,只由运行循环串行使用
type BrowserSession struct {
	config    BrowserConfig
	userAgent func() string
	monitor   *ResourceMonitor

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	dead     bool
	closed   bool
}

// NewBrowserSession 创建会话 (不会立即启动浏览器)
func NewBrowserSession(config BrowserConfig, userAgent func() string, monitor *ResourceMonitor) *BrowserSession {
	if config.PageLoadTimeout <= 0 {
		config.PageLoadTimeout = 30 * time.Second
	}
	return &BrowserSession{
		config:    config,
		userAgent: userAgent,
		monitor:   monitor,
	}
}

// newLauncher 浏览器启动参数
func newLauncher(config BrowserConfig) *launcher.Launcher {
	l := launcher.New().
		Headless(config.Headless).
		Set("blink-settings", "imagesEnabled=false").
		Set("window-size", "1920,1980").
		Set("lang", "ja-JP").
		Set("disable-blink-features", "AutomationControlled").
		Set("ignore-certificate-errors").
		Set("disable-gpu")

	if config.Proxy.Enabled() {
		l = l.Proxy(config.Proxy.Address())
	}
	return l
}

// Page 返回会话页面,必要时启动浏览器
func (bs *BrowserSession) Page() (*rod.Page, error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if bs.dead {
		return nil, models.ErrSessionInvalid
	}
	if bs.closed {
		return nil, fmt.Errorf("%w: 会话已关闭", models.ErrSessionInvalid)
	}
	if bs.page != nil {
		return bs.page, nil
	}

	if err := bs.launch(); err != nil {
		return nil, err
	}
	return bs.page, nil
}

func (bs *BrowserSession) launch() error {
	if bs.monitor != nil {
		bs.monitor.CheckBeforeLaunch()
	}

	utils.Infof("🌐 正在启动浏览器 (无头模式=%v)...", bs.config.Headless)
	if bs.config.Proxy.Enabled() {
		utils.Infof("使用代理: %s", utils.NewRedactor().Proxy(bs.config.Proxy))
	}

	l := newLauncher(bs.config)
	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("启动浏览器失败: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("连接浏览器失败: %w", err)
	}

	if bs.config.Proxy.HasAuth() {
		wait := browser.HandleAuth(bs.config.Proxy.User, bs.config.Proxy.Password)
		go func() {
			if err := wait(); err != nil {
				utils.Debugf("代理认证处理结束: %v", err)
			}
		}()
	}

	page, err := stealth.Page(browser)
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return fmt.Errorf("创建页面失败: %w", err)
	}

	ua := ""
	if bs.userAgent != nil {
		ua = bs.userAgent()
	}
	if ua != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      ua,
			AcceptLanguage: browserAcceptLanguage,
		}); err != nil {
			utils.Warnf("设置User-Agent失败: %v", err)
		}
	}

	bs.launcher = l
	bs.browser = browser
	bs.page = page
	utils.Infof("✅ 浏览器启动完成")
	return nil
}

// Healthy 通过 Browser.getVersion 探测会话是否存活
func (bs *BrowserSession) Healthy() bool {
	bs.mu.Lock()
	browser := bs.browser
	bs.mu.Unlock()

	if browser == nil {
		return false
	}
	_, err := proto.BrowserGetVersion{}.Call(browser)
	return err == nil
}

// markDead 会话失效后不再重启,由运行循环终止整批任务
func (bs *BrowserSession) markDead(cause error) {
	bs.mu.Lock()
	bs.dead = true
	bs.mu.Unlock()
	utils.Errorf("💥 浏览器会话已失效: %v", cause)
	_ = bs.Close()
}

// Close 关闭浏览器,可重复调用
func (bs *BrowserSession) Close() error {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if bs.closed {
		return nil
	}
	bs.closed = true

	var err error
	if bs.browser != nil {
		err = bs.browser.Close()
		utils.Debugf("浏览器已关闭")
	}
	if bs.launcher != nil {
		bs.launcher.Kill()
		bs.launcher.Cleanup()
	}
	bs.browser = nil
	bs.page = nil
	return err
}

// BrowserFetcher 通过浏览器会话获取渲染后的页面
type BrowserFetcher struct {
	session    *BrowserSession
	timeout    time.Duration
	settleWait time.Duration
	sleep      utils.Sleeper
}

// NewBrowserFetcher 创建浏览器获取器
func NewBrowserFetcher(session *BrowserSession, timeout, settleWait time.Duration) *BrowserFetcher {
	if timeout <= 0 {
		timeout = session.config.PageLoadTimeout
	}
	return &BrowserFetcher{
		session:    session,
		timeout:    timeout,
		settleWait: settleWait,
		sleep:      utils.Sleep,
	}
}

// Name 实现 PageFetcher
func (bf *BrowserFetcher) Name() string {
	return BrowserFetcherName
}

// WithTimeout 返回页面加载超时不同的副本 (伪装访问使用较短超时)
func (bf *BrowserFetcher) WithTimeout(timeout time.Duration) *BrowserFetcher {
	clone := *bf
	clone.timeout = timeout
	return &clone
}

// Fetch 导航 → 等待加载 → 等待页面稳定 → 读取HTML
// 浏览器不提供HTTP状态码, StatusCode 为0
func (bf *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (*models.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := bf.session.Page()
	if err != nil {
		return nil, err
	}

	p := page.Context(ctx).Timeout(bf.timeout)
	defer p.CancelTimeout()

	if err := p.Navigate(pageURL); err != nil {
		return nil, bf.navigationError(ctx, pageURL, err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, bf.navigationError(ctx, pageURL, err)
	}

	if err := bf.sleep(ctx, bf.settleWait); err != nil {
		return nil, err
	}

	html, err := page.Context(ctx).HTML()
	if err != nil {
		return nil, bf.navigationError(ctx, pageURL, err)
	}

	finalURL := pageURL
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	utils.Debugf("浏览器获取成功 [%s]: %d 字节", finalURL, len(html))
	return &models.Page{
		URL:      pageURL,
		FinalURL: finalURL,
		HTML:     html,
		Via:      BrowserFetcherName,
	}, nil
}

// navigationError 导航失败后探测会话,会话已死则返回 ErrSessionInvalid
func (bf *BrowserFetcher) navigationError(ctx context.Context, pageURL string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if !bf.session.Healthy() {
		bf.session.markDead(err)
		return fmt.Errorf("%w: %v", models.ErrSessionInvalid, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		utils.Warnf("页面加载超时 [%s]", pageURL)
	}
	return &models.FetchError{URL: pageURL, Err: fmt.Errorf("%w: %v", models.ErrFetchFailed, err)}
}
