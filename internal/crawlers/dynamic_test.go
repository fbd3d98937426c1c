package crawlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
)

func TestNewLauncher_Flags(t *testing.T) {
	l := newLauncher(BrowserConfig{Headless: true})

	assert.True(t, l.Has(flags.Headless))
	assert.Equal(t, "ja-JP", l.Get("lang"))
	assert.Equal(t, "1920,1980", l.Get("window-size"))
	assert.Equal(t, "imagesEnabled=false", l.Get("blink-settings"))
	assert.Equal(t, "AutomationControlled", l.Get("disable-blink-features"))
	assert.True(t, l.Has("ignore-certificate-errors"))
	assert.False(t, l.Has(flags.ProxyServer))

	t.Run("关闭无头模式", func(t *testing.T) {
		assert.False(t, newLauncher(BrowserConfig{Headless: false}).Has(flags.Headless))
	})

	t.Run("代理", func(t *testing.T) {
		l := newLauncher(BrowserConfig{Proxy: models.ProxyConfig{Host: "proxy.local", Port: 3128, User: "u", Password: "p"}})
		assert.Equal(t, "proxy.local:3128", l.Get(flags.ProxyServer))
	})
}

func TestBrowserSession_ClosedSession(t *testing.T) {
	session := NewBrowserSession(BrowserConfig{Headless: true}, nil, nil)
	require.NoError(t, session.Close())
	require.NoError(t, session.Close(), "可重复关闭")

	_, err := session.Page()
	assert.ErrorIs(t, err, models.ErrSessionInvalid)
	assert.False(t, session.Healthy())

	_, err = NewBrowserFetcher(session, time.Second, 0).Fetch(context.Background(), "https://example.com/")
	assert.ErrorIs(t, err, models.ErrSessionInvalid)
}

// 需要本机安装 Chrome: COMPANY_SCRAPER_BROWSER_TEST=1 go test ./internal/crawlers
func TestBrowserFetcher_RealBrowser(t *testing.T) {
	if os.Getenv("COMPANY_SCRAPER_BROWSER_TEST") == "" {
		t.Skip("未设置 COMPANY_SCRAPER_BROWSER_TEST")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><div id="x"></div><script>document.getElementById("x").textContent="TEL 03-1234-5678"</script></body></html>`))
	}))
	defer server.Close()

	session := NewBrowserSession(BrowserConfig{Headless: true, PageLoadTimeout: 20 * time.Second},
		func() string { return "TestAgent/1.0" }, NewResourceMonitor(ResourceMonitorConfig{}))
	defer session.Close()

	page, err := NewBrowserFetcher(session, 0, 100*time.Millisecond).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, page.HTML, "TEL 03-1234-5678")
	assert.Equal(t, BrowserFetcherName, page.Via)
	assert.True(t, session.Healthy())
}
