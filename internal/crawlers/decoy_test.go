package crawlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/utils"
)

func TestDecoy_Visit(t *testing.T) {
	urls := []string{"https://www.yahoo.co.jp/", "https://www.nhk.or.jp/"}

	t.Run("访问其中一个站点", func(t *testing.T) {
		f := &fakeFetcher{pages: map[string]string{urls[0]: "ok", urls[1]: "ok"}}
		assert.NoError(t, NewDecoy(f, urls, models.DelayRange{}, utils.NoSleep).Visit(context.Background()))
		assert.Len(t, f.fetched, 1)
		assert.Contains(t, urls, f.fetched[0])
	})

	t.Run("失败被忽略", func(t *testing.T) {
		f := &fakeFetcher{errs: map[string]error{urls[0]: models.ErrSessionInvalid, urls[1]: models.ErrFetchFailed}}
		assert.NoError(t, NewDecoy(f, urls, models.DelayRange{}, utils.NoSleep).Visit(context.Background()))
	})

	t.Run("没有站点时什么都不做", func(t *testing.T) {
		f := &fakeFetcher{}
		assert.NoError(t, NewDecoy(f, nil, models.DelayRange{}, utils.NoSleep).Visit(context.Background()))
		assert.Empty(t, f.fetched)
	})

	t.Run("取消时返回错误", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		f := &fakeFetcher{pages: map[string]string{urls[0]: "ok", urls[1]: "ok"}}
		assert.ErrorIs(t, NewDecoy(f, urls, models.DelayRange{}, utils.NoSleep).Visit(ctx), context.Canceled)
	})
}
