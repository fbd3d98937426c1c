package crawlers

import (
	"context"

	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/utils"
)

// Decoy 定期访问无关站点,打乱请求模式
type Decoy struct {
	fetcher PageFetcher
	urls    []string
	wait    models.DelayRange
	sleep   utils.Sleeper
}

// NewDecoy 创建伪装访问,fetcher 应已设置伪装访问超时
func NewDecoy(fetcher PageFetcher, urls []string, wait models.DelayRange, sleep utils.Sleeper) *Decoy {
	return &Decoy{fetcher: fetcher, urls: urls, wait: wait, sleep: sleep}
}

// Visit 随机访问一个站点,失败只记录日志
// 返回值仅在 ctx 被取消时非空
func (d *Decoy) Visit(ctx context.Context) error {
	if len(d.urls) == 0 {
		return nil
	}
	target := utils.RandomChoice(d.urls)
	utils.Infof("🎭 伪装访问无关站点: %s", target)

	if _, err := d.fetcher.Fetch(ctx, target); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		utils.Warnf("伪装访问失败 (已忽略): %v", err)
	}
	return utils.SleepJitter(ctx, d.sleep, d.wait)
}
