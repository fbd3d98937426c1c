package utils

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
)

// Sleeper 可取消的等待,测试中替换为 NoSleep
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep 阻塞等待,ctx 取消时提前返回
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoSleep 不等待,只检查 ctx
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// Jitter 在区间内随机取一个等待时间
func Jitter(r models.DelayRange) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rand.N(r.Max-r.Min)
}

// SleepJitter 随机等待
func SleepJitter(ctx context.Context, sleep Sleeper, r models.DelayRange) error {
	if sleep == nil {
		sleep = Sleep
	}
	d := Jitter(r)
	Debugf("⏳ 等待 %.1f 秒", d.Seconds())
	return sleep(ctx, d)
}

// RandomChoice 随机选取一个元素,空切片返回零值
func RandomChoice[T any](items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[rand.IntN(len(items))]
}
