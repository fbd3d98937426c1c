package models

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// RunStatus 批量任务的结束状态
type RunStatus string

const (
	RunStatusRunning     RunStatus = "running"      // 执行中
	RunStatusCompleted   RunStatus = "completed"    // 全部处理完成
	RunStatusBlocked     RunStatus = "blocked"      // 因限流中断
	RunStatusSessionLost RunStatus = "session_lost" // 因浏览器会话失效中断
	RunStatusCancelled   RunStatus = "cancelled"    // 被用户取消
)

// StoppedEarly 是否提前结束
func (s RunStatus) StoppedEarly() bool {
	return s != RunStatusCompleted && s != RunStatusRunning
}

// RunStats 任务统计
type RunStats struct {
	TotalRows   int     `json:"total_rows"`  // 总行数
	Targets     int     `json:"targets"`     // 需要处理的行数
	Processed   int     `json:"processed"`   // 已处理
	Found       int     `json:"found"`       // 找到结果
	NotFound    int     `json:"not_found"`   // 未找到
	NoPhone     int     `json:"no_phone"`    // 未提供电话号码
	Errors      int     `json:"errors"`      // 阶段错误
	Interrupted int     `json:"interrupted"` // 因中断未处理
	Resumed     int     `json:"resumed"`     // 从检查点恢复的行数
	Decoys      int     `json:"decoys"`      // 伪装访问次数
	Duration    float64 `json:"duration"`    // 总耗时(秒)
}

// Record 按结果状态累计
func (s *RunStats) Record(status OutcomeStatus) {
	switch status {
	case OutcomeFound:
		s.Found++
	case OutcomeNotFound:
		s.NotFound++
	case OutcomeNoPhone:
		s.NoPhone++
	case OutcomeError:
		s.Errors++
	case OutcomeInterrupted, OutcomeBlocked:
		s.Interrupted++
	}
}

// DelayRange 随机等待区间
type DelayRange struct {
	Min time.Duration `mapstructure:"min" json:"min"`
	Max time.Duration `mapstructure:"max" json:"max"`
}

// Validate 验证区间
func (d DelayRange) Validate(name string) error {
	if d.Min < 0 || d.Max < 0 {
		return fmt.Errorf("%s: 等待时间不能为负数", name)
	}
	if d.Max < d.Min {
		return fmt.Errorf("%s: 最大等待时间(%v)小于最小等待时间(%v)", name, d.Max, d.Min)
	}
	return nil
}

// PipelineConfig 流水线配置
type PipelineConfig struct {
	SearchResults   int           `mapstructure:"search_results" json:"search_results"`       // 每次搜索取前N条结果 (默认:5)
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout" json:"fetch_timeout"`         // 轻量HTTP获取超时 (默认:15s)
	PageLoadTimeout time.Duration `mapstructure:"page_load_timeout" json:"page_load_timeout"` // 浏览器页面加载超时 (默认:30s)
	DecoyTimeout    time.Duration `mapstructure:"decoy_timeout" json:"decoy_timeout"`         // 伪装访问超时 (默认:15s)
	RenderWait      time.Duration `mapstructure:"render_wait" json:"render_wait"`             // 浏览器重新渲染后的等待 (默认:5s)
	SettleWait      time.Duration `mapstructure:"settle_wait" json:"settle_wait"`             // 深入链接时页面加载后的等待 (默认:3s)
	DecoyEvery      int           `mapstructure:"decoy_every" json:"decoy_every"`             // 每处理N条记录访问一次伪装站点 (默认:5)
	Headless        bool          `mapstructure:"headless" json:"headless"`                   // 无头模式 (默认:true)
}

// Validate 验证配置
func (c *PipelineConfig) Validate() error {
	if c.SearchResults < 1 || c.SearchResults > 50 {
		return fmt.Errorf("搜索结果数必须在1-50之间")
	}
	if c.FetchTimeout <= 0 || c.PageLoadTimeout <= 0 {
		return fmt.Errorf("超时时间必须大于0")
	}
	if c.RenderWait < 0 || c.RenderWait > time.Minute {
		return fmt.Errorf("渲染等待时间必须在0-60秒之间")
	}
	if c.DecoyEvery < 0 {
		return fmt.Errorf("伪装访问间隔不能为负数")
	}
	return nil
}

// DelayConfig 各处的随机等待
type DelayConfig struct {
	StageBackoff   DelayRange `mapstructure:"stage_backoff" json:"stage_backoff"`     // 搜索阶段之间 (2-4s)
	VerifyRetry    DelayRange `mapstructure:"verify_retry" json:"verify_retry"`       // 候选验证失败后 (1-2.5s)
	LookupLoop     DelayRange `mapstructure:"lookup_loop" json:"lookup_loop"`         // 查找模式记录之间 (5-10s)
	CompletionLoop DelayRange `mapstructure:"completion_loop" json:"completion_loop"` // 补全模式记录之间 (1-2s)
	Decoy          DelayRange `mapstructure:"decoy" json:"decoy"`                     // 伪装访问后 (1-2s)
	AnswerPanel    DelayRange `mapstructure:"answer_panel" json:"answer_panel"`       // Yahoo直接搜索后 (1-2s)
	Listing        DelayRange `mapstructure:"listing" json:"listing"`                 // Yahoo一览搜索后 (2-3s)
}

// Validate 验证所有区间
func (c *DelayConfig) Validate() error {
	ranges := map[string]DelayRange{
		"stage_backoff":   c.StageBackoff,
		"verify_retry":    c.VerifyRetry,
		"lookup_loop":     c.LookupLoop,
		"completion_loop": c.CompletionLoop,
		"decoy":           c.Decoy,
		"answer_panel":    c.AnswerPanel,
		"listing":         c.Listing,
	}
	for name, r := range ranges {
		if err := r.Validate(name); err != nil {
			return err
		}
	}
	return nil
}

// SearchConfig 搜索与过滤配置
type SearchConfig struct {
	ExcludedDomains []string `mapstructure:"excluded_domains" json:"excluded_domains"`
	ExcludedPaths   []string `mapstructure:"excluded_paths" json:"excluded_paths"`
	DecoyURLs       []string `mapstructure:"decoy_urls" json:"decoy_urls"`
}

// ProxyConfig 浏览器出站代理
type ProxyConfig struct {
	Host     string `mapstructure:"host" json:"host"`
	Port     int    `mapstructure:"port" json:"port"`
	User     string `mapstructure:"user" json:"user"`
	Password string `mapstructure:"password" json:"-"`
}

// Enabled 是否配置了代理
func (p ProxyConfig) Enabled() bool {
	return p.Host != ""
}

// HasAuth 是否需要代理认证
func (p ProxyConfig) HasAuth() bool {
	return p.User != ""
}

// Address host:port
func (p ProxyConfig) Address() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// Validate 验证代理配置
func (p ProxyConfig) Validate() error {
	if !p.Enabled() {
		if p.User != "" || p.Password != "" || p.Port != 0 {
			return fmt.Errorf("代理配置不完整: 缺少主机名")
		}
		return nil
	}
	if p.Port < 1 || p.Port > 65535 {
		return fmt.Errorf("代理端口必须在1-65535之间,当前值: %d", p.Port)
	}
	if p.Password != "" && p.User == "" {
		return fmt.Errorf("代理配置不完整: 设置了密码但缺少用户名")
	}
	return nil
}
