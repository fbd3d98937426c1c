package utils

import (
	"net/http"
	"sort"
	"strings"

	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
)

// sensitiveKeywords 头部名称包含这些关键字时脱敏
// Cookie 常用来携带搜索引擎的同意/会话状态
var sensitiveKeywords = []string{"authorization", "cookie", "token", "key", "secret", "password", "credential"}

// Redactor 日志/报告输出前的脱敏: 请求头部和代理凭据
type Redactor struct {
	keywords []string
}

// NewRedactor 创建脱敏器
func NewRedactor() *Redactor {
	return &Redactor{keywords: sensitiveKeywords}
}

// Sensitive 头部名称是否需要脱敏
func (r *Redactor) Sensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, k := range r.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// Value 脱敏单个头部值: Bearer只保留类型,长值保留首尾4个字符
func (r *Redactor) Value(name, value string) string {
	switch {
	case !r.Sensitive(name):
		return value
	case strings.HasPrefix(value, "Bearer "):
		return "Bearer ***"
	case len(value) > 8:
		return value[:4] + "***" + value[len(value)-4:]
	}
	return "***"
}

// Headers 脱敏后的头部,每个头部只取第一个值
func (r *Redactor) Headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) > 0 {
			out[name] = r.Value(name, values[0])
		}
	}
	return out
}

// Lines 按名称排序的 "Name: value" 列表
func (r *Redactor) Lines(h http.Header) []string {
	redacted := r.Headers(h)
	lines := make([]string, 0, len(redacted))
	for name, value := range redacted {
		lines = append(lines, name+": "+value)
	}
	sort.Strings(lines)
	return lines
}

// Proxy 代理的日志表示,密码永远不输出
func (r *Redactor) Proxy(p models.ProxyConfig) string {
	switch {
	case !p.Enabled():
		return "(未使用代理)"
	case !p.HasAuth():
		return p.Address()
	}
	return p.User + ":***@" + p.Address()
}
