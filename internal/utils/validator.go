package utils

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
)

const (
	// MaxHeaderValueLength HTTP头部值最大长度 (8KB)
	MaxHeaderValueLength = 8192
)

var (
	// ForbiddenHeaders 由HTTP客户端管理的头部,不允许配置
	ForbiddenHeaders = []string{
		"Host",
		"Content-Length",
		"Transfer-Encoding",
		"Connection",
	}

	headerNamePattern  = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	headerValuePattern = regexp.MustCompile(`^[\x20-\x7E\t]*$`)
)

// HeaderValidator 请求头部与身份配置的验证器
type HeaderValidator struct {
	maxValueLength   int
	forbiddenHeaders map[string]bool
}

// NewHeaderValidator 创建验证器
func NewHeaderValidator() *HeaderValidator {
	forbidden := make(map[string]bool, len(ForbiddenHeaders))
	for _, h := range ForbiddenHeaders {
		forbidden[strings.ToLower(h)] = true
	}
	return &HeaderValidator{
		maxValueLength:   MaxHeaderValueLength,
		forbiddenHeaders: forbidden,
	}
}

// IsForbidden 检查头部是否被禁止
func (hv *HeaderValidator) IsForbidden(name string) bool {
	return hv.forbiddenHeaders[strings.ToLower(name)]
}

// ValidateHeader 验证单个头部: 禁止列表 → 名称 → 值
func (hv *HeaderValidator) ValidateHeader(name, value string) error {
	if hv.IsForbidden(name) {
		return &models.ValidationError{
			Field:      "name",
			HeaderName: name,
			Reason:     "此头部由HTTP客户端自动管理,不允许自定义",
			Suggestion: fmt.Sprintf("移除 '%s' 头部配置", name),
		}
	}

	if err := hv.ValidateName(name); err != nil {
		return err
	}

	return hv.ValidateValue(name, value)
}

// ValidateName 头部名称只允许字母、数字和连字符
func (hv *HeaderValidator) ValidateName(name string) error {
	if name == "" || !headerNamePattern.MatchString(name) {
		return &models.ValidationError{
			Field:      "name",
			HeaderName: name,
			Reason:     "头部名称为空或包含非法字符",
			Suggestion: "使用字母、数字和连字符 (如 'Accept-Language')",
		}
	}
	return nil
}

// ValidateValue 验证头部值 (长度 + 可打印ASCII)
func (hv *HeaderValidator) ValidateValue(name, value string) error {
	if len(value) > hv.maxValueLength {
		return &models.ValidationError{
			Field:      "value",
			HeaderName: name,
			Reason:     fmt.Sprintf("头部值过长: %d 字节 (最大 %d)", len(value), hv.maxValueLength),
		}
	}
	if !headerValuePattern.MatchString(value) {
		return &models.ValidationError{
			Field:      "value",
			HeaderName: name,
			Reason:     "头部值包含非法字符 (仅允许可打印ASCII字符)",
			Suggestion: "移除控制字符和非ASCII字符",
		}
	}
	return nil
}

// Validate 验证http.Header中的所有头部,返回第一个错误
func (hv *HeaderValidator) Validate(headers http.Header) error {
	for name, values := range headers {
		for _, value := range values {
			if err := hv.ValidateHeader(name, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateUserAgents 验证UA池: 不能有空值,且必须是合法的头部值
func (hv *HeaderValidator) ValidateUserAgents(agents []string) error {
	for i, ua := range agents {
		if strings.TrimSpace(ua) == "" {
			return &models.ValidationError{
				Field:      "user_agents",
				HeaderName: fmt.Sprintf("user_agents[%d]", i),
				Reason:     "User-Agent 不能为空",
			}
		}
		if err := hv.ValidateValue("User-Agent", ua); err != nil {
			return err
		}
	}
	return nil
}

// ValidateProxy 验证代理配置
func (hv *HeaderValidator) ValidateProxy(p models.ProxyConfig) error {
	if err := p.Validate(); err != nil {
		return &models.ValidationError{
			Field:      "proxy",
			HeaderName: "proxy",
			Reason:     err.Error(),
			Suggestion: "同时指定 --proxy-host 和 --proxy-port",
		}
	}
	return nil
}
