package models

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrBlocked 被搜索引擎/站点限流 (HTTP 429 等),整批任务必须立即停止
	ErrBlocked = errors.New("请求被限流拦截")

	// ErrSessionInvalid 浏览器会话失效,不可重试
	ErrSessionInvalid = errors.New("浏览器会话已失效")

	// ErrFetchFailed 普通的页面获取失败 (超时/网络错误),可跳过
	ErrFetchFailed = errors.New("页面获取失败")
)

// FetchError 页面获取错误
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

// Error 实现error接口
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("获取页面失败 [%s]: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("获取页面失败 [%s]: %v", e.URL, e.Err)
}

// Unwrap 支持errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is 429 视为限流,其余视为普通获取失败
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrBlocked:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrFetchFailed:
		return e.StatusCode != http.StatusTooManyRequests
	}
	return false
}

// StageError 某个流水线阶段的意外错误,会以 "エラー(阶段)" 记录到结果中
type StageError struct {
	Stage Stage
	Err   error
}

// Error 实现error接口
func (e *StageError) Error() string {
	return fmt.Sprintf("阶段 [%s] 出错: %v", e.Stage.Label(), e.Err)
}

// Unwrap 支持errors.Unwrap
func (e *StageError) Unwrap() error {
	return e.Err
}

// MissingColumnError 输入表缺少必需列
type MissingColumnError struct {
	Alternates []string
}

// Error 实现error接口
func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("缺少必需列 (候选列名: %s)", strings.Join(e.Alternates, ", "))
}

// IsFatal 限流和会话失效会终止整批任务
func IsFatal(err error) bool {
	return errors.Is(err, ErrBlocked) || errors.Is(err, ErrSessionInvalid)
}

// IsTransient 超时和普通获取失败只影响当前阶段
func IsTransient(err error) bool {
	if err == nil || IsFatal(err) {
		return false
	}
	return errors.Is(err, ErrFetchFailed) || errors.Is(err, context.DeadlineExceeded)
}

// ValidationError 配置项验证错误
type ValidationError struct {
	// Field 出错的字段 ("name"/"value"/"proxy"...)
	Field string

	// HeaderName 相关的头部名称或配置键
	HeaderName string

	Reason     string
	Suggestion string
}

// Error 实现error接口
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("验证失败 [%s]: %s", e.HeaderName, e.Reason)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (建议: %s)", e.Suggestion)
	}
	return msg
}

// ConfigError 配置错误 (配置文件、输入表、市外局番文件)
// 在处理任何记录之前返回,不会产生部分结果
type ConfigError struct {
	FilePath string
	Cause    error
}

// Error 实现error接口
func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置错误 [%s]: %v", e.FilePath, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
