package models

import (
	"fmt"
	"net/http"
	"strings"
)

// HeaderConfig headers.yaml 的结构
type HeaderConfig struct {
	// Headers 固定附加的请求头部
	Headers map[string]string `mapstructure:"headers" yaml:"headers"`

	// UserAgents 身份伪装用的UA池,每次请求随机选取一个
	UserAgents []string `mapstructure:"user_agents" yaml:"user_agents"`
}

// CliHeaders 命令行传递的头部列表,格式 "Name: Value"
type CliHeaders []string

// Parse 解析为 http.Header
func (ch CliHeaders) Parse() (http.Header, error) {
	result := make(http.Header)
	for i, s := range ch {
		name, value, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("参数 --header 第%d项格式错误: 缺少冒号分隔符,应为 'Name: Value'", i+1)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("参数 --header 第%d项格式错误: 头部名称不能为空", i+1)
		}
		result.Set(name, strings.TrimSpace(value))
	}
	return result, nil
}

// HeaderProvider 请求头部提供者
// 每次调用都可能返回不同的身份 (随机UA)
type HeaderProvider interface {
	// GetHeaders 返回本次请求使用的头部,优先级: 默认 < 配置 < 命令行
	GetHeaders() (http.Header, error)
}
