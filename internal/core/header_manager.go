package core

import (
	"net/http"

	"github.com/yuji-matsuda-cyber/company-scraper/internal/config"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/models"
	"github.com/yuji-matsuda-cyber/company-scraper/internal/utils"
)

const (
	// DefaultUserAgent UA池为空时使用
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/116.0.0.0 Safari/537.36"
)

// HeaderManager 管理请求身份 (头部 + User-Agent池)
// 实现 models.HeaderProvider 接口
type HeaderManager struct {
	// defaults 内置默认头部
	defaults http.Header

	// config 从配置文件加载的头部
	config http.Header

	// cli 从命令行 -H 解析的头部
	cli http.Header

	// userAgents 每次请求随机选择
	userAgents []string

	validator    *utils.HeaderValidator
	redactor     *utils.Redactor
	configLoader *config.HeaderConfigLoader

	loaded bool
}

// NewHeaderManager 创建头部管理器
// 参数:
//   - configFile: 身份配置文件路径 (为空则使用默认路径)
//   - cliHeaders: 命令行传递的头部字符串列表
func NewHeaderManager(configFile string, cliHeaders []string) (*HeaderManager, error) {
	hm := &HeaderManager{
		defaults:     getDefaultHeaders(),
		config:       make(http.Header),
		validator:    utils.NewHeaderValidator(),
		redactor:     utils.NewRedactor(),
		configLoader: config.NewHeaderConfigLoader(configFile),
	}

	if len(cliHeaders) > 0 {
		parsed, err := models.CliHeaders(cliHeaders).Parse()
		if err != nil {
			return nil, err
		}
		hm.cli = parsed
	} else {
		hm.cli = make(http.Header)
	}

	return hm, nil
}

// getDefaultHeaders 返回内置默认头部
// Accept-Encoding 由抓取器自行协商,这里不设置
func getDefaultHeaders() http.Header {
	return http.Header{
		"User-Agent":      []string{DefaultUserAgent},
		"Accept":          []string{"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
		"Accept-Language": []string{"ja,en-US;q=0.9,en;q=0.8"},
	}
}

// LoadConfig 加载配置文件,已加载则跳过
func (hm *HeaderManager) LoadConfig() error {
	if hm.loaded {
		return nil
	}

	headerConfig, err := hm.configLoader.LoadConfig()
	if err != nil {
		utils.Errorf("加载身份配置失败: %v", err)
		return err
	}

	hm.config = make(http.Header)
	for name, value := range headerConfig.Headers {
		hm.config.Set(name, value)
	}
	hm.userAgents = headerConfig.UserAgents
	hm.loaded = true

	if len(headerConfig.Headers) > 0 {
		utils.Debugf("成功加载%d个HTTP头部配置: %v", len(headerConfig.Headers), hm.redactor.Lines(hm.config))
	}
	utils.Debugf("User-Agent池: %d 个", len(hm.userAgents))

	return nil
}

type headerLayer struct {
	name    string
	headers http.Header
}

// layers 头部来源,按优先级从低到高
func (hm *HeaderManager) layers() []headerLayer {
	return []headerLayer{
		{"默认头部", hm.defaults},
		{"配置文件头部", hm.config},
		{"命令行头部", hm.cli},
	}
}

// Validate 依次验证各来源的头部,最后验证UA池
func (hm *HeaderManager) Validate() error {
	for _, layer := range hm.layers() {
		if err := hm.validator.Validate(layer.headers); err != nil {
			utils.Errorf("%s验证失败: %v", layer.name, err)
			return err
		}
	}
	if err := hm.validator.ValidateUserAgents(hm.userAgents); err != nil {
		utils.Errorf("User-Agent池验证失败: %v", err)
		return err
	}
	return nil
}

// GetMergedHeaders 合并头部: 默认 < UA池随机UA < 配置文件 < 命令行
func (hm *HeaderManager) GetMergedHeaders() http.Header {
	result := make(http.Header)
	for i, layer := range hm.layers() {
		for name, values := range layer.headers {
			result[name] = values
		}
		if i == 0 {
			result.Set("User-Agent", hm.RandomUserAgent())
		}
	}
	return result
}

// RandomUserAgent 从UA池随机选择,池为空时返回默认UA
func (hm *HeaderManager) RandomUserAgent() string {
	if len(hm.userAgents) == 0 {
		return DefaultUserAgent
	}
	return utils.RandomChoice(hm.userAgents)
}

// UserAgent 本次会话使用的UA,显式配置优先于UA池
func (hm *HeaderManager) UserAgent() string {
	if ua := hm.cli.Get("User-Agent"); ua != "" {
		return ua
	}
	if ua := hm.config.Get("User-Agent"); ua != "" {
		return ua
	}
	return hm.RandomUserAgent()
}

// SafeHeaderLines 合并后的头部,脱敏并按名称排序 (用于日志)
func (hm *HeaderManager) SafeHeaderLines() []string {
	return hm.redactor.Lines(hm.GetMergedHeaders())
}

// GetHeaders 实现 HeaderProvider 接口
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	if err := hm.LoadConfig(); err != nil {
		return nil, err
	}

	if err := hm.Validate(); err != nil {
		return nil, err
	}

	return hm.GetMergedHeaders(), nil
}
