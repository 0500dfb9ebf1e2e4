package core

import (
	"net/http"

	"github.com/x5427876/ai-scraping/internal/config"
	"github.com/x5427876/ai-scraping/internal/models"
	"github.com/x5427876/ai-scraping/internal/utils"
)

// HeaderManager 组装抓取请求的HTTP头部
// 来源层(内置默认+配置文件,合并由config.HeaderSource负责)之上
// 叠加命令行参数,合并结果通过RFC 7230验证后交给抓取引擎使用。
type HeaderManager struct {
	// source 默认头部与配置文件的合并来源
	source *config.HeaderSource

	// cli 从命令行--header参数解析的头部
	cli http.Header

	// validator 头部验证器
	validator *utils.HeaderValidator

	// redactor 头部脱敏器 (用于日志输出)
	redactor *utils.HeaderRedactor
}

// NewHeaderManager 创建头部管理器
// 命令行头部格式错误立即返回,配置文件延迟到GetHeaders时加载。
func NewHeaderManager(configPath string, cliHeaders []string) (*HeaderManager, error) {
	cli, err := models.CliHeaders(cliHeaders).Parse()
	if err != nil {
		return nil, err
	}

	return &HeaderManager{
		source:    config.NewHeaderSource(configPath),
		cli:       cli,
		validator: utils.NewHeaderValidator(),
		redactor:  utils.NewHeaderRedactor(),
	}, nil
}

// GetHeaders 加载、合并并验证所有层级的头部
// 返回可直接用于出站请求的http.Header
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	merged, err := hm.source.Load()
	if err != nil {
		return nil, err
	}

	// 命令行头部覆盖来源层的同名头部
	for name, values := range hm.cli {
		merged[name] = values
	}

	if err := hm.validator.Validate(merged); err != nil {
		return nil, err
	}

	// 仅在存在自定义头部时输出日志,敏感值脱敏
	if len(hm.cli) > 0 {
		utils.Debugf("生效的抓取头部: %s", hm.redactor.RedactToString(merged))
	}

	return merged, nil
}

// SafeHeaders 返回脱敏后的合并头部 (用于诊断输出)
func (hm *HeaderManager) SafeHeaders() (map[string]string, error) {
	headers, err := hm.GetHeaders()
	if err != nil {
		return nil, err
	}
	return hm.redactor.Redact(headers), nil
}
