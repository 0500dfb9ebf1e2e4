package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/viper"

	"github.com/x5427876/ai-scraping/internal/models"
	"github.com/x5427876/ai-scraping/internal/utils"
)

const (
	// DefaultConfigFile 默认头部配置文件路径
	DefaultConfigFile = "configs/headers.yaml"

	// MaxConfigFileSize 配置文件最大大小 (1MB)
	MaxConfigFileSize = 1 * 1024 * 1024
)

//go:embed headers_template.yaml
var defaultHeaderTemplate string

// builtinHeaders 内置默认抓取头部,模拟常规浏览器请求
// Accept-Encoding与抓取引擎支持的解压格式保持一致
var builtinHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/122.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,*/*;q=0.8",
	"Accept-Encoding": "gzip, deflate, br",
}

// HeaderSource 抓取头部来源
// 将内置浏览器默认头部与YAML配置文件合并为一个来源层,
// 文件中的同名头部覆盖默认值,命令行层的覆盖由调用方处理
type HeaderSource struct {
	configPath string
}

// NewHeaderSource 创建头部来源
func NewHeaderSource(configPath string) *HeaderSource {
	if configPath == "" {
		configPath = DefaultConfigFile
	}
	return &HeaderSource{
		configPath: configPath,
	}
}

// EnsureConfigExists 确保配置文件存在,如不存在则自动生成模板
func (hs *HeaderSource) EnsureConfigExists() error {
	if _, err := os.Stat(hs.configPath); !os.IsNotExist(err) {
		return nil
	}

	dir := filepath.Dir(hs.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("无法创建配置目录 [%s]: %w", dir, err)
	}
	if err := os.WriteFile(hs.configPath, []byte(defaultHeaderTemplate), 0644); err != nil {
		return fmt.Errorf("无法生成配置文件 [%s]: %w", hs.configPath, err)
	}
	return nil
}

// Load 返回内置默认头部与配置文件头部的合并结果
// 配置文件不存在时先生成模板;文件被其他进程锁定时
// 优雅降级为仅内置默认头部;文件超过大小限制或格式错误时报错
func (hs *HeaderSource) Load() (http.Header, error) {
	headers := make(http.Header)
	for name, value := range builtinHeaders {
		headers.Set(name, value)
	}

	if err := hs.EnsureConfigExists(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(hs.configPath)
	if err != nil {
		if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) {
			utils.Warnf("头部配置文件被锁定 [%s], 使用默认头部", hs.configPath)
			return headers, nil
		}
		return nil, &models.ConfigError{
			FilePath: hs.configPath,
			Cause:    err,
		}
	}

	if len(data) > MaxConfigFileSize {
		return nil, &models.ConfigError{
			FilePath: hs.configPath,
			Cause: fmt.Errorf("配置文件过大: %d 字节 (最大 %d 字节)",
				len(data), MaxConfigFileSize),
		}
	}

	fileHeaders, err := hs.parse(data)
	if err != nil {
		return nil, err
	}
	for name, value := range fileHeaders {
		headers.Set(name, value)
	}

	return headers, nil
}

// parse 解析YAML内容并绑定到HeaderConfig
func (hs *HeaderSource) parse(data []byte) (map[string]string, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, &models.ConfigError{
			FilePath: hs.configPath,
			Cause:    err,
		}
	}

	var config models.HeaderConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, &models.ConfigError{
			FilePath: hs.configPath,
			Cause:    fmt.Errorf("配置绑定失败: %w", err),
		}
	}

	return config.Headers, nil
}
