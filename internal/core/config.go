package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/x5427876/ai-scraping/internal/models"
	"github.com/x5427876/ai-scraping/internal/utils"
)

// Config 应用程序配置
type Config struct {
	Search  SearchConfig  `mapstructure:"search"`
	Crawler CrawlerConfig `mapstructure:"crawler"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
	Server  ServerConfig  `mapstructure:"server"`
}

// SearchConfig 搜索配置
// 凭证从环境变量注入(GOOGLE_API_KEY / GOOGLE_CSE_ID),不建议写入配置文件
type SearchConfig struct {
	APIKey      string `mapstructure:"api_key"`
	CSEID       string `mapstructure:"cse_id"`
	ResultCount int    `mapstructure:"result_count"`
}

// CrawlerConfig 抓取配置
type CrawlerConfig struct {
	Strategy     string `mapstructure:"strategy"`      // standard / bfs
	MaxPages     int    `mapstructure:"max_pages"`     // BFS页面预算
	MaxDepth     int    `mapstructure:"max_depth"`     // BFS最大深度
	FetchTimeout int    `mapstructure:"fetch_timeout"` // 单页抓取超时(秒)
	ServiceURL   string `mapstructure:"service_url"`   // 远端抓取服务地址,为空时使用进程内抓取
}

// OpenAIConfig OpenAI配置
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	BaseDir string `mapstructure:"base_dir"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LoadConfig 加载配置文件
// 优先级: 命令行参数 > 环境变量 > 配置文件 > 默认值
func LoadConfig(configPath string) (*Config, error) {
	// 加载.env文件(不存在时静默忽略)
	_ = godotenv.Load()

	v := viper.New()

	// 设置配置文件
	if configPath != "" {
		// 使用指定的配置文件
		v.SetConfigFile(configPath)
	} else {
		// 搜索默认位置
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// 添加配置搜索路径
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		// 用户主目录
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".ai-scraping"))
		}
	}

	// 设置默认值
	setDefaults(v)

	// 绑定凭证环境变量
	bindEnvVars(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 如果配置文件不存在,使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在,使用默认值
	}

	// 解析配置
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 搜索配置默认值
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.cse_id", "")
	v.SetDefault("search.result_count", 5)

	// 抓取配置默认值
	v.SetDefault("crawler.strategy", "standard")
	v.SetDefault("crawler.max_pages", 10)
	v.SetDefault("crawler.max_depth", 2)
	v.SetDefault("crawler.fetch_timeout", 30)
	v.SetDefault("crawler.service_url", "")

	// OpenAI配置默认值
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model", "o3-mini")

	// 日志配置默认值
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	// 输出配置默认值
	v.SetDefault("output.base_dir", "output")

	// 服务配置默认值
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
}

// bindEnvVars 绑定环境变量到配置键
// 显式绑定而非AutomaticEnv,保证Unmarshal能解析到这些键
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("search.api_key", "GOOGLE_API_KEY")
	_ = v.BindEnv("search.cse_id", "GOOGLE_CSE_ID")
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.base_url", "OPENAI_API_BASE")
	_ = v.BindEnv("openai.model", "OPENAI_MODEL")
}

// PipelineConfig 从配置中提取管道配置
func (c *Config) PipelineConfig() models.PipelineConfig {
	return models.PipelineConfig{
		ResultCount:  c.Search.ResultCount,
		Strategy:     models.SearchStrategy(c.Crawler.Strategy),
		MaxPages:     c.Crawler.MaxPages,
		MaxDepth:     c.Crawler.MaxDepth,
		FetchTimeout: c.Crawler.FetchTimeout,
	}
}

// LogConfig 从配置中提取日志配置
func (c *Config) LogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
	}
}

// MissingCredentials 返回未配置的必要凭证环境变量名
func (c *Config) MissingCredentials() []string {
	missing := make([]string, 0, 3)
	if c.Search.APIKey == "" {
		missing = append(missing, "GOOGLE_API_KEY")
	}
	if c.Search.CSEID == "" {
		missing = append(missing, "GOOGLE_CSE_ID")
	}
	if c.OpenAI.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	return missing
}

// Validate 验证配置完整性
// 凭证缺失视为致命错误,调用方应在执行任务前中止
func (c *Config) Validate() error {
	if missing := c.MissingCredentials(); len(missing) > 0 {
		return fmt.Errorf("缺少必要的环境变量: %s", strings.Join(missing, ", "))
	}
	pc := c.PipelineConfig()
	return pc.Validate()
}

// MergeCLIFlags 合并命令行参数到配置
func (c *Config) MergeCLIFlags(resultCount int, strategy string, maxPages int, maxDepth int, outputDir string) {
	// 命令行参数优先于配置文件
	if resultCount > 0 {
		c.Search.ResultCount = resultCount
	}
	if strategy != "" {
		c.Crawler.Strategy = strategy
	}
	if maxPages > 0 {
		c.Crawler.MaxPages = maxPages
	}
	if maxDepth >= 0 {
		c.Crawler.MaxDepth = maxDepth
	}
	if outputDir != "" {
		c.Output.BaseDir = outputDir
	}
}
