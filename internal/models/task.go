package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"   // 待执行
	TaskStatusRunning   TaskStatus = "running"   // 执行中
	TaskStatusCompleted TaskStatus = "completed" // 已完成
	TaskStatusFailed    TaskStatus = "failed"    // 失败
)

// SearchStrategy 搜索抓取策略
type SearchStrategy string

const (
	StrategyStandard SearchStrategy = "standard" // 仅抓取搜索结果页面
	StrategyBFS      SearchStrategy = "bfs"      // 广度优先扩展抓取
)

// PipelineStats 管道执行统计
type PipelineStats struct {
	SearchHits    int     `json:"search_hits"`    // 搜索命中数
	VisitedURLs   int     `json:"visited_urls"`   // 已访问URL数
	CrawledPages  int     `json:"crawled_pages"`  // 成功抓取页面数
	FailedFetches int     `json:"failed_fetches"` // 抓取失败数
	MaxDepthSeen  int     `json:"max_depth_seen"` // 实际到达的最大深度
	Duration      float64 `json:"duration"`       // 总耗时(秒)
}

// PipelineConfig 管道配置
type PipelineConfig struct {
	ResultCount  int            `json:"result_count"`  // 搜索结果数量 (默认:5)
	Strategy     SearchStrategy `json:"strategy"`      // 抓取策略 (默认:standard)
	MaxPages     int            `json:"max_pages"`     // BFS页面预算 (默认:10)
	MaxDepth     int            `json:"max_depth"`     // BFS最大深度 (默认:2)
	FetchTimeout int            `json:"fetch_timeout"` // 单次抓取超时(秒) (默认:30)
}

// Validate 验证配置
func (c *PipelineConfig) Validate() error {
	if c.ResultCount < 1 || c.ResultCount > 100 {
		return fmt.Errorf("搜索结果数量必须在1-100之间")
	}
	if c.Strategy != StrategyStandard && c.Strategy != StrategyBFS {
		return fmt.Errorf("无效的搜索策略: %s", c.Strategy)
	}
	if c.MaxPages < 1 || c.MaxPages > 100 {
		return fmt.Errorf("页面预算必须在1-100之间")
	}
	if c.MaxDepth < 0 || c.MaxDepth > 10 {
		return fmt.Errorf("抓取深度必须在0-10之间")
	}
	if c.FetchTimeout < 1 || c.FetchTimeout > 300 {
		return fmt.Errorf("抓取超时必须在1-300秒之间")
	}
	return nil
}

// PipelineTask 一次关键词分析任务
type PipelineTask struct {
	// 基本信息
	ID          string     `json:"id"`                     // 任务唯一ID (UUID)
	Keyword     string     `json:"keyword"`                // 搜索关键词
	CreatedAt   time.Time  `json:"created_at"`             // 创建时间
	StartedAt   *time.Time `json:"started_at,omitempty"`   // 开始时间
	CompletedAt *time.Time `json:"completed_at,omitempty"` // 完成时间

	// 配置参数
	Config PipelineConfig `json:"config"` // 管道配置

	// 执行状态
	Status TaskStatus `json:"status"` // 任务状态

	// 统计信息
	Stats PipelineStats `json:"stats"` // 执行统计
	Usage TokenUsage    `json:"usage"` // token消耗

	// 错误信息
	ErrorMessage string `json:"error_message,omitempty"` // 错误消息
}

// NewPipelineTask 创建新任务
func NewPipelineTask(keyword string, config PipelineConfig) (*PipelineTask, error) {
	if keyword == "" {
		return nil, fmt.Errorf("关键词不能为空")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &PipelineTask{
		ID:        generateID(),
		Keyword:   keyword,
		CreatedAt: time.Now(),
		Config:    config,
		Status:    TaskStatusPending,
		Stats:     PipelineStats{},
	}, nil
}

// ToJSON 序列化为JSON
func (t *PipelineTask) ToJSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// FromJSON 从JSON反序列化
func (t *PipelineTask) FromJSON(data []byte) error {
	return json.Unmarshal(data, t)
}

// ArticleRequest HTTP接口的文章生成请求体
type ArticleRequest struct {
	Keyword        string `json:"keyword"`         // 搜索关键词(必填)
	ScrapingNumber int    `json:"scraping_number"` // 抓取页面数量
	NeedImage      bool   `json:"isNeedImage"`     // 是否生成配图
	CustomPrompt   string `json:"custom_prompt"`   // 自定义提示词模板
	ReturnJSON     bool   `json:"return_json"`     // true返回JSON,false返回可下载文本
}

// ArticleResult 文章生成结果
type ArticleResult struct {
	Status   string     `json:"status"`              // success / error
	Message  string     `json:"message"`             // 人类可读的说明
	Content  string     `json:"content"`             // 生成的文章正文
	ImageURL string     `json:"image_url,omitempty"` // 生成的配图URL(可选)
	Usage    TokenUsage `json:"token_usage"`         // token消耗
}

// BatchTask 批量关键词任务
type BatchTask struct {
	// 基本信息
	ID           string     `json:"id"`
	KeywordsFile string     `json:"keywords_file"` // 关键词列表文件路径
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`

	// 配置
	Config          PipelineConfig `json:"config"`            // 管道配置
	BatchDelay      int            `json:"batch_delay"`       // 关键词之间延迟(秒)
	ContinueOnError bool           `json:"continue_on_error"` // 遇到错误继续

	// 状态
	Status TaskStatus `json:"status"`

	// 统计
	TotalKeywords      int        `json:"total_keywords"`
	SuccessfulKeywords int        `json:"successful_keywords"`
	FailedKeywords     int        `json:"failed_keywords"`
	TotalUsage         TokenUsage `json:"total_usage"`

	// 子任务
	SubTasks []string `json:"sub_tasks"` // 子任务ID列表
}
