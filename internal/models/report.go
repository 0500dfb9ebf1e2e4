package models

import (
	"encoding/json"
	"time"
)

// PipelineReport 管道执行报告
type PipelineReport struct {
	// 任务信息
	TaskID   string         `json:"task_id"`
	Keyword  string         `json:"keyword"`
	Strategy SearchStrategy `json:"strategy"`

	// 时间信息
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  float64   `json:"duration"` // 秒

	// 统计信息
	Stats PipelineStats `json:"stats"`
	Usage TokenUsage    `json:"usage"`

	// 页面明细
	Pages []PageReportEntry `json:"pages"` // 成功抓取的页面
	Seeds []SearchHit       `json:"seeds"` // 搜索种子

	// 输出路径
	ArticleFile string `json:"article_file,omitempty"` // 保存的文章文件
	OutputDir   string `json:"output_dir"`             // 输出目录

	// 配置快照
	Config PipelineConfig `json:"config"`
}

// PageReportEntry 单个页面的抓取明细
type PageReportEntry struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	ContentLength int    `json:"content_length"` // 正文字符数
	LinkCount     int    `json:"link_count"`     // 同源出站链接数
	ImageCount    int    `json:"image_count"`    // 图片数(≤5)
	Depth         int    `json:"depth"`          // BFS深度(standard策略恒为0)
}

// ToJSON 序列化为JSON
func (r *PipelineReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *PipelineReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
