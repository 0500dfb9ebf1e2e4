package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/x5427876/ai-scraping/internal/models"
)

// Reporter 报告与产物输出器
type Reporter struct {
	outputDir string
}

// NewReporter 创建报告生成器
func NewReporter(outputDir string) *Reporter {
	return &Reporter{
		outputDir: outputDir,
	}
}

// GenerateReport 生成管道执行报告
// 报告落盘为 reports/report_<task_id>.json,附带页面明细和种子列表
func (r *Reporter) GenerateReport(task *models.PipelineTask, seeds []models.SearchHit, pages []models.PageReportEntry, articleFile string) error {
	reportsDir := filepath.Join(r.outputDir, "reports")
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return fmt.Errorf("创建报告目录失败: %w", err)
	}

	report := models.PipelineReport{
		TaskID:      task.ID,
		Keyword:     task.Keyword,
		Strategy:    task.Config.Strategy,
		StartTime:   time.Now().Add(-time.Duration(task.Stats.Duration * float64(time.Second))),
		EndTime:     time.Now(),
		Duration:    task.Stats.Duration,
		Stats:       task.Stats,
		Usage:       task.Usage,
		Pages:       pages,
		Seeds:       seeds,
		ArticleFile: articleFile,
		OutputDir:   r.outputDir,
		Config:      task.Config,
	}

	filename := fmt.Sprintf("report_%s.json", task.ID)
	if err := r.saveJSONReport(reportsDir, filename, report); err != nil {
		return err
	}

	Infof("✅ 报告已生成: %s", filepath.Join(reportsDir, filename))
	return nil
}

// SaveArticle 将生成的文章保存为文本文件
// 文件名为 analysis_<关键词>.txt,关键词中的非法字符被过滤
func (r *Reporter) SaveArticle(keyword string, content string, usage models.TokenUsage) (*models.ArticleFile, error) {
	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}

	filename := fmt.Sprintf("analysis_%s.txt", SanitizeKeyword(keyword))
	path := filepath.Join(r.outputDir, filename)

	// 文件头: 关键词 + 生成时间 + 分隔线
	header := fmt.Sprintf("搜索关键词: %s\n生成时间: %s\ntoken消耗: %d (约 $%.4f)\n%s\n\n",
		keyword,
		time.Now().Format("2006-01-02 15:04:05"),
		usage.TotalTokens,
		usage.CostUSD,
		"==================================================",
	)

	data := []byte(header + content)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("写入文章文件失败: %w", err)
	}

	Infof("📥 分析结果已保存至: %s", path)

	return &models.ArticleFile{
		Keyword:  keyword,
		FilePath: path,
		Size:     int64(len(data)),
		SavedAt:  time.Now(),
	}, nil
}

// saveJSONReport 保存JSON报告
func (r *Reporter) saveJSONReport(dir string, filename string, data interface{}) error {
	filepath := filepath.Join(dir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}

	if err := os.WriteFile(filepath, jsonData, 0644); err != nil {
		return fmt.Errorf("写入报告文件失败: %w", err)
	}

	Debugf("保存报告: %s", filepath)
	return nil
}

// NewProgressBar 创建进度条
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
