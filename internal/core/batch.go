package core

import (
	"context"
	"fmt"
	"time"

	"github.com/x5427876/ai-scraping/internal/models"
	"github.com/x5427876/ai-scraping/internal/utils"
)

// BatchRunner 批量关键词分析器
type BatchRunner struct {
	pipeline      *Pipeline
	config        models.PipelineConfig
	opts          TaskOptions
	batchDelay    time.Duration
	continueOnErr bool
}

// BatchResult 单个关键词的执行结果
type BatchResult struct {
	Keyword     string
	Success     bool
	Error       error
	Stats       models.PipelineStats
	Usage       models.TokenUsage
	ArticleLen  int
	ProcessedAt time.Time
	Duration    float64
}

// BatchSummary 批量执行摘要
type BatchSummary struct {
	TotalKeywords int
	SuccessCount  int
	FailCount     int
	TotalPages    int
	TotalUsage    models.TokenUsage
	TotalDuration float64
	Results       []BatchResult
}

// NewBatchRunner 创建批量分析器
func NewBatchRunner(pipeline *Pipeline, config models.PipelineConfig, opts TaskOptions, batchDelay int, continueOnErr bool) *BatchRunner {
	return &BatchRunner{
		pipeline:      pipeline,
		config:        config,
		opts:          opts,
		batchDelay:    time.Duration(batchDelay) * time.Second,
		continueOnErr: continueOnErr,
	}
}

// RunBatch 批量执行关键词列表
func (br *BatchRunner) RunBatch(ctx context.Context, keywords []string) (*BatchSummary, error) {
	utils.Infof("🚀 开始批量分析: %d个关键词", len(keywords))

	summary := &BatchSummary{
		TotalKeywords: len(keywords),
		Results:       make([]BatchResult, 0, len(keywords)),
	}

	startTime := time.Now()

	for i, keyword := range keywords {
		utils.Infof("\n==================== [%d/%d] ====================", i+1, len(keywords))
		utils.Infof("关键词: %s", keyword)

		// 执行单个关键词分析
		result := br.runSingleKeyword(ctx, keyword)
		summary.Results = append(summary.Results, result)

		// 更新统计
		if result.Success {
			summary.SuccessCount++
			summary.TotalPages += result.Stats.CrawledPages
			summary.TotalUsage.Add(result.Usage)
		} else {
			summary.FailCount++
			utils.Errorf("❌ 分析失败: %v", result.Error)

			// 如果不继续处理错误,则停止
			if !br.continueOnErr {
				utils.Warn("批量分析中止 (--continue-on-error=false)")
				break
			}
		}

		// 批量延迟(最后一个关键词不需要延迟)
		if i < len(keywords)-1 && br.batchDelay > 0 {
			utils.Debugf("等待 %.0f 秒后处理下一个关键词...", br.batchDelay.Seconds())
			select {
			case <-ctx.Done():
				utils.Warnf("批量分析被取消: %v", ctx.Err())
				summary.TotalDuration = time.Since(startTime).Seconds()
				br.printSummary(summary)
				return summary, ctx.Err()
			case <-time.After(br.batchDelay):
			}
		}
	}

	summary.TotalDuration = time.Since(startTime).Seconds()

	// 显示批量分析摘要
	br.printSummary(summary)

	return summary, nil
}

// runSingleKeyword 分析单个关键词
func (br *BatchRunner) runSingleKeyword(ctx context.Context, keyword string) BatchResult {
	result := BatchResult{
		Keyword:     keyword,
		ProcessedAt: time.Now(),
	}

	startTime := time.Now()

	// 创建任务
	task, err := models.NewPipelineTask(keyword, br.config)
	if err != nil {
		result.Success = false
		result.Error = fmt.Errorf("创建任务失败: %w", err)
		result.Duration = time.Since(startTime).Seconds()
		return result
	}

	// 执行任务
	articleResult, err := br.pipeline.RunTask(ctx, task, br.opts)
	if err != nil {
		result.Success = false
		result.Error = fmt.Errorf("分析失败: %w", err)
		result.Stats = task.Stats
		result.Duration = time.Since(startTime).Seconds()
		return result
	}

	// 成功
	result.Success = true
	result.Stats = task.Stats
	result.Usage = task.Usage
	result.ArticleLen = len(articleResult.Content)
	result.Duration = time.Since(startTime).Seconds()

	return result
}

// printSummary 打印批量分析摘要
func (br *BatchRunner) printSummary(summary *BatchSummary) {
	utils.Info("\n==================================================")
	utils.Info("📊 批量分析摘要")
	utils.Info("==================================================")
	utils.Infof("总关键词数: %d", summary.TotalKeywords)
	utils.Infof("✅ 成功: %d", summary.SuccessCount)
	utils.Infof("❌ 失败: %d", summary.FailCount)
	utils.Infof("📦 总抓取页面数: %d", summary.TotalPages)
	utils.Infof("💰 总token消耗: %d (约 $%.4f)", summary.TotalUsage.TotalTokens, summary.TotalUsage.CostUSD)
	utils.Infof("⏱️  总耗时: %.2f秒", summary.TotalDuration)
	utils.Info("==================================================")

	// 显示失败的关键词
	if summary.FailCount > 0 {
		utils.Warn("\n失败的关键词:")
		for _, result := range summary.Results {
			if !result.Success {
				utils.Warnf("  - %s: %v", result.Keyword, result.Error)
			}
		}
	}
}
