package core

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/x5427876/ai-scraping/internal/ai"
	"github.com/x5427876/ai-scraping/internal/crawlers"
	"github.com/x5427876/ai-scraping/internal/models"
	"github.com/x5427876/ai-scraping/internal/search"
	"github.com/x5427876/ai-scraping/internal/utils"
)

// synthesizer 文章合成接口
type synthesizer interface {
	Synthesize(ctx context.Context, records []models.PageRecord, template string) (string, models.TokenUsage, error)
	Model() string
}

// imageGenerator 配图生成接口
type imageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Pipeline 关键词分析管道协调器
// 串联搜索、抓取、归一化、文章合成和产物输出。
// 实例可在多次任务间复用,单次任务的状态保存在PipelineTask中。
type Pipeline struct {
	config *Config

	// 搜索提供者(主+备用)
	provider search.Provider
	fallback search.Provider

	// 页面抓取器
	fetcher crawlers.Fetcher

	// AI协作方
	synth  synthesizer
	imager imageGenerator

	// 产物输出
	reporter *utils.Reporter

	// 是否显示进度条
	progress bool
}

// TaskOptions 单次任务的执行选项
type TaskOptions struct {
	CustomPrompt string // 自定义提示词模板,为空使用默认模板
	NeedImage    bool   // 是否生成配图
	SaveArticle  bool   // 是否将文章落盘
	SaveReport   bool   // 是否生成运行报告
}

// NewPipeline 创建管道实例
// 凭证缺失视为致命错误立即返回,不会延迟到任务执行时才暴露
func NewPipeline(ctx context.Context, cfg *Config, headers http.Header) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider, err := search.NewGoogleProvider(ctx, cfg.Search.APIKey, cfg.Search.CSEID)
	if err != nil {
		return nil, fmt.Errorf("初始化搜索提供者失败: %w", err)
	}

	synth, err := ai.NewSynthesizer(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
	if err != nil {
		return nil, fmt.Errorf("初始化文章合成器失败: %w", err)
	}

	imager, err := ai.NewImageGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("初始化配图生成器失败: %w", err)
	}

	timeout := time.Duration(cfg.Crawler.FetchTimeout) * time.Second

	// 配置了远端抓取服务时走HTTP,否则进程内抓取
	var fetcher crawlers.Fetcher
	if cfg.Crawler.ServiceURL != "" {
		fetcher = crawlers.NewServiceFetcher(cfg.Crawler.ServiceURL, timeout)
		utils.Infof("使用远端抓取服务: %s", cfg.Crawler.ServiceURL)
	} else {
		fetcher = crawlers.NewCollyFetcher(timeout, headers)
	}

	return &Pipeline{
		config:   cfg,
		provider: provider,
		fallback: search.NewFallbackProvider(timeout),
		fetcher:  fetcher,
		synth:    synth,
		imager:   imager,
		reporter: utils.NewReporter(cfg.Output.BaseDir),
		progress: true,
	}, nil
}

// SetProgress 控制是否显示进度条
// HTTP服务模式下应关闭,避免进度条输出混入服务日志
func (p *Pipeline) SetProgress(enabled bool) {
	p.progress = enabled
}

// Model 返回文章合成使用的模型名称
func (p *Pipeline) Model() string {
	return p.synth.Model()
}

// searchSeeds 获取搜索种子
// 主提供者无结果时切换到备用提供者,两者都失败时返回空列表
func (p *Pipeline) searchSeeds(ctx context.Context, query string, n int) []models.SearchHit {
	hits, err := p.provider.Search(ctx, query, n)
	if err != nil {
		utils.Warnf("搜索失败: %v", err)
	}

	if len(hits) == 0 && p.fallback != nil {
		utils.Infof("🔍 主搜索无结果,使用备用搜索方式...")
		hits, err = p.fallback.Search(ctx, query, n)
		if err != nil {
			utils.Warnf("备用搜索失败: %v", err)
		}
	}

	return hits
}

// Standard 标准模式: 仅抓取搜索结果页面,不做链接扩展
//
// 每个命中页面抓取一次,正文抓取失败时回退为搜索摘要,
// 结果顺序与搜索结果顺序一致。
func (p *Pipeline) Standard(ctx context.Context, query string, n int) *crawlers.TraversalResult {
	res := &crawlers.TraversalResult{
		Results: make([]models.EnrichedResult, 0, n),
		Pages:   make([]models.PageReportEntry, 0, n),
	}

	seeds := p.searchSeeds(ctx, query, n)
	res.Seeds = seeds
	res.Stats.SearchHits = len(seeds)
	if len(seeds) == 0 {
		return res
	}

	if len(seeds) > n {
		seeds = seeds[:n]
	}

	for i, hit := range seeds {
		if err := ctx.Err(); err != nil {
			utils.Warnf("任务被取消: %v", err)
			break
		}

		utils.Infof("📥 处理搜索结果 %d/%d: %s", i+1, len(seeds), hit.Link)

		raw, err := p.fetcher.Fetch(ctx, hit.Link)
		res.Stats.VisitedURLs++
		if err != nil {
			utils.Warnf("抓取失败 [%s]: %v", hit.Link, err)
			res.Stats.FailedFetches++
			raw = nil
		}
		record := crawlers.Normalize(raw, hit.Link)

		// 正文抓取失败时回退为搜索摘要
		content := record.Content
		if content == "" {
			content = hit.Snippet
		} else {
			res.Stats.CrawledPages++
		}

		res.Results = append(res.Results, models.EnrichedResult{
			Title:   hit.Title,
			Link:    hit.Link,
			Snippet: hit.Snippet,
			Content: content,
		})
		res.Pages = append(res.Pages, models.PageReportEntry{
			URL:           hit.Link,
			Title:         record.Title,
			ContentLength: len(record.Content),
			LinkCount:     len(record.Links),
			ImageCount:    len(record.Images),
			Depth:         0,
		})
	}

	return res
}

// BFS 广度优先模式: 以搜索结果为种子逐层扩展同站链接
// 种子数量上限为min(5, maxPages),与页面预算共同约束爬取范围
func (p *Pipeline) BFS(ctx context.Context, query string, maxPages, maxDepth int) *crawlers.TraversalResult {
	seedCount := maxPages
	if seedCount > 5 {
		seedCount = 5
	}

	seeds := p.searchSeeds(ctx, query, seedCount)
	if len(seeds) == 0 {
		utils.Warnf("无法获取初始搜索结果")
		return &crawlers.TraversalResult{
			Results: make([]models.EnrichedResult, 0),
			Pages:   make([]models.PageReportEntry, 0),
		}
	}

	traversal := crawlers.NewTraversal(p.fetcher, p.progress)
	res := traversal.Run(ctx, seeds, maxPages, maxDepth)
	res.Stats.SearchHits = len(seeds)
	return res
}

// RunTask 执行一次关键词分析任务
//
// 执行流程:
//  1. 按策略执行搜索+抓取 (standard/bfs)
//  2. 将抓取结果合成为社群媒体文章
//  3. 可选生成配图 (失败降级为空URL)
//  4. 可选落盘文章和运行报告
//
// 任务的统计信息和token消耗在执行过程中就地更新。
func (p *Pipeline) RunTask(ctx context.Context, task *models.PipelineTask, opts TaskOptions) (*models.ArticleResult, error) {
	start := time.Now()
	now := time.Now()
	task.StartedAt = &now
	task.Status = models.TaskStatusRunning

	utils.Infof("🚀 开始分析任务: %s", task.Keyword)
	utils.Infof("任务ID: %s", task.ID)
	utils.Infof("策略: %s, 结果数: %d", task.Config.Strategy, task.Config.ResultCount)

	// 搜索+抓取
	var collected *crawlers.TraversalResult
	switch task.Config.Strategy {
	case models.StrategyBFS:
		collected = p.BFS(ctx, task.Keyword, task.Config.MaxPages, task.Config.MaxDepth)
	default:
		collected = p.Standard(ctx, task.Keyword, task.Config.ResultCount)
	}
	task.Stats = collected.Stats

	if len(collected.Results) == 0 {
		p.failTask(task, start, "未能获取任何搜索结果")
		return nil, fmt.Errorf("未能获取任何搜索结果: %s", task.Keyword)
	}

	utils.Infof("📊 共获取 %d 个有效页面,开始生成文章...", len(collected.Results))

	// 文章合成(失败时usage已被合成器清零)
	article, usage, err := p.synth.Synthesize(ctx, resultsToRecords(collected.Results), opts.CustomPrompt)
	task.Usage = usage
	if err != nil {
		p.failTask(task, start, err.Error())
		return nil, fmt.Errorf("文章合成失败: %w", err)
	}

	// 配图生成失败不影响文章输出
	imageURL := ""
	if opts.NeedImage {
		utils.Infof("🎨 开始生成配图...")
		imageURL, err = p.imager.Generate(ctx, article)
		if err != nil {
			utils.Warnf("配图生成失败: %v", err)
			imageURL = ""
		}
	}

	// 落盘
	articleFile := ""
	if opts.SaveArticle {
		saved, err := p.reporter.SaveArticle(task.Keyword, article, usage)
		if err != nil {
			utils.Warnf("保存文章失败: %v", err)
		} else {
			articleFile = saved.FilePath
		}
	}

	task.Stats.Duration = time.Since(start).Seconds()
	done := time.Now()
	task.CompletedAt = &done
	task.Status = models.TaskStatusCompleted

	if opts.SaveReport {
		if err := p.reporter.GenerateReport(task, collected.Seeds, collected.Pages, articleFile); err != nil {
			utils.Warnf("生成报告失败: %v", err)
		}
	}

	utils.Infof("✨ 任务完成: 耗时%.2f秒, token消耗%d (约 $%.4f)",
		task.Stats.Duration, usage.TotalTokens, usage.CostUSD)

	return &models.ArticleResult{
		Status:   "success",
		Message:  "文章生成成功",
		Content:  article,
		ImageURL: imageURL,
		Usage:    usage,
	}, nil
}

// SaveArticle 将文章落盘为 analysis_<关键词>.txt
func (p *Pipeline) SaveArticle(keyword, content string, usage models.TokenUsage) (*models.ArticleFile, error) {
	return p.reporter.SaveArticle(keyword, content, usage)
}

// failTask 标记任务失败并记录错误消息
func (p *Pipeline) failTask(task *models.PipelineTask, start time.Time, msg string) {
	task.Stats.Duration = time.Since(start).Seconds()
	done := time.Now()
	task.CompletedAt = &done
	task.Status = models.TaskStatusFailed
	task.ErrorMessage = msg
}

// resultsToRecords 将抓取结果转换为合成器输入
// 两种策略的结果都只携带标题、链接和正文,
// 日期、作者等元数据在来源块中渲染为未知。
func resultsToRecords(results []models.EnrichedResult) []models.PageRecord {
	records := make([]models.PageRecord, 0, len(results))
	for _, r := range results {
		records = append(records, models.PageRecord{
			SourceURL: r.Link,
			Title:     r.Title,
			Content:   r.Content,
		})
	}
	return records
}
