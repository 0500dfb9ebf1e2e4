package crawlers

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"

	"github.com/x5427876/ai-scraping/internal/models"
	"github.com/x5427876/ai-scraping/internal/utils"
)

// 结果摘要截取的正文字符数
const snippetLength = 200

// Traversal 广度优先链接扩展爬取
// 职责: 从搜索结果种子出发,逐层抓取同站链接,
// 在页面预算和深度限制内收集非空正文页面
//
// 每次Run使用独立的队列和已访问集合,多次调用互不影响。
type Traversal struct {
	// 页面抓取器
	fetcher Fetcher

	// 是否显示进度条
	progress bool
}

// TraversalResult 单次爬取的输出
type TraversalResult struct {
	// 本次爬取使用的搜索种子
	Seeds []models.SearchHit

	// 按抓取顺序排列的非空正文页面
	Results []models.EnrichedResult

	// 报告用的页面明细
	Pages []models.PageReportEntry

	// 爬取统计(SearchHits和Duration由上层填充)
	Stats models.PipelineStats
}

// NewTraversal 创建爬取实例
func NewTraversal(fetcher Fetcher, progress bool) *Traversal {
	return &Traversal{
		fetcher:  fetcher,
		progress: progress,
	}
}

// Run 执行一次广度优先爬取
//
// 处理流程:
//  1. 种子URL按提供顺序以深度0入队
//  2. 队列非空且结果数未达maxPages时循环:
//     出队、去重、抓取、归一化,正文非空的页面计入结果
//  3. 当前深度小于maxDepth时,将页面内同站链接按出现顺序入队
//
// 单个页面抓取失败不中断整体流程,该URL标记为已访问后继续。
// 返回结果按抓取顺序排列,即广度优先的层序。
func (t *Traversal) Run(ctx context.Context, seeds []models.SearchHit, maxPages, maxDepth int) *TraversalResult {
	queue := NewCrawlQueue()
	res := &TraversalResult{
		Seeds:   seeds,
		Results: make([]models.EnrichedResult, 0, maxPages),
		Pages:   make([]models.PageReportEntry, 0, maxPages),
	}

	for _, hit := range seeds {
		if hit.Link == "" {
			continue
		}
		if err := queue.Push(hit.Link, 0, ""); err != nil {
			utils.Debugf("种子URL入队失败 [%s]: %v", hit.Link, err)
		}
	}

	utils.Infof("🗺️ BFS爬取启动: 种子=%d, 页面预算=%d, 最大深度=%d", queue.PendingCount(), maxPages, maxDepth)

	var bar *progressbar.ProgressBar
	if t.progress {
		bar = utils.NewProgressBar(maxPages, "BFS爬取")
	}

	for queue.PendingCount() > 0 && len(res.Results) < maxPages {
		if err := ctx.Err(); err != nil {
			utils.Warnf("爬取被取消: %v", err)
			break
		}

		entry, ok := queue.Pop()
		if !ok {
			break
		}

		// 已访问的URL直接丢弃,不消耗页面预算
		if queue.IsVisited(entry.URL) {
			continue
		}
		queue.MarkVisited(entry.URL)

		if entry.Depth > res.Stats.MaxDepthSeen {
			res.Stats.MaxDepthSeen = entry.Depth
		}

		utils.Infof("📥 [深度 %d] 抓取: %s", entry.Depth, entry.URL)

		raw, err := t.fetcher.Fetch(ctx, entry.URL)
		if err != nil {
			utils.Warnf("抓取失败 [%s]: %v", entry.URL, err)
			res.Stats.FailedFetches++
			raw = nil
		}
		record := Normalize(raw, entry.URL)

		// 正文为空说明抓取失败,该页面不计入结果
		if record.Content != "" {
			res.Results = append(res.Results, models.EnrichedResult{
				Title:   record.Title,
				Link:    entry.URL,
				Snippet: contentSnippet(record.Content),
				Content: record.Content,
			})
			res.Pages = append(res.Pages, models.PageReportEntry{
				URL:           entry.URL,
				Title:         record.Title,
				ContentLength: len(record.Content),
				LinkCount:     len(record.Links),
				ImageCount:    len(record.Images),
				Depth:         entry.Depth,
			})
			if bar != nil {
				_ = bar.Add(1)
			}
		}

		// 未达最大深度时,将同站链接按出现顺序入队
		if entry.Depth < maxDepth {
			for _, link := range record.Links {
				if queue.IsVisited(link) || queue.IsQueued(link) {
					continue
				}
				if err := queue.Push(link, entry.Depth+1, entry.URL); err != nil {
					utils.Debugf("链接入队失败 [%s]: %v", link, err)
				}
			}
		}
	}

	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	res.Stats.VisitedURLs = queue.VisitedCount()
	res.Stats.CrawledPages = len(res.Results)

	utils.Infof("✅ BFS爬取完成: 已访问=%d, 有效页面=%d, 失败=%d, 实际深度=%d",
		res.Stats.VisitedURLs, res.Stats.CrawledPages, res.Stats.FailedFetches, res.Stats.MaxDepthSeen)

	return res
}

// contentSnippet 截取正文前200个字符作为摘要
func contentSnippet(content string) string {
	runes := []rune(content)
	if len(runes) > snippetLength {
		runes = runes[:snippetLength]
	}
	return string(runes) + "..."
}
