package search

import (
	"context"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/x5427876/ai-scraping/internal/models"
	"github.com/x5427876/ai-scraping/internal/utils"
)

const (
	// 单页最大结果数,Google Custom Search API的硬限制
	pageSize = 10

	// 起始偏移上限,超过后API不再返回结果
	maxStartOffset = 100
)

// GoogleProvider 基于Google Custom Search API的搜索提供者
// 职责: 分页请求搜索API并聚合结果,单页失败时返回已收集的部分结果
type GoogleProvider struct {
	cseID string
	svc   *customsearch.Service

	// 单页请求函数,测试时可替换
	listPage func(ctx context.Context, query string, start, num int64) ([]*customsearch.Result, error)
}

// NewGoogleProvider 创建Google搜索提供者
// API密钥或搜索引擎ID缺失时返回错误
func NewGoogleProvider(ctx context.Context, apiKey, cseID string) (*GoogleProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("缺少GOOGLE_API_KEY")
	}
	if cseID == "" {
		return nil, fmt.Errorf("缺少GOOGLE_CSE_ID")
	}

	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("初始化搜索服务失败: %w", err)
	}

	p := &GoogleProvider{
		cseID: cseID,
		svc:   svc,
	}
	p.listPage = p.doListPage
	return p, nil
}

// doListPage 请求单页搜索结果
func (p *GoogleProvider) doListPage(ctx context.Context, query string, start, num int64) ([]*customsearch.Result, error) {
	resp, err := p.svc.Cse.List().
		Q(query).
		Cx(p.cseID).
		Start(start).
		Num(num).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Search 执行分页搜索
//
// 处理流程:
//  1. 起始偏移从1开始,每页请求min(10, 剩余数量)条
//  2. 累积结果直到达到numResults、某页为空或偏移超过100
//  3. 任何一页失败时记录日志并返回已收集的结果,不向上抛错
//
// 返回结果数不超过numResults。
func (p *GoogleProvider) Search(ctx context.Context, query string, numResults int) ([]models.SearchHit, error) {
	if numResults < 1 {
		numResults = 1
	}

	utils.Infof("🔍 搜索关键词: %s (目标结果数: %d)", query, numResults)

	hits := make([]models.SearchHit, 0, numResults)
	start := int64(1)

	for len(hits) < numResults {
		if start > maxStartOffset {
			utils.Warnf("搜索偏移超过API上限(100),返回已收集的 %d 条结果", len(hits))
			break
		}

		num := int64(numResults - len(hits))
		if num > pageSize {
			num = pageSize
		}

		items, err := p.listPage(ctx, query, start, num)
		if err != nil {
			utils.Warnf("搜索请求失败 (start=%d): %v", start, err)
			break
		}
		if len(items) == 0 {
			utils.Debugf("搜索结果已穷尽 (start=%d)", start)
			break
		}

		for _, item := range items {
			hits = append(hits, models.SearchHit{
				Title:   item.Title,
				Link:    item.Link,
				Snippet: item.Snippet,
			})
		}

		start += pageSize
	}

	if len(hits) > numResults {
		hits = hits[:numResults]
	}

	utils.Infof("✅ 搜索完成,共获取 %d 条结果", len(hits))
	return hits, nil
}
