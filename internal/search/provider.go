package search

import (
	"context"

	"github.com/x5427876/ai-scraping/internal/models"
)

// Provider 搜索提供者接口
// 返回按相关度排序的搜索结果,失败时降级为空列表而非中断调用方
type Provider interface {
	Search(ctx context.Context, query string, numResults int) ([]models.SearchHit, error)
}
