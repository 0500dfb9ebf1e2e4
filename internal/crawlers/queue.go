package crawlers

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/x5427876/ai-scraping/internal/models"
)

// CrawlQueue 广度优先爬取队列
// 职责: 管理待爬取和已访问的URL,保证先进先出的层序出队顺序
//
// 与基于channel的实现不同,这里使用切片保存待处理条目,
// 因为入队前需要判断"是否已在队列中",channel无法做成员检查。
type CrawlQueue struct {
	// 待处理条目,按入队顺序排列
	pending []models.CrawlQueueEntry

	// 已入队URL标记集合(含已出队的)
	queuedURLs map[string]bool

	// 已访问URL标记集合
	visitedURLs map[string]bool

	// 保护内部状态的读写锁
	mu sync.RWMutex
}

// NewCrawlQueue 创建爬取队列实例
func NewCrawlQueue() *CrawlQueue {
	return &CrawlQueue{
		pending:     make([]models.CrawlQueueEntry, 0, 64),
		queuedURLs:  make(map[string]bool),
		visitedURLs: make(map[string]bool),
	}
}

// Push 添加URL到待爬队列
// 检查URL有效性、已入队检查、已访问检查
func (q *CrawlQueue) Push(urlStr string, depth int, sourceURL string) error {
	// 检查URL有效性
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("URL格式无效: %w", err)
	}

	// 检查协议
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("不支持的协议: %s", parsedURL.Scheme)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	// 检查是否已访问
	if q.visitedURLs[urlStr] {
		return fmt.Errorf("URL已访问: %s", urlStr)
	}

	// 检查是否已在队列中
	if q.queuedURLs[urlStr] {
		return fmt.Errorf("URL已在队列中: %s", urlStr)
	}

	q.queuedURLs[urlStr] = true
	q.pending = append(q.pending, models.CrawlQueueEntry{
		URL:       urlStr,
		Depth:     depth,
		SourceURL: sourceURL,
	})

	return nil
}

// Pop 从队列头部取出下一个待爬条目
// 队列为空时第二个返回值为false
func (q *CrawlQueue) Pop() (models.CrawlQueueEntry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return models.CrawlQueueEntry{}, false
	}

	entry := q.pending[0]
	q.pending = q.pending[1:]
	return entry, true
}

// MarkVisited 标记URL为已访问
func (q *CrawlQueue) MarkVisited(urlStr string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.visitedURLs[urlStr] = true
}

// IsVisited 检查URL是否已访问
func (q *CrawlQueue) IsVisited(urlStr string) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.visitedURLs[urlStr]
}

// IsQueued 检查URL是否已入过队
func (q *CrawlQueue) IsQueued(urlStr string) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.queuedURLs[urlStr]
}

// PendingCount 返回当前待处理条目数量
func (q *CrawlQueue) PendingCount() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.pending)
}

// VisitedCount 返回已访问URL数量
func (q *CrawlQueue) VisitedCount() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.visitedURLs)
}

// Reset 清空队列,重置所有状态
// 为下一个关键字的爬取准备全新状态
func (q *CrawlQueue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = q.pending[:0]
	q.queuedURLs = make(map[string]bool)
	q.visitedURLs = make(map[string]bool)
}
