package models

// CrawlQueueEntry 表示待抓取队列中的一个条目
// 用途:
//   - 在遍历器的FIFO队列中传递URL和深度信息
//   - 出队后即被丢弃,队列对其拥有独占所有权
type CrawlQueueEntry struct {
	// URL 完整的URL字符串
	URL string

	// Depth URL的深度层级
	//   - 0: 种子URL(来自搜索结果)
	//   - 1: 从种子页面发现的链接
	//   - 2: 从深度1页面发现的链接
	//   - 以此类推...
	Depth int

	// SourceURL 发现此URL的源页面(可选,用于调试)
	SourceURL string
}
