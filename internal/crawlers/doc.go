// Package crawlers 提供网页抓取、内容归一化和广度优先链接扩展功能
//
// # 概述
//
// crawlers包实现了从种子URL出发的单线程广度优先爬取,
// 核心特性包括:页面预算控制、深度限制、已访问去重、同站链接过滤、图片地址补全。
//
// # 核心组件
//
// ## CollyFetcher
//
// 基于Colly框架的进程内抓取器,通过OnHTML回调提取页面链接和图片,
// 通过OnResponse回调解压gzip/deflate/brotli压缩的响应体。
// 返回*models.RawPage结构。
//
//	fetcher := NewCollyFetcher(30*time.Second, headers)
//	raw, err := fetcher.Fetch(ctx, "https://example.com")
//
// ## ServiceFetcher
//
// 远端抓取服务客户端,将抓取委托给独立部署的服务,
// 返回未经转换的map[string]any响应。
//
//	fetcher := NewServiceFetcher("http://crawl-service:8080/extract", 30*time.Second)
//	raw, err := fetcher.Fetch(ctx, "https://example.com")
//
// ## Normalize
//
// 形状容忍的归一化函数,在抓取边界统一两种原始形状为PageRecord。
// 任何输入都不会失败,缺失字段降级为默认值:
//   - 标题缺失时回退为请求URL
//   - 正文优先content,回退markdown,再回退占位文本
//   - 链接仅保留与请求URL主机一致的条目
//   - 图片补全协议前缀和相对路径,最多保留5条
//
//	record := Normalize(raw, "https://example.com/page")
//
// ## Traversal
//
// 广度优先链接扩展爬取器。种子以深度0入队,逐层抓取,
// 页面数达到预算或队列为空时终止。输出按层序排列。
//
//	trav := NewTraversal(fetcher, true)
//	result := trav.Run(ctx, seeds, 10, 2)
//
// ## CrawlQueue
//
// 先进先出的爬取队列,维护待处理条目、已入队集合和已访问集合。
//
//	queue := NewCrawlQueue()
//	err := queue.Push("https://example.com/page1", 1, "https://example.com")
//	entry, ok := queue.Pop()
//	queue.MarkVisited(entry.URL)
//
// # 错误处理
//
//   - 单页抓取失败: 记录日志后标记已访问,爬取流程继续,该页不计入结果
//   - 响应解压失败: 回退使用原始响应体
//   - 归一化: 永不失败,坏数据降级为默认值
//   - 无任何自动重试
//
// # 并发模型
//
// 一次Run内抓取严格串行,同一时刻只有一个请求在途。
// 队列和已访问集合由单次Run独占,多次调用互不影响;
// 并发执行多个独立爬取时,各自构造独立的Traversal状态即可。
package crawlers
