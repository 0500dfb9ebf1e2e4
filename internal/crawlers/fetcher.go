package crawlers

import "context"

// Fetcher 页面抓取器接口
// 返回值为原始页面数据,形状由具体实现决定:
// 进程内抓取返回*models.RawPage,远端抓取服务返回map[string]any,
// 两种形状统一由Normalize转换为PageRecord。
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (any, error)
}
