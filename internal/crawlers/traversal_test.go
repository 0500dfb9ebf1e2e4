package crawlers

import (
	"context"
	"fmt"
	"testing"

	"github.com/x5427876/ai-scraping/internal/models"
)

// fakeFetcher 测试用抓取器,从预置页面表返回数据并记录调用顺序
type fakeFetcher struct {
	pages map[string]any
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, pageURL string) (any, error) {
	f.calls = append(f.calls, pageURL)
	raw, ok := f.pages[pageURL]
	if !ok {
		return nil, fmt.Errorf("页面不存在: %s", pageURL)
	}
	return raw, nil
}

// fetchCount 返回某URL被抓取的次数
func (f *fakeFetcher) fetchCount(pageURL string) int {
	count := 0
	for _, c := range f.calls {
		if c == pageURL {
			count++
		}
	}
	return count
}

func page(title, content string, links ...string) *models.RawPage {
	return &models.RawPage{Title: title, Content: content, Links: links}
}

// TestTraversal_EndToEnd 验证完整的广度优先扩展场景
// 种子页面的同站链接进入第1层,跨域链接被过滤不会被抓取
func TestTraversal_EndToEnd(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]any{
		"https://a.com/1": page("页面1", "第一页正文",
			"https://a.com/2", "https://a.com/3", "https://other.com/x"),
		"https://a.com/2": page("页面2", "第二页正文"),
		"https://a.com/3": page("页面3", "第三页正文"),
	}}

	trav := NewTraversal(fetcher, false)
	seeds := []models.SearchHit{{Link: "https://a.com/1"}}

	res := trav.Run(context.Background(), seeds, 3, 1)

	wantOrder := []string{"https://a.com/1", "https://a.com/2", "https://a.com/3"}
	if len(res.Results) != len(wantOrder) {
		t.Fatalf("结果数 = %d, 期望 %d", len(res.Results), len(wantOrder))
	}
	for i, want := range wantOrder {
		if res.Results[i].Link != want {
			t.Errorf("Results[%d].Link = %s, 期望 %s", i, res.Results[i].Link, want)
		}
	}

	// 跨域链接在归一化时被过滤,不应被抓取
	if fetcher.fetchCount("https://other.com/x") != 0 {
		t.Error("跨域链接不应被抓取")
	}

	if res.Stats.CrawledPages != 3 {
		t.Errorf("CrawledPages = %d, 期望 3", res.Stats.CrawledPages)
	}
	if res.Stats.MaxDepthSeen != 1 {
		t.Errorf("MaxDepthSeen = %d, 期望 1", res.Stats.MaxDepthSeen)
	}
}

// TestTraversal_PageBudget 验证页面预算上限
func TestTraversal_PageBudget(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]any{
		"https://a.com/1": page("页面1", "正文1", "https://a.com/2", "https://a.com/3", "https://a.com/4"),
		"https://a.com/2": page("页面2", "正文2"),
		"https://a.com/3": page("页面3", "正文3"),
		"https://a.com/4": page("页面4", "正文4"),
	}}

	trav := NewTraversal(fetcher, false)
	seeds := []models.SearchHit{{Link: "https://a.com/1"}}

	res := trav.Run(context.Background(), seeds, 2, 2)

	if len(res.Results) != 2 {
		t.Errorf("结果数 = %d, 期望预算上限 2", len(res.Results))
	}
}

// TestTraversal_MaxDepthZero 验证深度为0时不扩展链接
func TestTraversal_MaxDepthZero(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]any{
		"https://a.com/1": page("页面1", "正文1", "https://a.com/2"),
		"https://a.com/2": page("页面2", "正文2"),
	}}

	trav := NewTraversal(fetcher, false)
	seeds := []models.SearchHit{{Link: "https://a.com/1"}}

	res := trav.Run(context.Background(), seeds, 10, 0)

	if len(res.Results) != 1 {
		t.Errorf("结果数 = %d, 期望仅种子页面", len(res.Results))
	}
	if fetcher.fetchCount("https://a.com/2") != 0 {
		t.Error("深度为0时不应抓取链接页面")
	}
}

// TestTraversal_NoRefetch 验证同一URL不会被重复抓取
func TestTraversal_NoRefetch(t *testing.T) {
	// 页面互相链接形成环
	fetcher := &fakeFetcher{pages: map[string]any{
		"https://a.com/1": page("页面1", "正文1", "https://a.com/2", "https://a.com/1"),
		"https://a.com/2": page("页面2", "正文2", "https://a.com/1", "https://a.com/2"),
	}}

	trav := NewTraversal(fetcher, false)
	seeds := []models.SearchHit{{Link: "https://a.com/1"}}

	res := trav.Run(context.Background(), seeds, 10, 3)

	if len(res.Results) != 2 {
		t.Errorf("结果数 = %d, 期望 2", len(res.Results))
	}
	for _, u := range []string{"https://a.com/1", "https://a.com/2"} {
		if n := fetcher.fetchCount(u); n != 1 {
			t.Errorf("%s 被抓取 %d 次, 期望 1 次", u, n)
		}
	}
}

// TestTraversal_DuplicateSeeds 验证重复种子只抓取一次
func TestTraversal_DuplicateSeeds(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]any{
		"https://a.com/1": page("页面1", "正文1"),
	}}

	trav := NewTraversal(fetcher, false)
	seeds := []models.SearchHit{
		{Link: "https://a.com/1"},
		{Link: "https://a.com/1"},
		{Link: ""},
	}

	res := trav.Run(context.Background(), seeds, 10, 1)

	if len(res.Results) != 1 {
		t.Errorf("结果数 = %d, 期望 1", len(res.Results))
	}
	if n := fetcher.fetchCount("https://a.com/1"); n != 1 {
		t.Errorf("重复种子被抓取 %d 次, 期望 1 次", n)
	}
}

// TestTraversal_FailedFetchContinues 验证单页失败不中断整体爬取
// 失败页面标记为已访问但不计入结果,后续种子正常处理
func TestTraversal_FailedFetchContinues(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]any{
		// https://a.com/broken 缺失,抓取将失败
		"https://a.com/ok": page("正常页面", "正常正文"),
	}}

	trav := NewTraversal(fetcher, false)
	seeds := []models.SearchHit{
		{Link: "https://a.com/broken"},
		{Link: "https://a.com/ok"},
	}

	res := trav.Run(context.Background(), seeds, 10, 1)

	if len(res.Results) != 1 {
		t.Fatalf("结果数 = %d, 期望 1", len(res.Results))
	}
	if res.Results[0].Link != "https://a.com/ok" {
		t.Errorf("Results[0].Link = %s, 期望正常页面", res.Results[0].Link)
	}
	if res.Stats.FailedFetches != 1 {
		t.Errorf("FailedFetches = %d, 期望 1", res.Stats.FailedFetches)
	}
	if res.Stats.VisitedURLs != 2 {
		t.Errorf("VisitedURLs = %d, 失败页面也应标记已访问", res.Stats.VisitedURLs)
	}
}

// TestTraversal_EmptyPageGetsPlaceholder 验证抓取成功但内容为空的页面
// 占位文本使其计入结果,区别于抓取失败的页面
func TestTraversal_EmptyPageGetsPlaceholder(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]any{
		"https://a.com/empty": &models.RawPage{Title: "空页面"},
	}}

	trav := NewTraversal(fetcher, false)
	seeds := []models.SearchHit{{Link: "https://a.com/empty"}}

	res := trav.Run(context.Background(), seeds, 10, 0)

	if len(res.Results) != 1 {
		t.Fatalf("结果数 = %d, 期望占位页面计入结果", len(res.Results))
	}
	if res.Results[0].Content != "no content extracted - https://a.com/empty" {
		t.Errorf("Content = %q, 期望占位文本", res.Results[0].Content)
	}
}

// TestTraversal_LevelOrder 验证输出按层序排列
// 第d层页面只能由第d-1层页面发现,结果深度单调不减
func TestTraversal_LevelOrder(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]any{
		"https://a.com/s1": page("种子1", "正文", "https://a.com/l1"),
		"https://a.com/s2": page("种子2", "正文", "https://a.com/l2"),
		"https://a.com/l1": page("一层1", "正文", "https://a.com/l3"),
		"https://a.com/l2": page("一层2", "正文"),
		"https://a.com/l3": page("二层1", "正文"),
	}}

	trav := NewTraversal(fetcher, false)
	seeds := []models.SearchHit{
		{Link: "https://a.com/s1"},
		{Link: "https://a.com/s2"},
	}

	res := trav.Run(context.Background(), seeds, 10, 2)

	if len(res.Pages) != 5 {
		t.Fatalf("页面数 = %d, 期望 5", len(res.Pages))
	}

	lastDepth := 0
	for i, p := range res.Pages {
		if p.Depth < lastDepth {
			t.Errorf("Pages[%d] 深度 %d 小于前一条 %d, 违反层序", i, p.Depth, lastDepth)
		}
		lastDepth = p.Depth
	}

	// 两个种子先于所有第1层页面
	if res.Pages[0].URL != "https://a.com/s1" || res.Pages[1].URL != "https://a.com/s2" {
		t.Errorf("种子应按提供顺序排在最前: %s, %s", res.Pages[0].URL, res.Pages[1].URL)
	}
	if res.Stats.MaxDepthSeen != 2 {
		t.Errorf("MaxDepthSeen = %d, 期望 2", res.Stats.MaxDepthSeen)
	}
}

// TestTraversal_SnippetDerivation 验证摘要取自正文前200字符
func TestTraversal_SnippetDerivation(t *testing.T) {
	longContent := ""
	for i := 0; i < 30; i++ {
		longContent += "零一二三四五六七八九"
	}

	fetcher := &fakeFetcher{pages: map[string]any{
		"https://a.com/long":  page("长文", longContent),
		"https://a.com/short": page("短文", "短正文"),
	}}

	trav := NewTraversal(fetcher, false)
	seeds := []models.SearchHit{
		{Link: "https://a.com/long"},
		{Link: "https://a.com/short"},
	}

	res := trav.Run(context.Background(), seeds, 10, 0)

	if len(res.Results) != 2 {
		t.Fatalf("结果数 = %d, 期望 2", len(res.Results))
	}

	longSnippet := []rune(res.Results[0].Snippet)
	if len(longSnippet) != snippetLength+3 {
		t.Errorf("长文摘要字符数 = %d, 期望 %d", len(longSnippet), snippetLength+3)
	}
	if res.Results[1].Snippet != "短正文..." {
		t.Errorf("短文摘要 = %q, 期望原文加省略号", res.Results[1].Snippet)
	}
}

// TestTraversal_ContextCancel 验证取消后不再继续抓取
func TestTraversal_ContextCancel(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]any{
		"https://a.com/1": page("页面1", "正文1"),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trav := NewTraversal(fetcher, false)
	res := trav.Run(ctx, []models.SearchHit{{Link: "https://a.com/1"}}, 10, 1)

	if len(res.Results) != 0 {
		t.Errorf("取消后结果数 = %d, 期望 0", len(res.Results))
	}
	if len(fetcher.calls) != 0 {
		t.Error("取消后不应发起抓取")
	}
}
