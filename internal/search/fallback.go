package search

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/x5427876/ai-scraping/internal/crawlers"
	"github.com/x5427876/ai-scraping/internal/models"
	"github.com/x5427876/ai-scraping/internal/utils"
)

// FallbackProvider 备用搜索提供者
// 职责: 主搜索API不可用时直接抓取搜索引擎结果页,解析其中的标题链接
//
// 尽力而为的降级方案,任何失败都返回空列表,不向上抛错。
type FallbackProvider struct {
	// 结果页地址,测试时可替换
	baseURL string

	client *http.Client
}

// NewFallbackProvider 创建备用搜索提供者
func NewFallbackProvider(timeout time.Duration) *FallbackProvider {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &FallbackProvider{
		baseURL: "https://www.google.com/search",
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true,
				},
			},
		},
	}
}

// Search 抓取结果页并解析标题链接
// 解析失败或无结果时返回空列表
func (p *FallbackProvider) Search(ctx context.Context, query string, numResults int) ([]models.SearchHit, error) {
	if numResults < 1 {
		numResults = 1
	}

	utils.Warnf("⚠️ 使用备用搜索解析结果页: %s", query)

	searchURL := fmt.Sprintf("%s?q=%s&num=%d", p.baseURL, url.QueryEscape(query), numResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		utils.Warnf("备用搜索创建请求失败: %v", err)
		return []models.SearchHit{}, nil
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36")

	resp, err := p.client.Do(req)
	if err != nil {
		utils.Warnf("备用搜索请求失败: %v", err)
		return []models.SearchHit{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		utils.Warnf("备用搜索返回异常状态码: %d", resp.StatusCode)
		return []models.SearchHit{}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		utils.Warnf("备用搜索读取响应失败: %v", err)
		return []models.SearchHit{}, nil
	}

	doc, err := crawlers.ParseHTML(body)
	if err != nil {
		utils.Warnf("备用搜索解析结果页失败: %v", err)
		return []models.SearchHit{}, nil
	}

	hits := parseResults(doc)
	if len(hits) > numResults {
		hits = hits[:numResults]
	}

	utils.Infof("备用搜索解析出 %d 条结果", len(hits))
	return hits, nil
}

// parseResults 从结果页节点树解析搜索结果
// 识别包含h3标题的链接,跳转链接(/url?q=)解包为真实地址
func parseResults(doc *html.Node) []models.SearchHit {
	hits := make([]models.SearchHit, 0)
	seen := make(map[string]bool)

	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := anchorHref(n)
			title := findHeadingText(n)
			if href != "" && title != "" {
				link := cleanResultLink(href)
				if link != "" && !seen[link] {
					seen[link] = true
					hits = append(hits, models.SearchHit{
						Title: title,
						Link:  link,
					})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(doc)

	return hits
}

// anchorHref 读取链接节点的href属性
func anchorHref(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}

// findHeadingText 查找链接内的h3标题文本
func findHeadingText(n *html.Node) string {
	var title string

	var f func(*html.Node)
	f = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "h3" {
			title = strings.TrimSpace(textOf(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		f(c)
	}

	return title
}

// textOf 拼接节点内所有文本
func textOf(n *html.Node) string {
	var sb strings.Builder

	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)

	return sb.String()
}

// cleanResultLink 将结果页链接还原为真实地址
// 跳转链接(/url?q=真实地址)取q参数,直接的http(s)地址原样保留,其余丢弃
func cleanResultLink(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	if parsed.Path == "/url" {
		real := parsed.Query().Get("q")
		if strings.HasPrefix(real, "http://") || strings.HasPrefix(real, "https://") {
			return real
		}
		return ""
	}

	if parsed.Scheme == "http" || parsed.Scheme == "https" {
		return href
	}
	return ""
}
