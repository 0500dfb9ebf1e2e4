package crawlers

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"

	"github.com/x5427876/ai-scraping/internal/models"
	"github.com/x5427876/ai-scraping/internal/utils"
)

// 默认User-Agent,可被自定义请求头覆盖
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// CollyFetcher 进程内页面抓取器
// 职责: 抓取单个页面并提取标题、正文、链接、图片和元信息
//
// 链接使用响应URL解析为绝对地址,图片保留原始src,
// 相对图片地址的补全由Normalize统一处理。
type CollyFetcher struct {
	// 单次请求超时时间
	timeout time.Duration

	// 附加到每个请求的自定义请求头
	headers http.Header
}

// NewCollyFetcher 创建进程内抓取器
// 参数:
//   - timeout: 单次请求超时时间
//   - headers: 自定义请求头,可为nil
func NewCollyFetcher(timeout time.Duration, headers http.Header) *CollyFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CollyFetcher{
		timeout: timeout,
		headers: headers,
	}
}

// Fetch 抓取单个页面
// 每次抓取使用独立的collector,避免跨页面状态残留。
// 抓取失败时返回nil,由调用方决定如何降级。
func (f *CollyFetcher) Fetch(ctx context.Context, pageURL string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("抓取已取消: %w", err)
	}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("URL格式无效: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("不支持的协议: %s", parsedURL.Scheme)
	}

	// 自定义HTTP客户端,禁用TLS证书验证
	// 允许访问自签名、过期或主机名不匹配的HTTPS站点
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		},
		Timeout: f.timeout,
	}

	c := colly.NewCollector(
		colly.UserAgent(defaultUserAgent),
	)
	c.SetClient(httpClient)
	c.SetRequestTimeout(f.timeout)

	var (
		links       []string
		images      []string
		seenLinks   = make(map[string]bool)
		seenImages  = make(map[string]bool)
		body        []byte
		contentType string
		fetchErr    error
	)

	// 提取页面链接,解析为绝对地址
	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" || !strings.HasPrefix(link, "http") {
			return
		}
		if !seenLinks[link] {
			seenLinks[link] = true
			links = append(links, link)
		}
	})

	// 提取图片地址,保留原始src由Normalize补全
	c.OnHTML("img[src]", func(e *colly.HTMLElement) {
		src := strings.TrimSpace(e.Attr("src"))
		if src == "" {
			return
		}
		if !seenImages[src] {
			seenImages[src] = true
			images = append(images, src)
		}
	})

	c.OnRequest(func(r *colly.Request) {
		// 应用自定义HTTP头部
		for name, values := range f.headers {
			if len(values) > 0 {
				r.Headers.Set(name, values[0])
			}
		}
		utils.Debugf("访问: %s", r.URL.String())
	})

	c.OnResponse(func(r *colly.Response) {
		contentType = r.Headers.Get("Content-Type")
		contentEncoding := r.Headers.Get("Content-Encoding")

		// 解压响应体(如果有压缩)
		raw := r.Body
		if contentEncoding != "" {
			decompressed, err := decompressBody(contentEncoding, r.Body)
			if err != nil {
				utils.Warnf("解压响应失败 [%s] (编码=%s): %v", pageURL, contentEncoding, err)
				// 解压失败,仍然尝试使用原始body
			} else {
				raw = decompressed
				// 解压后回写body,后续OnHTML回调基于解压内容解析
				r.Body = decompressed
			}
		}
		body = raw
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("访问页面失败 [%s]: %w", pageURL, err)
	}

	if fetchErr != nil {
		return nil, fmt.Errorf("抓取页面失败 [%s]: %w", pageURL, fetchErr)
	}

	return f.buildRawPage(body, contentType, links, images), nil
}

// buildRawPage 根据响应内容构建原始页面数据
// HTML响应解析标题、正文和元信息,纯文本响应直接作为正文,
// 其他类型返回空内容页面。
func (f *CollyFetcher) buildRawPage(body []byte, contentType string, links, images []string) *models.RawPage {
	raw := &models.RawPage{
		Links:  links,
		Images: images,
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml"):
		doc, err := ParseHTML(body)
		if err != nil {
			utils.Warnf("页面解析失败: %v", err)
			return raw
		}
		raw.Title = ExtractTitle(doc)
		raw.Content = ExtractText(doc)
		raw.Markdown = RenderMarkdown(doc)
		raw.Date, raw.Author, raw.Tags = ExtractMeta(doc)

	case strings.Contains(ct, "text/"):
		raw.Content = strings.TrimSpace(string(body))

	default:
		utils.Debugf("跳过非文本响应: Content-Type=%s", contentType)
	}

	return raw
}

// decompressBody 根据Content-Encoding头部解压响应体
// 支持 gzip, deflate, br (Brotli) 三种压缩格式
func decompressBody(contentEncoding string, body []byte) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	switch encoding {
	case "gzip":
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("gzip读取失败: %w", err)
		}
		return decompressed, nil

	case "deflate":
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("deflate读取失败: %w", err)
		}
		return decompressed, nil

	case "br":
		reader := brotli.NewReader(bytes.NewReader(body))
		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("brotli读取失败: %w", err)
		}
		return decompressed, nil

	case "":
		// 没有压缩,直接返回原始内容
		return body, nil

	default:
		// 未知编码,返回警告但仍然返回原始内容
		utils.Warnf("未知的Content-Encoding: %s", contentEncoding)
		return body, nil
	}
}
