package crawlers

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/x5427876/ai-scraping/internal/models"
)

// 单页保留的最大图片数量
const maxImagesPerPage = 5

// Normalize 将抓取器的原始输出统一为PageRecord
// 职责: 在抓取边界完成一次形状识别,外部数据形状不泄漏到后续流程
//
// 容忍两种原始形状: map[string]any(远端抓取服务)与*models.RawPage(进程内抓取)。
// 任何输入都不会失败,缺失字段替换为类型对应的默认值。
//
// 处理规则:
//  1. 原始数据为空(nil或空map)时返回空内容记录,标题回退为请求URL
//  2. 正文优先取content,为空时回退markdown,仍为空时填入占位文本
//  3. 链接仅保留主机与请求URL完全一致的条目,保持原有顺序
//  4. 图片地址补全协议前缀和相对路径,最多保留5条
func Normalize(raw any, requestedURL string) models.PageRecord {
	record := models.PageRecord{
		SourceURL: requestedURL,
		Title:     requestedURL,
		Links:     []string{},
		Images:    []string{},
		Tags:      []string{},
	}

	var (
		title, content, markdown, date, author string
		links, images, tags                    []string
	)

	switch v := raw.(type) {
	case map[string]any:
		// 空map视为抓取失败
		if len(v) == 0 {
			return record
		}
		title = mapString(v, "title")
		content = mapString(v, "content")
		markdown = mapString(v, "markdown")
		date = mapString(v, "date")
		author = mapString(v, "author")
		links = mapStringSlice(v, "links")
		images = mapStringSlice(v, "images")
		tags = mapStringSlice(v, "tags")

	case *models.RawPage:
		if v == nil {
			return record
		}
		title = v.Title
		content = v.Content
		markdown = v.Markdown
		date = v.Date
		author = v.Author
		links = v.Links
		images = v.Images
		tags = v.Tags

	default:
		// nil或未知形状,按抓取失败处理
		return record
	}

	if title != "" {
		record.Title = title
	}

	if content == "" {
		content = markdown
	}
	if content == "" {
		content = fmt.Sprintf("no content extracted - %s", requestedURL)
	}
	record.Content = content

	record.Links = filterSameHostLinks(links, requestedURL)
	record.Images = rewriteImageURLs(images, requestedURL)
	record.PublishedDate = date
	record.Author = author
	if len(tags) > 0 {
		record.Tags = tags
	}

	return record
}

// mapString 从map中读取字符串字段,缺失或类型不符时返回空字符串
func mapString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// mapStringSlice 从map中读取字符串列表字段
// 非字符串元素静默丢弃
func mapStringSlice(m map[string]any, key string) []string {
	out := make([]string, 0)
	switch v := m[key].(type) {
	case []string:
		out = append(out, v...)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// filterSameHostLinks 仅保留与请求URL主机完全一致的链接
// 无法解析的条目静默丢弃,保持原有顺序
func filterSameHostLinks(links []string, requestedURL string) []string {
	out := make([]string, 0)

	host := models.HostOf(requestedURL)
	if host == "" {
		return out
	}

	for _, link := range links {
		if link != "" && models.HostOf(link) == host {
			out = append(out, link)
		}
	}
	return out
}

// rewriteImageURLs 补全图片地址并截断数量
// 协议相对地址(//开头)补https前缀,无协议地址基于请求URL解析,
// 处理完成后截取前5条。
func rewriteImageURLs(images []string, requestedURL string) []string {
	out := make([]string, 0, len(images))
	base, baseErr := url.Parse(requestedURL)

	for _, img := range images {
		if img == "" {
			continue
		}
		switch {
		case strings.HasPrefix(img, "//"):
			img = "https:" + img
		case !strings.HasPrefix(img, "http://") && !strings.HasPrefix(img, "https://"):
			if baseErr == nil {
				if ref, err := url.Parse(img); err == nil {
					img = base.ResolveReference(ref).String()
				}
			}
		}
		out = append(out, img)
	}

	if len(out) > maxImagesPerPage {
		out = out[:maxImagesPerPage]
	}
	return out
}
