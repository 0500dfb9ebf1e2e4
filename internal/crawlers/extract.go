package crawlers

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	// 压缩连续空行
	blankLinesRegex = regexp.MustCompile(`\n{3,}`)

	// 压缩行内连续空白
	innerSpaceRegex = regexp.MustCompile(`[ \t]+`)
)

// 不参与正文提取的标签
var skipTextTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"svg":      true,
	"head":     true,
}

// 作为块级边界的标签,遍历时在其后插入换行
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "tr": true, "br": true, "blockquote": true, "pre": true,
}

// ParseHTML 解析HTML字节流为节点树
func ParseHTML(body []byte) (*html.Node, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("HTML解析失败: %w", err)
	}
	return doc, nil
}

// ExtractTitle 提取页面标题
// 优先使用<title>标签,其次使用og:title
func ExtractTitle(doc *html.Node) string {
	var title string
	var ogTitle string

	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				if attrValue(n, "property") == "og:title" {
					ogTitle = strings.TrimSpace(attrValue(n, "content"))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(doc)

	if title != "" {
		return title
	}
	return ogTitle
}

// ExtractText 提取页面可读正文
// 递归遍历节点树,跳过脚本和样式,按块级标签分行
func ExtractText(doc *html.Node) string {
	var sb strings.Builder

	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTextTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			sb.WriteString("\n")
		}
	}
	f(doc)

	return normalizeWhitespace(sb.String())
}

// ExtractMeta 提取页面元信息
// 返回发布日期、作者和标签列表,缺失字段为空
func ExtractMeta(doc *html.Node) (date string, author string, tags []string) {
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			name := attrValue(n, "name")
			property := attrValue(n, "property")
			content := strings.TrimSpace(attrValue(n, "content"))
			if content != "" {
				switch {
				case property == "article:published_time" || name == "date":
					if date == "" {
						date = content
					}
				case name == "author" || property == "article:author":
					if author == "" {
						author = content
					}
				case name == "keywords":
					for _, kw := range strings.Split(content, ",") {
						kw = strings.TrimSpace(kw)
						if kw != "" {
							tags = append(tags, kw)
						}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(doc)

	return date, author, tags
}

// RenderMarkdown 将节点树渲染为简化Markdown
// 标题转为#前缀,段落和列表项按行输出,作为正文提取的备用形式
func RenderMarkdown(doc *html.Node) string {
	var sb strings.Builder

	headingLevel := map[string]int{
		"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6,
	}

	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skipTextTags[n.Data] {
				return
			}
			if level, ok := headingLevel[n.Data]; ok {
				text := inlineText(n)
				if text != "" {
					sb.WriteString(strings.Repeat("#", level))
					sb.WriteString(" ")
					sb.WriteString(text)
					sb.WriteString("\n\n")
				}
				return
			}
			switch n.Data {
			case "p", "blockquote":
				text := inlineText(n)
				if text != "" {
					sb.WriteString(text)
					sb.WriteString("\n\n")
				}
				return
			case "li":
				text := inlineText(n)
				if text != "" {
					sb.WriteString("- ")
					sb.WriteString(text)
					sb.WriteString("\n")
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(doc)

	return strings.TrimSpace(blankLinesRegex.ReplaceAllString(sb.String(), "\n\n"))
}

// inlineText 提取节点内的行内文本
func inlineText(n *html.Node) string {
	var sb strings.Builder

	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTextTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)

	return strings.TrimSpace(innerSpaceRegex.ReplaceAllString(strings.ReplaceAll(sb.String(), "\n", " "), " "))
}

// attrValue 读取节点属性值,不存在时返回空字符串
func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// normalizeWhitespace 压缩文本中的多余空白
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(innerSpaceRegex.ReplaceAllString(line, " "))
	}
	out := strings.Join(lines, "\n")
	out = blankLinesRegex.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
