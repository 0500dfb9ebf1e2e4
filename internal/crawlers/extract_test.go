package crawlers

import (
	"strings"
	"testing"
)

const sampleHTML = `<!DOCTYPE html>
<html>
<head>
<title>测试文章标题</title>
<meta property="og:title" content="OG标题">
<meta name="author" content="王五">
<meta property="article:published_time" content="2024-03-01T08:00:00Z">
<meta name="keywords" content="人工智能, 爬虫, ">
<style>body { color: red; }</style>
</head>
<body>
<script>var tracking = "should not appear";</script>
<h1>主标题</h1>
<p>第一段正文内容。</p>
<p>第二段正文内容。</p>
<ul><li>要点一</li><li>要点二</li></ul>
<noscript>启用JS提示</noscript>
</body>
</html>`

// TestExtractTitle 验证标题提取及回退
func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "title标签优先",
			html: sampleHTML,
			want: "测试文章标题",
		},
		{
			name: "无title时回退og:title",
			html: `<html><head><meta property="og:title" content="OG标题"></head><body></body></html>`,
			want: "OG标题",
		},
		{
			name: "两者均无时返回空",
			html: `<html><body><p>内容</p></body></html>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseHTML([]byte(tt.html))
			if err != nil {
				t.Fatalf("ParseHTML() 失败: %v", err)
			}
			if got := ExtractTitle(doc); got != tt.want {
				t.Errorf("ExtractTitle() = %q, 期望 %q", got, tt.want)
			}
		})
	}
}

// TestExtractText 验证正文提取
// 脚本和样式内容不应出现在正文中
func TestExtractText(t *testing.T) {
	doc, err := ParseHTML([]byte(sampleHTML))
	if err != nil {
		t.Fatalf("ParseHTML() 失败: %v", err)
	}

	text := ExtractText(doc)

	for _, want := range []string{"主标题", "第一段正文内容。", "第二段正文内容。", "要点一"} {
		if !strings.Contains(text, want) {
			t.Errorf("正文缺少 %q, 实际: %q", want, text)
		}
	}

	for _, banned := range []string{"should not appear", "color: red", "启用JS提示"} {
		if strings.Contains(text, banned) {
			t.Errorf("正文不应包含 %q", banned)
		}
	}
}

// TestExtractMeta 验证元信息提取
func TestExtractMeta(t *testing.T) {
	doc, err := ParseHTML([]byte(sampleHTML))
	if err != nil {
		t.Fatalf("ParseHTML() 失败: %v", err)
	}

	date, author, tags := ExtractMeta(doc)

	if date != "2024-03-01T08:00:00Z" {
		t.Errorf("date = %q, 期望发布时间", date)
	}
	if author != "王五" {
		t.Errorf("author = %q, 期望 王五", author)
	}
	// 空白标签被丢弃
	if len(tags) != 2 || tags[0] != "人工智能" || tags[1] != "爬虫" {
		t.Errorf("tags = %v, 期望 [人工智能 爬虫]", tags)
	}
}

// TestRenderMarkdown 验证简化Markdown渲染
func TestRenderMarkdown(t *testing.T) {
	doc, err := ParseHTML([]byte(sampleHTML))
	if err != nil {
		t.Fatalf("ParseHTML() 失败: %v", err)
	}

	md := RenderMarkdown(doc)

	if !strings.Contains(md, "# 主标题") {
		t.Errorf("Markdown缺少一级标题: %q", md)
	}
	if !strings.Contains(md, "第一段正文内容。") {
		t.Errorf("Markdown缺少段落: %q", md)
	}
	if !strings.Contains(md, "- 要点一") {
		t.Errorf("Markdown缺少列表项: %q", md)
	}
	if strings.Contains(md, "should not appear") {
		t.Error("Markdown不应包含脚本内容")
	}
}

// TestExtractText_EmptyDocument 验证空文档的处理
func TestExtractText_EmptyDocument(t *testing.T) {
	doc, err := ParseHTML([]byte(""))
	if err != nil {
		t.Fatalf("ParseHTML() 对空输入不应失败: %v", err)
	}

	if text := ExtractText(doc); text != "" {
		t.Errorf("空文档正文 = %q, 期望空", text)
	}
}
