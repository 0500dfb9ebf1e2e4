package models

// PageRecord 单个URL抓取后的规范化记录
// 由规范化层从原始抓取结果转换而来,是贯穿整个管道的统一数据结构
type PageRecord struct {
	// 标识信息
	SourceURL string `json:"source_url"` // 被抓取的URL(不可变键)
	Title     string `json:"title"`      // 页面标题(缺失时回退为SourceURL)

	// 内容
	Content string `json:"content"` // 提取的正文内容

	// 链接与资源
	Links  []string `json:"links"`  // 同源出站链接(按发现顺序)
	Images []string `json:"images"` // 图片URL(最多5条,已补全协议)

	// 元数据
	PublishedDate string   `json:"published_date,omitempty"` // 发布日期(可选)
	Author        string   `json:"author,omitempty"`         // 作者(可选)
	Tags          []string `json:"tags,omitempty"`           // 标签集合
}

// RawPage 抓取引擎的原始输出(结构体形态)
// 远程抓取服务返回的是map[string]any形态,两者都只允许出现在规范化层之前
type RawPage struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`  // 提取的正文
	Markdown string   `json:"markdown"` // Markdown形式正文(Content为空时的备选)
	Links    []string `json:"links"`
	Images   []string `json:"images"`
	Date     string   `json:"date"`
	Author   string   `json:"author"`
	Tags     []string `json:"tags"`
}
