package models

// SearchHit 搜索提供者返回的单条结果
// 每个API分页构造一批,构造后不可变,由遍历或合成阶段消费一次
type SearchHit struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// EnrichedResult 遍历输出的单条富化结果
// 在SearchHit基础上附带抓取到的完整正文
type EnrichedResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"` // 正文前200字符+"..."
	Content string `json:"content"`
}
