package models

// TokenUsage 一次合成调用的token消耗与成本
// 每次成功调用后更新一次,失败时归零
type TokenUsage struct {
	PromptTokens     int     `json:"prompt_tokens"`     // 提示词token数
	CompletionTokens int     `json:"completion_tokens"` // 补全token数
	TotalTokens      int     `json:"total_tokens"`      // 总token数
	CostUSD          float64 `json:"cost_usd"`          // 估算成本(美元)
}

// Reset 归零所有计数
func (u *TokenUsage) Reset() {
	u.PromptTokens = 0
	u.CompletionTokens = 0
	u.TotalTokens = 0
	u.CostUSD = 0
}

// Add 累加另一份用量(批量模式下按关键词汇总)
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
	u.CostUSD += other.CostUSD
}
