package ai

import "strings"

// ModelPrice 每一百万token的美元价格
type ModelPrice struct {
	Input  float64
	Output float64
}

// 已知模型价格表
// 价格参考: https://openai.com/api/pricing/
//
// 按子串匹配模型名,更具体的键必须排在前面
// (gpt-4o-mini要先于gpt-4o匹配),因此使用有序切片而非map。
var modelPrices = []struct {
	key   string
	price ModelPrice
}{
	{"gpt-4o-mini", ModelPrice{Input: 0.15, Output: 0.60}},
	{"gpt-4o", ModelPrice{Input: 2.50, Output: 10.00}},
	{"o3-mini", ModelPrice{Input: 1.10, Output: 4.40}},
}

// 未识别模型的默认价格
var defaultPrice = ModelPrice{Input: 0.01, Output: 0.02}

// PriceForModel 查找模型对应的价格
// 模型名转小写后与价格表键做子串匹配,未命中时返回默认价格
func PriceForModel(model string) ModelPrice {
	key := strings.ToLower(model)
	for _, entry := range modelPrices {
		if strings.Contains(key, entry.key) {
			return entry.price
		}
	}
	return defaultPrice
}

// ComputeCost 计算单次调用的美元成本
func ComputeCost(promptTokens, completionTokens int, price ModelPrice) float64 {
	inputCost := float64(promptTokens) / 1e6 * price.Input
	outputCost := float64(completionTokens) / 1e6 * price.Output
	return inputCost + outputCost
}
