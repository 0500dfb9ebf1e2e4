package main

import (
	"fmt"
	"strings"

	"github.com/x5427876/ai-scraping/internal/models"
)

// ValidateFlags 验证命令行标志
func ValidateFlags(
	keyword string,
	resultCount int,
	maxPages int,
	maxDepth int,
	strategy string,
) error {
	// 验证关键词
	if strings.TrimSpace(keyword) == "" {
		return fmt.Errorf("搜索关键词不能为空")
	}

	// 验证结果数量
	if resultCount < 1 || resultCount > 100 {
		return fmt.Errorf("结果数量必须在1-100之间,当前值: %d", resultCount)
	}

	// 验证页面预算
	if maxPages < 1 || maxPages > 100 {
		return fmt.Errorf("最大页面数必须在1-100之间,当前值: %d", maxPages)
	}

	// 验证抓取深度
	if maxDepth < 0 || maxDepth > 10 {
		return fmt.Errorf("最大深度必须在0-10之间,当前值: %d", maxDepth)
	}

	// 验证策略
	validStrategies := map[string]bool{
		string(models.StrategyStandard): true,
		string(models.StrategyBFS):      true,
	}
	if !validStrategies[strategy] {
		return fmt.Errorf("无效的抓取策略: %s (有效值: standard, bfs)", strategy)
	}

	return nil
}
