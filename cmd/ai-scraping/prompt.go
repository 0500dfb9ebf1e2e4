package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/x5427876/ai-scraping/internal/core"
)

// taskInput 交互模式下收集的任务参数
type taskInput struct {
	Keyword     string
	ResultCount int
	Strategy    string
	MaxPages    int
	MaxDepth    int
}

// promptString 读取一行输入,空输入返回默认值
func promptString(reader *bufio.Reader, prompt, defaultValue string) string {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return defaultValue
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return defaultValue
	}
	return line
}

// promptInt 读取整数输入,空输入或解析失败返回默认值
func promptInt(reader *bufio.Reader, prompt string, defaultValue int) int {
	raw := promptString(reader, prompt, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Printf("输入无效,使用默认值: %d\n", defaultValue)
		return defaultValue
	}
	return n
}

// promptYesNo 读取确认输入,y/Y开头视为确认
func promptYesNo(reader *bufio.Reader, prompt string) bool {
	answer := promptString(reader, prompt, "n")
	return strings.HasPrefix(strings.ToLower(answer), "y")
}

// promptTaskInput 交互式收集分析任务参数
//
// 流程: 关键词 → 结果数量 → 策略选择 → (BFS时)页面预算和深度,
// 所有数值输入回车使用默认值。
func promptTaskInput(reader *bufio.Reader, defaults *core.Config) (*taskInput, error) {
	keyword := promptString(reader, "\n请输入搜索关键词: ", "")
	if strings.TrimSpace(keyword) == "" {
		return nil, fmt.Errorf("搜索关键词不能为空")
	}

	input := &taskInput{
		Keyword:     keyword,
		ResultCount: promptInt(reader, fmt.Sprintf("请输入需要的结果数量 (默认: %d): ", defaults.Search.ResultCount), defaults.Search.ResultCount),
		Strategy:    "standard",
		MaxPages:    defaults.Crawler.MaxPages,
		MaxDepth:    defaults.Crawler.MaxDepth,
	}

	fmt.Println("\n请选择爬取策略:")
	fmt.Println("1. 标准搜索 (仅抓取搜索结果页面)")
	fmt.Println("2. BFS策略 (广度优先,扩展抓取同站相关页面)")
	choice := promptString(reader, "请选择 (1/2,默认: 1): ", "1")

	if choice == "2" {
		input.Strategy = "bfs"
		input.MaxPages = promptInt(reader, fmt.Sprintf("请输入最大抓取页面数 (默认: %d): ", defaults.Crawler.MaxPages), defaults.Crawler.MaxPages)
		input.MaxDepth = promptInt(reader, fmt.Sprintf("请输入最大抓取深度 (默认: %d): ", defaults.Crawler.MaxDepth), defaults.Crawler.MaxDepth)
	}

	return input, nil
}
