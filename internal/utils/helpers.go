package utils

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// ReadKeywordsFromFile 从文件中读取关键词列表
// 每行一个关键词,跳过空行和#注释行
func ReadKeywordsFromFile(filepath string) ([]string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("打开关键词文件失败: %w", err)
	}
	defer file.Close()

	keywords := make([]string, 0)
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// 跳过空行和注释行
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		keywords = append(keywords, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取关键词文件失败: %w", err)
	}

	if len(keywords) == 0 {
		return nil, fmt.Errorf("关键词文件中没有有效的关键词")
	}

	Infof("从文件加载了 %d 个关键词", len(keywords))
	return keywords, nil
}

// SanitizeKeyword 过滤关键词中不适合作为文件名的字符
// 保留字母、数字(含中日韩字符)、空格、连字符和下划线,结果去除尾部空白
func SanitizeKeyword(keyword string) string {
	var b strings.Builder
	for _, r := range keyword {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Truncate 按字符截断字符串,超出部分丢弃
// 按rune计数,避免在多字节字符中间截断
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
