package ai

import (
	"fmt"
	"strings"

	"github.com/x5427876/ai-scraping/internal/models"
)

// 提示模板中的搜索内容占位符
const searchContentPlaceholder = "{search_content}"

// 系统角色设定,面向繁体中文社群媒体场景
const systemPrompt = "你是一位專業的社群媒體內容策劃師,擅長將新聞和時事轉化為吸引人的社群媒體貼文。你了解 Instagram 和 Threads 的特性,知道如何製作能夠引發討論和分享的內容。請使用繁體中文,並注意保持內容的準確性和趣味性的平衡。"

// 未提供自定义模板时使用的默认提示模板
const defaultPromptTemplate = `請根據以下搜尋結果,生成一份統一格式的社群媒體貼文內容,可以直接用於各大平台(包括 Instagram 和 Threads)。

{search_content}

請按照以下統一格式生成內容:

1. 核心內容(適用於所有平台):
   - 標題:20字以內的引人注目標題
   - 導語:50字以內的引言,抓住讀者興趣
   - 正文:500字以內的主要內容(分3-4個段落)
   - 結語:30字以內的總結或行動呼籲
   - 3-5個核心標籤(中英對照)

2. 視覺建議:
   - 主圖建議:描述最適合的主要圖片類型
   - 配圖建議:2-3張輔助圖片的建議
   - 視覺重點:需要強調的視覺元素

3. 互動策略:
   - 互動問題:1個引發討論的問題
   - 分享建議:最佳發布時間和分享文案
   - 延伸標籤:2-3個相關話題標籤

格式要求:
- 使用繁體中文
- 每個段落使用1-2個合適的表情符號
- 確保內容精簡但完整
- 保持專業但親和的語調
- 適合跨平台使用
- 重點標示使用「」或【】`

// renderSearchContent 将爬取结果渲染为编号来源块
// 缺失的日期和作者显示为未知,缺失的正文显示为无法获取
func renderSearchContent(records []models.PageRecord) string {
	parts := make([]string, 0, len(records))

	for i, r := range records {
		date := r.PublishedDate
		if date == "" {
			date = "未知"
		}
		author := r.Author
		if author == "" {
			author = "未知"
		}
		content := r.Content
		if content == "" {
			content = "無法獲取內容"
		}

		parts = append(parts, fmt.Sprintf(
			"來源 %d:\n標題: %s\n網址: %s\n發布日期: %s\n作者: %s\n標籤: %s\n內容: %s\n可用圖片數量: %d",
			i+1, r.Title, r.SourceURL, date, author,
			strings.Join(r.Tags, ", "), content, len(r.Images)))
	}

	return strings.Join(parts, "\n\n")
}

// buildPrompt 组装用户提示词
// 模板为空时使用默认模板;模板含占位符时替换,
// 否则将搜索内容追加到模板末尾。
func buildPrompt(template string, records []models.PageRecord) string {
	if template == "" {
		template = defaultPromptTemplate
	}

	content := renderSearchContent(records)
	if strings.Contains(template, searchContentPlaceholder) {
		return strings.ReplaceAll(template, searchContentPlaceholder, content)
	}
	return template + "\n\n" + content
}
