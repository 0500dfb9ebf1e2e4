package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/x5427876/ai-scraping/internal/models"
	"github.com/x5427876/ai-scraping/internal/utils"
)

// 单次生成的输出token上限
const maxOutputTokens = 4000

// chatCompleter 聊天补全客户端,测试时可替换
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Synthesizer 内容合成器
// 职责: 将爬取结果渲染为提示词,调用聊天补全API生成文章,
// 并按模型价格表记录token用量与美元成本
type Synthesizer struct {
	client chatCompleter
	model  string
	price  ModelPrice
}

// NewSynthesizer 创建内容合成器
// baseURL为空时使用官方端点,model为空时默认o3-mini
func NewSynthesizer(apiKey, baseURL, model string) (*Synthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("缺少OPENAI_API_KEY")
	}
	if model == "" {
		model = "o3-mini"
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	utils.Debugf("初始化内容合成器: 模型=%s", model)

	return &Synthesizer{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		price:  PriceForModel(model),
	}, nil
}

// Synthesize 根据爬取结果生成文章
//
// 参数:
//   - records: 按顺序渲染进提示词的页面记录
//   - template: 自定义提示模板,空字符串使用默认模板
//
// 返回文章文本和本次调用的token用量。
// 任何失败都返回空文本和全零用量,调用方据此报告生成失败。
func (s *Synthesizer) Synthesize(ctx context.Context, records []models.PageRecord, template string) (string, models.TokenUsage, error) {
	if len(records) == 0 {
		return "", models.TokenUsage{}, fmt.Errorf("没有可用的爬取结果")
	}

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(template, records)},
		},
	}

	// o系列推理模型不接受temperature,输出上限字段也不同
	model := strings.ToLower(s.model)
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") {
		req.MaxCompletionTokens = maxOutputTokens
	} else {
		req.MaxTokens = maxOutputTokens
		req.Temperature = 0.7
	}

	utils.Infof("✨ 调用模型生成内容: %s (来源数: %d)", s.model, len(records))

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		utils.Errorf("内容生成失败: %v", err)
		return "", models.TokenUsage{}, fmt.Errorf("内容生成失败: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", models.TokenUsage{}, fmt.Errorf("模型未返回任何结果")
	}

	usage := models.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	usage.CostUSD = ComputeCost(usage.PromptTokens, usage.CompletionTokens, s.price)

	utils.Infof("📊 token用量: 提示=%d, 生成=%d, 总计=%d (约 $%.4f)",
		usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens, usage.CostUSD)

	return resp.Choices[0].Message.Content, usage, nil
}

// Model 返回当前使用的模型名
func (s *Synthesizer) Model() string {
	return s.model
}
