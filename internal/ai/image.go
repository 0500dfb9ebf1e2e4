package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/x5427876/ai-scraping/internal/utils"
)

// 图像生成提示词的最大字符数,超出部分截断
const maxImagePromptLength = 4000

// imageCreator 图像生成客户端,测试时可替换
type imageCreator interface {
	CreateImage(ctx context.Context, req openai.ImageRequest) (openai.ImageResponse, error)
}

// ImageGenerator 配图生成器
// 职责: 根据文章内容生成社群贴文配图,返回图片URL
type ImageGenerator struct {
	client imageCreator
}

// NewImageGenerator 创建配图生成器
func NewImageGenerator(apiKey, baseURL string) (*ImageGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("缺少OPENAI_API_KEY")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &ImageGenerator{
		client: openai.NewClientWithConfig(cfg),
	}, nil
}

// Generate 根据提示词生成一张1024x1024配图
// 提示词超过4000字符时截断后提交
func (g *ImageGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("图像提示词为空")
	}
	prompt = utils.Truncate(prompt, maxImagePromptLength)

	utils.Infof("🎨 生成配图中 (提示词长度: %d)", len([]rune(prompt)))

	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:  prompt,
		Model:   openai.CreateImageModelDallE3,
		N:       1,
		Size:    openai.CreateImageSize1024x1024,
		Quality: openai.CreateImageQualityStandard,
	})
	if err != nil {
		utils.Errorf("图像生成失败: %v", err)
		return "", fmt.Errorf("图像生成失败: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", fmt.Errorf("图像服务未返回任何结果")
	}

	return resp.Data[0].URL, nil
}
