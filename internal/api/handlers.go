package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/x5427876/ai-scraping/internal/core"
	"github.com/x5427876/ai-scraping/internal/models"
	"github.com/x5427876/ai-scraping/internal/utils"
)

// ArticleGenerator 文章生成能力
// 处理器只依赖这一窄接口,便于测试时替换为桩实现
type ArticleGenerator interface {
	RunTask(ctx context.Context, task *models.PipelineTask, opts core.TaskOptions) (*models.ArticleResult, error)
}

// Handler API请求处理器
type Handler struct {
	generator  ArticleGenerator
	baseConfig models.PipelineConfig
}

// NewHandler 创建处理器
// baseConfig提供请求未覆盖参数的默认值
func NewHandler(generator ArticleGenerator, baseConfig models.PipelineConfig) *Handler {
	return &Handler{
		generator:  generator,
		baseConfig: baseConfig,
	}
}

// GenerateArticle POST /api/v1/article
//
// 请求体: {keyword, scraping_number, isNeedImage, custom_prompt, return_json}
// return_json为true时返回JSON结果,否则返回可下载的文本附件。
func (h *Handler) GenerateArticle(c *gin.Context) {
	var req models.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ArticleResult{
			Status:  "error",
			Message: fmt.Sprintf("请求格式错误: %v", err),
		})
		return
	}

	if strings.TrimSpace(req.Keyword) == "" {
		c.JSON(http.StatusBadRequest, models.ArticleResult{
			Status:  "error",
			Message: "缺少搜索关键词",
		})
		return
	}

	// 请求参数覆盖默认配置
	cfg := h.baseConfig
	if req.ScrapingNumber > 0 {
		cfg.ResultCount = req.ScrapingNumber
		if cfg.Strategy == models.StrategyBFS {
			cfg.MaxPages = req.ScrapingNumber
		}
	}

	task, err := models.NewPipelineTask(req.Keyword, cfg)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ArticleResult{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	result, err := h.generator.RunTask(c.Request.Context(), task, core.TaskOptions{
		CustomPrompt: req.CustomPrompt,
		NeedImage:    req.NeedImage,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ArticleResult{
			Status:  "error",
			Message: err.Error(),
			Usage:   task.Usage,
		})
		return
	}

	if req.ReturnJSON {
		c.JSON(http.StatusOK, result)
		return
	}

	// 文本附件下载,文件名与CLI落盘保持一致
	filename := fmt.Sprintf("analysis_%s.txt", utils.SanitizeKeyword(req.Keyword))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(result.Content))
}

// Health GET /api/v1/health
// 返回服务进程所在主机的资源快照
func (h *Handler) Health(c *gin.Context) {
	status := utils.CollectSystemStatus()
	c.JSON(http.StatusOK, gin.H{
		"status":              "ok",
		"memory_used_percent": status.UsedMemoryPercent,
		"cpu_percent":         status.CPUPercent,
		"goroutines":          status.Goroutines,
		"memory_pressure":     status.MemoryPressure,
	})
}
