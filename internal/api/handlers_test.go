package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/x5427876/ai-scraping/internal/core"
	"github.com/x5427876/ai-scraping/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeGenerator 记录输入并返回预置结果的文章生成器
type fakeGenerator struct {
	result  *models.ArticleResult
	err     error
	gotTask *models.PipelineTask
	gotOpts core.TaskOptions
}

func (f *fakeGenerator) RunTask(ctx context.Context, task *models.PipelineTask, opts core.TaskOptions) (*models.ArticleResult, error) {
	f.gotTask = task
	f.gotOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testBaseConfig() models.PipelineConfig {
	return models.PipelineConfig{
		ResultCount:  5,
		Strategy:     models.StrategyStandard,
		MaxPages:     10,
		MaxDepth:     2,
		FetchTimeout: 30,
	}
}

func newTestRouter(h *Handler) *gin.Engine {
	router := gin.New()
	registerRoutes(router, h)
	return router
}

func postArticle(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/article", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGenerateArticle_JSON(t *testing.T) {
	gen := &fakeGenerator{result: &models.ArticleResult{
		Status:   "success",
		Message:  "文章生成成功",
		Content:  "生成的社群贴文",
		ImageURL: "https://images.example.com/cover.png",
		Usage:    models.TokenUsage{TotalTokens: 150, CostUSD: 0.01},
	}}
	router := newTestRouter(NewHandler(gen, testBaseConfig()))

	w := postArticle(t, router, `{
		"keyword": "人工智能",
		"scraping_number": 3,
		"isNeedImage": true,
		"custom_prompt": "自定义模板",
		"return_json": true
	}`)

	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200, body: %s", w.Code, w.Body.String())
	}

	var resp models.ArticleResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("Status = %s, 期望 success", resp.Status)
	}
	if resp.Content != "生成的社群贴文" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.ImageURL != "https://images.example.com/cover.png" {
		t.Errorf("ImageURL = %q", resp.ImageURL)
	}
	if resp.Usage.TotalTokens != 150 {
		t.Errorf("Usage.TotalTokens = %d, 期望 150", resp.Usage.TotalTokens)
	}

	// 请求参数透传给任务
	if gen.gotTask.Keyword != "人工智能" {
		t.Errorf("任务关键词 = %s", gen.gotTask.Keyword)
	}
	if gen.gotTask.Config.ResultCount != 3 {
		t.Errorf("ResultCount = %d, 期望请求覆盖为 3", gen.gotTask.Config.ResultCount)
	}
	if !gen.gotOpts.NeedImage {
		t.Error("NeedImage应为true")
	}
	if gen.gotOpts.CustomPrompt != "自定义模板" {
		t.Errorf("CustomPrompt = %q", gen.gotOpts.CustomPrompt)
	}
}

func TestGenerateArticle_Attachment(t *testing.T) {
	gen := &fakeGenerator{result: &models.ArticleResult{
		Status:  "success",
		Content: "可下载的文章内容",
	}}
	router := newTestRouter(NewHandler(gen, testBaseConfig()))

	w := postArticle(t, router, `{"keyword": "golang", "return_json": false}`)

	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q, 应为附件下载", cd)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/plain") {
		t.Errorf("Content-Type = %q, 期望 text/plain", ct)
	}
	if w.Body.String() != "可下载的文章内容" {
		t.Errorf("响应体 = %q", w.Body.String())
	}
}

func TestGenerateArticle_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"缺少关键词", `{"keyword": ""}`},
		{"关键词仅空白", `{"keyword": "   "}`},
		{"JSON格式错误", `{"keyword": `},
		{"抓取数量超出范围", `{"keyword": "测试", "scraping_number": 500}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{result: &models.ArticleResult{Status: "success"}}
			router := newTestRouter(NewHandler(gen, testBaseConfig()))

			w := postArticle(t, router, tt.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("状态码 = %d, 期望 400", w.Code)
			}

			var resp models.ArticleResult
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("解析响应失败: %v", err)
			}
			if resp.Status != "error" {
				t.Errorf("Status = %s, 期望 error", resp.Status)
			}
			if gen.gotTask != nil {
				t.Error("无效请求不应触发任务执行")
			}
		})
	}
}

func TestGenerateArticle_PipelineError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("未能获取任何搜索结果: 冷门词")}
	router := newTestRouter(NewHandler(gen, testBaseConfig()))

	w := postArticle(t, router, `{"keyword": "冷门词", "return_json": true}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("状态码 = %d, 期望 500", w.Code)
	}

	var resp models.ArticleResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Status != "error" {
		t.Errorf("Status = %s, 期望 error", resp.Status)
	}
	if !strings.Contains(resp.Message, "未能获取任何搜索结果") {
		t.Errorf("Message = %q, 应包含失败原因", resp.Message)
	}
}

func TestGenerateArticle_BFSBudgetOverride(t *testing.T) {
	cfg := testBaseConfig()
	cfg.Strategy = models.StrategyBFS
	gen := &fakeGenerator{result: &models.ArticleResult{Status: "success"}}
	router := newTestRouter(NewHandler(gen, cfg))

	w := postArticle(t, router, `{"keyword": "测试", "scraping_number": 7, "return_json": true}`)

	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200", w.Code)
	}
	if gen.gotTask.Config.MaxPages != 7 {
		t.Errorf("BFS策略下MaxPages = %d, 期望请求覆盖为 7", gen.gotTask.Config.MaxPages)
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(NewHandler(&fakeGenerator{}, testBaseConfig()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200", w.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %v, 期望 ok", resp["status"])
	}
	if goroutines, ok := resp["goroutines"].(float64); !ok || goroutines < 1 {
		t.Errorf("goroutines = %v, 期望正数", resp["goroutines"])
	}
	if _, ok := resp["memory_used_percent"]; !ok {
		t.Error("响应应包含memory_used_percent")
	}
}
