package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/x5427876/ai-scraping/internal/models"
	"github.com/x5427876/ai-scraping/internal/utils"
)

// requestIDKey 请求ID在gin上下文中的键名
const requestIDKey = "request_id"

// RequestIDMiddleware 为每个请求注入唯一ID
// 客户端提供X-Request-ID时沿用,否则生成UUID,
// 响应头中回传同一ID便于链路追踪
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化访问日志
// 每个请求完成后记录一条日志,5xx状态使用错误级别
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		event := utils.Logger.Info()
		if status >= http.StatusInternalServerError {
			event = utils.Logger.Error()
		}

		event.
			Str("request_id", c.GetString(requestIDKey)).
			Str("method", method).
			Str("path", path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP请求")
	}
}

// RecoveryMiddleware panic恢复
// 处理器panic时记录日志并返回500,避免单个请求拖垮服务
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				utils.Errorf("处理请求时发生panic [%s %s]: %v", c.Request.Method, c.Request.URL.Path, r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, models.ArticleResult{
					Status:  "error",
					Message: "服务内部错误",
				})
			}
		}()
		c.Next()
	}
}
