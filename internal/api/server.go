package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/x5427876/ai-scraping/internal/core"
	"github.com/x5427876/ai-scraping/internal/utils"
)

// 优雅关闭的等待上限
const shutdownTimeout = 10 * time.Second

// Server HTTP服务
type Server struct {
	router *gin.Engine
	server *http.Server
}

// NewServer 创建HTTP服务
// 中间件顺序: panic恢复 → 请求ID → 访问日志
func NewServer(cfg core.ServerConfig, handler *Handler) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())

	registerRoutes(router, handler)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return &Server{
		router: router,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 10 * time.Minute, // 文章生成耗时较长
			IdleTimeout:  120 * time.Second,
		},
	}
}

// registerRoutes 注册路由
func registerRoutes(router *gin.Engine, handler *Handler) {
	v1 := router.Group("/api/v1")
	{
		v1.POST("/article", handler.GenerateArticle)
		v1.GET("/health", handler.Health)
	}
}

// Router 返回底层gin引擎
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start 阻塞启动服务
func (s *Server) Start() error {
	utils.Infof("🚀 HTTP服务启动: http://%s", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP服务异常退出: %w", err)
	}
	return nil
}

// Shutdown 优雅关闭服务,等待进行中的请求完成
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP服务关闭失败: %w", err)
	}

	utils.Infof("✅ HTTP服务已停止")
	return nil
}

// Run 启动服务并在收到SIGINT/SIGTERM或上下文取消时优雅关闭
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		utils.Infof("收到退出信号: %s", sig)
	case <-ctx.Done():
		utils.Infof("上下文取消,开始关闭服务")
	}

	// 原上下文可能已取消,关闭流程使用独立上下文
	return s.Shutdown(context.Background())
}
