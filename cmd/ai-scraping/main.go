package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/x5427876/ai-scraping/internal/api"
	"github.com/x5427876/ai-scraping/internal/core"
	"github.com/x5427876/ai-scraping/internal/models"
	"github.com/x5427876/ai-scraping/internal/utils"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string

	// HTTP头部参数
	headers      []string // 自定义HTTP请求头
	headerConfig string   // 头部配置文件路径

	// 分析参数
	query        string
	resultCount  int
	strategy     string
	maxPages     int
	maxDepth     int
	templateFile string
	needImage    bool
	saveResult   bool
	outputDir    string

	// HTTP服务参数
	serveHost string
	servePort int

	// 批量处理参数
	keywordsFile    string
	batchDelay      int
	continueOnError bool
)

var rootCmd = &cobra.Command{
	Use:   "ai-scraping",
	Short: "关键词搜索与AI文章生成工具",
	Long: `ai-scraping - 关键词搜索与AI文章生成工具 (Go版本)

输入一个搜索关键词,自动完成搜索、网页抓取和AI内容合成:
  • Google自定义搜索 (API不可用时降级为直接抓取)
  • 标准策略抓取搜索结果页面,BFS策略扩展抓取同站链接
  • AI合成可直接发布的社群媒体贴文
  • 可选生成DALL·E配图
  • HTTP服务模式和批量处理模式

使用示例:
  # 交互模式
  ai-scraping

  # 直接指定关键词
  ai-scraping -q "人工智能" -n 5

  # BFS策略深度抓取
  ai-scraping -q "人工智能" --strategy bfs --max-pages 10 --max-depth 2

  # 启动HTTP服务
  ai-scraping serve --port 8080

  # 批量处理关键词文件
  ai-scraping batch -f keywords.txt

  # 检查环境变量配置
  ai-scraping check

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 加载配置
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		// 初始化日志系统
		logConfig := config.LogConfig()

		// 命令行参数覆盖配置文件
		if logLevel != "" {
			logConfig.Level = logLevel
		}

		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		if verbose {
			utils.Info("详细模式已启用")
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// 设置信号处理(Ctrl+C优雅退出)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			utils.Warnf("\n收到中断信号: %v, 正在优雅退出...", sig)
			cancel()
		}()

		// 重新加载配置(PersistentPreRunE中仅用于日志初始化)
		cfg, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		cfg.MergeCLIFlags(resultCount, strategy, maxPages, maxDepth, outputDir)

		// 组装抓取请求头部 (默认 < 配置文件 < 命令行)
		headerManager, err := core.NewHeaderManager(headerConfig, headers)
		if err != nil {
			return err
		}
		parsedHeaders, err := headerManager.GetHeaders()
		if err != nil {
			return err
		}

		// 未提供关键词时进入交互模式
		var reader *bufio.Reader
		if query == "" {
			reader = bufio.NewReader(os.Stdin)
			input, err := promptTaskInput(reader, cfg)
			if err != nil {
				return err
			}
			query = input.Keyword
			cfg.Search.ResultCount = input.ResultCount
			cfg.Crawler.Strategy = input.Strategy
			cfg.Crawler.MaxPages = input.MaxPages
			cfg.Crawler.MaxDepth = input.MaxDepth
		}

		// 验证参数
		if err := ValidateFlags(query, cfg.Search.ResultCount, cfg.Crawler.MaxPages, cfg.Crawler.MaxDepth, cfg.Crawler.Strategy); err != nil {
			return err
		}

		// 读取自定义提示词模板
		customPrompt := ""
		if templateFile != "" {
			data, err := os.ReadFile(templateFile)
			if err != nil {
				return fmt.Errorf("读取提示词模板失败: %w", err)
			}
			customPrompt = string(data)
		}

		// 创建管道(凭证缺失在此处失败)
		fmt.Println("\n正在初始化分析管道...")
		pipeline, err := core.NewPipeline(ctx, cfg, parsedHeaders)
		if err != nil {
			return err
		}

		task, err := models.NewPipelineTask(query, cfg.PipelineConfig())
		if err != nil {
			return err
		}

		fmt.Printf("\n正在搜索并分析 '%s'...\n", query)
		fmt.Println("这可能需要一些时间,因为需要深入分析每个网页...")

		result, err := pipeline.RunTask(ctx, task, core.TaskOptions{
			CustomPrompt: customPrompt,
			NeedImage:    needImage,
			SaveReport:   true,
		})
		if err != nil {
			return fmt.Errorf("分析失败: %w", err)
		}

		// 显示分析结果
		fmt.Println("\n分析结果:")
		fmt.Println(strings.Repeat("=", 80))
		fmt.Println(result.Content)
		fmt.Println(strings.Repeat("=", 80))

		if result.ImageURL != "" {
			fmt.Printf("\n🎨 配图URL: %s\n", result.ImageURL)
		}

		// 显示统计结果
		stats := task.Stats
		fmt.Println("\n==================================================")
		fmt.Println("📊 执行统计")
		fmt.Println("==================================================")
		fmt.Printf("🔍 搜索命中数: %d\n", stats.SearchHits)
		fmt.Printf("✅ 访问URL数: %d\n", stats.VisitedURLs)
		fmt.Printf("✅ 有效页面数: %d\n", stats.CrawledPages)
		fmt.Printf("❌ 抓取失败数: %d\n", stats.FailedFetches)
		if task.Config.Strategy == models.StrategyBFS {
			fmt.Printf("🗺️  实际爬取深度: %d\n", stats.MaxDepthSeen)
		}
		fmt.Printf("💰 token消耗: %d (约 $%.4f)\n", task.Usage.TotalTokens, task.Usage.CostUSD)
		fmt.Printf("⏱️  总耗时: %.2f秒\n", stats.Duration)
		fmt.Println("==================================================")

		// 保存分析结果(交互模式下询问,flag模式下直接保存)
		saveChoice := saveResult
		if !saveChoice && reader != nil {
			saveChoice = promptYesNo(reader, "\n是否保存分析结果到文件? (y/n): ")
		}
		if saveChoice {
			if _, err := pipeline.SaveArticle(query, result.Content, result.Usage); err != nil {
				utils.Errorf("保存分析结果失败: %v", err)
			}
		}

		utils.Info("✨ 分析任务完成!")
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动HTTP服务",
	Long: `以HTTP服务方式对外提供文章生成能力:

  POST /api/v1/article  生成文章 (JSON或文本附件)
  GET  /api/v1/health   健康检查`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		cfg.MergeCLIFlags(resultCount, strategy, maxPages, maxDepth, outputDir)

		if serveHost != "" {
			cfg.Server.Host = serveHost
		}
		if servePort > 0 {
			cfg.Server.Port = servePort
		}

		headerManager, err := core.NewHeaderManager(headerConfig, headers)
		if err != nil {
			return err
		}
		parsedHeaders, err := headerManager.GetHeaders()
		if err != nil {
			return err
		}

		pipeline, err := core.NewPipeline(context.Background(), cfg, parsedHeaders)
		if err != nil {
			return err
		}
		// 服务日志中不输出进度条
		pipeline.SetProgress(false)

		handler := api.NewHandler(pipeline, cfg.PipelineConfig())
		server := api.NewServer(cfg.Server, handler)
		return server.Run(context.Background())
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "批量分析关键词列表",
	Long: `从文件读取关键词列表并逐个分析,每个关键词生成一篇文章。

关键词文件格式: 每行一个关键词,支持#注释和空行。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if keywordsFile == "" {
			return fmt.Errorf("必须通过 --file 指定关键词文件")
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			utils.Warnf("\n收到中断信号: %v, 正在优雅退出...", sig)
			cancel()
		}()

		cfg, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		cfg.MergeCLIFlags(resultCount, strategy, maxPages, maxDepth, outputDir)

		keywords, err := utils.ReadKeywordsFromFile(keywordsFile)
		if err != nil {
			return err
		}

		headerManager, err := core.NewHeaderManager(headerConfig, headers)
		if err != nil {
			return err
		}
		parsedHeaders, err := headerManager.GetHeaders()
		if err != nil {
			return err
		}

		customPrompt := ""
		if templateFile != "" {
			data, err := os.ReadFile(templateFile)
			if err != nil {
				return fmt.Errorf("读取提示词模板失败: %w", err)
			}
			customPrompt = string(data)
		}

		pipeline, err := core.NewPipeline(ctx, cfg, parsedHeaders)
		if err != nil {
			return err
		}

		// 批量模式下每篇文章自动落盘
		runner := core.NewBatchRunner(pipeline, cfg.PipelineConfig(), core.TaskOptions{
			CustomPrompt: customPrompt,
			NeedImage:    needImage,
			SaveArticle:  true,
			SaveReport:   true,
		}, batchDelay, continueOnError)

		if _, err := runner.RunBatch(ctx, keywords); err != nil {
			return fmt.Errorf("批量分析失败: %w", err)
		}

		utils.Info("✨ 批量分析任务完成!")
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "检查环境变量配置",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		fmt.Println("环境变量检查:")
		printCredentialStatus("GOOGLE_API_KEY", cfg.Search.APIKey)
		printCredentialStatus("GOOGLE_CSE_ID", cfg.Search.CSEID)
		printCredentialStatus("OPENAI_API_KEY", cfg.OpenAI.APIKey)

		fmt.Printf("\n使用模型: %s\n", cfg.OpenAI.Model)
		if cfg.OpenAI.BaseURL != "" {
			fmt.Printf("API地址: %s\n", cfg.OpenAI.BaseURL)
		}

		if missing := cfg.MissingCredentials(); len(missing) > 0 {
			return fmt.Errorf("缺少必要的环境变量: %s", strings.Join(missing, ", "))
		}

		fmt.Println("\n✅ 环境配置完整")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ai-scraping %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
		fmt.Println("Go实现版本 - 关键词搜索与AI文章生成工具")
	},
}

// printCredentialStatus 打印单个凭证的设置状态(值脱敏)
func printCredentialStatus(name, value string) {
	if value == "" {
		fmt.Printf("%s: 未设置\n", name)
		return
	}
	fmt.Printf("%s: 已设置 (%s)\n", name, utils.RedactSecret(value))
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().StringSliceVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.PersistentFlags().StringVar(&headerConfig, "header-config", "", "头部配置文件路径 (默认: configs/headers.yaml)")

	// 分析参数(零值表示使用配置文件或默认值)
	rootCmd.Flags().StringVarP(&query, "query", "q", "", "搜索关键词 (未提供时进入交互模式)")
	rootCmd.Flags().IntVarP(&resultCount, "count", "n", 0, "搜索结果数量 (默认: 5)")
	rootCmd.Flags().StringVar(&strategy, "strategy", "", "抓取策略 (standard|bfs,默认: standard)")
	rootCmd.Flags().IntVar(&maxPages, "max-pages", 0, "BFS最大抓取页面数 (默认: 10)")
	rootCmd.Flags().IntVar(&maxDepth, "max-depth", -1, "BFS最大抓取深度 (默认: 2)")
	rootCmd.Flags().StringVarP(&templateFile, "template-file", "t", "", "自定义提示词模板文件 (支持{search_content}占位符)")
	rootCmd.Flags().BoolVar(&needImage, "image", false, "同时生成DALL·E配图")
	rootCmd.Flags().BoolVarP(&saveResult, "save", "s", false, "保存分析结果到文件(不询问)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "输出目录 (默认: output)")

	// HTTP服务参数
	serveCmd.Flags().StringVar(&serveHost, "host", "", "监听地址 (默认: 0.0.0.0)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "监听端口 (默认: 8080)")

	// 批量处理参数
	batchCmd.Flags().StringVarP(&keywordsFile, "file", "f", "", "关键词列表文件路径 (必需)")
	batchCmd.Flags().IntVar(&batchDelay, "batch-delay", 1, "关键词之间延迟(秒)")
	batchCmd.Flags().BoolVar(&continueOnError, "continue-on-error", true, "遇到错误继续处理")
	batchCmd.Flags().StringVarP(&templateFile, "template-file", "t", "", "自定义提示词模板文件")
	batchCmd.Flags().BoolVar(&needImage, "image", false, "同时生成DALL·E配图")

	// 添加子命令
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
