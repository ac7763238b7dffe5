package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"journal-backend/internal/config"
	"journal-backend/internal/handler"
	"journal-backend/internal/llm"
	"journal-backend/internal/prompt"
	"journal-backend/internal/service"
	"journal-backend/internal/storage"
	"journal-backend/pkg/logger"
)

func newServeCommand(loadConfig func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 初始化服务
	client, err := llm.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	dispatcher := service.NewDispatcher(prompt.NewRegistry(), client, cfg.Model)
	sessionService := service.NewSessionService(storage.NewMemoryStorage(), dispatcher, cfg)
	defer sessionService.Close()

	// 初始化处理器
	assistantHandler := handler.NewAssistantHandler(sessionService, cfg.Image.MaxUploadBytes)

	var limiter *handler.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = handler.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
		limiter.StartCleanup(ctx, time.Minute, 10*time.Minute)
	}

	// 创建路由
	router := setupRouter(cfg, assistantHandler, limiter)

	// 创建HTTP服务器
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("服务器启动在端口 %d, 模型: %s", cfg.Server.Port, client.Name())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// 等待信号优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("服务器启动失败: %w", err)
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("服务器正在关闭...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("服务器关闭失败: %v", err)
	}
	logger.Info("服务器已关闭")
	return nil
}

func setupRouter(cfg *config.Config, assistantHandler *handler.AssistantHandler, limiter *handler.RateLimiter) *gin.Engine {
	// 设置gin模式
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS配置
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API路由
	var runLimiter gin.HandlerFunc
	if limiter != nil {
		runLimiter = limiter.Middleware()
	}
	assistantHandler.RegisterRoutes(router.Group("/api"), runLimiter)

	return router
}
