package main

import (
	"context"
	"log"
	"medialink-go/internal/handler"
	"medialink-go/internal/i18n"
	"medialink-go/internal/middleware"
	"medialink-go/internal/repository"
	"medialink-go/internal/service"
	"medialink-go/pkg/logging"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func initConfig() {
	wd, _ := os.Getwd()
	log.Printf("Loading config from: %s/config.yaml", wd)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	// 管理凭证从进程环境读取，启动时确定，之后不再变化
	if err := viper.BindEnv("admin.key", "MEDIALINK_ADMIN_KEY"); err != nil {
		log.Fatalf("Failed to bind admin key env: %v", err)
	}
}

func startServer(r *gin.Engine) {
	addr := viper.GetString("server.addr")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// 启动服务器
	go func() {
		logging.Logger.Info("Server is running on " + addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := repository.RedisPool.Close(); err != nil {
		logging.Logger.Warn("Redis pool close failed", zap.Error(err))
	}

	logging.Logger.Info("Server exiting")
}

func main() {

	initConfig()
	// 初始化日志系统
	logging.InitLoggerFromConfig()

	logging.Logger.Info("Application started")

	repository.InitDB(logging.Logger, logging.AtomicLevel)
	repository.InitRedis()

	// 初始化 i18n（加载 TOML 文件）
	bundle, err := i18n.InitI18n([]string{
		"./i18n/en.toml",
		"./i18n/zh.toml",
	}, "en")
	if err != nil {
		panic(err)
	}

	// 管理凭证缺失时 AccessGuard 始终拒绝管理操作
	adminKey := viper.GetString("admin.key")
	if adminKey == "" {
		logging.Logger.Error("MEDIALINK_ADMIN_KEY is not set, administrative endpoints are disabled")
	}

	store := repository.NewRedisLinkStore(repository.RedisPool)
	guard := service.NewAccessGuard(adminKey)
	links := service.NewLinkService(store)
	relay := service.NewRelayService(store, guard, repository.RedisPool)
	handler.Setup(links, relay, guard)

	r := gin.New()
	r.Use(gin.Recovery()) // 显式添加 Recovery 中间件

	// 注册全局错误中间件
	r.Use(middleware.GlobalErrorMiddleware())
	r.Use(middleware.ZapGinLogger(logging.Logger))
	r.Use(middleware.CorsMiddleware())
	// 使用 i18n 中间件
	r.Use(middleware.I18nMiddleware(bundle))

	r.GET("/", handler.IndexHandler)
	r.POST("/generate", handler.GenerateLinkHandler)
	r.GET("/admin", handler.AdminListHandler)
	r.POST("/delete", handler.DeleteLinkHandler)
	r.GET("/download/:slug", handler.DownloadHandler)
	r.GET("/stream/:slug", handler.StreamHandler)

	c := cron.New()

	// 添加定时任务：每十分钟把访问计数沉淀到数据库
	_, addErr := c.AddFunc("*/10 * * * *", func() {
		if err := service.StatisticalData(store); err != nil {
			logging.Logger.Error("Failed to flush access statistics via cron job", zap.Error(err))
		}
	})

	if addErr != nil {
		logging.Logger.Fatal("Failed to schedule cron job", zap.Error(addErr))
	}

	c.Start()

	startServer(r)
}
