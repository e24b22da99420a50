package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/swaggo/swag" // 导入 swag

	"milo_career/config"
	_ "milo_career/docs" // 导入 swagger 文档
	"milo_career/handlers"
	"milo_career/logger"
	"milo_career/repository"
	"milo_career/scheduler"
	"milo_career/services"
)

func main() {
	cfg := config.Load()

	// 初始化日志系统
	if err := logger.Init(cfg); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	logger.Info("日志系统初始化成功", "level", cfg.Log.Level, "format", cfg.Log.Format, "output", cfg.Log.Output)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 校友数据只在启动时加载一次
	store := repository.LoadProfiles(ctx, cfg)

	sessionStore, err := openSessionStore(ctx, cfg)
	if err != nil {
		logger.Error("初始化会话存储失败", "store", cfg.Session.Store, "error", err)
		os.Exit(1)
	}

	llm, err := services.NewTextGenerator(ctx, cfg)
	if err != nil {
		logger.Error("初始化LLM客户端失败", "provider", cfg.LLM.Provider, "error", err)
		os.Exit(1)
	}

	alumni := services.NewAlumniService(store, services.NewEnricher())
	sessions := services.NewSessionService(sessionStore)
	h := handlers.NewHandler(
		alumni,
		services.NewCareerService(alumni, llm),
		services.NewChatService(sessions, llm),
		sessions,
	)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	handlers.RegisterRoutes(r, h)

	// start cron
	sched := scheduler.Start(ctx, cfg, sessions)

	srv := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     r,
		ReadTimeout: time.Duration(cfg.Timeouts.RequestSec) * time.Second,
		// 为 0 时不限制；流式对话的持续时间受此限制
		WriteTimeout: time.Duration(cfg.Timeouts.ResponseSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.Timeouts.IdleSec) * time.Second,
	}

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("服务器启动", "address", serverAddr)
	logger.Info("Swagger文档可访问", "url", fmt.Sprintf("http://%s/swagger/index.html", serverAddr))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("服务器异常退出", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("收到退出信号，开始关闭服务")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭失败", "error", err)
	}
	sched.Wait()
	logger.Info("服务已退出")
}

// openSessionStore 按 session.store 选择内存或 Redis 存储
func openSessionStore(ctx context.Context, cfg *config.Config) (repository.SessionStore, error) {
	switch strings.ToLower(cfg.Session.Store) {
	case "redis":
		client, err := repository.NewRedisClient(ctx, cfg.Session.RedisURL)
		if err != nil {
			return nil, err
		}
		ttl := time.Duration(cfg.Session.TTLMinutes) * time.Minute
		logger.Info("使用Redis会话存储", "prefix", cfg.Session.KeyPrefix, "ttl", ttl)
		return repository.NewRedisSessionStore(client, cfg.Session.KeyPrefix, ttl), nil
	case "memory", "":
		logger.Info("使用内存会话存储")
		return repository.NewMemorySessionStore(), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}
