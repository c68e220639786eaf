package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/jengzang/geolife-backend-go/internal/api"
	"github.com/jengzang/geolife-backend-go/internal/config"
	"github.com/jengzang/geolife-backend-go/internal/handler"
	"github.com/jengzang/geolife-backend-go/internal/service"
	"github.com/jengzang/geolife-backend-go/internal/store"
)

func main() {
	// 加载配置
	cfg := config.Load()
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化存储
	s, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreBackend, err)
	}
	defer s.Close()

	// 初始化路由
	statsHandler := handler.NewStatsHandler(service.NewStatsService(s))
	router := api.SetupRouter(cfg, statsHandler)
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set, the API is unauthenticated")
	}

	srv := &http.Server{Addr: cfg.Port, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	// 启动服务器
	log.Infof("Server starting on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("Failed to start server: %v", err)
		s.Close()
		os.Exit(1)
	}
}
