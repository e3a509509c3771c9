package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"local-yield/internal/core/auth"
	"local-yield/internal/core/cache"
	"local-yield/internal/core/config"
	"local-yield/internal/core/database"
	"local-yield/internal/core/logger"
	"local-yield/internal/core/server"
	"local-yield/internal/domain"
	"local-yield/internal/repo"
	"local-yield/internal/service"
	"local-yield/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := newLogger(cfg)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.WarnLevel)()

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	// 自动迁移
	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(
			&domain.User{},
			&domain.Product{},
			&domain.Event{},
			&domain.HelpPosting{},
			&domain.CareBooking{},
			&domain.ZipCentroid{},
			&domain.Order{},
			&domain.OrderStatusHistory{},
			&domain.Review{},
			&domain.Report{},
			&domain.AuditRecord{},
		); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// JWT
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	// Redis 缓存（未配置则直查库）
	var rc *cache.Cache
	if cfg.Redis.Addr != "" {
		rc = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}

	svc := buildServices(db, rc, jwter, cfg)

	// 公开目录浏览模块走统一注册器
	router.RegisterCatalogModule(repo.NewCatalogRepo(db))

	// 路由（用户端）
	r := router.NewAPIEngine(log, db, jwter, svc)

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("user api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("user api start FAILED", zap.Error(err))
		}
	}()
	log.Info("user api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("user api stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	if cfg.Log.File != "" {
		return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File,
			cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays, cfg.Log.Compress)
	}
	return logger.New(cfg.Log.Level, cfg.Log.JSON)
}

func buildServices(db *gorm.DB, rc *cache.Cache, jwter *auth.JWTer, cfg *config.Config) router.Services {
	users := repo.NewUserRepo(db)
	orders := repo.NewOrderRepo(db)
	reviews := repo.NewReviewRepo(db)
	reports := repo.NewReportRepo(db)
	catalog := repo.NewCatalogRepo(db)
	zips := repo.NewZipRepo(db)
	auditor := service.NewAuditor(repo.NewAuditRepo(db))

	return router.Services{
		Users:     service.NewUserService(users, jwter, auditor),
		Orders:    service.NewOrderService(orders, catalog, auditor),
		Reviews:   service.NewReviewService(reviews, orders, catalog, auditor),
		Reports:   service.NewReportService(reports, orders, auditor),
		Bookings:  service.NewBookingService(catalog, users),
		Feed:      service.NewFeedService(catalog, zips, rc, cfg.Feed),
		Analytics: service.NewAnalyticsService(users, orders, catalog, reports, rc),
		Auditor:   auditor,
	}
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
