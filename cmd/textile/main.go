package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/config"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/middleware"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/entity"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/handler"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/repository"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/service"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/sse"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/shared/textileapi"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting textile console",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	// 编辑日志库（可选）
	var repos *repository.Repositories
	var db *gorm.DB
	if cfg.Database.Host != "" {
		db, err = initDatabase(cfg.Database)
		if err != nil {
			zapLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := db.AutoMigrate(&entity.LotFieldEdit{}); err != nil {
			zapLogger.Warn("AutoMigrate lot_field_edits warning", zap.Error(err))
		}
		repos = repository.NewRepositories(db)
	} else {
		zapLogger.Info("Database not configured, edit journal disabled")
	}

	// 主数据缓存（可选）
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = initRedis(cfg.Redis)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			zapLogger.Warn("Redis unavailable, master data cache disabled", zap.Error(err))
			rdb.Close()
			rdb = nil
		}
		cancel()
	}

	// 导出归档（可选）
	var archive *service.ArchiveService
	if cfg.MinIO.Endpoint != "" {
		archive = service.NewArchiveService(cfg.MinIO, zapLogger)
		bucketCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := archive.EnsureBucket(bucketCtx); err != nil {
			zapLogger.Warn("MinIO bucket check failed, export archive disabled", zap.Error(err))
			archive = nil
		}
		cancel()
	}

	hub := sse.NewHub(zapLogger)
	client := textileapi.NewClient(cfg.Backend.BaseURL, textileapi.WithTimeout(cfg.Backend.Timeout))

	services := service.NewServices(service.Deps{
		Client:  client,
		Repos:   repos,
		Redis:   rdb,
		Archive: archive,
		Hub:     hub,
		Config:  cfg,
		Logger:  zapLogger,
	})
	handlers := handler.NewHandlers(services, repos, hub)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	services.Sessions.StartJanitor(janitorCtx, 5*time.Minute)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/sse"})))

	// 注册路由
	registerRoutes(router, handlers, cfg, db, rdb)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // SSE 长连接
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")
	stopJanitor()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config, db *gorm.DB, rdb *redis.Client) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		ctx := c.Request.Context()
		checks := gin.H{}
		ready := true
		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
				checks["database"] = "down"
				ready = false
			} else {
				checks["database"] = "ok"
			}
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				checks["redis"] = "down"
			} else {
				checks["redis"] = "ok"
			}
		}
		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": checks})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API路由；未配置JWT密钥时不做认证
	api := r.Group("/api/v1")
	authEnabled := cfg.JWT.Secret != ""
	if authEnabled {
		api.Use(middleware.JWTAuth(cfg.JWT.Secret))
	}
	api.Use(middleware.Session())

	handler.RegisterRoutes(api, h, authEnabled)
}
