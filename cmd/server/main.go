package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autostreamml/internal/adapters/primary/http/handlers"
	"autostreamml/internal/adapters/primary/http/middleware"
	"autostreamml/internal/adapters/primary/http/web"
	"autostreamml/internal/adapters/secondary/automl"
	"autostreamml/internal/adapters/secondary/cache"
	"autostreamml/internal/adapters/secondary/filesystem"
	"autostreamml/internal/adapters/secondary/postgres"
	"autostreamml/internal/adapters/secondary/profiler"
	"autostreamml/internal/adapters/secondary/remotetrainer"
	"autostreamml/internal/adapters/secondary/s3store"
	"autostreamml/internal/config"
	output "autostreamml/internal/core/ports/output"
	"autostreamml/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	loadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	ctx := context.Background()

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Secondary Adapters (Output Ports - Artifact Slots)
	var (
		slots output.SlotStore
		pool  *pgxpool.Pool
	)
	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		pool, err = newPool(ctx, &cfg.Database)
		if err != nil {
			log.Fatalf("connect database: %v", err)
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		slots = postgres.NewSlotStore(pool)
		log.Info("database connection established")

	case config.StorageS3:
		s3cfg := cfg.Storage.S3
		client, err := s3store.NewClient(ctx, s3store.Config{
			EndpointURL:     s3cfg.Endpoint,
			Region:          s3cfg.Region,
			Bucket:          s3cfg.Bucket,
			Prefix:          s3cfg.Prefix,
			AccessKeyID:     s3cfg.AccessKeyID,
			SecretAccessKey: s3cfg.SecretAccessKey,
		})
		if err != nil {
			log.Fatalf("create s3 client: %v", err)
		}
		if err := s3store.EnsureBucket(ctx, client, s3cfg.Bucket); err != nil {
			log.Fatalf("ensure bucket: %v", err)
		}
		slots = s3store.NewSlotStore(client, s3cfg.Bucket, s3cfg.Prefix)
		log.Infof("using s3 bucket %s", s3cfg.Bucket)

	default:
		slots, err = filesystem.NewSlotStore(cfg.Storage.Dir)
		if err != nil {
			log.Fatalf("open storage dir: %v", err)
		}
		log.Infof("using storage dir %s", cfg.Storage.Dir)
	}

	// Profiler with LRU cache keyed by dataset fingerprint
	reportProfiler, err := cache.NewProfileCache(profiler.New(), cfg.Profile.CacheSize)
	if err != nil {
		log.Fatalf("create profile cache: %v", err)
	}

	// Trainer (builtin AutoML engine or remote service)
	var trainer output.Trainer
	if cfg.Trainer.Backend == config.TrainerRemote {
		trainer = remotetrainer.NewRemoteTrainer(&cfg.Trainer)
		if checker, ok := trainer.(interface{ IsAvailable(context.Context) bool }); ok && !checker.IsAvailable(ctx) {
			log.Warnf("AutoML service %s is not reachable yet", cfg.Trainer.RemoteURL)
		}
		log.Infof("remote trainer at %s", cfg.Trainer.RemoteURL)
	} else {
		engine, err := automl.NewEngine(automl.Options{
			Folds:     cfg.Training.Folds,
			TrainSize: cfg.Training.TrainSize,
			SessionID: cfg.Training.SessionID,
			Sort:      cfg.Training.Sort,
			Include:   cfg.Training.Include,
		})
		if err != nil {
			log.Fatalf("create automl engine: %v", err)
		}
		trainer = engine
		log.Info("builtin AutoML engine initialized")
	}

	// Core Services (Application Layer)
	store := services.NewArtifactStore(slots)
	uploadSvc := services.NewUploadService(store, cfg.Upload.MaxBytes)
	profilingSvc := services.NewProfilingService(store, reportProfiler, cfg.Profile.Title)
	modellingSvc := services.NewModellingService(store, trainer)
	downloadSvc := services.NewDownloadService(store)

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(cfg.App.Title, uploadSvc, profilingSvc, modellingSvc, downloadSvc)

	tmpl, err := web.Templates()
	if err != nil {
		log.Fatalf("parse templates: %v", err)
	}

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())
	router.SetHTMLTemplate(tmpl)
	router.MaxMultipartMemory = 32 << 20

	h.RegisterPages(router)
	api := router.Group("/api/v1")
	h.RegisterRoutes(api)

	router.GET("/healthz", func(c *gin.Context) {
		if pool != nil {
			if err := pool.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server. No write timeout: a modelling request runs as long as training does.
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func loadEnvFile() {
	var envPath string
	flag.StringVar(&envPath, "env", "", "path to load env from")
	flag.Parse()

	if envPath == "" {
		return
	}
	if err := godotenv.Load(envPath); err != nil {
		log.Fatalf("error loading env file '%s': %v", envPath, err)
	}
	log.Infof("loaded env from file %s", envPath)
}

func newPool(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if cfg.Logger.File != "" {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.Logger.File,
			MaxSize:    cfg.Logger.MaxSizeMB,
			MaxBackups: cfg.Logger.MaxBackups,
			MaxAge:     cfg.Logger.MaxAgeDays,
			Compress:   true,
		}))
	}
}
