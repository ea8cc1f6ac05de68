package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"

	"github.com/camden-git/electoralbackend/config"
	"github.com/camden-git/electoralbackend/database"
	"github.com/camden-git/electoralbackend/handlers"
	"github.com/camden-git/electoralbackend/media"
	"github.com/camden-git/electoralbackend/realtime"
)

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Printf("Warning: invalid LOG_LEVEL '%s', using info", cfg.LogLevel)
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

func gormLogLevel(cfg config.Config) gormlogger.LogLevel {
	if cfg.LogLevel == "debug" {
		return gormlogger.Info
	}
	return gormlogger.Warn
}

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if cfg.DBDriver == config.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
			logger.Fatal("failed to create database directory", zap.Error(err))
		}
	}

	db, err := database.InitGormDB(cfg.DBDriver, cfg.DSN(), gormLogLevel(cfg))
	if err != nil {
		logger.Fatal("failed to initialize database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to get sql.DB from gorm", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := database.AutoMigrateModels(db); err != nil {
		logger.Fatal("failed to migrate schema", zap.Error(err))
	}
	if err := database.SyncDefaultRoles(db); err != nil {
		logger.Fatal("failed to sync default roles", zap.Error(err))
	}
	if err := database.SeedElectionTypes(db); err != nil {
		logger.Fatal("failed to seed election types", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := handlers.BootstrapAdmin(ctx, db, cfg.AdminUsername, cfg.AdminPassword, logger); err != nil {
		logger.Fatal("failed to create bootstrap administrator", zap.Error(err))
	}

	tokens, generated, err := handlers.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiration)
	if err != nil {
		logger.Fatal("failed to initialize token manager", zap.Error(err))
	}
	if generated {
		logger.Warn("JWT_SECRET not set, using a random signing key; tokens will not survive a restart")
	}

	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, map[media.AssetType]string{
		media.AssetTypeEvidence:  cfg.EvidenceSubDir,
		media.AssetTypeThumbnail: cfg.ThumbnailsSubDir,
	}, logger)
	if err != nil {
		logger.Fatal("failed to initialize media store", zap.Error(err))
	}
	evidence := media.NewProcessor(mediaStore, cfg.ThumbnailMaxSize, logger)

	hub := realtime.NewHub(cfg.CORSAllowedOrigins, logger)
	go hub.Run(ctx)

	router, err := handlers.NewRouter(handlers.RouterDeps{
		Config:   cfg,
		DB:       db,
		Tokens:   tokens,
		Evidence: evidence,
		Hub:      hub,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("failed to build router", zap.Error(err))
	}

	logger.Info("configuration loaded",
		zap.String("env", cfg.AppEnv),
		zap.String("driver", cfg.DBDriver),
		zap.String("evidence_path", cfg.EvidencePath),
		zap.String("thumbnails_path", cfg.ThumbnailsPath),
		zap.Int("thumbnail_max_size", cfg.ThumbnailMaxSize),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
