package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"babyday-backend/config"
	"babyday-backend/internal/api"
	"babyday-backend/internal/db"
	"babyday-backend/internal/kv"
	"babyday-backend/internal/logging"
	"babyday-backend/internal/meta"
	"babyday-backend/internal/notification"
	"babyday-backend/internal/schedule"
	"babyday-backend/internal/store"
	"babyday-backend/internal/summary"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("configuration loaded", zap.String("path", configPath))

	loc, err := cfg.Schedule.Location()
	if err != nil {
		logger.Fatal("invalid schedule timezone", zap.String("timezone", cfg.Schedule.Timezone), zap.Error(err))
	}

	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	kvs, closeKV, err := openKV(cfg, gormDB)
	if err != nil {
		logger.Fatal("failed to initialize key-value store", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	defer closeKV()
	logger.Info("key-value store ready", zap.String("backend", cfg.Storage.Backend))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	schedules := store.NewScheduleStore(kvs, cfg.Schedule.BackupLimit, logger)
	templates := schedule.NewTemplateService(store.NewTemplateStore(kvs), cfg.Schedule.DefaultTemplateID, logger)
	engine := schedule.NewEngine(templates, schedule.NewGenerator(), logger)
	metaSvc := meta.NewService(store.NewMetaStore(kvs, logger), logger)

	var webpushOptions *webpush.Options
	var notifier schedule.ReadyNotifier
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions, logger)
		pool.Start(ctx)
		notifier = pool
	} else {
		logger.Warn("VAPID keys not configured, schedule notifications disabled")
	}

	regenerator := schedule.NewRegenerator(engine, schedules, notifier, loc, logger)
	go regenerator.Run(ctx, cfg.Schedule.WatchBabies)

	handler := api.NewHandler(api.Deps{
		Schedules:   schedule.NewService(schedules, engine, metaSvc, logger),
		Templates:   templates,
		Regenerator: regenerator,
		Meta:        metaSvc,
		History:     summary.NewHistory(schedules, loc, logger),
		Location:    loc,
		DB:          gormDB,
		WebPush:     webpushOptions,
		Logger:      logger,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(handler, cfg.Server),
	}

	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server stopped unexpectedly", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutdown signal received, stopping services")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
}

// openKV selects the key-value backend holding schedules, templates and meta.
func openKV(cfg *config.Config, gormDB *gorm.DB) (kv.Store, func(), error) {
	switch cfg.Storage.Backend {
	case "gorm":
		return kv.NewGormStore(gormDB), func() {}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		return kv.NewRedisStore(client), func() { client.Close() }, nil
	case "memory":
		return kv.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
