package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	redisstorage "github.com/gofiber/storage/redis"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/giftcraft/ingest/app/controllers"
	"github.com/giftcraft/ingest/app/models"
	"github.com/giftcraft/ingest/internal/pkg/billing"
	"github.com/giftcraft/ingest/internal/pkg/cache"
	"github.com/giftcraft/ingest/internal/pkg/config"
	"github.com/giftcraft/ingest/internal/pkg/database"
	"github.com/giftcraft/ingest/internal/pkg/env"
	"github.com/giftcraft/ingest/internal/pkg/logistics"
	"github.com/giftcraft/ingest/internal/pkg/metrics/counter"
	"github.com/giftcraft/ingest/internal/pkg/router"
	"github.com/giftcraft/ingest/internal/pkg/webhook"
	"github.com/giftcraft/ingest/internal/pkg/webhooklog"
)

func main() {
	if !env.SetupEnvFile() {
		log.Info("No .env file found, using process environment")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if env.IsDev() {
		log.SetLevel(log.LevelDebug)
	}

	db, err := database.SetupDatabase(cfg.DB)
	if err != nil {
		log.Fatal(err)
	}
	rdb := cache.SetupCache(cfg.Cache)
	defer rdb.Close()

	app := NewApplication(cfg, db, rdb)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down")
		if err := app.ShutdownWithTimeout(cfg.WebhookTimeout + 5*time.Second); err != nil {
			log.Errorf("Shutdown failed: %v", err)
		}
	}()

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}

// NewApplication builds the fiber app with every dependency injected.
func NewApplication(cfg *config.Config, db *gorm.DB, rdb *goredis.Client) *fiber.App {
	counters := counter.New(rdb, models.WebhookProviderRazorpay, models.WebhookProviderShiprocket)
	engine := webhook.NewEngine(counters,
		billing.NewServiceFromDB(db, cfg.DefaultCurrency),
		logistics.NewServiceFromDB(db),
	)
	logs := webhooklog.NewStore(db)

	app := fiber.New(fiber.Config{
		AppName:      "giftcraft-ingest",
		BodyLimit:    1 << 20,
		ReadTimeout:  cfg.WebhookTimeout,
		WriteTimeout: cfg.WebhookTimeout,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// SWAGGER / OPENAPI
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/",
		FilePath: env.GetEnv("OPENAPI_FILE", "./docs/openapi.yml"),
		Path:     "api",
	}))

	router.InstallRouter(app, router.Deps{
		Config:         cfg,
		Webhooks:       controllers.NewWebhookController(cfg, engine, logs),
		Ops:            controllers.NewOpsController(logs, counters, pingDB(db)),
		LimiterStorage: limiterStorage(cfg, rdb),
	})
	return app
}

func pingDB(db *gorm.DB) controllers.Pinger {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// limiterStorage returns Redis storage on the DB after the cache DB, or nil
// (in-memory limiter) when ops routes are off or Redis is unreachable.
func limiterStorage(cfg *config.Config, rdb *goredis.Client) fiber.Storage {
	if !cfg.Ops.Enabled() {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warnf("[Ops] Redis unavailable, rate limiter uses memory: %v", err)
		return nil
	}
	port, _ := strconv.Atoi(cfg.Cache.Port)
	return redisstorage.New(redisstorage.Config{
		Host:     cfg.Cache.Host,
		Port:     port,
		Password: cfg.Cache.Password,
		Database: (cfg.Cache.DB + 1) % 16,
		Reset:    false,
	})
}
