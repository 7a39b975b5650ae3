package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"compsphere_backend/internals/configs"
	database "compsphere_backend/internals/databases"
	verifCtrl "compsphere_backend/internals/features/verifications/controller"
	"compsphere_backend/internals/features/verifications/links"
	verifService "compsphere_backend/internals/features/verifications/service"
	helper "compsphere_backend/internals/helpers"
	"compsphere_backend/internals/metrics"
	middlewares "compsphere_backend/internals/middlewares"
	routes "compsphere_backend/internals/route"
	"compsphere_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ErrorHandler:            helper.FromFiberError,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"}, // sesuaikan dengan CIDR Cloudflare jika perlu
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching

	// 🔎 Request-ID + timing (observability ringan)
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		// HTTP timeout guard (selaras dengan statement_timeout di DB)
		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
		return err
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + warm-up
	database.ConnectDB()
	database.TunePool()
	database.WarmUpQueries()

	if configs.AutoMigrate {
		if err := database.Migrate(database.DB); err != nil {
			log.Fatalf("❌ migrate failed: %v", err)
		}
		log.Println("✅ Migration done.")
	}
	if configs.RunSeeds {
		seeds.RunAllSeeds(database.DB)
	}

	// 📈 metrics registry (dipakai /metrics)
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	verifMetrics := metrics.NewVerificationMetrics(registry)

	verif := verifCtrl.NewVerificationController(
		database.DB,
		verifMetrics,
		links.NewBuilder(configs.AppBaseURL, configs.AdminPrefix),
	)

	// ⏱ scheduler setelah DB siap
	rootCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	expiry := &verifService.ExpiryScheduler{
		Sweepers: []verifService.Sweeper{verif.Teams, verif.Regs},
		TTL:      configs.VerificationTTL,
		Interval: configs.VerificationSweepInterval,
		Batch:    configs.VerificationSweepBatch,
	}
	expiry.Start(rootCtx)

	// ✅ Routes
	routes.SetupRoutes(app, database.DB, verif, registry)

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")

	// Start server non-blocking
	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown + tutup pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	stopScheduler()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
