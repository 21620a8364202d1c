package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"mentorbot/internal/config"
	"mentorbot/internal/database"
	"mentorbot/internal/handlers"
	"mentorbot/internal/jobs"
	"mentorbot/internal/logging"
	"mentorbot/internal/services"
	"mentorbot/internal/worker"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting Mentor Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, Model: %s)", cfg.Port, cfg.ModelName)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Fast cache + event bus: Redis in production, in-process fallbacks
	// when REDIS_URL is empty or Redis is unreachable.
	var cache services.Cache
	var bus services.EventBus
	var redisCache *services.RedisCache

	if cfg.RedisURL != "" {
		redisCache, err = services.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (falling back to in-process cache)", err)
		}
	}
	if redisCache != nil {
		cache = redisCache
		bus = services.NewRedisEventBus(redisCache)
		defer redisCache.Close()
	} else {
		cache = services.NewMemoryCache(cfg.HistoryTTL)
		bus = services.NewLocalEventBus(64)
		log.Println("⚠️ Running without Redis: in-process cache and event bus (single instance only)")
	}

	// System prompt with hot reload
	prompts := services.NewPromptService(cfg.SystemPromptPath)
	go prompts.Watch()

	historyService := services.NewHistoryService(cache, db, cfg.HistoryTTL)
	progressService := services.NewProgressService(cache, db)
	chatService := services.NewChatService(historyService, prompts, bus,
		cfg.OllamaURL, cfg.ModelName, cfg.MaxMessageLen)

	// With the local bus the progress worker must run in-process or
	// published events would be lost. With Redis, cmd/worker consumes.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	if redisCache == nil {
		w := worker.New(bus, progressService)
		go func() {
			if err := w.Run(workerCtx); err != nil {
				log.Printf("❌ In-process worker stopped: %v", err)
			}
		}()
	}

	// Daily review reminders
	jobScheduler := jobs.NewJobScheduler()
	jobScheduler.Register("review_reminder", jobs.NewReviewReminderJob(db, bus, cfg.ReviewReminderHour))
	jobScheduler.Start()

	app := fiber.New(fiber.Config{
		AppName:               "mentorbot",
		DisableStartupMessage: false,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	prometheus := fiberprometheus.New("mentorbot")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	webhookHandler := handlers.NewWebhookHandler(chatService)
	progressHandler := handlers.NewProgressHandler(progressService)
	healthHandler := handlers.NewHealthHandler(db, redisCache)

	app.Post("/whatsapp", webhookHandler.HandleWhatsApp)
	app.Get("/api/progress/:userID/:concept", progressHandler.Get)
	app.Get("/health", healthHandler.Handle)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		jobScheduler.Stop()
		stopWorker()

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server error: %v", err)
	}

	log.Println("✅ Server stopped")
}
