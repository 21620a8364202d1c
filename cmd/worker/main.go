package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"mentorbot/internal/config"
	"mentorbot/internal/database"
	"mentorbot/internal/logging"
	"mentorbot/internal/services"
	"mentorbot/internal/worker"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	logging.Init()

	log.Println("🚀 Starting Mentor Progress Worker...")

	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	cfg := config.Load()

	if cfg.RedisURL == "" {
		log.Fatal("❌ REDIS_URL is required for the standalone worker (the server runs an in-process worker without Redis)")
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	redisCache, err := services.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	bus := services.NewRedisEventBus(redisCache)
	progressService := services.NewProgressService(redisCache, db)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("\n🛑 Shutting down worker...")
		cancel()
	}()

	if err := worker.New(bus, progressService).Run(ctx); err != nil {
		log.Fatalf("❌ Worker error: %v", err)
	}

	log.Println("✅ Worker stopped")
}
