package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"agar-mic/config"
	telegram "agar-mic/internal/api"
	"agar-mic/internal/container"
	"agar-mic/internal/infrastructure/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	pipeline, err := config.LoadPipeline(cfg.PipelinePath)
	if err != nil {
		log.Fatalf("Failed to load pipeline: %v", err)
	}

	// Создаём хранилище сессий
	sessionRepo := storage.NewMemorySessionRepository()

	// Собираем сервисы приложения
	appContainer, err := container.New(cfg, pipeline, sessionRepo)
	if err != nil {
		log.Fatalf("Failed to build services: %v", err)
	}
	defer appContainer.Close()

	// Создаём бота
	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer.SessionService, appContainer.SusceptibilityService)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("Bot is running...")
	if err := bot.Run(ctx); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
	log.Println("Bot stopped")
}
