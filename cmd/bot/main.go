package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/avolkov/family-costs-bot/internal/bot"
	"github.com/avolkov/family-costs-bot/internal/chatstate"
	"github.com/avolkov/family-costs-bot/internal/config"
	"github.com/avolkov/family-costs-bot/internal/logger"
	"github.com/avolkov/family-costs-bot/internal/repository"
	"github.com/avolkov/family-costs-bot/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %s", err.Error())
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogToFile); err != nil {
		log.Fatalf("failed to init logger: %s", err.Error())
	}
	defer logger.Close()

	db, err := repository.NewSQLiteDB(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open database", "path", cfg.DatabasePath, "error", err)
	}
	defer db.Close()

	if err := repository.InitDB(db); err != nil {
		logger.Fatal("Failed to init database schema", "error", err)
	}

	repo := repository.NewRepository(db)
	state := chatstate.NewStore()
	svc := service.NewCostService(repo, state, cfg.AtomicWrites)

	botInstance, err := bot.NewBot(cfg, svc, repo, state)
	if err != nil {
		logger.Fatal("Failed to create bot", "error", err)
	}

	go botInstance.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down")
	botInstance.Stop()
}
