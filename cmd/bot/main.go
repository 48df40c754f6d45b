package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sashasgithome/finance-bot-test/internal/assistant"
	"github.com/sashasgithome/finance-bot-test/internal/bot"
	"github.com/sashasgithome/finance-bot-test/internal/ledger"
	"github.com/sashasgithome/finance-bot-test/internal/llm"
	"github.com/sashasgithome/finance-bot-test/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Secrets may come from a local .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize the ledger source
	source, err := newSource(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize ledger source", zap.Error(err))
	}
	defer source.Close()

	// Initialize the language-model collaborator
	client := llm.NewOpenAIClient(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Temperature,
		time.Duration(cfg.OpenAI.TimeoutSeconds)*time.Second,
		logger,
	)

	// Load the ledger and wire the query pipeline
	a, err := assistant.New(context.Background(), source, client, logger)
	if err != nil {
		logger.Fatal("Failed to initialize assistant", zap.Error(err))
	}

	// Initialize bot
	b, err := bot.New(cfg.Telegram.Token, a, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	// Start the bot
	if err := b.Start(); err != nil {
		logger.Fatal("Bot error", zap.Error(err))
	}
}

func newSource(cfg *config.Config, logger *zap.Logger) (ledger.Source, error) {
	if cfg.Data.Backend == "postgres" {
		logger.Info("Using PostgreSQL ledger source")
		return ledger.NewPostgresSource(ledger.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		}, logger)
	}
	logger.Info("Using CSV ledger source",
		zap.String("transactions", cfg.Data.TransactionsPath),
		zap.String("profiles", cfg.Data.ProfilesPath))
	return ledger.NewCSVSource(cfg.Data.TransactionsPath, cfg.Data.ProfilesPath, logger), nil
}
