package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sashasgithome/finance-bot-test/internal/assistant"
	"github.com/sashasgithome/finance-bot-test/internal/ledger"
	"github.com/sashasgithome/finance-bot-test/internal/llm"
	"github.com/sashasgithome/finance-bot-test/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	debug := flag.Bool("debug", false, "show the filter spec and grounding data for each answer")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", *configPath))
	}

	source := ledger.NewCSVSource(cfg.Data.TransactionsPath, cfg.Data.ProfilesPath, logger)
	defer source.Close()

	client := llm.NewOpenAIClient(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Temperature,
		time.Duration(cfg.OpenAI.TimeoutSeconds)*time.Second,
		logger,
	)

	ctx := context.Background()
	a, err := assistant.New(ctx, source, client, logger)
	if err != nil {
		logger.Fatal("Failed to initialize assistant", zap.Error(err))
	}

	if err := run(ctx, a, *debug); err != nil {
		logger.Fatal("Assistant error", zap.Error(err))
	}
}

func run(ctx context.Context, a *assistant.Assistant, debug bool) error {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Print("Enter Customer Information File (CIF) ID: ")
	if !scanner.Scan() {
		return scanner.Err()
	}
	cif := strings.TrimSpace(scanner.Text())

	session, err := a.StartSession(ctx, cif)
	if err != nil {
		return err
	}

	if session.Profile.Language == "id" {
		fmt.Printf("\nSelamat datang, %s! Ada yang bisa saya bantu terkait keuangan Anda hari ini?\n", session.Profile.Name)
	} else {
		fmt.Printf("\nWelcome, %s! What financial insights can I assist you with today?\n", session.Profile.Name)
	}
	fmt.Printf("\nYour transactions have been categorized as the following:\n%s\n", session.Taxonomy.Text)
	fmt.Println("\nAsk about your spending, or use /reset, /debug, /exit.")

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/exit":
			return nil
		case line == "/reset":
			session.Reset()
			fmt.Println("Conversation history cleared.")
			continue
		case line == "/debug":
			debug = !debug
			fmt.Printf("Debug view: %v\n", debug)
			continue
		}

		turn, err := a.Answer(ctx, session, line)
		if err != nil {
			fmt.Printf("Sorry, I couldn't process that right now: %v\n", err)
			continue
		}

		fmt.Println(turn.Reply)

		if debug && !turn.Rejected {
			spec, _ := json.MarshalIndent(turn.Spec, "", "  ")
			fmt.Printf("\n[debug] filter spec:\n%s\n", spec)
			fmt.Printf("[debug] grounding: %d transactions totaling Rp %s, %d sampled\n",
				turn.Result.Count, assistant.FormatAmount(turn.Result.Total), len(turn.Result.Sample))
		}
	}
}
