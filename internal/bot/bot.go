package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/sashasgithome/finance-bot-test/internal/assistant"
)

// Bot is the Telegram surface: one verified customer session per chat.
type Bot struct {
	api       *tgbotapi.BotAPI
	assistant *assistant.Assistant
	logger    *zap.Logger

	mu       sync.RWMutex
	sessions map[int64]*assistant.Session
}

func New(token string, a *assistant.Assistant, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:       api,
		assistant: a,
		logger:    logger,
		sessions:  make(map[int64]*assistant.Session),
	}, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		go b.handleMessage(update.Message)
	}

	return nil
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	ctx := context.Background()

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}

	session := b.session(message.Chat.ID)
	if session == nil {
		b.handleLogin(ctx, message.Chat.ID, text)
		return
	}
	b.handleQuery(ctx, message.Chat.ID, session, text)
}

// handleLogin treats the text as a CIF and verifies it against the ledger.
func (b *Bot) handleLogin(ctx context.Context, chatID int64, cif string) {
	session, err := b.assistant.StartSession(ctx, cif)
	if err != nil {
		b.logger.Warn("CIF verification failed",
			zap.Error(err),
			zap.String("cif", cif),
			zap.Int64("chat_id", chatID))
		b.sendErrorMessage(chatID, fmt.Sprintf("No transactions found for CIF ID %s. Please check the identifier and try again.", cif))
		return
	}

	b.mu.Lock()
	b.sessions[chatID] = session
	b.mu.Unlock()

	b.sendMessage(chatID, welcomeText(session))
	b.sendMessage(chatID, "Your transactions have been categorized as the following:\n\n"+session.Taxonomy.Text)
}

func (b *Bot) handleQuery(ctx context.Context, chatID int64, session *assistant.Session, query string) {
	turn, err := b.assistant.Answer(ctx, session, query)
	if err != nil {
		b.logger.Error("turn failed",
			zap.Error(err),
			zap.String("cif", session.CIF),
			zap.Int64("chat_id", chatID))
		b.sendErrorMessage(chatID, "Sorry, I couldn't process that right now. Please try again.")
		return
	}

	b.sendMessage(chatID, turn.Reply)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "categories":
		b.handleCategories(message)
	case "reset":
		b.handleReset(message)
	case "logout":
		b.handleLogout(message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Welcome to your Personal Finance Assistant! 🏦
I can answer questions about your spending: totals, transaction counts, largest transactions, or listings.

Send me your Customer Information File (CIF) ID to get started.
Use /help to see all available commands.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the bot
/help - Show this help message
/categories - Show how your transactions were categorized
/reset - Clear the conversation history
/logout - End the session and verify a different CIF

Once your CIF is verified, just ask about your spending, for example:
"How much did I spend on dining last month?"`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleCategories(message *tgbotapi.Message) {
	session := b.session(message.Chat.ID)
	if session == nil {
		b.sendMessage(message.Chat.ID, "Please send your CIF ID first.")
		return
	}
	b.sendMessage(message.Chat.ID, session.Taxonomy.Text)
}

// handleReset clears the conversation history only; the customer stays
// verified and the taxonomy is kept.
func (b *Bot) handleReset(message *tgbotapi.Message) {
	session := b.session(message.Chat.ID)
	if session == nil {
		b.sendMessage(message.Chat.ID, "Nothing to reset. Please send your CIF ID first.")
		return
	}
	session.Reset()
	b.sendMessage(message.Chat.ID, "Conversation history cleared.")
}

func (b *Bot) handleLogout(message *tgbotapi.Message) {
	b.mu.Lock()
	delete(b.sessions, message.Chat.ID)
	b.mu.Unlock()
	b.sendMessage(message.Chat.ID, "Session ended. Send a CIF ID to start again.")
}

func (b *Bot) session(chatID int64) *assistant.Session {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sessions[chatID]
}

func welcomeText(session *assistant.Session) string {
	if session.Profile.Language == "id" {
		return fmt.Sprintf("Selamat datang, %s! Ada yang bisa saya bantu terkait keuangan Anda hari ini?", session.Profile.Name)
	}
	return fmt.Sprintf("Welcome, %s! What financial insights can I assist you with today?", session.Profile.Name)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
