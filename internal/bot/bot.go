package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/estudos/internal/excel"
	"github.com/example/estudos/internal/service"
	"github.com/example/estudos/pkg/models"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// Conversation steps waiting for a file
const (
	stateImportar  = "importar"
	stateSolicitar = "solicitar"
)

// UserState represents the current state of a user in conversation with the bot
type UserState struct {
	Action    string
	Data      map[string]string
	Timestamp time.Time
}

// Bot represents the Telegram bot application
type Bot struct {
	api        *tgbotapi.BotAPI
	svc        *service.Service
	importer   *excel.Importer
	config     *BotConfig
	httpClient *http.Client

	adminUserIDs map[int64]bool

	mu         sync.Mutex
	userStates map[int64]UserState
}

// New connects to Telegram and creates a bot instance
func New(cfg *BotConfig, svc *service.Service, importer *excel.Importer) (*Bot, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram token is not set")
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	log.Printf("Authorized on account %s", api.Self.UserName)

	return newBot(api, cfg, svc, importer), nil
}

func newBot(api *tgbotapi.BotAPI, cfg *BotConfig, svc *service.Service, importer *excel.Importer) *Bot {
	b := &Bot{
		api:          api,
		svc:          svc,
		importer:     importer,
		config:       cfg,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		adminUserIDs: make(map[int64]bool),
		userStates:   make(map[int64]UserState),
	}
	for _, id := range cfg.AdminIDs {
		b.adminUserIDs[id] = true
	}
	return b
}

// Start receives updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			log.Println("Bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// SendReminders implements the scheduler.Notifier interface
func (b *Bot) SendReminders(user models.User, count int) error {
	text := fmt.Sprintf("📚 Você tem %s para hoje! Use /revisoes para ver e marcar as concluídas.", pluralRevisoes(count))
	msg := tgbotapi.NewMessage(user.TelegramID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "🧠 Ver revisões", CallbackData: "revisoes"}},
	})

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder to %d: %w", user.TelegramID, err)
	}
	return nil
}

// isAdmin checks if a user is an admin
func (b *Bot) isAdmin(userID int64) bool {
	return b.adminUserIDs[userID]
}

func (b *Bot) setState(userID int64, action string, data map[string]string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.userStates[userID] = UserState{Action: action, Data: data, Timestamp: time.Now()}
}

// popState returns and clears a user's pending state. Expired states are dropped.
func (b *Bot) popState(userID int64) (UserState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, ok := b.userStates[userID]
	if !ok {
		return UserState{}, false
	}
	delete(b.userStates, userID)
	if b.config.StateTTL > 0 && time.Since(state.Timestamp) > b.config.StateTTL {
		return UserState{}, false
	}
	return state, true
}

func (b *Bot) clearState(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.userStates[userID]
	delete(b.userStates, userID)
	return ok
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic handling update %d: %v", update.UpdateID, r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		if err := b.HandleCallback(ctx, update.CallbackQuery); err != nil {
			log.Printf("Error handling callback %q: %v", update.CallbackQuery.Data, err)
			if update.CallbackQuery.Message != nil {
				b.reportError(update.CallbackQuery.Message.Chat.ID, err)
			}
		}
	case update.Message == nil || update.Message.From == nil:
		return
	case update.Message.IsCommand():
		if err := b.HandleCommand(ctx, update.Message); err != nil {
			log.Printf("Error handling /%s from %d: %v", update.Message.Command(), update.Message.From.ID, err)
			b.reportError(update.Message.Chat.ID, err)
		}
	default:
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("Error handling message from %d: %v", update.Message.From.ID, err)
			b.reportError(update.Message.Chat.ID, err)
		}
	}
}

// handleMessage continues a conversation waiting for a file or text reply
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	state, ok := b.popState(message.From.ID)
	if !ok {
		return b.showMainMenu(message.Chat.ID, "Não entendi. Escolha uma opção:")
	}

	switch state.Action {
	case stateImportar:
		if message.Document == nil {
			b.setState(message.From.ID, state.Action, state.Data)
			return b.sendText(message.Chat.ID, "📎 Envie a planilha como arquivo (.xlsx ou .csv) ou use /cancelar.")
		}
		return b.processImport(ctx, message, state.Data["edital"])
	case stateSolicitar:
		return b.processSolicitacao(ctx, message, state.Data["nome"], state.Data["orgao"])
	default:
		return b.showMainMenu(message.Chat.ID, "Não entendi. Escolha uma opção:")
	}
}

// downloadDocument fetches a file sent in chat, refusing anything above limit bytes
func (b *Bot) downloadDocument(ctx context.Context, doc *tgbotapi.Document, limit int) ([]byte, error) {
	if limit > 0 && doc.FileSize > limit {
		return nil, fmt.Errorf("file %s is too large: %d bytes", doc.FileName, doc.FileSize)
	}

	url, err := b.api.GetFileDirectURL(doc.FileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if limit > 0 {
		reader = io.LimitReader(resp.Body, int64(limit)+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if limit > 0 && len(data) > limit {
		return nil, fmt.Errorf("file %s is too large", doc.FileName)
	}
	return data, nil
}

// sendMessage sends a message and logs any delivery error
func (b *Bot) sendMessage(msg tgbotapi.Chattable) error {
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// editMessage replaces the text and keyboard of a message the bot sent
func (b *Bot) editMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ReplyMarkup = keyboard
	return b.sendMessage(edit)
}

func (b *Bot) sendLink(chatID int64, text, label, url string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(label, url)),
	)
	return b.sendMessage(msg)
}

func (b *Bot) reportError(chatID int64, err error) {
	if sendErr := b.sendText(chatID, userMessage(err)); sendErr != nil {
		log.Printf("Error reporting failure to chat %d: %v", chatID, sendErr)
	}
}

func (b *Bot) showMainMenu(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

// MainMenuButtons returns the buttons for the main menu
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "🔄 Meu ciclo", CallbackData: "ciclo"},
			{Text: "🧠 Revisões", CallbackData: "revisoes"},
		},
		{
			{Text: "🃏 Flashcards", CallbackData: "flashcards"},
			{Text: "📊 Estatísticas", CallbackData: "stats"},
		},
		{
			{Text: "📚 Editais", CallbackData: "editais"},
		},
	}
}
