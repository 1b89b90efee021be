package bot

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"unlockpro/internal/unlock"
)

type Options struct {
	AdminIDs   []int64
	SupportURL string
	SiteName   string
	// PollTimeout is the long-poll wait of getUpdates.
	PollTimeout time.Duration
}

type Bot struct {
	bot     BotAPI
	logger  *zap.Logger
	state   StateStore
	unlock  UnlockService
	forms   FormService
	leads   LeadSource
	opts    Options
	notices chan unlock.Snapshot

	mu       sync.Mutex
	handlers map[string]func(context.Context, int64, string)
}

// NewBotAPI authorizes against the Bot API. An empty endpoint uses the
// public one.
func NewBotAPI(token, endpoint string, timeout time.Duration, debug bool, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	botAPI, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	botAPI.Debug = debug

	logger.Info("Bot authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("id", botAPI.Self.ID))

	return botAPI, nil
}

// New wires the bot and subscribes it to unlock flow stage changes. leads
// may be nil.
func New(
	api BotAPI,
	state StateStore,
	unlockService UnlockService,
	forms FormService,
	leads LeadSource,
	opts Options,
	logger *zap.Logger,
) *Bot {
	b := &Bot{
		bot:     api,
		logger:  logger,
		state:   state,
		unlock:  unlockService,
		forms:   forms,
		leads:   leads,
		opts:    opts,
		notices: make(chan unlock.Snapshot, noticeQueueSize),
	}

	b.registerHandlers()
	unlockService.AddListener(b.enqueueNotice)
	return b
}

func (b *Bot) registerHandlers() {
	b.handlers = map[string]func(context.Context, int64, string){
		StepUnlockIMEI:    b.handleUnlockIMEI,
		StepUnlockEmail:   b.handleUnlockEmail,
		StepIMEICheckIMEI: b.handleIMEICheckIMEI,
		StepIMEICheckMail: b.handleIMEICheckEmail,
		StepReviewOrder:   b.handleReviewOrder,
		StepReviewText:    b.handleReviewText,
	}
}

// Start runs the update loop until ctx is done. Updates and flow notices
// are handled one at a time.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	if b.opts.PollTimeout > 0 {
		u.Timeout = int(b.opts.PollTimeout / time.Second)
	}
	updates := b.bot.GetUpdatesChan(u)
	defer b.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down bot")
			return nil

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)

		case snap := <-b.notices:
			b.mu.Lock()
			b.deliverNotice(ctx, snap)
			b.mu.Unlock()
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case update.Message != nil:
		b.processMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.processCallback(ctx, update.CallbackQuery)
	}
}

// enqueueNotice runs on the flow goroutine, so it only hands the snapshot
// over to the update loop.
func (b *Bot) enqueueNotice(s unlock.Snapshot) {
	if s.Channel != unlock.ChannelTelegram || s.ChatID == 0 {
		return
	}
	select {
	case b.notices <- s:
	default:
		b.logger.Warn("Dropping unlock notice, queue full",
			zap.String("flow_id", s.ID),
			zap.String("stage", string(s.Stage)))
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	b.logger.Debug("Processing message",
		zap.Int64("chat_id", chatID),
		zap.String("text", msg.Text))

	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, msg.Command(), msg.CommandArguments())
		return
	}

	if b.handleMenuButton(ctx, chatID, msg.Text) {
		return
	}

	state, err := b.state.GetUserDialogState(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Something went wrong, please try again.")
		return
	}

	if handler, exists := b.handlers[state.Step]; exists {
		handler(ctx, chatID, msg.Text)
	} else {
		b.handleDefault(ctx, chatID)
	}
}

func (b *Bot) processCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	b.logger.Debug("Processing callback",
		zap.Int64("chat_id", chatID),
		zap.String("data", callback.Data))

	b.answerCallback(callback.ID, "")
	b.handleCallback(ctx, chatID, callback.Message.MessageID, callback.Data)
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) {
	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Error(err))
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	b.sendMessage(msg)
}

func (b *Bot) sendError(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, "❌ "+text))
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}

func (b *Bot) isAdmin(chatID int64) bool {
	for _, id := range b.opts.AdminIDs {
		if id == chatID {
			return true
		}
	}
	return false
}
