package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"unlockpro/internal/content"
	"unlockpro/internal/pricing"
	redisstore "unlockpro/internal/storage/redis"
	"unlockpro/internal/unlock"
)

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command, args string) {
	switch command {
	case "start":
		b.handleStart(ctx, chatID)
	case "help":
		b.handleHelp(chatID)
	case "price":
		b.handlePrice(chatID, args)
	case "unlock":
		b.beginUnlock(ctx, chatID)
	case "imei":
		b.beginIMEICheck(ctx, chatID)
	case "faq":
		b.handleFAQ(chatID)
	case "review":
		b.beginReview(ctx, chatID)
	case "cancel":
		b.handleCancel(ctx, chatID)
	case "export", "stats":
		b.handleAdminCommand(ctx, chatID, command)
	default:
		b.handleUnknownCommand(chatID)
	}
}

func (b *Bot) handleMenuButton(ctx context.Context, chatID int64, text string) bool {
	switch text {
	case btnUnlock:
		b.beginUnlock(ctx, chatID)
	case btnIMEICheck:
		b.beginIMEICheck(ctx, chatID)
	case btnPrices:
		b.handlePrice(chatID, "")
	case btnFAQ:
		b.handleFAQ(chatID)
	case btnReview:
		b.beginReview(ctx, chatID)
	default:
		return false
	}
	return true
}

func (b *Bot) handleDefault(_ context.Context, chatID int64) {
	b.sendError(chatID, "I did not get that. Please use the menu below.")
}

func (b *Bot) handleUnknownCommand(chatID int64) {
	b.sendError(chatID, "Unknown command. Use /start to see what I can do.")
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	if err := b.state.DropUserDialogState(ctx, chatID); err != nil {
		b.logger.Error("Failed to reset dialog state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"Welcome to <b>%s</b> 👋\n\n"+
			"We unlock iCloud, carrier, network and passcode locks on every iPhone "+
			"from the 5s to the 16 Pro Max.\n\n"+
			"Choose an option below.",
		html.EscapeString(b.opts.SiteName)))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handleHelp(chatID int64) {
	b.sendMessage(tgbotapi.NewMessage(chatID, `Available commands:
/start - main menu
/unlock - start an unlock request
/price <model> <service> - look up a price, e.g. /price iphone-14 icloud
/imei - free IMEI status check
/faq - frequently asked questions
/review - leave a review
/cancel - cancel the current action`))
}

func (b *Bot) handlePrice(chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		b.sendText(chatID, formatPriceList())
		return
	}

	model := fields[0]
	service := string(pricing.ServiceICloud)
	if len(fields) > 1 {
		service = fields[1]
	}
	if !pricing.IsKnownModel(model) {
		b.sendText(chatID, fmt.Sprintf(
			"Unknown model <code>%s</code>. Use ids like <code>iphone-13-pro</code>; unlisted models cost $%d.",
			html.EscapeString(model), pricing.DefaultPrice))
		return
	}

	q := pricing.NewQuote(model, service)
	b.sendText(chatID, fmt.Sprintf("💵 %s, %s: <b>$%d</b>",
		html.EscapeString(q.DeviceName), html.EscapeString(q.ServiceName), q.Price))
}

func (b *Bot) handleFAQ(chatID int64) {
	var acc content.Accordion
	msg := tgbotapi.NewMessage(chatID, formatFAQ(acc))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = faqKeyboard(acc)
	b.sendMessage(msg)
}

// handleCancel drops the dialog and dismisses the unlock flow shown to the
// chat, if any.
func (b *Bot) handleCancel(ctx context.Context, chatID int64) {
	state, err := b.state.GetUserDialogState(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	} else if state.FlowID != "" {
		if _, err := b.unlock.Cancel(state.FlowID); err != nil && !errors.Is(err, unlock.ErrNotFound) {
			b.logger.Warn("Failed to cancel unlock flow",
				zap.String("flow_id", state.FlowID),
				zap.Error(err))
		}
	}

	if err := b.state.DropUserDialogState(ctx, chatID); err != nil {
		b.logger.Error("Failed to clear state on cancel",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	msg := tgbotapi.NewMessage(chatID, "Cancelled. What would you like to do next?")
	msg.ReplyMarkup = mainMenuKeyboard()
	b.sendMessage(msg)
}

// CALLBACKS

func (b *Bot) handleCallback(ctx context.Context, chatID int64, messageID int, data string) {
	prefix, args := parseCallback(data)

	switch {
	case prefix == cbModel && len(args) == 1:
		b.handleModelSelected(ctx, chatID, args[0])
	case prefix == cbService && len(args) == 1:
		b.handleServiceSelected(ctx, chatID, args[0])
	case prefix == cbFlow && len(args) == 2:
		b.handleFlowAction(ctx, chatID, args[0], args[1])
	case prefix == cbFAQ && len(args) == 2:
		b.handleFAQToggle(chatID, messageID, args[0], args[1])
	case prefix == cbRate && len(args) == 1:
		b.handleRating(ctx, chatID, messageID, args[0])
	default:
		b.logger.Warn("Unknown callback",
			zap.Int64("chat_id", chatID),
			zap.String("data", data))
	}
}

func (b *Bot) handleFAQToggle(chatID int64, messageID int, open, id string) {
	acc := content.Accordion{Open: open}.Toggle(id)

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, formatFAQ(acc), faqKeyboard(acc))
	edit.ParseMode = tgbotapi.ModeHTML
	b.sendMessage(edit)
}

func (b *Bot) handleFlowAction(ctx context.Context, chatID int64, action, flowID string) {
	var (
		snap unlock.Snapshot
		err  error
	)

	switch action {
	case flowCheck:
		snap, err = b.unlock.Check(flowID)
		if err == nil {
			b.sendText(chatID, "🔎 Checking your payment, please wait...")
		}
	case flowStatus:
		snap, err = b.unlock.Get(flowID)
		if err == nil {
			b.sendText(chatID, formatStatus(snap))
		}
	case flowCancel:
		_, err = b.unlock.Cancel(flowID)
		if err == nil {
			b.resetFlow(ctx, chatID)
			msg := tgbotapi.NewMessage(chatID, "Your unlock request was cancelled.")
			msg.ReplyMarkup = mainMenuKeyboard()
			b.sendMessage(msg)
		}
	case flowRestart:
		_, err = b.unlock.Restart(flowID)
		if err == nil {
			b.beginUnlock(ctx, chatID)
		}
	default:
		err = unlock.ErrInvalidStage
	}

	switch {
	case err == nil:
	case errors.Is(err, unlock.ErrNotFound):
		b.sendError(chatID, "This unlock request is no longer active. Use /unlock to start a new one.")
	case errors.Is(err, unlock.ErrInvalidStage):
		b.sendError(chatID, "That action is not available right now.")
	default:
		b.logger.Error("Unlock flow action failed",
			zap.String("flow_id", flowID),
			zap.String("action", action),
			zap.Error(err))
		b.sendError(chatID, "Something went wrong, please try again.")
	}
}

func (b *Bot) resetFlow(ctx context.Context, chatID int64) {
	if err := b.state.DropUserDialogState(ctx, chatID); err != nil {
		b.logger.Error("Failed to drop dialog state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (b *Bot) saveState(ctx context.Context, chatID int64, state *redisstore.UserState) bool {
	if err := b.state.SetUserDialogState(ctx, chatID, state); err != nil {
		b.logger.Error("Failed to save dialog state",
			zap.Int64("chat_id", chatID),
			zap.String("step", state.Step),
			zap.Error(err))
		b.sendError(chatID, "Something went wrong, please try again.")
		return false
	}
	return true
}

func (b *Bot) loadState(ctx context.Context, chatID int64) (*redisstore.UserState, bool) {
	state, err := b.state.GetUserDialogState(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Something went wrong, please try again.")
		return nil, false
	}
	return state, true
}

func chatClient(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}
