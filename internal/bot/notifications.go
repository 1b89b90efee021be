package bot

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"unlockpro/internal/unlock"
)

// deliverNotice turns a stage change of a Telegram flow into a message for
// its chat. Notices of flows dismissed while queued are dropped.
func (b *Bot) deliverNotice(ctx context.Context, s unlock.Snapshot) {
	if _, err := b.unlock.Get(s.ID); errors.Is(err, unlock.ErrNotFound) {
		b.logger.Debug("Dropping notice of a dismissed flow",
			zap.String("flow_id", s.ID),
			zap.String("stage", string(s.Stage)))
		return
	}

	var msg tgbotapi.MessageConfig

	switch s.Stage {
	case unlock.StageAwaitingPayment:
		msg = tgbotapi.NewMessage(s.ChatID, formatPaymentPrompt(s))
		msg.ReplyMarkup = paymentKeyboard(s.ID)

	case unlock.StagePending:
		msg = tgbotapi.NewMessage(s.ChatID, formatNotice(s.Notice))
		msg.ReplyMarkup = pendingKeyboard(s.Notice.SupportURL)
		b.clearFlowState(ctx, s.ChatID, s.ID)

	case unlock.StageExpired:
		msg = tgbotapi.NewMessage(s.ChatID, formatNotice(s.Notice))
		msg.ReplyMarkup = expiredKeyboard(s.ID, s.Notice.SupportURL)
		b.clearFlowState(ctx, s.ChatID, s.ID)

	default:
		return
	}

	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error("Failed to deliver unlock notice",
			zap.String("flow_id", s.ID),
			zap.Int64("chat_id", s.ChatID),
			zap.String("stage", string(s.Stage)),
			zap.Error(err))
	}
}

// clearFlowState ends the dialog only if the chat is still looking at this
// flow.
func (b *Bot) clearFlowState(ctx context.Context, chatID int64, flowID string) {
	state, err := b.state.GetUserDialogState(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}
	if state.FlowID == flowID {
		b.resetFlow(ctx, chatID)
	}
}
