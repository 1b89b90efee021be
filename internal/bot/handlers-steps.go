package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"unlockpro/internal/content"
	"unlockpro/internal/leads"
	"unlockpro/internal/pricing"
	redisstore "unlockpro/internal/storage/redis"
	"unlockpro/internal/unlock"
	"unlockpro/internal/validation"
)

// UNLOCK REQUEST

func (b *Bot) beginUnlock(ctx context.Context, chatID int64) {
	if !b.saveState(ctx, chatID, &redisstore.UserState{
		Step:   StepUnlockModel,
		Unlock: &redisstore.UnlockDraft{},
	}) {
		return
	}

	msg := tgbotapi.NewMessage(chatID, "📱 Select your iPhone model:")
	msg.ReplyMarkup = modelKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handleModelSelected(ctx context.Context, chatID int64, model string) {
	state, ok := b.loadState(ctx, chatID)
	if !ok {
		return
	}
	if state.Step != StepUnlockModel || !pricing.IsKnownModel(model) {
		b.sendError(chatID, "Please start again with /unlock.")
		return
	}

	state.Step = StepUnlockService
	state.Unlock.Model = model
	if !b.saveState(ctx, chatID, state) {
		return
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("%s selected. Which service do you need?",
		pricing.DeviceName(model)))
	msg.ReplyMarkup = serviceKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handleServiceSelected(ctx context.Context, chatID int64, service string) {
	state, ok := b.loadState(ctx, chatID)
	if !ok {
		return
	}
	if _, known := pricing.ParseService(service); state.Step != StepUnlockService || !known {
		b.sendError(chatID, "Please start again with /unlock.")
		return
	}

	state.Step = StepUnlockIMEI
	state.Unlock.Service = service
	if !b.saveState(ctx, chatID, state) {
		return
	}

	q := pricing.NewQuote(state.Unlock.Model, service)
	b.sendText(chatID, fmt.Sprintf(
		"%s for %s: <b>$%d</b>\n\nNow send your IMEI number (dial *#06# to see it).",
		html.EscapeString(q.ServiceName), html.EscapeString(q.DeviceName), q.Price))
}

func (b *Bot) handleUnlockIMEI(ctx context.Context, chatID int64, text string) {
	imei := validation.NormalizeIMEI(text)
	if len(imei) < validation.IMEIMinDigits {
		b.sendError(chatID, "Please enter a valid IMEI number (15-17 digits)")
		return
	}

	state, ok := b.loadState(ctx, chatID)
	if !ok || state.Unlock == nil {
		return
	}
	state.Step = StepUnlockEmail
	state.Unlock.IMEI = imei
	if !b.saveState(ctx, chatID, state) {
		return
	}

	b.sendText(chatID, "📧 Where should we send the confirmation? Enter your email address.")
}

func (b *Bot) handleUnlockEmail(ctx context.Context, chatID int64, text string) {
	state, ok := b.loadState(ctx, chatID)
	if !ok || state.Unlock == nil {
		return
	}

	snap, errs, err := b.unlock.Start(ctx, unlock.Request{
		Model:   state.Unlock.Model,
		Service: state.Unlock.Service,
		IMEI:    state.Unlock.IMEI,
		Email:   text,
		Channel: unlock.ChannelTelegram,
		ChatID:  chatID,
	})
	if err != nil {
		b.logger.Error("Failed to start unlock flow",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Something went wrong, please try again.")
		return
	}
	if !errs.Empty() {
		b.sendError(chatID, firstError(errs, "email", "imei", "model", "service"))
		return
	}

	state.Step = StepUnlockActive
	state.FlowID = snap.ID
	b.saveState(ctx, chatID, state)

	b.forms.RecordUnlock(ctx, snap)
	b.sendText(chatID, "⏳ Verifying your device details...")
}

// IMEI CHECK

func (b *Bot) beginIMEICheck(ctx context.Context, chatID int64) {
	if !b.saveState(ctx, chatID, &redisstore.UserState{
		Step:      StepIMEICheckIMEI,
		IMEICheck: &redisstore.IMEIDraft{},
	}) {
		return
	}
	b.sendText(chatID, "📱 Free IMEI check. Send your IMEI number and we will email you a detailed status report.")
}

func (b *Bot) handleIMEICheckIMEI(ctx context.Context, chatID int64, text string) {
	if msg := validation.CheckIMEI(text); msg != "" {
		b.sendError(chatID, msg)
		return
	}

	state, ok := b.loadState(ctx, chatID)
	if !ok {
		return
	}
	state.Step = StepIMEICheckMail
	state.IMEICheck = &redisstore.IMEIDraft{IMEI: validation.NormalizeIMEI(text)}
	if !b.saveState(ctx, chatID, state) {
		return
	}
	b.sendText(chatID, "📧 Enter your email address.")
}

func (b *Bot) handleIMEICheckEmail(ctx context.Context, chatID int64, text string) {
	state, ok := b.loadState(ctx, chatID)
	if !ok || state.IMEICheck == nil {
		return
	}

	res, err := b.forms.SubmitIMEICheck(ctx, chatClient(chatID), state.IMEICheck.IMEI, text)
	var throttled *leads.ThrottledError
	switch {
	case errors.As(err, &throttled):
		b.resetFlow(ctx, chatID)
		b.sendError(chatID, fmt.Sprintf("Too many IMEI checks. Please try again in %d minutes.",
			(throttled.RetryAfter+59)/60))
		return
	case err != nil:
		b.logger.Error("IMEI check failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Something went wrong, please try again.")
		return
	case !res.OK():
		b.sendError(chatID, firstError(res.Errors, "email", "imei"))
		return
	}

	b.resetFlow(ctx, chatID)
	msg := tgbotapi.NewMessage(chatID, "✅ Request Submitted Successfully!\n\n"+res.Message)
	msg.ReplyMarkup = mainMenuKeyboard()
	b.sendMessage(msg)
}

// REVIEW

func (b *Bot) beginReview(ctx context.Context, chatID int64) {
	if !b.saveState(ctx, chatID, &redisstore.UserState{
		Step:   StepReviewOrder,
		Review: &redisstore.ReviewDraft{},
	}) {
		return
	}
	b.sendText(chatID, "⭐ Thanks for taking the time! Please enter your Order ID.")
}

func (b *Bot) handleReviewOrder(ctx context.Context, chatID int64, text string) {
	orderID := strings.TrimSpace(text)
	if orderID == "" {
		b.sendError(chatID, "Please enter your Order ID to submit a review.")
		return
	}

	state, ok := b.loadState(ctx, chatID)
	if !ok {
		return
	}
	state.Step = StepReviewRating
	state.Review = &redisstore.ReviewDraft{OrderID: orderID}
	if !b.saveState(ctx, chatID, state) {
		return
	}

	msg := tgbotapi.NewMessage(chatID, "How would you rate our service?")
	msg.ReplyMarkup = ratingKeyboard(0)
	b.sendMessage(msg)
}

func (b *Bot) handleRating(ctx context.Context, chatID int64, messageID int, value string) {
	state, ok := b.loadState(ctx, chatID)
	if !ok {
		return
	}
	if state.Review == nil || (state.Step != StepReviewRating && state.Step != StepReviewText) {
		b.sendError(chatID, "Please start again with /review.")
		return
	}

	rating := content.StarRating{}
	if n, err := parseStars(value); err == nil {
		rating = rating.Click(n)
	}
	if rating.Selected == 0 {
		b.sendError(chatID, "Please select a rating.")
		return
	}

	state.Step = StepReviewText
	state.Review.Rating = rating.Selected
	if !b.saveState(ctx, chatID, state) {
		return
	}

	b.sendMessage(tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, ratingKeyboard(rating.Selected)))

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("%s Tell us about your experience, or press Skip.",
		content.Stars(rating.Selected)))
	msg.ReplyMarkup = skipKeyboard()
	b.sendMessage(msg)
}

func (b *Bot) handleReviewText(ctx context.Context, chatID int64, text string) {
	state, ok := b.loadState(ctx, chatID)
	if !ok || state.Review == nil {
		return
	}

	sub := content.ReviewSubmission{OrderID: state.Review.OrderID}
	if text != btnSkip {
		sub.Text = strings.TrimSpace(text)
	}

	res, err := b.forms.SubmitReview(ctx, sub, fmt.Sprint(state.Review.Rating))
	if err != nil {
		b.logger.Error("Review submission failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Something went wrong, please try again.")
		return
	}
	if !res.OK() {
		b.sendError(chatID, firstError(res.Errors, "order_id", "rating"))
		return
	}

	b.resetFlow(ctx, chatID)
	msg := tgbotapi.NewMessage(chatID, "✅ Review Submitted Successfully!\n\n"+res.Message)
	msg.ReplyMarkup = mainMenuKeyboard()
	b.sendMessage(msg)
}

func firstError(errs validation.FieldErrors, order ...string) string {
	for _, field := range order {
		if msg, ok := errs[field]; ok {
			return msg
		}
	}
	for _, msg := range errs {
		return msg
	}
	return ""
}
