package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"unlockpro/internal/content"
	"unlockpro/internal/unlock"
)

var ErrDisabled = errors.New("telegram notifications disabled")

const timeLayout = "2006-01-02 15:04:05 MST"

// Sender is the part of *tgbotapi.BotAPI the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts operator notices to one chat.
type Telegram struct {
	sender Sender
	chatID int64
	site   string
	now    func() time.Time
}

func NewTelegram(sender Sender, chatID int64, site string) *Telegram {
	return &Telegram{
		sender: sender,
		chatID: chatID,
		site:   site,
		now:    time.Now,
	}
}

func (t *Telegram) Enabled() bool {
	return t != nil && t.sender != nil && t.chatID != 0
}

func (t *Telegram) IMEICheck(ctx context.Context, imei, email string) error {
	if !t.Enabled() {
		return ErrDisabled
	}
	return t.send(ctx, FormatIMEICheckMessage(imei, email, t.now(), t.site))
}

func (t *Telegram) UnlockRequest(ctx context.Context, s unlock.Snapshot) error {
	if !t.Enabled() {
		return ErrDisabled
	}
	return t.send(ctx, FormatUnlockMessage(s, t.site))
}

func (t *Telegram) Review(ctx context.Context, r content.ReviewSubmission) error {
	if !t.Enabled() {
		return ErrDisabled
	}
	return t.send(ctx, FormatReviewMessage(r, t.now(), t.site))
}

// send gives up waiting once ctx is done. The Bot API call itself cannot be
// cancelled, so it finishes in the background.
func (t *Telegram) send(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	done := make(chan error, 1)
	go func() {
		_, err := t.sender.Send(msg)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send message to chat %d: %w", t.chatID, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send message to chat %d: %w", t.chatID, ctx.Err())
	}
}

// MESSAGE TEMPLATES

func FormatIMEICheckMessage(imei, email string, at time.Time, site string) string {
	return fmt.Sprintf(
		"🔔 New IMEI Check Request!\n"+
			"📱 IMEI: %s\n"+
			"📧 Email: %s\n"+
			"⏰ Time: %s\n"+
			"🌐 Website: %s",
		html.EscapeString(imei),
		html.EscapeString(email),
		at.UTC().Format(timeLayout),
		html.EscapeString(site),
	)
}

func FormatUnlockMessage(s unlock.Snapshot, site string) string {
	return fmt.Sprintf(
		"🔓 New Unlock Request!\n"+
			"📱 Device: %s\n"+
			"🛠 Service: %s\n"+
			"💵 Price: $%d\n"+
			"🔢 IMEI: %s\n"+
			"📧 Email: %s\n"+
			"🆔 Flow: <code>%s</code> (%s)\n"+
			"🌐 Website: %s",
		html.EscapeString(s.Quote.DeviceName),
		html.EscapeString(s.Quote.ServiceName),
		s.Quote.Price,
		html.EscapeString(s.IMEI),
		html.EscapeString(s.Email),
		s.ID,
		s.Channel,
		html.EscapeString(site),
	)
}

func FormatReviewMessage(r content.ReviewSubmission, at time.Time, site string) string {
	var b strings.Builder
	b.WriteString("⭐ New Review Submitted!\n")
	fmt.Fprintf(&b, "🧾 Order: %s\n", html.EscapeString(r.OrderID))
	fmt.Fprintf(&b, "Rating: %s (%d/%d)\n", content.Stars(r.Rating), r.Rating, content.MaxStars)
	if r.Name != "" {
		fmt.Fprintf(&b, "👤 Name: %s\n", html.EscapeString(r.Name))
	}
	if r.Service != "" {
		fmt.Fprintf(&b, "🛠 Service: %s\n", html.EscapeString(r.Service))
	}
	if r.Text != "" {
		fmt.Fprintf(&b, "💬 %s\n", html.EscapeString(r.Text))
	}
	fmt.Fprintf(&b, "⏰ Time: %s\n", at.UTC().Format(timeLayout))
	fmt.Fprintf(&b, "🌐 Website: %s", html.EscapeString(site))
	return b.String()
}
