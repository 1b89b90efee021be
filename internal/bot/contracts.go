package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"unlockpro/internal/content"
	"unlockpro/internal/leads"
	"unlockpro/internal/storage"
	redisstore "unlockpro/internal/storage/redis"
	"unlockpro/internal/unlock"
	"unlockpro/internal/validation"
)

// BotAPI is the subset of *tgbotapi.BotAPI the bot uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type StateStore interface {
	GetUserDialogState(ctx context.Context, chatID int64) (*redisstore.UserState, error)
	SetUserDialogState(ctx context.Context, chatID int64, state *redisstore.UserState) error
	DropUserDialogState(ctx context.Context, chatID int64) error
}

type UnlockService interface {
	Start(ctx context.Context, req unlock.Request) (unlock.Snapshot, validation.FieldErrors, error)
	Get(id string) (unlock.Snapshot, error)
	Check(id string) (unlock.Snapshot, error)
	Cancel(id string) (unlock.Snapshot, error)
	Restart(id string) (unlock.Snapshot, error)
	AddListener(l unlock.Listener)
}

type FormService interface {
	SubmitIMEICheck(ctx context.Context, client, imei, email string) (leads.Result, error)
	SubmitReview(ctx context.Context, sub content.ReviewSubmission, rating string) (leads.Result, error)
	RecordUnlock(ctx context.Context, snap unlock.Snapshot)
}

// LeadSource backs the admin commands; it is nil without a database.
type LeadSource interface {
	ListLeads(ctx context.Context, limit int) ([]storage.Lead, error)
	GetLeadStatistics(ctx context.Context) (*storage.LeadStatistics, error)
}
