package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"unlockpro/internal/storage"
)

func (b *Bot) handleAdminCommand(ctx context.Context, chatID int64, cmd string) {
	if !b.isAdmin(chatID) {
		b.handleUnknownCommand(chatID)
		return
	}
	if b.leads == nil {
		b.sendError(chatID, "The lead journal is disabled (no database configured).")
		return
	}

	switch cmd {
	case "export":
		b.handleExportLeads(ctx, chatID)
	case "stats":
		b.handleLeadStats(ctx, chatID)
	}
}

func (b *Bot) handleExportLeads(ctx context.Context, chatID int64) {
	leads, err := b.leads.ListLeads(ctx, 0)
	if err != nil {
		b.logger.Error("Failed to fetch leads", zap.Error(err))
		b.sendError(chatID, "Failed to fetch leads")
		return
	}

	data, err := storage.ExportLeadsToExcel(leads)
	if err != nil {
		b.logger.Error("Failed to build leads workbook", zap.Error(err))
		b.sendError(chatID, "Failed to build the export")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("leads_%s.xlsx", time.Now().UTC().Format("20060102_1504")),
		Bytes: data,
	})
	doc.Caption = fmt.Sprintf("📊 %d leads", len(leads))

	if _, err := b.bot.Send(doc); err != nil {
		b.logger.Error("Failed to send leads export",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (b *Bot) handleLeadStats(ctx context.Context, chatID int64) {
	stats, err := b.leads.GetLeadStatistics(ctx)
	if err != nil {
		b.logger.Error("Failed to get lead statistics", zap.Error(err))
		b.sendError(chatID, "Failed to get statistics")
		return
	}

	kinds := make([]string, 0, len(stats.KindCounts))
	for kind := range stats.KindCounts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	var sb strings.Builder
	sb.WriteString("📊 <b>Lead statistics</b>\n\n")
	fmt.Fprintf(&sb, "Total: %d\nToday: %d\nLast 7 days: %d\n", stats.Total, stats.Today, stats.Week)
	if len(kinds) > 0 {
		sb.WriteString("\n<b>By form</b>\n")
		for _, kind := range kinds {
			fmt.Fprintf(&sb, "%s: %d\n", kind, stats.KindCounts[kind])
		}
	}
	b.sendText(chatID, sb.String())
}
