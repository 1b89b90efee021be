package bot

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"unlockpro/internal/content"
	"unlockpro/internal/pricing"
)

// BOT KEYBOARDS

const modelsPerRow = 3

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnUnlock),
			tgbotapi.NewKeyboardButton(btnIMEICheck),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnPrices),
			tgbotapi.NewKeyboardButton(btnFAQ),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnReview),
		),
	)
}

func modelKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, m := range pricing.Models() {
		label := strings.TrimPrefix(pricing.DeviceName(string(m)), "iPhone ")
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, callbackData(cbModel, string(m))))
		if len(row) == modelsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func serviceKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, s := range pricing.Services() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(pricing.ServiceName(string(s)), callbackData(cbService, string(s))),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func paymentKeyboard(flowID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ I have paid", callbackData(cbFlow, flowCheck, flowID)),
			tgbotapi.NewInlineKeyboardButtonData("⏳ Time left", callbackData(cbFlow, flowStatus, flowID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖ Cancel", callbackData(cbFlow, flowCancel, flowID)),
		),
	)
}

func pendingKeyboard(supportURL string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("💬 WhatsApp Support", supportURL),
		),
	)
}

func expiredKeyboard(flowID, supportURL string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("💬 WhatsApp Support", supportURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 Start over", callbackData(cbFlow, flowRestart, flowID)),
		),
	)
}

// faqKeyboard encodes the open item in every button so toggling needs no
// stored state.
func faqKeyboard(acc content.Accordion) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, item := range acc.View() {
		marker := "➕ "
		if item.Open {
			marker = "➖ "
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(marker+item.Question, callbackData(cbFAQ, acc.Open, item.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func ratingKeyboard(selected int) tgbotapi.InlineKeyboardMarkup {
	rating := content.StarRating{}.Click(selected)
	var row []tgbotapi.InlineKeyboardButton
	for n := 1; n <= content.MaxStars; n++ {
		label := "☆"
		if n <= rating.Highlighted() {
			label = "★"
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, callbackData(cbRate, strconv.Itoa(n))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
	)
}

func callbackData(prefix string, parts ...string) string {
	return prefix + ":" + strings.Join(parts, ":")
}

func parseCallback(data string) (string, []string) {
	parts := strings.Split(data, ":")
	return parts[0], parts[1:]
}
