package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"unlockpro/internal/content"
	"unlockpro/internal/pricing"
	"unlockpro/internal/unlock"
)

func parseStars(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > content.MaxStars {
		return 0, fmt.Errorf("rating out of range: %d", n)
	}
	return n, nil
}

func formatPriceList() string {
	var sb strings.Builder
	sb.WriteString("💵 <b>Unlock prices</b> (USD)\n")
	sb.WriteString("Use <code>/price &lt;model&gt; &lt;service&gt;</code> for one model.\n")

	models := pricing.Models()
	for _, s := range pricing.Services() {
		prices := pricing.Prices(s)
		fmt.Fprintf(&sb, "\n<b>%s</b>\n", pricing.ServiceName(string(s)))
		for _, m := range models {
			fmt.Fprintf(&sb, "%s: $%d\n", pricing.DeviceName(string(m)), prices[m])
		}
	}
	return sb.String()
}

func formatFAQ(acc content.Accordion) string {
	var sb strings.Builder
	sb.WriteString("❓ <b>Frequently Asked Questions</b>\n")
	if item, ok := content.FindFAQ(acc.Open); ok {
		fmt.Fprintf(&sb, "\n<b>%s</b>\n%s\n", html.EscapeString(item.Question), html.EscapeString(item.Answer))
	} else {
		sb.WriteString("\nTap a question to see the answer.\n")
	}
	return sb.String()
}

func formatPaymentPrompt(s unlock.Snapshot) string {
	return fmt.Sprintf(
		"✅ <b>Device verified!</b>\n\n"+
			"📱 %s\n"+
			"🛠 %s\n"+
			"💵 Amount: <b>$%d</b>\n\n"+
			"Pay with Binance Pay and press <b>I have paid</b>.\n"+
			"⏳ Time left: <b>%s</b>",
		html.EscapeString(s.Quote.DeviceName),
		html.EscapeString(s.Quote.ServiceName),
		s.Quote.Price,
		s.Timer,
	)
}

func formatStatus(s unlock.Snapshot) string {
	switch s.Stage {
	case unlock.StageAwaitingPayment, unlock.StageChecking:
		return fmt.Sprintf("⏳ Time left: <b>%s</b>", s.Timer)
	case unlock.StageSubmitted:
		return "⏳ Still verifying your device details..."
	}
	if s.Notice != nil {
		return formatNotice(s.Notice)
	}
	return "This unlock request is closed."
}

func formatNotice(n *unlock.Notice) string {
	return fmt.Sprintf("<b>%s</b>\n\n%s", html.EscapeString(n.Title), html.EscapeString(n.Message))
}
