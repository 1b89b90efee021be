package content

type FAQItem struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

var faq = []FAQItem{
	{
		ID:       "how-long",
		Question: "How long does an unlock take?",
		Answer:   "Most iCloud and passcode unlocks are completed within 24-72 hours. Carrier and network unlocks depend on the carrier and usually take 1-5 business days.",
	},
	{
		ID:       "is-it-permanent",
		Question: "Is the unlock permanent?",
		Answer:   "Yes. Once your device is unlocked it stays unlocked, including after iOS updates and factory resets.",
	},
	{
		ID:       "find-imei",
		Question: "Where do I find my IMEI number?",
		Answer:   "Dial *#06# on your phone, or open Settings > General > About and scroll down to IMEI.",
	},
	{
		ID:       "data-loss",
		Question: "Will I lose my data?",
		Answer:   "Carrier and network unlocks keep your data. iCloud and passcode removal require a restore, so back up whatever you can first.",
	},
	{
		ID:       "payment",
		Question: "How do I pay?",
		Answer:   "We accept Binance Pay. After paying, send proof of payment to our WhatsApp support and we start right away.",
	},
	{
		ID:       "refund",
		Question: "What if my unlock fails?",
		Answer:   "If we cannot unlock your device you receive a full refund.",
	},
}

func FAQ() []FAQItem {
	out := make([]FAQItem, len(faq))
	copy(out, faq)
	return out
}

func FindFAQ(id string) (FAQItem, bool) {
	for _, item := range faq {
		if item.ID == id {
			return item, true
		}
	}
	return FAQItem{}, false
}

// Accordion keeps at most one FAQ item open.
type Accordion struct {
	Open string `json:"open,omitempty"`
}

// Toggle opens id and closes any other item; toggling the open item closes
// it. Unknown ids leave the accordion unchanged.
func (a Accordion) Toggle(id string) Accordion {
	if _, ok := FindFAQ(id); !ok {
		return a
	}
	if a.Open == id {
		return Accordion{}
	}
	return Accordion{Open: id}
}

func (a Accordion) IsOpen(id string) bool {
	return a.Open != "" && a.Open == id
}

type FAQView struct {
	FAQItem
	Open bool `json:"open"`
}

func (a Accordion) View() []FAQView {
	views := make([]FAQView, 0, len(faq))
	for _, item := range faq {
		views = append(views, FAQView{FAQItem: item, Open: a.IsOpen(item.ID)})
	}
	return views
}
