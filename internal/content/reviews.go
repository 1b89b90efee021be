package content

import "strings"

const FilterAll = "all"

type Review struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Device  string `json:"device"`
	Service string `json:"service"`
	Rating  int    `json:"rating"`
	Text    string `json:"text"`
	Date    string `json:"date"`
}

var reviews = []Review{
	{ID: "r1", Author: "Michael T.", Device: "iPhone 13 Pro", Service: "icloud", Rating: 5, Text: "Bought a used phone that was still locked to the previous owner's iCloud. Unlocked in two days, works perfectly.", Date: "2025-03-12"},
	{ID: "r2", Author: "Sarah K.", Device: "iPhone 12", Service: "carrier", Rating: 5, Text: "Switched carriers without any hassle. Support answered on WhatsApp within minutes.", Date: "2025-02-27"},
	{ID: "r3", Author: "David L.", Device: "iPhone 11", Service: "passcode", Rating: 4, Text: "Forgot my passcode after an update. Took a bit longer than promised but it worked.", Date: "2025-02-03"},
	{ID: "r4", Author: "Aisha M.", Device: "iPhone XR", Service: "network", Rating: 5, Text: "Network unlock done the same day. Now using a local SIM abroad.", Date: "2025-01-19"},
	{ID: "r5", Author: "James P.", Device: "iPhone 14 Pro Max", Service: "icloud", Rating: 5, Text: "Great service and fair price. Would use again.", Date: "2024-12-08"},
	{ID: "r6", Author: "Elena R.", Device: "iPhone 8", Service: "carrier", Rating: 4, Text: "Quick and cheap carrier unlock for an old phone I gave to my son.", Date: "2024-11-22"},
}

func Reviews() []Review {
	out := make([]Review, len(reviews))
	copy(out, reviews)
	return out
}

func FindReview(id string) (Review, bool) {
	for _, r := range reviews {
		if r.ID == id {
			return r, true
		}
	}
	return Review{}, false
}

// FilterReviews keeps reviews of one service; "all" or an empty filter keeps
// everything.
func FilterReviews(in []Review, filter string) []Review {
	filter = strings.TrimSpace(filter)
	if filter == "" || filter == FilterAll {
		out := make([]Review, len(in))
		copy(out, in)
		return out
	}

	out := make([]Review, 0, len(in))
	for _, r := range in {
		if r.Service == filter {
			out = append(out, r)
		}
	}
	return out
}

// ReviewSubmission is a customer review waiting for moderation.
type ReviewSubmission struct {
	OrderID string `json:"order_id"`
	Name    string `json:"name"`
	Service string `json:"service"`
	Rating  int    `json:"rating"`
	Text    string `json:"text"`
}
