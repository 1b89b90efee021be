package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"unlockpro/internal/content"
	"unlockpro/internal/pricing"
)

type priceListResponse struct {
	Services     []pricing.ServiceKind                           `json:"services"`
	ServiceNames map[pricing.ServiceKind]string                  `json:"service_names"`
	Models       []pricing.ModelID                               `json:"models"`
	Prices       map[pricing.ServiceKind]map[pricing.ModelID]int `json:"prices"`
	DefaultPrice int                                             `json:"default_price"`
}

func handlePrices(w http.ResponseWriter, _ *http.Request) {
	resp := priceListResponse{
		Services:     pricing.Services(),
		ServiceNames: make(map[pricing.ServiceKind]string),
		Models:       pricing.Models(),
		Prices:       make(map[pricing.ServiceKind]map[pricing.ModelID]int),
		DefaultPrice: pricing.DefaultPrice,
	}
	for _, s := range resp.Services {
		resp.ServiceNames[s] = pricing.ServiceName(string(s))
		resp.Prices[s] = pricing.Prices(s)
	}
	Write(w, http.StatusOK, resp)
}

// handlePrice is the live price shown while the unlock form is filled in.
// Every model/service pair has a price, so it never fails.
func handlePrice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	Write(w, http.StatusOK, pricing.NewQuote(q.Get("model"), q.Get("service")))
}

type faqResponse struct {
	Open  string            `json:"open,omitempty"`
	Items []content.FAQView `json:"items"`
}

// handleFAQ renders the accordion with ?open= already open; ?toggle= is
// applied on top of it.
func handleFAQ(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var acc content.Accordion
	if open := q.Get("open"); open != "" {
		acc = acc.Toggle(open)
	}
	if toggle := q.Get("toggle"); toggle != "" {
		acc = acc.Toggle(toggle)
	}

	Write(w, http.StatusOK, faqResponse{Open: acc.Open, Items: acc.View()})
}

type reviewView struct {
	content.Review
	Stars string `json:"stars"`
}

func handleReviews(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	reviews := content.FilterReviews(content.Reviews(), filter)

	out := make([]reviewView, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, reviewView{Review: rv, Stars: content.Stars(rv.Rating)})
	}
	if filter == "" {
		filter = content.FilterAll
	}
	Write(w, http.StatusOK, map[string]any{
		"filter":  filter,
		"reviews": out,
	})
}

// handleReview backs the testimonial modal.
func handleReview(w http.ResponseWriter, r *http.Request) {
	rv, ok := content.FindReview(chi.URLParam(r, "id"))
	if !ok {
		Write(w, http.StatusNotFound, APIError{
			Code:    "REVIEW_NOT_FOUND",
			Message: "review not found",
		})
		return
	}
	Write(w, http.StatusOK, reviewView{Review: rv, Stars: content.Stars(rv.Rating)})
}
