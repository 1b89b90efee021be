package content

import "strings"

const MaxStars = 5

// StarRating is the rating widget: hovering previews, clicking commits and
// leaving falls back to the committed value.
type StarRating struct {
	Selected int `json:"selected"`
	hover    int
}

func clampStars(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxStars {
		return MaxStars
	}
	return n
}

func (s StarRating) Hover(n int) StarRating {
	s.hover = clampStars(n)
	return s
}

func (s StarRating) Leave() StarRating {
	s.hover = 0
	return s
}

func (s StarRating) Click(n int) StarRating {
	s.Selected = clampStars(n)
	s.hover = s.Selected
	return s
}

// Highlighted is how many stars are drawn filled.
func (s StarRating) Highlighted() int {
	if s.hover > 0 {
		return s.hover
	}
	return s.Selected
}

func Stars(n int) string {
	n = clampStars(n)
	return strings.Repeat("★", n) + strings.Repeat("☆", MaxStars-n)
}
