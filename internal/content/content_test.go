package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccordionKeepsOneOpen(t *testing.T) {
	var a Accordion

	a = a.Toggle("how-long")
	assert.True(t, a.IsOpen("how-long"))

	a = a.Toggle("find-imei")
	assert.True(t, a.IsOpen("find-imei"))
	assert.False(t, a.IsOpen("how-long"))

	a = a.Toggle("find-imei")
	assert.False(t, a.IsOpen("find-imei"))
	assert.Empty(t, a.Open)

	a = a.Toggle("no-such-question")
	assert.Empty(t, a.Open)
}

func TestAccordionView(t *testing.T) {
	views := Accordion{}.Toggle("refund").View()
	require.Len(t, views, len(FAQ()))

	open := 0
	for _, v := range views {
		if v.Open {
			open++
			assert.Equal(t, "refund", v.ID)
		}
	}
	assert.Equal(t, 1, open)
}

func TestFilterReviews(t *testing.T) {
	all := Reviews()
	assert.Len(t, FilterReviews(all, FilterAll), len(all))
	assert.Len(t, FilterReviews(all, ""), len(all))

	carrier := FilterReviews(all, "carrier")
	require.NotEmpty(t, carrier)
	for _, r := range carrier {
		assert.Equal(t, "carrier", r.Service)
	}

	assert.Empty(t, FilterReviews(all, "jailbreak"))
}

func TestFindReview(t *testing.T) {
	r, ok := FindReview("r2")
	require.True(t, ok)
	assert.Equal(t, "Sarah K.", r.Author)

	_, ok = FindReview("missing")
	assert.False(t, ok)
}

func TestStarRating(t *testing.T) {
	var s StarRating
	assert.Equal(t, 0, s.Highlighted())

	s = s.Hover(3)
	assert.Equal(t, 3, s.Highlighted())
	s = s.Leave()
	assert.Equal(t, 0, s.Highlighted())

	s = s.Click(4)
	assert.Equal(t, 4, s.Selected)
	s = s.Hover(2)
	assert.Equal(t, 2, s.Highlighted())
	s = s.Leave()
	assert.Equal(t, 4, s.Highlighted())

	s = s.Click(9)
	assert.Equal(t, MaxStars, s.Selected)
}

func TestStars(t *testing.T) {
	assert.Equal(t, "★★★☆☆", Stars(3))
	assert.Equal(t, "☆☆☆☆☆", Stars(-1))
	assert.Equal(t, "★★★★★", Stars(7))
}
