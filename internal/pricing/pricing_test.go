package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTabulated(t *testing.T) {
	cases := []struct {
		model   string
		service string
		want    int
	}{
		{"iphone-14", "icloud", 100},
		{"iphone-x", "passcode", 15},
		{"iphone-5s", "icloud", 20},
		{"iphone-se-2", "carrier", 10},
		{"iphone-12-mini", "network", 30},
		{"iphone-13-pro-max", "passcode", 40},
		{"iphone-16-pro-max", "icloud", 120},
		{"iphone-16", "carrier", 70},
		{"iphone-15-plus", "passcode", 60},
	}

	for _, tc := range cases {
		t.Run(tc.model+"/"+tc.service, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.model, tc.service))
		})
	}
}

func TestResolveUnknownModelFallsBack(t *testing.T) {
	for _, s := range Services() {
		assert.Equal(t, DefaultPrice, Resolve("nokia-3310", string(s)))
	}
	assert.Equal(t, DefaultPrice, Resolve("", ""))
}

func TestResolveUnknownServiceUsesICloud(t *testing.T) {
	assert.Equal(t, 100, Resolve("iphone-14", "jailbreak"))
	assert.Equal(t, 100, Resolve("iphone-14", ""))
	assert.Equal(t, 100, Resolve("iphone-14", "ICLOUD"))
}

func TestResolveIsTotal(t *testing.T) {
	inputs := []string{"", " ", "iphone-14 ", "\x00", "💥", "iphone-", "passcode", "icloud"}
	for _, m := range inputs {
		for _, s := range inputs {
			assert.GreaterOrEqual(t, Resolve(m, s), 0)
		}
	}
}

func TestEveryModelPricedInEveryTable(t *testing.T) {
	models := Models()
	require.Len(t, models, 39)

	for _, s := range Services() {
		prices := Prices(s)
		require.Len(t, prices, len(models), "table %s", s)
		for _, m := range models {
			p, ok := Lookup(m, s)
			require.True(t, ok, "%s/%s", m, s)
			assert.Equal(t, p, Resolve(string(m), string(s)))
		}
	}
}

func TestPricesReturnsCopy(t *testing.T) {
	prices := Prices(ServiceICloud)
	prices["iphone-14"] = 1

	assert.Equal(t, 100, Resolve("iphone-14", "icloud"))
}

func TestParseService(t *testing.T) {
	kind, ok := ParseService("carrier")
	require.True(t, ok)
	assert.Equal(t, ServiceCarrier, kind)

	_, ok = ParseService("unlock-all")
	assert.False(t, ok)
}

func TestQuote(t *testing.T) {
	q := NewQuote("iphone-13-pro-max", "network")
	assert.Equal(t, "iPhone 13 Pro Max", q.DeviceName)
	assert.Equal(t, "Network Unlock", q.ServiceName)
	assert.Equal(t, 50, q.Price)

	assert.Equal(t, "iPhone XS Max", DeviceName("iphone-xs-max"))
	assert.Equal(t, "iPhone SE (2nd gen)", DeviceName("iphone-se-2"))
	assert.Equal(t, "iPhone", DeviceName("pixel-8"))
	assert.Equal(t, "iCloud Unlock", ServiceName("whatever"))
}
