package pricing

// PRICE TABLES

type ServiceKind string

const (
	ServiceICloud   ServiceKind = "icloud"
	ServiceCarrier  ServiceKind = "carrier"
	ServiceNetwork  ServiceKind = "network"
	ServicePasscode ServiceKind = "passcode"
)

// DefaultPrice is charged for models missing from a table.
const DefaultPrice = 50

type ModelID string

type Table map[ServiceKind]map[ModelID]int

var serviceOrder = []ServiceKind{ServiceICloud, ServiceCarrier, ServiceNetwork, ServicePasscode}

var serviceNames = map[ServiceKind]string{
	ServiceICloud:   "iCloud Unlock",
	ServiceCarrier:  "Carrier Unlock",
	ServiceNetwork:  "Network Unlock",
	ServicePasscode: "Passcode Removal",
}

// tiers groups models that share a price in every table. Order follows the
// model select on the site.
var tiers = []struct {
	models                              []ModelID
	icloud, carrier, network, passcode int
}{
	{[]ModelID{"iphone-5s", "iphone-6", "iphone-6-plus", "iphone-6s", "iphone-6s-plus", "iphone-se-1"}, 20, 10, 10, 15},
	{[]ModelID{"iphone-7", "iphone-7-plus", "iphone-8", "iphone-8-plus"}, 30, 10, 10, 15},
	{[]ModelID{"iphone-x", "iphone-xr", "iphone-xs", "iphone-xs-max"}, 40, 20, 20, 15},
	{[]ModelID{"iphone-se-2", "iphone-se-3"}, 50, 10, 10, 15},
	{[]ModelID{"iphone-11", "iphone-11-pro", "iphone-11-pro-max", "iphone-12-mini"}, 60, 30, 30, 20},
	{[]ModelID{"iphone-12", "iphone-12-pro"}, 70, 40, 40, 30},
	{[]ModelID{"iphone-12-pro-max", "iphone-13-mini", "iphone-13"}, 80, 40, 40, 30},
	{[]ModelID{"iphone-13-pro", "iphone-13-pro-max"}, 90, 50, 50, 40},
	{[]ModelID{"iphone-14", "iphone-14-plus", "iphone-14-pro", "iphone-14-pro-max"}, 100, 60, 60, 50},
	{[]ModelID{"iphone-15", "iphone-15-plus", "iphone-15-pro", "iphone-15-pro-max"}, 110, 70, 70, 60},
	{[]ModelID{"iphone-16", "iphone-16-plus", "iphone-16-pro", "iphone-16-pro-max"}, 120, 70, 70, 70},
}

var (
	defaultTable = buildTable()
	modelOrder   = buildModelOrder()
)

func buildTable() Table {
	t := Table{
		ServiceICloud:   {},
		ServiceCarrier:  {},
		ServiceNetwork:  {},
		ServicePasscode: {},
	}
	for _, tier := range tiers {
		for _, m := range tier.models {
			t[ServiceICloud][m] = tier.icloud
			t[ServiceCarrier][m] = tier.carrier
			t[ServiceNetwork][m] = tier.network
			t[ServicePasscode][m] = tier.passcode
		}
	}
	return t
}

func buildModelOrder() []ModelID {
	var models []ModelID
	for _, tier := range tiers {
		models = append(models, tier.models...)
	}
	return models
}

// Resolve returns the price for a model and service. It is total: an
// unrecognized service falls back to the iCloud table and an unknown model
// to DefaultPrice.
func Resolve(model, service string) int {
	return defaultTable.Resolve(model, service)
}

func (t Table) Resolve(model, service string) int {
	prices, ok := t[ServiceKind(service)]
	if !ok {
		prices = t[ServiceICloud]
	}
	if price, ok := prices[ModelID(model)]; ok {
		return price
	}
	return DefaultPrice
}

// Lookup reports whether the pair is tabulated.
func Lookup(model ModelID, service ServiceKind) (int, bool) {
	price, ok := defaultTable[service][model]
	return price, ok
}

func ParseService(s string) (ServiceKind, bool) {
	kind := ServiceKind(s)
	_, ok := serviceNames[kind]
	return kind, ok
}

func IsKnownModel(s string) bool {
	_, ok := defaultTable[ServiceICloud][ModelID(s)]
	return ok
}

func Services() []ServiceKind {
	out := make([]ServiceKind, len(serviceOrder))
	copy(out, serviceOrder)
	return out
}

func Models() []ModelID {
	out := make([]ModelID, len(modelOrder))
	copy(out, modelOrder)
	return out
}

// Prices returns a copy of one service table.
func Prices(service ServiceKind) map[ModelID]int {
	out := make(map[ModelID]int, len(defaultTable[service]))
	for m, p := range defaultTable[service] {
		out[m] = p
	}
	return out
}
