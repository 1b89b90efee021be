package pricing

import (
	"strings"
	"unicode"
)

type Quote struct {
	Model       string `json:"model"`
	Service     string `json:"service"`
	DeviceName  string `json:"device_name"`
	ServiceName string `json:"service_name"`
	Price       int    `json:"price"`
}

func NewQuote(model, service string) Quote {
	return Quote{
		Model:       model,
		Service:     service,
		DeviceName:  DeviceName(model),
		ServiceName: ServiceName(service),
		Price:       Resolve(model, service),
	}
}

// ServiceName mirrors the service select labels; anything unknown is shown
// as the default service.
func ServiceName(service string) string {
	if name, ok := serviceNames[ServiceKind(service)]; ok {
		return name
	}
	return serviceNames[ServiceICloud]
}

// DeviceName turns "iphone-13-pro-max" into "iPhone 13 Pro Max".
func DeviceName(model string) string {
	if !strings.HasPrefix(model, "iphone-") {
		return "iPhone"
	}

	parts := strings.Split(strings.TrimPrefix(model, "iphone-"), "-")
	words := []string{"iPhone"}
	for i, p := range parts {
		switch {
		case p == "":
			continue
		case p == "se" || p == "xr" || p == "xs" || p == "x":
			words = append(words, strings.ToUpper(p))
		case unicode.IsDigit(rune(p[0])) && i > 0 && parts[i-1] == "se":
			// SE generation: "iphone-se-2" -> "iPhone SE (2nd gen)"
			words = append(words, "("+ordinal(p)+" gen)")
		default:
			words = append(words, strings.ToUpper(p[:1])+p[1:])
		}
	}
	return strings.Join(words, " ")
}

func ordinal(n string) string {
	switch n {
	case "1":
		return "1st"
	case "2":
		return "2nd"
	case "3":
		return "3rd"
	}
	return n + "th"
}
