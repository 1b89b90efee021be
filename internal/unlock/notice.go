package unlock

// ActionRestart is the single recovery action offered once a payment
// session expired.
const ActionRestart = "restart"

type Notice struct {
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	SupportURL string   `json:"support_url"`
	Actions    []string `json:"actions,omitempty"`
}

func noticeFor(stage Stage, supportURL string) *Notice {
	switch stage {
	case StagePending:
		return &Notice{
			Title:      "Your Payment is Pending!",
			Message:    "Please send us a message on WhatsApp with proof of payment. To start the unlocking process, please contact us on WhatsApp.",
			SupportURL: supportURL,
		}
	case StageExpired:
		return &Notice{
			Title:      "Payment Time Expired",
			Message:    "Your payment session has expired. Please contact our WhatsApp Support for assistance.",
			SupportURL: supportURL,
			Actions:    []string{ActionRestart},
		}
	}
	return nil
}
