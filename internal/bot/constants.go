package bot

const (
	StepUnlockModel   = "unlock_model"
	StepUnlockService = "unlock_service"
	StepUnlockIMEI    = "unlock_imei"
	StepUnlockEmail   = "unlock_email"
	StepUnlockActive  = "unlock_active"
	StepIMEICheckIMEI = "imei_check_imei"
	StepIMEICheckMail = "imei_check_email"
	StepReviewOrder   = "review_order"
	StepReviewRating  = "review_rating"
	StepReviewText    = "review_text"
)

// Callback data prefixes. Payloads follow the colon.
const (
	cbModel   = "model"
	cbService = "service"
	cbFlow    = "flow"
	cbFAQ     = "faq"
	cbRate    = "rate"
)

// Flow actions carried in "flow:<action>:<id>".
const (
	flowCheck   = "check"
	flowCancel  = "cancel"
	flowRestart = "restart"
	flowStatus  = "status"
)

const (
	btnUnlock    = "🔓 Unlock iPhone"
	btnIMEICheck = "📱 IMEI Check"
	btnPrices    = "💵 Prices"
	btnFAQ       = "❓ FAQ"
	btnReview    = "⭐ Leave a review"
	btnSkip      = "Skip"
)

const noticeQueueSize = 64
