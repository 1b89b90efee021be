package validation

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	IMEIMinDigits = 15
	IMEIMaxDigits = 17
)

var emailPattern = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (f FieldErrors) Add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// NormalizeIMEI keeps ASCII digits only and cuts the result to 17 digits
// (IMEI plus check digit).
func NormalizeIMEI(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)

	if len(cleaned) > IMEIMaxDigits {
		cleaned = cleaned[:IMEIMaxDigits]
	}
	return cleaned
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(strings.ToLower(email))
}

// CheckIMEI returns the inline message for an IMEI check field, or "".
func CheckIMEI(imei string) string {
	imei = NormalizeIMEI(strings.TrimSpace(imei))
	switch {
	case imei == "":
		return "Please enter your IMEI number"
	case len(imei) < IMEIMinDigits:
		return "IMEI should be at least 15 digits"
	}
	return ""
}

func CheckEmail(email string) string {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		return "Please enter your email address"
	case !IsValidEmail(email):
		return "Please enter a valid email address"
	}
	return ""
}

type UnlockForm struct {
	IMEI    string
	Model   string
	Service string
	Email   string
}

func ValidateUnlock(form UnlockForm) FieldErrors {
	errs := FieldErrors{}
	if len(NormalizeIMEI(form.IMEI)) < IMEIMinDigits {
		errs.Add("imei", "Please enter a valid IMEI number (15-17 digits)")
	}
	if strings.TrimSpace(form.Model) == "" {
		errs.Add("model", "Please select your iPhone model")
	}
	if strings.TrimSpace(form.Service) == "" {
		errs.Add("service", "Please select a service type")
	}
	if !IsValidEmail(strings.TrimSpace(form.Email)) {
		errs.Add("email", "Please enter a valid email address")
	}
	return errs
}

func ValidateIMEICheck(imei, email string) FieldErrors {
	errs := FieldErrors{}
	if msg := CheckIMEI(imei); msg != "" {
		errs.Add("imei", msg)
	}
	if msg := CheckEmail(email); msg != "" {
		errs.Add("email", msg)
	}
	return errs
}

// ValidateContact checks the contact form. Subject is only required when
// the form carries the field at all.
func ValidateContact(fields map[string]string) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(fields["name"]) == "" {
		errs.Add("name", "Please enter your name")
	}
	if email := strings.TrimSpace(fields["email"]); email == "" || !IsValidEmail(email) {
		errs.Add("email", "Please enter a valid email address")
	}
	if subject, ok := fields["subject"]; ok && strings.TrimSpace(subject) == "" {
		errs.Add("subject", "Please select a subject")
	}
	if strings.TrimSpace(fields["message"]) == "" {
		errs.Add("message", "Please enter your message")
	}
	return errs
}

type ReviewForm struct {
	OrderID string
	Rating  string
}

// ValidateReview returns the parsed 1..5 rating alongside any field errors.
func ValidateReview(form ReviewForm) (int, FieldErrors) {
	errs := FieldErrors{}
	if strings.TrimSpace(form.OrderID) == "" {
		errs.Add("order_id", "Please enter your Order ID to submit a review.")
	}

	rating, err := strconv.Atoi(strings.TrimSpace(form.Rating))
	if err != nil || rating < 1 || rating > 5 {
		errs.Add("rating", "Please select a rating.")
		rating = 0
	}
	return rating, errs
}
