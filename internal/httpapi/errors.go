package httpapi

import (
	"encoding/json"
	"net/http"

	"unlockpro/internal/validation"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Errors  validation.FieldErrors `json:"errors"`
}

type RateLimitError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	RetryAfterSec int64  `json:"retry_after_sec"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeValidation(w http.ResponseWriter, errs validation.FieldErrors) {
	Write(w, http.StatusUnprocessableEntity, ValidationError{
		Code:    "VALIDATION_FAILED",
		Message: "please correct the highlighted fields",
		Errors:  errs,
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	Write(w, http.StatusBadRequest, APIError{
		Code:    "BAD_REQUEST",
		Message: message,
	})
}
