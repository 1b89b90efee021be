package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"unlockpro/internal/content"
	"unlockpro/internal/leads"
)

const maxFormBytes = 64 << 10

type FormsHandler struct {
	forms  FormService
	logger *zap.Logger
}

func NewFormsHandler(forms FormService, logger *zap.Logger) *FormsHandler {
	return &FormsHandler{
		forms:  forms,
		logger: logger,
	}
}

type imeiCheckRequest struct {
	IMEI  string `json:"imei"`
	Email string `json:"email"`
}

type reviewRequest struct {
	OrderID string `json:"order_id"`
	Name    string `json:"name"`
	Service string `json:"service"`
	Rating  any    `json:"rating"`
	Text    string `json:"text"`
}

type submissionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *FormsHandler) IMEICheck(w http.ResponseWriter, r *http.Request) {
	var req imeiCheckRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes)).Decode(&req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	res, err := h.forms.SubmitIMEICheck(r.Context(), clientKey(r), req.IMEI, req.Email)
	h.writeResult(w, res, err)
}

// Contact accepts the contact form either as JSON or as a regular form post
// and relays whatever fields it carries.
func (h *FormsHandler) Contact(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	res, err := h.forms.SubmitContact(r.Context(), fields)
	h.writeResult(w, res, err)
}

func (h *FormsHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes)).Decode(&req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	res, err := h.forms.SubmitReview(r.Context(), content.ReviewSubmission{
		OrderID: req.OrderID,
		Name:    strings.TrimSpace(req.Name),
		Service: strings.TrimSpace(req.Service),
		Text:    strings.TrimSpace(req.Text),
	}, ratingString(req.Rating))
	h.writeResult(w, res, err)
}

func (h *FormsHandler) writeResult(w http.ResponseWriter, res leads.Result, err error) {
	var throttled *leads.ThrottledError
	switch {
	case errors.As(err, &throttled):
		w.Header().Set("Retry-After", strconv.FormatInt(throttled.RetryAfter, 10))
		Write(w, http.StatusTooManyRequests, RateLimitError{
			Code:          "TOO_MANY_REQUESTS",
			Message:       "too many IMEI checks, please try again later",
			RetryAfterSec: throttled.RetryAfter,
		})
	case err != nil:
		h.logger.Error("Form submission failed", zap.Error(err))
		Write(w, http.StatusInternalServerError, APIError{
			Code:    "INTERNAL",
			Message: "internal error",
		})
	case !res.OK():
		writeValidation(w, res.Errors)
	default:
		Write(w, http.StatusOK, submissionResponse{Success: true, Message: res.Message})
	}
}

func readFields(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid json body")
		}
		fields := make(map[string]string, len(raw))
		for k, v := range raw {
			fields[k] = fieldString(v)
		}
		return fields, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body")
	}
	fields := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		fields[k] = r.PostForm.Get(k)
	}
	return fields, nil
}

func fieldString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func ratingString(v any) string {
	return strings.TrimSpace(fieldString(v))
}
