package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"unlockpro/internal/content"
	"unlockpro/internal/notify"
	"unlockpro/internal/storage"
	"unlockpro/internal/unlock"
	"unlockpro/internal/validation"
	"unlockpro/pkg/api"
)

const (
	IMEICheckSuccess = "Your phone's status report will be emailed to you within 24 hours."
	ContactSuccess   = "Thank you! Your message has been sent successfully."
	ReviewSuccess    = "Thank you for sharing your experience. Your review will be published after moderation."
)

const (
	formIMEICheck = "imei_check"
	formContact   = "contact"
	formReview    = "review"
	formUnlock    = "unlock"
)

// ThrottledError is returned when a client has used up its IMEI checks.
type ThrottledError struct {
	RetryAfter int64
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("too many requests, retry in %ds", e.RetryAfter)
}

type Journal interface {
	SaveLead(ctx context.Context, lead storage.Lead) (int64, error)
}

type Relay interface {
	Submit(ctx context.Context, fields map[string]string) (api.SubmitResponse, error)
}

type Notifier interface {
	IMEICheck(ctx context.Context, imei, email string) error
	UnlockRequest(ctx context.Context, s unlock.Snapshot) error
	Review(ctx context.Context, r content.ReviewSubmission) error
}

type Observer interface {
	ObserveSubmission(form, result string)
}

// Result is what the user is shown after a submission.
type Result struct {
	Message string                 `json:"message,omitempty"`
	Errors  validation.FieldErrors `json:"errors,omitempty"`
}

func (r Result) OK() bool {
	return r.Errors.Empty()
}

type Deps struct {
	// Journal may be nil when no database is configured.
	Journal  Journal
	Relay    Relay
	Notifier Notifier
	Policy   *notify.BestEffort
	Throttle *Throttle
	Observer Observer
}

// Service handles the site's forms. Outbound calls go through the
// best-effort policy, so only validation and throttling reach the caller.
type Service struct {
	deps   Deps
	logger *zap.Logger
}

func NewService(deps Deps, logger *zap.Logger) *Service {
	if deps.Policy == nil {
		deps.Policy = notify.NewBestEffort(0, nil, logger)
	}
	return &Service{
		deps:   deps,
		logger: logger,
	}
}

func (s *Service) SubmitIMEICheck(ctx context.Context, client, imei, email string) (Result, error) {
	imei = validation.NormalizeIMEI(strings.TrimSpace(imei))
	email = strings.TrimSpace(email)

	if errs := validation.ValidateIMEICheck(imei, email); !errs.Empty() {
		s.observe(formIMEICheck, "invalid")
		return Result{Errors: errs}, nil
	}

	allowed, retryAfter, err := s.deps.Throttle.Allow(ctx, client)
	if err != nil {
		s.logger.Warn("IMEI check throttle unavailable, allowing request",
			zap.String("client", client),
			zap.Error(err))
	} else if !allowed {
		s.observe(formIMEICheck, "throttled")
		return Result{}, &ThrottledError{RetryAfter: retryAfter}
	}

	if s.deps.Notifier != nil {
		s.deps.Policy.Deliver(ctx, notify.TargetTelegram, func(ctx context.Context) error {
			return s.deps.Notifier.IMEICheck(ctx, imei, email)
		})
	}

	s.journal(ctx, storage.Lead{
		Kind:  storage.KindIMEICheck,
		IMEI:  imei,
		Email: email,
	})

	s.observe(formIMEICheck, "accepted")
	s.logger.Info("IMEI check requested", zap.String("client", client))
	return Result{Message: IMEICheckSuccess}, nil
}

// SubmitContact relays every field of the contact form. Relay failures are
// not shown to the user.
func (s *Service) SubmitContact(ctx context.Context, fields map[string]string) (Result, error) {
	if errs := validation.ValidateContact(fields); !errs.Empty() {
		s.observe(formContact, "invalid")
		return Result{Errors: errs}, nil
	}

	message := ContactSuccess
	if s.deps.Relay != nil {
		s.deps.Policy.Deliver(ctx, notify.TargetFormRelay, func(ctx context.Context) error {
			resp, err := s.deps.Relay.Submit(ctx, fields)
			if err != nil {
				return err
			}
			if !resp.Success {
				return errors.New("relay reported failure: " + resp.Message)
			}
			if resp.Message != "" {
				message = resp.Message
			}
			return nil
		})
	}

	s.journal(ctx, storage.Lead{
		Kind:    storage.KindContact,
		Name:    strings.TrimSpace(fields["name"]),
		Email:   strings.TrimSpace(fields["email"]),
		Subject: strings.TrimSpace(fields["subject"]),
		Message: strings.TrimSpace(fields["message"]),
	})

	s.observe(formContact, "accepted")
	return Result{Message: message}, nil
}

func (s *Service) SubmitReview(ctx context.Context, sub content.ReviewSubmission, rating string) (Result, error) {
	parsed, errs := validation.ValidateReview(validation.ReviewForm{
		OrderID: sub.OrderID,
		Rating:  rating,
	})
	if !errs.Empty() {
		s.observe(formReview, "invalid")
		return Result{Errors: errs}, nil
	}

	sub.OrderID = strings.TrimSpace(sub.OrderID)
	sub.Rating = parsed

	if s.deps.Notifier != nil {
		s.deps.Policy.Deliver(ctx, notify.TargetTelegram, func(ctx context.Context) error {
			return s.deps.Notifier.Review(ctx, sub)
		})
	}

	s.journal(ctx, storage.Lead{
		Kind:    storage.KindReview,
		OrderID: sub.OrderID,
		Name:    sub.Name,
		Service: sub.Service,
		Message: sub.Text,
		Rating:  sub.Rating,
	})

	s.observe(formReview, "accepted")
	return Result{Message: ReviewSuccess}, nil
}

// RecordUnlock notifies the operator about a new unlock flow and journals
// it.
func (s *Service) RecordUnlock(ctx context.Context, snap unlock.Snapshot) {
	if s.deps.Notifier != nil {
		s.deps.Policy.Deliver(ctx, notify.TargetTelegram, func(ctx context.Context) error {
			return s.deps.Notifier.UnlockRequest(ctx, snap)
		})
	}

	s.journal(ctx, storage.Lead{
		Kind:    storage.KindUnlock,
		FlowID:  snap.ID,
		Model:   snap.Quote.Model,
		Service: snap.Quote.Service,
		IMEI:    snap.IMEI,
		Email:   snap.Email,
		Price:   snap.Quote.Price,
		Channel: snap.Channel,
	})

	s.observe(formUnlock, "accepted")
}

func (s *Service) journal(ctx context.Context, lead storage.Lead) {
	if s.deps.Journal == nil {
		return
	}
	if _, err := s.deps.Journal.SaveLead(context.WithoutCancel(ctx), lead); err != nil {
		s.logger.Error("Failed to journal lead",
			zap.String("kind", lead.Kind),
			zap.Error(err))
	}
}

func (s *Service) observe(form, result string) {
	if s.deps.Observer != nil {
		s.deps.Observer.ObserveSubmission(form, result)
	}
}
