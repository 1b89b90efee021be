package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	TargetTelegram  = "telegram"
	TargetFormRelay = "form_relay"
)

type Observer interface {
	ObserveDelivery(target string, err error)
}

// BestEffort runs outbound deliveries whose failure must never reach the
// user: errors are logged and counted, then dropped.
type BestEffort struct {
	timeout  time.Duration
	observer Observer
	logger   *zap.Logger
}

func NewBestEffort(timeout time.Duration, observer Observer, logger *zap.Logger) *BestEffort {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &BestEffort{
		timeout:  timeout,
		observer: observer,
		logger:   logger,
	}
}

// Deliver runs fn synchronously. The delivery outlives the caller's
// cancellation but not the policy timeout. It reports whether fn succeeded.
func (p *BestEffort) Deliver(ctx context.Context, target string, fn func(ctx context.Context) error) bool {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	err := fn(ctx)
	if p.observer != nil {
		p.observer.ObserveDelivery(target, err)
	}
	if err != nil {
		p.logger.Warn("Best-effort delivery failed",
			zap.String("target", target),
			zap.Error(err))
		return false
	}

	p.logger.Debug("Best-effort delivery succeeded", zap.String("target", target))
	return true
}
