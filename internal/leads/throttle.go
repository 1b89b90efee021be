package leads

import (
	"context"
	"fmt"
	"time"
)

const imeiCheckWindow = time.Hour

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Throttle caps IMEI check requests per client in fixed hourly windows.
type Throttle struct {
	store   WindowStore
	perHour int
}

func NewThrottle(store WindowStore, perHour int) *Throttle {
	if perHour < 0 {
		perHour = 0
	}
	return &Throttle{
		store:   store,
		perHour: perHour,
	}
}

// Allow counts one request for client. When the window is exhausted it
// returns false and the seconds until the window resets. A zero limit
// disables throttling.
func (t *Throttle) Allow(ctx context.Context, client string) (bool, int64, error) {
	if t == nil || t.perHour == 0 {
		return true, 0, nil
	}
	if client == "" {
		return false, 0, fmt.Errorf("client key is required")
	}
	if t.store == nil {
		return false, 0, fmt.Errorf("throttle store is nil")
	}

	count, ttl, err := t.store.IncrementWindow(ctx, "rate:imei_check:"+client, imeiCheckWindow)
	if err != nil {
		return false, 0, err
	}
	if count > int64(t.perHour) {
		return false, ceilSeconds(ttl), nil
	}
	return true, 0, nil
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 1
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	return sec
}
