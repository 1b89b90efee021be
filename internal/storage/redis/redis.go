package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"unlockpro/pkg/redis"
)

const defaultStateTTL = 24 * time.Hour

type Storage struct {
	client   *redis.Client
	stateTTL time.Duration
}

func New(client *redis.Client, stateTTL time.Duration) *Storage {
	if stateTTL <= 0 {
		stateTTL = defaultStateTTL
	}
	return &Storage{
		client:   client,
		stateTTL: stateTTL,
	}
}

// DIALOG STATE

func (s *Storage) SetUserDialogState(ctx context.Context, chatID int64, state *UserState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return s.client.Set(ctx, buildStateKey(chatID), data, s.stateTTL)
}

// GetUserDialogState returns an empty state for chats without a dialog.
func (s *Storage) GetUserDialogState(ctx context.Context, chatID int64) (*UserState, error) {
	data, err := s.client.Get(ctx, buildStateKey(chatID))
	if redis.IsNil(err) {
		return &UserState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}

	var state UserState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal failure: %w", err)
	}
	return &state, nil
}

func (s *Storage) DropUserDialogState(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, buildStateKey(chatID))
}

func buildStateKey(chatID int64) string {
	return fmt.Sprintf("state:%d", chatID)
}

// FIXED WINDOWS

// IncrementWindow counts one hit in the window stored under key and returns
// the count so far together with the time left in the window.
func (s *Storage) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if key == "" || window <= 0 {
		return 0, 0, fmt.Errorf("invalid rate window payload")
	}

	count, err := s.client.Incr(ctx, key)
	if err != nil {
		return 0, 0, fmt.Errorf("increment rate key: %w", err)
	}

	ttl, err := s.client.TTL(ctx, key)
	if err != nil {
		return 0, 0, fmt.Errorf("read rate key ttl: %w", err)
	}
	// A key without expiry opens a new window, also when an earlier Expire
	// was lost.
	if ttl <= 0 {
		if _, err := s.client.Expire(ctx, key, window); err != nil {
			return 0, 0, fmt.Errorf("set rate key ttl: %w", err)
		}
		ttl = window
	}
	return count, ttl, nil
}
