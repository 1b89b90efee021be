package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unlockpro/pkg/redis"
)

func newMiniRedisStorage(t *testing.T) (*Storage, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.New(mr.Addr(), "", 0)
	t.Cleanup(client.Close)

	return New(client, time.Hour), mr
}

func TestDialogStateRoundTrip(t *testing.T) {
	s, mr := newMiniRedisStorage(t)
	ctx := context.Background()

	state, err := s.GetUserDialogState(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, &UserState{}, state)

	want := &UserState{
		Step:   "unlock_imei",
		Unlock: &UnlockDraft{Model: "iphone-14", Service: "icloud"},
	}
	require.NoError(t, s.SetUserDialogState(ctx, 42, want))
	assert.Equal(t, time.Hour, mr.TTL("state:42"))

	got, err := s.GetUserDialogState(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, s.DropUserDialogState(ctx, 42))
	assert.False(t, mr.Exists("state:42"))
}

func TestDialogStateExpires(t *testing.T) {
	s, mr := newMiniRedisStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SetUserDialogState(ctx, 7, &UserState{Step: "imei_email"}))
	mr.FastForward(2 * time.Hour)

	got, err := s.GetUserDialogState(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, got.Step)
}

func TestDialogStateCorrupted(t *testing.T) {
	s, mr := newMiniRedisStorage(t)
	require.NoError(t, mr.Set("state:9", "{not json"))

	_, err := s.GetUserDialogState(context.Background(), 9)
	assert.Error(t, err)
}

func TestIncrementWindow(t *testing.T) {
	s, mr := newMiniRedisStorage(t)
	ctx := context.Background()

	count, ttl, err := s.IncrementWindow(ctx, "rate:imei:1.2.3.4", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, time.Hour, ttl)

	mr.FastForward(10 * time.Minute)
	count, ttl, err = s.IncrementWindow(ctx, "rate:imei:1.2.3.4", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 50*time.Minute, ttl)

	mr.FastForward(time.Hour)
	count, _, err = s.IncrementWindow(ctx, "rate:imei:1.2.3.4", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, _, err = s.IncrementWindow(ctx, "", time.Hour)
	assert.Error(t, err)
}

func TestIncrementWindowRepairsMissingExpiry(t *testing.T) {
	s, mr := newMiniRedisStorage(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("rate:imei:1.2.3.4", "7"))

	count, ttl, err := s.IncrementWindow(ctx, "rate:imei:1.2.3.4", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(8), count)
	assert.Equal(t, time.Hour, ttl)
	assert.Equal(t, time.Hour, mr.TTL("rate:imei:1.2.3.4"))

	mr.FastForward(time.Hour)
	count, _, err = s.IncrementWindow(ctx, "rate:imei:1.2.3.4", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
