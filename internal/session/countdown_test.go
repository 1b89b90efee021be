package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownExpiresAfterExactTicks(t *testing.T) {
	c := NewCountdown(DefaultSeconds)
	require.Equal(t, "03:00", c.Display())

	for i := 1; i < DefaultSeconds; i++ {
		require.False(t, c.Tick(), "expired early at tick %d", i)
		require.Equal(t, Running, c.State)
		require.Equal(t, DefaultSeconds-i, c.Remaining)
	}

	require.True(t, c.Tick())
	assert.Equal(t, Expired, c.State)
	assert.Equal(t, 0, c.Remaining)
	assert.Equal(t, "00:00", c.Display())
}

func TestCountdownIgnoresTicksAfterExpiry(t *testing.T) {
	c := NewCountdown(1)
	require.True(t, c.Tick())

	assert.False(t, c.Tick())
	assert.Equal(t, Expired, c.State)
	assert.Equal(t, 0, c.Remaining)
}

func TestCountdownDisplay(t *testing.T) {
	c := NewCountdown(DefaultSeconds)
	c.Tick()
	assert.Equal(t, "02:59", c.Display())

	c = NewCountdown(61)
	assert.Equal(t, "01:01", c.Display())
}

func TestNewCountdownNonPositive(t *testing.T) {
	c := NewCountdown(0)
	assert.Equal(t, Expired, c.State)
}

func TestManualClockTicks(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	ticker := clock.NewTicker(time.Second)

	got := make(chan int, 1)
	go func() {
		n := 0
		for range ticker.C() {
			n++
			if n == 3 {
				got <- n
				return
			}
		}
	}()

	clock.Advance(3*time.Second, time.Second)
	select {
	case n := <-got:
		assert.Equal(t, 3, n)
	case <-time.After(time.Second):
		t.Fatal("ticks were not delivered")
	}
	ticker.Stop()

	// stopped tickers never block Advance
	clock.Advance(5*time.Second, time.Second)
}

func TestManualClockAfter(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	ch := clock.After(2 * time.Second)

	clock.Advance(time.Second, time.Second)
	select {
	case <-ch:
		t.Fatal("fired early")
	default:
	}

	clock.Advance(time.Second, time.Second)
	select {
	case <-ch:
	default:
		t.Fatal("did not fire")
	}
}
