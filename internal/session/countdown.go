package session

import "fmt"

type State int

const (
	Running State = iota
	Expired
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Expired:
		return "expired"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// DefaultSeconds is the lifetime of a payment prompt.
const DefaultSeconds = 180

// Countdown is the payment session timer. It holds no goroutines; the owner
// calls Tick once per elapsed second.
type Countdown struct {
	Remaining int
	State     State
}

func NewCountdown(seconds int) Countdown {
	if seconds <= 0 {
		return Countdown{State: Expired}
	}
	return Countdown{Remaining: seconds, State: Running}
}

// Tick advances the countdown by one second and reports whether this tick
// expired it. The tick that reaches zero is the expiring one.
func (c *Countdown) Tick() bool {
	if c.State == Expired {
		return false
	}
	c.Remaining--
	if c.Remaining <= 0 {
		c.Remaining = 0
		c.State = Expired
		return true
	}
	return false
}

// Display formats the remaining time the way the popup shows it.
func (c Countdown) Display() string {
	return fmt.Sprintf("%02d:%02d", c.Remaining/60, c.Remaining%60)
}
