package unlock

import (
	"time"

	"go.uber.org/zap"

	"unlockpro/internal/pricing"
	"unlockpro/internal/session"
)

type Request struct {
	Model   string
	Service string
	IMEI    string
	Email   string
	// Channel and ChatID tell listeners where the flow was started.
	Channel string
	ChatID  int64
}

const (
	ChannelWeb      = "web"
	ChannelTelegram = "telegram"
)

type Snapshot struct {
	ID        string        `json:"id"`
	Stage     Stage         `json:"stage"`
	Quote     pricing.Quote `json:"quote"`
	IMEI      string        `json:"imei"`
	Email     string        `json:"email"`
	Remaining int           `json:"remaining_seconds"`
	Timer     string        `json:"timer"`
	Notice    *Notice       `json:"notice,omitempty"`
	Channel   string        `json:"channel"`
	ChatID    int64         `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
}

type cmdKind int

const (
	cmdSnapshot cmdKind = iota
	cmdCheck
	cmdCancel
	cmdRestart
)

type command struct {
	kind  cmdKind
	reply chan result
}

type result struct {
	snap Snapshot
	err  error
}

// flow owns one payment session. Every field below cmds is touched only by
// the run goroutine.
type flow struct {
	id        string
	req       Request
	quote     pricing.Quote
	createdAt time.Time
	opts      Options
	logger    *zap.Logger

	cmds      chan command
	done      chan struct{}
	submitted <-chan time.Time

	notify func(Snapshot)
	exit   func(id string)

	state flowState
}

func (f *flow) snapshot() Snapshot {
	s := Snapshot{
		ID:        f.id,
		Stage:     f.state.stage,
		Quote:     f.quote,
		IMEI:      f.req.IMEI,
		Email:     f.req.Email,
		Channel:   f.req.Channel,
		ChatID:    f.req.ChatID,
		CreatedAt: f.createdAt,
		Notice:    noticeFor(f.state.stage, f.opts.SupportURL),
	}
	if f.state.stage == StageSubmitted {
		s.Remaining = f.opts.Seconds
	} else {
		s.Remaining = f.state.countdown.Remaining
	}
	s.Timer = session.Countdown{Remaining: s.Remaining}.Display()
	return s
}

func (f *flow) apply(ev event) error {
	next, err := transition(f.state, ev, f.opts.Seconds)
	if err != nil {
		return err
	}
	changed := next.stage != f.state.stage
	f.state = next
	if changed {
		f.logger.Debug("Unlock flow stage changed",
			zap.String("flow_id", f.id),
			zap.String("stage", string(next.stage)))
		f.notify(f.snapshot())
	}
	return nil
}

func (f *flow) run() {
	defer close(f.done)
	defer f.exit(f.id)

	clock := f.opts.Clock
	submitted := f.submitted

	var (
		ticker    session.Ticker
		ticks     <-chan time.Time
		checked   <-chan time.Time
		forgotten <-chan time.Time
	)
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			ticks = nil
		}
	}
	defer stopTicker()

	settle := func() {
		if f.state.stage.Terminal() {
			stopTicker()
			checked = nil
			if forgotten == nil {
				forgotten = clock.After(f.opts.Retention)
			}
		}
	}

	for {
		select {
		case <-submitted:
			submitted = nil
			if err := f.apply(evSubmitElapsed); err == nil && f.state.stage == StageAwaitingPayment {
				ticker = clock.NewTicker(f.opts.TickInterval)
				ticks = ticker.C()
			}
			settle()

		case <-ticks:
			_ = f.apply(evTick)
			settle()

		case <-checked:
			checked = nil
			_ = f.apply(evCheckElapsed)
			settle()

		case <-forgotten:
			return

		case cmd := <-f.cmds:
			switch cmd.kind {
			case cmdSnapshot:
				cmd.reply <- result{snap: f.snapshot()}

			case cmdCheck:
				err := f.apply(evCheck)
				if err == nil {
					checked = clock.After(f.opts.CheckDelay)
				}
				cmd.reply <- result{snap: f.snapshot(), err: err}

			case cmdCancel:
				err := f.apply(evCancel)
				cmd.reply <- result{snap: f.snapshot(), err: err}
				if err == nil {
					return
				}

			case cmdRestart:
				err := f.apply(evRestart)
				cmd.reply <- result{snap: f.snapshot(), err: err}
				if err == nil {
					return
				}
			}
		}
	}
}

// send delivers a command unless the flow already finished.
func (f *flow) send(kind cmdKind) (Snapshot, error) {
	cmd := command{kind: kind, reply: make(chan result, 1)}
	select {
	case f.cmds <- cmd:
	case <-f.done:
		return Snapshot{}, ErrNotFound
	}
	res := <-cmd.reply
	return res.snap, res.err
}
