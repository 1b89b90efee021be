package unlock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"unlockpro/internal/pricing"
	"unlockpro/internal/session"
	"unlockpro/internal/validation"
)

type Options struct {
	Clock        session.Clock
	Seconds      int
	TickInterval time.Duration
	SubmitDelay  time.Duration
	CheckDelay   time.Duration
	// Retention is how long a finished flow stays readable.
	Retention  time.Duration
	SupportURL string
}

func DefaultOptions() Options {
	return Options{
		Clock:        session.RealClock{},
		Seconds:      session.DefaultSeconds,
		TickInterval: time.Second,
		SubmitDelay:  2 * time.Second,
		CheckDelay:   2 * time.Second,
		Retention:    10 * time.Minute,
		SupportURL:   "https://wa.me/447401787614",
	}
}

// Listener is called from the flow goroutine on every stage change. It must
// not call back into the Manager for the same flow.
type Listener func(Snapshot)

type Observer interface {
	ObserveFlow(stage string)
}

type Manager struct {
	opts     Options
	logger   *zap.Logger
	observer Observer

	mu        sync.Mutex
	flows     map[string]*flow
	listeners []Listener
	now       func() time.Time
}

func NewManager(opts Options, observer Observer, logger *zap.Logger) *Manager {
	if opts.Clock == nil {
		opts.Clock = session.RealClock{}
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	return &Manager{
		opts:     opts,
		logger:   logger,
		observer: observer,
		flows:    make(map[string]*flow),
		now:      time.Now,
	}
}

func (m *Manager) AddListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Start validates the request, prices it and opens a new flow in the
// submitted stage.
func (m *Manager) Start(ctx context.Context, req Request) (Snapshot, validation.FieldErrors, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, nil, err
	}

	req.IMEI = validation.NormalizeIMEI(req.IMEI)
	req.Email = strings.TrimSpace(req.Email)
	if req.Channel == "" {
		req.Channel = ChannelWeb
	}

	errs := validation.ValidateUnlock(validation.UnlockForm{
		IMEI:    req.IMEI,
		Model:   req.Model,
		Service: req.Service,
		Email:   req.Email,
	})
	if !errs.Empty() {
		return Snapshot{}, errs, nil
	}

	f := &flow{
		id:        uuid.NewString(),
		req:       req,
		quote:     pricing.NewQuote(req.Model, req.Service),
		createdAt: m.now(),
		opts:      m.opts,
		logger:    m.logger,
		cmds:      make(chan command),
		done:      make(chan struct{}),
		state:     flowState{stage: StageSubmitted},
		submitted: m.opts.Clock.After(m.opts.SubmitDelay),
	}
	f.notify = m.dispatch
	f.exit = m.forget

	m.mu.Lock()
	m.flows[f.id] = f
	m.mu.Unlock()

	snap := f.snapshot()
	go f.run()

	m.observe(StageSubmitted)
	m.logger.Info("Unlock flow started",
		zap.String("flow_id", f.id),
		zap.String("model", req.Model),
		zap.String("service", req.Service),
		zap.Int("price", f.quote.Price),
		zap.String("channel", req.Channel))

	return snap, nil, nil
}

func (m *Manager) Get(id string) (Snapshot, error) {
	return m.send(id, cmdSnapshot)
}

// Check is the "check payment" action; it only succeeds while the payment
// prompt is showing.
func (m *Manager) Check(id string) (Snapshot, error) {
	return m.send(id, cmdCheck)
}

// Cancel dismisses the flow at any stage. Once it returns the flow is gone
// and no further stage change is delivered.
func (m *Manager) Cancel(id string) (Snapshot, error) {
	return m.send(id, cmdCancel)
}

// Restart is the recovery action of an expired flow. It tears the flow down
// and leaves starting over to the caller.
func (m *Manager) Restart(id string) (Snapshot, error) {
	return m.send(id, cmdRestart)
}

// Active returns the number of flows still held.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.flows)
}

// Shutdown cancels every flow.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.flows))
	for id := range m.flows {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		_, _ = m.Cancel(id)
	}
}

func (m *Manager) send(id string, kind cmdKind) (Snapshot, error) {
	m.mu.Lock()
	f, ok := m.flows[id]
	m.mu.Unlock()
	if !ok {
		return Snapshot{}, ErrNotFound
	}

	snap, err := f.send(kind)
	if err != nil {
		return snap, fmt.Errorf("flow %s: %w", id, err)
	}
	return snap, nil
}

func (m *Manager) dispatch(s Snapshot) {
	m.observe(s.Stage)

	m.mu.Lock()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, l := range listeners {
		l(s)
	}
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	delete(m.flows, id)
	m.mu.Unlock()
}

func (m *Manager) observe(stage Stage) {
	if m.observer != nil {
		m.observer.ObserveFlow(string(stage))
	}
}
