package unlock

import (
	"errors"

	"unlockpro/internal/session"
)

type Stage string

const (
	StageSubmitted       Stage = "submitted"
	StageAwaitingPayment Stage = "awaiting_payment"
	StageChecking        Stage = "checking"
	StagePending         Stage = "pending"
	StageExpired         Stage = "expired"
	StageCancelled       Stage = "cancelled"
)

func (s Stage) Terminal() bool {
	return s == StagePending || s == StageExpired || s == StageCancelled
}

var (
	ErrNotFound     = errors.New("unlock flow not found")
	ErrInvalidStage = errors.New("action not allowed in current stage")
)

type event int

const (
	evSubmitElapsed event = iota
	evTick
	evCheck
	evCheckElapsed
	evCancel
	evRestart
)

type flowState struct {
	stage     Stage
	countdown session.Countdown
}

// transition is the whole flow state machine. It never blocks and never
// touches anything but its arguments.
func transition(s flowState, ev event, seconds int) (flowState, error) {
	switch ev {
	case evSubmitElapsed:
		if s.stage != StageSubmitted {
			return s, ErrInvalidStage
		}
		s.stage = StageAwaitingPayment
		s.countdown = session.NewCountdown(seconds)
		if s.countdown.State == session.Expired {
			s.stage = StageExpired
		}

	case evTick:
		if s.stage != StageAwaitingPayment && s.stage != StageChecking {
			return s, ErrInvalidStage
		}
		if s.countdown.Tick() {
			s.stage = StageExpired
		}

	case evCheck:
		if s.stage != StageAwaitingPayment {
			return s, ErrInvalidStage
		}
		s.stage = StageChecking

	case evCheckElapsed:
		if s.stage != StageChecking {
			return s, ErrInvalidStage
		}
		s.stage = StagePending

	case evCancel:
		if s.stage == StageCancelled {
			return s, ErrInvalidStage
		}
		if !s.stage.Terminal() {
			s.stage = StageCancelled
		}

	case evRestart:
		if s.stage != StageExpired {
			return s, ErrInvalidStage
		}
	}
	return s, nil
}
