package unlock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unlockpro/internal/session"
)

func TestTransitionHappyPath(t *testing.T) {
	s := flowState{stage: StageSubmitted}

	s, err := transition(s, evSubmitElapsed, 3)
	require.NoError(t, err)
	assert.Equal(t, StageAwaitingPayment, s.stage)
	assert.Equal(t, 3, s.countdown.Remaining)

	s, err = transition(s, evTick, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, s.countdown.Remaining)

	s, err = transition(s, evCheck, 3)
	require.NoError(t, err)
	assert.Equal(t, StageChecking, s.stage)

	// the countdown keeps running while the payment is being checked
	s, err = transition(s, evTick, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, s.countdown.Remaining)

	s, err = transition(s, evCheckElapsed, 3)
	require.NoError(t, err)
	assert.Equal(t, StagePending, s.stage)

	_, err = transition(s, evTick, 3)
	assert.ErrorIs(t, err, ErrInvalidStage)
}

func TestTransitionExpiryWinsOverCheck(t *testing.T) {
	s := flowState{stage: StageChecking, countdown: session.NewCountdown(1)}

	s, err := transition(s, evTick, 1)
	require.NoError(t, err)
	require.Equal(t, StageExpired, s.stage)

	_, err = transition(s, evCheckElapsed, 1)
	assert.ErrorIs(t, err, ErrInvalidStage)
}

func TestTransitionRejectsOutOfOrderActions(t *testing.T) {
	s := flowState{stage: StageSubmitted}

	_, err := transition(s, evCheck, 180)
	assert.ErrorIs(t, err, ErrInvalidStage)

	_, err = transition(s, evRestart, 180)
	assert.ErrorIs(t, err, ErrInvalidStage)

	_, err = transition(s, evTick, 180)
	assert.ErrorIs(t, err, ErrInvalidStage)
}

func TestTransitionCancel(t *testing.T) {
	for _, stage := range []Stage{StageSubmitted, StageAwaitingPayment, StageChecking} {
		s, err := transition(flowState{stage: stage}, evCancel, 180)
		require.NoError(t, err)
		assert.Equal(t, StageCancelled, s.stage)
	}

	// dismissing a finished flow keeps its outcome
	s, err := transition(flowState{stage: StageExpired}, evCancel, 180)
	require.NoError(t, err)
	assert.Equal(t, StageExpired, s.stage)

	_, err = transition(flowState{stage: StageCancelled}, evCancel, 180)
	assert.ErrorIs(t, err, ErrInvalidStage)
}

func TestNoticeForTerminalStages(t *testing.T) {
	n := noticeFor(StageExpired, "https://wa.me/1")
	require.NotNil(t, n)
	assert.Equal(t, []string{ActionRestart}, n.Actions)
	assert.Equal(t, "https://wa.me/1", n.SupportURL)

	n = noticeFor(StagePending, "https://wa.me/1")
	require.NotNil(t, n)
	assert.Empty(t, n.Actions)

	assert.Nil(t, noticeFor(StageAwaitingPayment, ""))
}
