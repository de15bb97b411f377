package verificationService

import (
	"VidaSegura/internal/api/verification"
	"VidaSegura/internal/entity"
	"VidaSegura/pkg/utils"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLivenessDomain() *livenessDomainImpl {
	// no reapLoop, tests control session lifetimes themselves
	return &livenessDomainImpl{
		log:      testLogger(),
		utils:    utils.New(),
		sessions: make(map[string]*livenessSession),
	}
}

func fixedSession(t *testing.T, domain *livenessDomainImpl, challenges ...entity.Challenge) string {
	t.Helper()

	resp, err := domain.StartSession()
	require.NoError(t, err)

	session := domain.sessions[resp.SessionID]
	now := time.Now()
	steps := make([]entity.ChallengeStep, 0, len(challenges))
	for _, challenge := range challenges {
		steps = append(steps, entity.ChallengeStep{
			Challenge:   challenge,
			State:       entity.StepPending,
			RequestedAt: now,
		})
	}
	session.steps = steps

	return resp.SessionID
}

func faceFrame(noseX float64) entity.LandmarkFrame {
	return entity.LandmarkFrame{FaceDetected: true, NoseX: noseX, NoseY: 0.5, EyeAspect: 0.3}
}

func TestStartSession(t *testing.T) {
	domain := testLivenessDomain()

	resp, err := domain.StartSession()
	require.NoError(t, err)

	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, int64(25000), resp.TimeoutMS)
	require.Len(t, resp.Challenges, 3)

	seen := make(map[entity.Challenge]bool)
	for _, challenge := range resp.Challenges {
		assert.False(t, seen[challenge], "challenge %s repeated", challenge)
		seen[challenge] = true
	}

	state, err := domain.SessionState(resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionPending, state)
}

func TestProcessFrame_UnknownSession(t *testing.T) {
	domain := testLivenessDomain()

	_, err := domain.ProcessFrame("nope", faceFrame(0.5))
	assert.ErrorIs(t, err, verification.ErrSessionNotFound)
}

func TestProcessFrame_AdvancesInOrder(t *testing.T) {
	domain := testLivenessDomain()
	id := fixedSession(t, domain, entity.ChallengeLookLeft, entity.ChallengeSmile, entity.ChallengeNeutralCenter)

	// a smile while look-left is armed must not advance anything
	smileEarly := faceFrame(0.5)
	smileEarly.MouthRatio = 3.5
	update, err := domain.ProcessFrame(id, smileEarly)
	require.NoError(t, err)
	assert.Equal(t, 0, update.StepIndex)

	update, err = domain.ProcessFrame(id, faceFrame(0.5))
	require.NoError(t, err)
	assert.Equal(t, 0, update.StepIndex)

	// nose swings left past the displacement threshold
	update, err = domain.ProcessFrame(id, faceFrame(0.42))
	require.NoError(t, err)
	assert.Equal(t, 1, update.StepIndex)
	require.NotNil(t, update.CurrentStep)
	assert.Equal(t, entity.ChallengeSmile, *update.CurrentStep)
	assert.Equal(t, "Sonríe", update.Instruction)

	smile := faceFrame(0.5)
	smile.MouthRatio = 3.5
	update, err = domain.ProcessFrame(id, smile)
	require.NoError(t, err)
	assert.Equal(t, 2, update.StepIndex)

	update, err = domain.ProcessFrame(id, faceFrame(0.5))
	require.NoError(t, err)
	assert.Equal(t, entity.SessionSatisfied, update.State)
	assert.Nil(t, update.CurrentStep)
}

func TestProcessFrame_BlinkNeedsTwoTransitions(t *testing.T) {
	domain := testLivenessDomain()
	id := fixedSession(t, domain, entity.ChallengeBlinkTwice)

	closed := faceFrame(0.5)
	closed.EyeAspect = 0.18
	open := faceFrame(0.5)
	open.EyeAspect = 0.32

	update, err := domain.ProcessFrame(id, closed)
	require.NoError(t, err)
	assert.Equal(t, 0, update.StepIndex)

	update, err = domain.ProcessFrame(id, open)
	require.NoError(t, err)
	assert.Equal(t, 0, update.StepIndex)

	update, err = domain.ProcessFrame(id, closed)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionSatisfied, update.State)
}

func TestProcessFrame_IgnoresFramesWithoutFace(t *testing.T) {
	domain := testLivenessDomain()
	id := fixedSession(t, domain, entity.ChallengeNeutralCenter)

	update, err := domain.ProcessFrame(id, entity.LandmarkFrame{FaceDetected: false, NoseX: 0.5, NoseY: 0.5, EyeAspect: 0.3})
	require.NoError(t, err)
	assert.Equal(t, entity.SessionPending, update.State)
	assert.Equal(t, 0, update.StepIndex)
}

func TestProcessFrame_TimesOut(t *testing.T) {
	domain := testLivenessDomain()
	id := fixedSession(t, domain, entity.ChallengeNeutralCenter)
	domain.sessions[id].startedAt = time.Now().Add(-30 * time.Second)

	update, err := domain.ProcessFrame(id, faceFrame(0.5))
	require.NoError(t, err)
	assert.Equal(t, entity.SessionTimedOut, update.State)

	state, err := domain.SessionState(id)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionTimedOut, state)
}

func TestSessionState_LazyTimeout(t *testing.T) {
	domain := testLivenessDomain()
	id := fixedSession(t, domain, entity.ChallengeSmile)
	domain.sessions[id].startedAt = time.Now().Add(-26 * time.Second)

	state, err := domain.SessionState(id)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionTimedOut, state)
}

func TestResolve_SessionWinsOverActions(t *testing.T) {
	domain := testLivenessDomain()
	id := fixedSession(t, domain, entity.ChallengeSmile)
	domain.sessions[id].state = entity.SessionSatisfied

	failed := []entity.ClientAction{{Challenge: entity.ChallengeSmile, Success: false}}
	verdict := domain.Resolve(id, failed)
	require.NotNil(t, verdict)
	assert.True(t, *verdict)
}

func TestResolve_FromActionLog(t *testing.T) {
	domain := testLivenessDomain()

	verdict := domain.Resolve("", []entity.ClientAction{
		{Challenge: entity.ChallengeSmile, Success: true},
		{Challenge: entity.ChallengeLookLeft, Success: true},
	})
	require.NotNil(t, verdict)
	assert.True(t, *verdict)

	verdict = domain.Resolve("", []entity.ClientAction{
		{Challenge: entity.ChallengeSmile, Success: true},
		{Challenge: entity.ChallengeLookLeft, Success: false},
	})
	require.NotNil(t, verdict)
	assert.False(t, *verdict)
}

func TestResolve_NoVerdict(t *testing.T) {
	domain := testLivenessDomain()

	assert.Nil(t, domain.Resolve("", nil))
	assert.Nil(t, domain.Resolve("unknown-session", nil))
}
