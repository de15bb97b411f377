package verificationService

import (
	"VidaSegura/internal/api/verification"
	"VidaSegura/internal/entity"
	"VidaSegura/pkg/utils"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	sessionTimeout     = 25 * time.Second
	challengesPerRun   = 3
	sessionRetention   = 10 * time.Minute
	frameWindowSize    = 15
	headTurnThreshold  = 0.055
	blinkCloseEAR      = 0.23
	blinkOpenEAR       = 0.27
	smileRatio         = 2.8
	centerNoseToleranX = 0.08
	centerNoseToleranY = 0.10
)

type livenessSession struct {
	mu sync.Mutex

	id        string
	steps     []entity.ChallengeStep
	state     entity.SessionState
	current   int
	startedAt time.Time

	// per-step detector state, reset on every step advance
	window     []entity.LandmarkFrame
	blinkCount int
	eyesOpen   bool
	actions    []entity.ClientAction
}

type livenessDomainImpl struct {
	log   *logrus.Logger
	utils utils.IUtils

	mu       sync.RWMutex
	sessions map[string]*livenessSession
}

func newLivenessDomain(log *logrus.Logger, utilsPkg utils.IUtils) *livenessDomainImpl {
	domain := &livenessDomainImpl{
		log:      log,
		utils:    utilsPkg,
		sessions: make(map[string]*livenessSession),
	}

	go domain.reapLoop()

	return domain
}

// StartSession creates a session with three random challenges. The client
// must satisfy them in order before the timeout.
func (s *livenessDomainImpl) StartSession() (verification.StartLivenessResponse, error) {
	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return verification.StartLivenessResponse{}, verification.ErrInternal
	}

	catalog := make([]entity.Challenge, len(entity.ChallengeCatalog))
	copy(catalog, entity.ChallengeCatalog)
	rand.Shuffle(len(catalog), func(i, j int) {
		catalog[i], catalog[j] = catalog[j], catalog[i]
	})

	now := time.Now()
	steps := make([]entity.ChallengeStep, 0, challengesPerRun)
	challenges := make([]entity.Challenge, 0, challengesPerRun)
	for _, challenge := range catalog[:challengesPerRun] {
		steps = append(steps, entity.ChallengeStep{
			Challenge:   challenge,
			State:       entity.StepPending,
			RequestedAt: now,
		})
		challenges = append(challenges, challenge)
	}

	session := &livenessSession{
		id:        id,
		steps:     steps,
		state:     entity.SessionPending,
		startedAt: now,
		eyesOpen:  true,
	}

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	return verification.StartLivenessResponse{
		SessionID:  id,
		Challenges: challenges,
		TimeoutMS:  sessionTimeout.Milliseconds(),
	}, nil
}

// ProcessFrame feeds one landmark measurement into the session. Only the
// detector of the currently armed step runs; gestures matching later steps
// are ignored until their step comes up.
func (s *livenessDomainImpl) ProcessFrame(sessionID string, frame entity.LandmarkFrame) (verification.LivenessUpdate, error) {
	session, err := s.get(sessionID)
	if err != nil {
		return verification.LivenessUpdate{}, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.state != entity.SessionPending {
		return session.update(), nil
	}

	if time.Since(session.startedAt) > sessionTimeout {
		session.timeOut()
		return session.update(), nil
	}

	if !frame.FaceDetected {
		return session.update(), nil
	}

	session.window = append(session.window, frame)
	if len(session.window) > frameWindowSize {
		session.window = session.window[1:]
	}

	step := &session.steps[session.current]
	if session.detect(step.Challenge, frame) {
		now := time.Now()
		step.State = entity.StepSatisfied
		step.PerformedAt = now
		session.actions = append(session.actions, entity.ClientAction{
			Challenge:   step.Challenge,
			RequestedAt: step.RequestedAt,
			PerformedAt: now,
			Success:     true,
		})

		session.current++
		session.window = session.window[:0]
		session.blinkCount = 0
		session.eyesOpen = true

		if session.current >= len(session.steps) {
			session.state = entity.SessionSatisfied
		} else {
			session.steps[session.current].RequestedAt = now
		}
	}

	return session.update(), nil
}

func (s *livenessDomainImpl) SessionState(sessionID string) (entity.SessionState, error) {
	session, err := s.get(sessionID)
	if err != nil {
		return "", err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.state == entity.SessionPending && time.Since(session.startedAt) > sessionTimeout {
		session.timeOut()
	}

	return session.state, nil
}

// Resolve determines the liveness verdict for a pipeline run. A known
// session wins over the client action log; with neither there is no
// verdict.
func (s *livenessDomainImpl) Resolve(sessionID string, actions []entity.ClientAction) *bool {
	if sessionID != "" {
		if state, err := s.SessionState(sessionID); err == nil {
			passed := state == entity.SessionSatisfied
			return &passed
		}
	}

	if len(actions) == 0 {
		return nil
	}

	passed := true
	for _, action := range actions {
		if !action.Success {
			passed = false
			break
		}
	}

	return &passed
}

func (s *livenessDomainImpl) get(sessionID string) (*livenessSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, verification.ErrSessionNotFound
	}

	return session, nil
}

func (s *livenessDomainImpl) reapLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-sessionRetention)

		s.mu.Lock()
		for id, session := range s.sessions {
			session.mu.Lock()
			stale := session.startedAt.Before(cutoff)
			session.mu.Unlock()
			if stale {
				delete(s.sessions, id)
			}
		}
		s.mu.Unlock()
	}
}

func (session *livenessSession) timeOut() {
	session.state = entity.SessionTimedOut
	for i := range session.steps {
		if session.steps[i].State == entity.StepPending {
			session.steps[i].State = entity.StepTimedOut
		}
	}
}

func (session *livenessSession) update() verification.LivenessUpdate {
	out := verification.LivenessUpdate{
		State:     session.state,
		StepIndex: session.current,
	}

	if session.state == entity.SessionPending && session.current < len(session.steps) {
		challenge := session.steps[session.current].Challenge
		out.CurrentStep = &challenge
		out.Instruction = instructionFor(challenge)
	}

	return out
}

func (session *livenessSession) detect(challenge entity.Challenge, frame entity.LandmarkFrame) bool {
	switch challenge {
	case entity.ChallengeLookLeft:
		return session.headTurned(frame, true)
	case entity.ChallengeLookRight:
		return session.headTurned(frame, false)
	case entity.ChallengeBlinkTwice:
		return session.blinked(frame)
	case entity.ChallengeSmile:
		return frame.MouthRatio > smileRatio
	case entity.ChallengeNeutralCenter:
		return frame.EyeAspect > blinkOpenEAR &&
			abs(frame.NoseX-0.5) < centerNoseToleranX &&
			abs(frame.NoseY-0.5) < centerNoseToleranY
	default:
		return false
	}
}

// headTurned fires when the nose x-range across the rolling window exceeds
// the displacement threshold and the latest frame sits on the requested
// side of the window mean.
func (session *livenessSession) headTurned(frame entity.LandmarkFrame, left bool) bool {
	if len(session.window) < 3 {
		return false
	}

	minX, maxX, sum := session.window[0].NoseX, session.window[0].NoseX, 0.0
	for _, f := range session.window {
		if f.NoseX < minX {
			minX = f.NoseX
		}
		if f.NoseX > maxX {
			maxX = f.NoseX
		}
		sum += f.NoseX
	}

	if maxX-minX < headTurnThreshold {
		return false
	}

	mean := sum / float64(len(session.window))
	if left {
		return frame.NoseX < mean
	}
	return frame.NoseX > mean
}

func (session *livenessSession) blinked(frame entity.LandmarkFrame) bool {
	if session.eyesOpen && frame.EyeAspect < blinkCloseEAR {
		session.blinkCount++
		session.eyesOpen = false
	} else if !session.eyesOpen && frame.EyeAspect > blinkOpenEAR {
		session.eyesOpen = true
	}

	return session.blinkCount >= 2
}

func instructionFor(challenge entity.Challenge) string {
	switch challenge {
	case entity.ChallengeLookLeft:
		return "Gira la cabeza a la izquierda"
	case entity.ChallengeLookRight:
		return "Gira la cabeza a la derecha"
	case entity.ChallengeBlinkTwice:
		return "Parpadea dos veces"
	case entity.ChallengeSmile:
		return "Sonríe"
	case entity.ChallengeNeutralCenter:
		return "Mira al frente con expresión neutral"
	default:
		return ""
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
