package entity

import "time"

type Challenge string

const (
	ChallengeLookLeft      Challenge = "look-left"
	ChallengeLookRight     Challenge = "look-right"
	ChallengeBlinkTwice    Challenge = "blink-twice"
	ChallengeSmile         Challenge = "smile"
	ChallengeNeutralCenter Challenge = "neutral-center"
)

var ChallengeCatalog = []Challenge{
	ChallengeLookLeft,
	ChallengeLookRight,
	ChallengeBlinkTwice,
	ChallengeSmile,
	ChallengeNeutralCenter,
}

type StepState string

const (
	StepPending   StepState = "PENDING"
	StepSatisfied StepState = "SATISFIED"
	StepTimedOut  StepState = "TIMED_OUT"
)

type SessionState string

const (
	SessionPending   SessionState = "PENDING"
	SessionSatisfied SessionState = "SATISFIED"
	SessionTimedOut  SessionState = "TIMED_OUT"
)

// LandmarkFrame is one measurement from the landmark service: normalized
// nose position (0..1 of frame width/height), eye aspect ratio and
// mouth width/height ratio of the dominant face.
type LandmarkFrame struct {
	FaceDetected bool    `json:"face_detected"`
	NoseX        float64 `json:"nose_x"`
	NoseY        float64 `json:"nose_y"`
	EyeAspect    float64 `json:"eye_aspect_ratio"`
	MouthRatio   float64 `json:"mouth_ratio"`
}

type ChallengeStep struct {
	Challenge   Challenge `json:"challenge"`
	State       StepState `json:"state"`
	RequestedAt time.Time `json:"requested_at"`
	PerformedAt time.Time `json:"performed_at,omitempty"`
}

// ClientAction is one entry of the action log the capture client submits
// alongside the evidence files.
type ClientAction struct {
	Challenge   Challenge `json:"challenge"`
	RequestedAt time.Time `json:"requested_at"`
	PerformedAt time.Time `json:"performed_at"`
	Success     bool      `json:"success"`
}
