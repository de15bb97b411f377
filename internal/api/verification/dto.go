package verification

import "VidaSegura/internal/entity"

type EvidenceKind string

const (
	EvidenceNone     EvidenceKind = "NONE"
	EvidenceImage    EvidenceKind = "IMAGE"
	EvidenceSequence EvidenceKind = "SEQUENCE"
	EvidenceVideo    EvidenceKind = "VIDEO"
)

// TaggedFrame is one selfie of a challenge-tagged capture sequence.
type TaggedFrame struct {
	Challenge entity.Challenge
	Data      []byte
}

type Evidence struct {
	Kind   EvidenceKind
	Image  []byte
	Frames []TaggedFrame
	Video  []byte
}

// VerifyRequest is the decomposed submission bundle. It is immutable once
// built by the handler and never persisted directly.
type VerifyRequest struct {
	UserID       string
	Document     []byte
	DocumentName string
	Evidence     Evidence
	ActionsLog   []entity.ClientAction
	SessionID    string
	Device       string
	IP           string
}

type VerifyResponse struct {
	Success         bool                `json:"exito"`
	Message         string              `json:"mensaje"`
	Match           bool                `json:"rostro_coincide"`
	SimilarityScore *float64            `json:"similarity_score"`
	DocumentType    entity.DocumentType `json:"tipo_documento"`
	Identifier      string              `json:"identificador,omitempty"`
	OCRSummary      string              `json:"ocr_resumen,omitempty"`
	PreviewURL      string              `json:"vista_previa,omitempty"`
}

type ReferenceFaceRequest struct {
	UserID      string `json:"usuario_id" validate:"required"`
	ImageBase64 string `json:"imagen_base64" validate:"required"`
}

type StartLivenessResponse struct {
	SessionID  string             `json:"session_id"`
	Challenges []entity.Challenge `json:"challenges"`
	TimeoutMS  int64              `json:"timeout_ms"`
}

// LivenessUpdate is pushed to the capture client after every processed frame.
type LivenessUpdate struct {
	State       entity.SessionState `json:"state"`
	CurrentStep *entity.Challenge   `json:"current_step,omitempty"`
	StepIndex   int                 `json:"step_index"`
	Instruction string              `json:"instruction,omitempty"`
	Error       string              `json:"error,omitempty"`
}

type AdminListResponse struct {
	Data []AdminVerificationItem `json:"data"`
}

type AdminVerificationItem struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user_id"`
	FirstName       string              `json:"nombres"`
	LastName        string              `json:"apellidos"`
	Email           string              `json:"correo"`
	SimilarityScore *float64            `json:"score"`
	MatchResult     bool                `json:"match_result"`
	LivenessPassed  *bool               `json:"liveness"`
	DocumentType    entity.DocumentType `json:"tipo_documento"`
	Identifier      string              `json:"identificador"`
	ResultGeneral   string              `json:"resultado_general"`
	Notified        bool                `json:"notificado"`
	CreatedAt       string              `json:"created_at"`
}
