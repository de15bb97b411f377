package entity

import "time"

type DocumentType string

const (
	DocumentDUI      DocumentType = "DUI"
	DocumentPassport DocumentType = "PASAPORTE"
	DocumentInvalid  DocumentType = "INVALIDO"
)

type ResultGeneral string

const (
	ResultApproved        ResultGeneral = "Approved"
	ResultRejected        ResultGeneral = "Rejected"
	ResultDocumentInvalid ResultGeneral = "DocumentInvalid"
)

// DocumentAnalysis holds everything derived from the uploaded document image.
// It is request-scoped and never persisted as-is.
type DocumentAnalysis struct {
	RawText             string
	CleanedText         string
	DocumentType        DocumentType
	ExtractedIdentifier string
	Normalized          []byte
	FaceCrop            []byte
}

type ComparisonResult struct {
	SimilarityScore *float64
	Matched         bool
}

// VerificationOutcome is the durable audit record of one pipeline run. Rows
// are written once; only the notified flag is ever flipped afterwards.
type VerificationOutcome struct {
	ID              string        `db:"id"`
	UserID          string        `db:"user_id"`
	OCRText         string        `db:"dui_text"`
	SimilarityScore *float64      `db:"score"`
	MatchResult     bool          `db:"match_result"`
	LivenessPassed  *bool         `db:"liveness"`
	AgeValid        *bool         `db:"edad_valida"`
	DocumentType    DocumentType  `db:"tipo_documento"`
	Identifier      string        `db:"identificador"`
	ResultGeneral   ResultGeneral `db:"resultado_general"`
	DocumentURL     string        `db:"documento_path"`
	IP              string        `db:"ip_usuario"`
	Device          string        `db:"dispositivo"`
	Actions         string        `db:"acciones"`
	Notified        bool          `db:"notificado"`
	CreatedAt       time.Time     `db:"created_at"`
}

// AdminVerificationRow is the admin listing projection, outcome joined with
// the owning user.
type AdminVerificationRow struct {
	VerificationOutcome
	FirstName string `db:"nombres"`
	LastName  string `db:"apellidos"`
	Email     string `db:"correo"`
}
