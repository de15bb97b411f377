package verificationService

import (
	"VidaSegura/internal/api/verification"
	"VidaSegura/internal/entity"
	contextPkg "VidaSegura/pkg/context"
	"encoding/base64"
	"fmt"
	"regexp"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

var birthDatePattern = regexp.MustCompile(`\b(\d{2})/(\d{2})/(\d{4})\b`)

// Verify runs the full identity pipeline: rate check, document analysis,
// face comparison, liveness verdict, persistence and notification. Every
// run that reaches document processing is charged one attempt, whatever
// its outcome.
func (s *pipelineDomainImpl) Verify(c context.Context, req verification.VerifyRequest) (verification.VerifyResponse, error) {
	requestID := contextPkg.GetRequestID(c)

	if len(req.Document) == 0 {
		return verification.VerifyResponse{}, verification.ErrDocumentMissing
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return verification.VerifyResponse{}, err
	}

	userRepo, err := s.userRepo.NewClient(false)
	if err != nil {
		return verification.VerifyResponse{}, err
	}

	user, err := userRepo.Users.GetByID(c, req.UserID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    req.UserID,
		}).Warn("Verification requested for unknown user")
		return verification.VerifyResponse{}, verification.ErrUserNotFound
	}

	attemptKey := fmt.Sprintf("VERIF_ATTEMPTS:%s", user.ID)
	count, err := s.redisServer.GetAttemptCount(c, attemptKey)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to read attempt counter")
		return verification.VerifyResponse{}, verification.ErrInternal
	}
	if count >= s.maxAttempts {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    user.ID,
			"attempts":   count,
		}).Warn("Verification attempt limit reached")
		return verification.VerifyResponse{}, verification.ErrRateLimited
	}

	// From here on the submission counts against the limit, crash included.
	defer s.chargeAttempt(attemptKey)

	analysis := s.documents.Analyze(c, req.Document)

	documentURL, previewURL := s.storeDocument(c, requestID, req)

	if analysis.DocumentType == entity.DocumentInvalid {
		outcome := s.buildOutcome(c, user, req, analysis, entity.ComparisonResult{}, nil, documentURL)
		outcome.ResultGeneral = entity.ResultDocumentInvalid

		if err := repo.Verifications.InsertOutcome(c, outcome); err != nil {
			return verification.VerifyResponse{}, verification.ErrInternal
		}

		go s.notifyOutcome(user, outcome)

		return verification.VerifyResponse{
			Success:      false,
			Message:      "Documento no reconocido como DUI o pasaporte",
			DocumentType: entity.DocumentInvalid,
			OCRSummary:   summarize(analysis.CleanedText),
			PreviewURL:   previewURL,
		}, nil
	}

	documentFace, err := s.faces.LocateDocumentFace(analysis.Normalized)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to crop document portrait")
		documentFace = nil
	}
	analysis.FaceCrop = documentFace

	selfieFrame, err := s.faces.RepresentativeFrame(c, req.Evidence)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Could not derive selfie frame from evidence")
		selfieFrame = nil
	}
	if selfieFrame == nil {
		selfieFrame = s.referenceFace(c, requestID, user.ID)
	}

	comparison := entity.ComparisonResult{}
	if selfieFrame != nil && documentFace != nil {
		comparison, err = s.faces.Compare(c, selfieFrame, documentFace)
		if err != nil {
			return verification.VerifyResponse{}, verification.ErrInternal
		}
	}

	livenessPassed := s.liveness.Resolve(req.SessionID, req.ActionsLog)

	outcome := s.buildOutcome(c, user, req, analysis, comparison, livenessPassed, documentURL)
	if comparison.Matched {
		outcome.ResultGeneral = entity.ResultApproved
	} else {
		outcome.ResultGeneral = entity.ResultRejected
	}

	if err := repo.Verifications.InsertOutcome(c, outcome); err != nil {
		return verification.VerifyResponse{}, verification.ErrInternal
	}

	go s.notifyOutcome(user, outcome)

	message := "Identidad verificada correctamente"
	if !comparison.Matched {
		if selfieFrame == nil {
			message = "Documento recibido, sin evidencia facial para comparar"
		} else {
			message = "El rostro no coincide con el documento"
		}
	}

	return verification.VerifyResponse{
		Success:         comparison.Matched,
		Message:         message,
		Match:           comparison.Matched,
		SimilarityScore: comparison.SimilarityScore,
		DocumentType:    analysis.DocumentType,
		Identifier:      analysis.ExtractedIdentifier,
		OCRSummary:      summarize(analysis.CleanedText),
		PreviewURL:      previewURL,
	}, nil
}

// StoreReferenceFace keeps a selfie in the temporary store so a later
// verification can run without fresh camera evidence.
func (s *pipelineDomainImpl) StoreReferenceFace(c context.Context, userID string, imageBase64 string) error {
	requestID := contextPkg.GetRequestID(c)

	if err := s.redisServer.SetReferenceFace(c, userID, imageBase64); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to store reference face")
		return verification.ErrReferenceNotStored
	}

	return nil
}

func (s *pipelineDomainImpl) ListOutcomes(c context.Context, limit int) ([]entity.AdminVerificationRow, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return nil, err
	}

	return repo.Verifications.ListRecent(c, limit)
}

func (s *pipelineDomainImpl) chargeAttempt(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := s.redisServer.IncrementAttempt(ctx, key, s.attemptWindow); err != nil {
		s.log.WithFields(logrus.Fields{"error": err.Error()}).Error("Failed to increment attempt counter")
	}
}

// storeDocument uploads the original document to S3 and presigns a
// short-lived preview link. Upload failure degrades the run, it does not
// abort it.
func (s *pipelineDomainImpl) storeDocument(c context.Context, requestID string, req verification.VerifyRequest) (string, string) {
	name := req.DocumentName
	if name == "" {
		name = "documento.jpg"
	}

	documentURL, err := s.s3Client.UploadBytes(req.Document, name, "image/jpeg")
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to upload document to S3")
		return "", ""
	}

	previewURL, err := s.s3Client.PresignUrl(documentURL)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to presign document preview")
		previewURL = ""
	}

	return documentURL, previewURL
}

func (s *pipelineDomainImpl) referenceFace(c context.Context, requestID string, userID string) []byte {
	stored, err := s.redisServer.GetReferenceFace(c, userID)
	if err != nil || stored == "" {
		return nil
	}

	decoded, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
		}).Warn("Stored reference face is not valid base64")
		return nil
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    userID,
	}).Info("Using stored reference face as selfie evidence")

	return decoded
}

func (s *pipelineDomainImpl) buildOutcome(
	c context.Context,
	user entity.User,
	req verification.VerifyRequest,
	analysis entity.DocumentAnalysis,
	comparison entity.ComparisonResult,
	livenessPassed *bool,
	documentURL string,
) entity.VerificationOutcome {
	requestID := contextPkg.GetRequestID(c)

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate outcome ID")
	}

	actionsJSON := "[]"
	if len(req.ActionsLog) > 0 {
		if encoded, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(req.ActionsLog); err == nil {
			actionsJSON = string(encoded)
		}
	}

	return entity.VerificationOutcome{
		ID:              id,
		UserID:          user.ID,
		OCRText:         analysis.CleanedText,
		SimilarityScore: comparison.SimilarityScore,
		MatchResult:     comparison.Matched,
		LivenessPassed:  livenessPassed,
		AgeValid:        ageFromText(analysis.CleanedText),
		DocumentType:    analysis.DocumentType,
		Identifier:      analysis.ExtractedIdentifier,
		DocumentURL:     documentURL,
		IP:              req.IP,
		Device:          req.Device,
		Actions:         actionsJSON,
		Notified:        false,
		CreatedAt:       time.Now(),
	}
}

// notifyOutcome emails the verdict and flips the notified flag once the
// mail is out. It runs detached from the request.
func (s *pipelineDomainImpl) notifyOutcome(user entity.User, outcome entity.VerificationOutcome) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	subject := "Resultado de tu verificación de identidad"
	var body string
	switch outcome.ResultGeneral {
	case entity.ResultApproved:
		body = fmt.Sprintf("Hola %s, tu identidad fue verificada correctamente.", user.FirstName)
	case entity.ResultDocumentInvalid:
		body = fmt.Sprintf("Hola %s, el documento enviado no pudo ser reconocido. Por favor intenta de nuevo con una foto más clara.", user.FirstName)
	default:
		body = fmt.Sprintf("Hola %s, no pudimos verificar tu identidad con las imágenes enviadas.", user.FirstName)
	}

	if err := s.smtpMailer.Send(user.Email, subject, body); err != nil {
		s.log.WithFields(logrus.Fields{
			"user_id": user.ID,
			"error":   err.Error(),
		}).Error("Failed to send verification result email")
		return
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return
	}

	if err := repo.Verifications.MarkNotified(ctx, outcome.ID); err != nil {
		s.log.WithFields(logrus.Fields{
			"outcome_id": outcome.ID,
			"error":      err.Error(),
		}).Error("Failed to flip notified flag")
	}
}

// ageFromText looks for a dd/mm/yyyy birth date in the OCR text and checks
// legal age. No parseable date means no verdict.
func ageFromText(text string) *bool {
	match := birthDatePattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}

	birthDate, err := time.Parse("02/01/2006", match[0])
	if err != nil {
		return nil
	}

	adult := !time.Now().Before(birthDate.AddDate(18, 0, 0))
	return &adult
}

func summarize(text string) string {
	const maxSummary = 200
	runes := []rune(text)
	if len(runes) <= maxSummary {
		return text
	}
	return string(runes[:maxSummary]) + "..."
}
