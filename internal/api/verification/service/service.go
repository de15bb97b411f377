package verificationService

import (
	"VidaSegura/internal/api/verification"
	verificationRepository "VidaSegura/internal/api/verification/repository"
	authRepository "VidaSegura/internal/api/auth/repository"
	"VidaSegura/internal/entity"
	"VidaSegura/pkg/ocr"
	"VidaSegura/pkg/redis"
	"VidaSegura/pkg/rekognition"
	"VidaSegura/pkg/s3"
	"VidaSegura/pkg/smtp"
	"VidaSegura/pkg/utils"
	websocketPkg "VidaSegura/pkg/websocket"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type VerificationService interface {
	Pipeline() PipelineDomain
	Documents() DocumentDomain
	Faces() FaceDomain
	Liveness() LivenessDomain
}

type PipelineDomain interface {
	Verify(ctx context.Context, req verification.VerifyRequest) (verification.VerifyResponse, error)
	StoreReferenceFace(ctx context.Context, userID string, imageBase64 string) error
	ListOutcomes(ctx context.Context, limit int) ([]entity.AdminVerificationRow, error)
}

type DocumentDomain interface {
	Normalize(rawImage []byte) ([]byte, error)
	CleanText(rawText string) string
	Classify(ocrText string) entity.DocumentType
	ExtractIdentifier(cleanedText string) string
	Analyze(ctx context.Context, rawImage []byte) entity.DocumentAnalysis
}

type FaceDomain interface {
	LocateDocumentFace(normalizedImage []byte) ([]byte, error)
	RepresentativeFrame(ctx context.Context, ev verification.Evidence) ([]byte, error)
	Compare(ctx context.Context, selfieFrame []byte, documentFace []byte) (entity.ComparisonResult, error)
}

type LivenessDomain interface {
	StartSession() (verification.StartLivenessResponse, error)
	ProcessFrame(sessionID string, frame entity.LandmarkFrame) (verification.LivenessUpdate, error)
	SessionState(sessionID string) (entity.SessionState, error)
	Resolve(sessionID string, actions []entity.ClientAction) *bool
}

type verificationService struct {
	log *logrus.Logger

	pipelineDomain PipelineDomain
	documentDomain DocumentDomain
	faceDomain     FaceDomain
	livenessDomain LivenessDomain
}

func (s *verificationService) Pipeline() PipelineDomain {
	return s.pipelineDomain
}

func (s *verificationService) Documents() DocumentDomain {
	return s.documentDomain
}

func (s *verificationService) Faces() FaceDomain {
	return s.faceDomain
}

func (s *verificationService) Liveness() LivenessDomain {
	return s.livenessDomain
}

type pipelineDomainImpl struct {
	log         *logrus.Logger
	repo        verificationRepository.Repository
	userRepo    authRepository.Repository
	redisServer redis.IRedis
	rekClient   rekognition.ItfRekognition
	smtpMailer  smtp.ItfSmtp
	s3Client    s3.ItfS3
	utils       utils.IUtils

	documents DocumentDomain
	faces     FaceDomain
	liveness  LivenessDomain

	maxAttempts   int64
	attemptWindow time.Duration
}

type documentDomainImpl struct {
	log       *logrus.Logger
	ocrEngine ocr.ItfOCR
}

type faceDomainImpl struct {
	log       *logrus.Logger
	locator   FaceLocator
	rekClient rekognition.ItfRekognition
	visionWS  websocketPkg.IWebsocket
	threshold float64
}

func New(
	log *logrus.Logger,
	repo verificationRepository.Repository,
	userRepo authRepository.Repository,
	ocrEngine ocr.ItfOCR,
	rekClient rekognition.ItfRekognition,
	redisServer redis.IRedis,
	smtpMailer smtp.ItfSmtp,
	s3Client s3.ItfS3,
	visionWS websocketPkg.IWebsocket,
	utilsPkg utils.IUtils,
) VerificationService {
	documents := &documentDomainImpl{log: log, ocrEngine: ocrEngine}
	faces := &faceDomainImpl{
		log:       log,
		locator:   &HeuristicLocator{},
		rekClient: rekClient,
		visionWS:  visionWS,
		threshold: similarityThreshold(),
	}
	liveness := newLivenessDomain(log, utilsPkg)

	pipeline := &pipelineDomainImpl{
		log:           log,
		repo:          repo,
		userRepo:      userRepo,
		redisServer:   redisServer,
		rekClient:     rekClient,
		smtpMailer:    smtpMailer,
		s3Client:      s3Client,
		utils:         utilsPkg,
		documents:     documents,
		faces:         faces,
		liveness:      liveness,
		maxAttempts:   maxDailyAttempts(),
		attemptWindow: 24 * time.Hour,
	}

	return &verificationService{
		log:            log,
		pipelineDomain: pipeline,
		documentDomain: documents,
		faceDomain:     faces,
		livenessDomain: liveness,
	}
}

func similarityThreshold() float64 {
	raw := os.Getenv("SIMILARITY_THRESHOLD")
	if raw == "" {
		return 80
	}
	threshold, err := strconv.ParseFloat(raw, 64)
	if err != nil || threshold <= 0 || threshold > 100 {
		return 80
	}
	return threshold
}

func maxDailyAttempts() int64 {
	raw := os.Getenv("MAX_VERIFICATION_ATTEMPTS")
	if raw == "" {
		return 5
	}
	max, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || max <= 0 {
		return 5
	}
	return max
}
