package verificationService

import (
	"VidaSegura/internal/api/verification"
	authRepository "VidaSegura/internal/api/auth/repository"
	verificationRepository "VidaSegura/internal/api/verification/repository"
	"VidaSegura/internal/entity"
	"VidaSegura/pkg/utils"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifications struct {
	mu        sync.Mutex
	outcomes  []entity.VerificationOutcome
	notified  []string
	rows      []entity.AdminVerificationRow
	insertErr error
}

func (f *fakeVerifications) InsertOutcome(ctx context.Context, outcome entity.VerificationOutcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.outcomes = append(f.outcomes, outcome)
	return nil
}

func (f *fakeVerifications) MarkNotified(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, id)
	return nil
}

func (f *fakeVerifications) ListRecent(ctx context.Context, limit int) ([]entity.AdminVerificationRow, error) {
	return f.rows, nil
}

func (f *fakeVerifications) insertedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.outcomes)
}

func (f *fakeVerifications) lastOutcome() entity.VerificationOutcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcomes[len(f.outcomes)-1]
}

func (f *fakeVerifications) notifiedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.notified...)
}

type fakeVerifRepo struct {
	verifications *fakeVerifications
}

func (f *fakeVerifRepo) NewClient(tx bool) (verificationRepository.Client, error) {
	return verificationRepository.Client{
		Verifications: f.verifications,
		Commit:        func() error { return nil },
		Rollback:      func() error { return nil },
	}, nil
}

type fakeUsers struct {
	user entity.User
	err  error
}

func (f *fakeUsers) CreateUser(ctx context.Context, user entity.User) error { return nil }

func (f *fakeUsers) GetByID(ctx context.Context, id string) (entity.User, error) {
	if f.err != nil {
		return entity.User{}, f.err
	}
	return f.user, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	return f.user, f.err
}

func (f *fakeUsers) UpdateUser(ctx context.Context, user entity.User) error { return nil }

func (f *fakeUsers) UpdateUserPassword(ctx context.Context, email string, password string) error {
	return nil
}

func (f *fakeUsers) SetVerified(ctx context.Context, id string, verified bool) error { return nil }

func (f *fakeUsers) DeleteUser(ctx context.Context, id string) error { return nil }

type fakeAuthRepo struct {
	users *fakeUsers
}

func (f *fakeAuthRepo) NewClient(tx bool) (authRepository.Client, error) {
	return authRepository.Client{
		Users:    f.users,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

type fakeRedis struct {
	mu            sync.Mutex
	attempts      int64
	increments    int
	expiresAt     time.Time
	now           func() time.Time
	referenceFace string
	refErr        error
}

func (f *fakeRedis) clock() time.Time {
	if f.now != nil {
		return f.now()
	}
	return time.Now()
}

// reapExpired mirrors the real store: the counter key vanishes once its
// TTL elapses. Callers hold f.mu.
func (f *fakeRedis) reapExpired(now time.Time) {
	if !f.expiresAt.IsZero() && now.After(f.expiresAt) {
		f.attempts = 0
		f.expiresAt = time.Time{}
	}
}

func (f *fakeRedis) SetOTP(ctx context.Context, key string, code string, expiration time.Duration) error {
	return nil
}

func (f *fakeRedis) GetOTP(ctx context.Context, key string) (string, error) { return "", nil }

func (f *fakeRedis) IncrementAttempt(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.clock()
	f.reapExpired(now)

	f.increments++
	f.attempts++
	if f.attempts == 1 {
		// ExpireNX semantics, the window starts with the first attempt
		f.expiresAt = now.Add(ttl)
	}
	return f.attempts, nil
}

func (f *fakeRedis) GetAttemptCount(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reapExpired(f.clock())
	return f.attempts, nil
}

func (f *fakeRedis) SetReferenceFace(ctx context.Context, userID string, imageBase64 string) error {
	if f.refErr != nil {
		return f.refErr
	}
	f.referenceFace = imageBase64
	return nil
}

func (f *fakeRedis) GetReferenceFace(ctx context.Context, userID string) (string, error) {
	return f.referenceFace, f.refErr
}

func (f *fakeRedis) incrementCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.increments
}

type fakeSmtp struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSmtp) Send(toAddress string, subject string, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, toAddress)
	return nil
}

func (f *fakeSmtp) SendOTP(userEmail string, otp string) error { return nil }

func (f *fakeSmtp) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeS3 struct {
	uploadErr error
}

func (f *fakeS3) UploadBytes(data []byte, fileName string, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return "verifications/" + fileName, nil
}

func (f *fakeS3) PresignUrl(fileName string) (string, error) {
	return "https://storage.local/" + fileName, nil
}

func (f *fakeS3) DeleteFile(fileName string) error { return nil }

type pipelineFixture struct {
	pipeline      *pipelineDomainImpl
	verifications *fakeVerifications
	users         *fakeUsers
	redis         *fakeRedis
	mailer        *fakeSmtp
	rek           *fakeRekognition
}

func newPipelineFixture(t *testing.T, ocrText string, rek *fakeRekognition) *pipelineFixture {
	t.Helper()

	log := testLogger()
	verifications := &fakeVerifications{}
	users := &fakeUsers{user: entity.User{
		ID:        "01HZXCUSER0000000000000000",
		FirstName: "Carmen",
		LastName:  "Flores",
		Email:     "carmen@example.com",
	}}
	redisFake := &fakeRedis{}
	mailer := &fakeSmtp{}
	utilsPkg := utils.New()

	documents := &documentDomainImpl{log: log, ocrEngine: &fakeOCR{text: ocrText}}

	faces := &faceDomainImpl{log: log, locator: &HeuristicLocator{}, threshold: 80}
	if rek != nil {
		faces.rekClient = rek
	}

	liveness := &livenessDomainImpl{log: log, utils: utilsPkg, sessions: make(map[string]*livenessSession)}

	pipeline := &pipelineDomainImpl{
		log:           log,
		repo:          &fakeVerifRepo{verifications: verifications},
		userRepo:      &fakeAuthRepo{users: users},
		redisServer:   redisFake,
		smtpMailer:    mailer,
		s3Client:      &fakeS3{},
		utils:         utilsPkg,
		documents:     documents,
		faces:         faces,
		liveness:      liveness,
		maxAttempts:   5,
		attemptWindow: 24 * time.Hour,
	}

	return &pipelineFixture{
		pipeline:      pipeline,
		verifications: verifications,
		users:         users,
		redis:         redisFake,
		mailer:        mailer,
		rek:           rek,
	}
}

const duiOCRText = "DOCUMENTO UNICO DE IDENTIDAD 06523981-4 NACIMIENTO 14/03/1990"

func duiRequest(t *testing.T) verification.VerifyRequest {
	t.Helper()
	return verification.VerifyRequest{
		UserID:       "01HZXCUSER0000000000000000",
		Document:     testPNG(t, 800, 500),
		DocumentName: "dui.png",
		Evidence: verification.Evidence{
			Kind:  verification.EvidenceImage,
			Image: testPNG(t, 320, 240),
		},
		Device: "test-agent",
		IP:     "10.0.0.1",
	}
}

func TestVerify_Approved(t *testing.T) {
	fixture := newPipelineFixture(t, duiOCRText, &fakeRekognition{similarity: 93.2, matched: true})

	resp, err := fixture.pipeline.Verify(context.Background(), duiRequest(t))
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.True(t, resp.Match)
	assert.Equal(t, entity.DocumentDUI, resp.DocumentType)
	assert.Equal(t, "06523981-4", resp.Identifier)
	require.NotNil(t, resp.SimilarityScore)
	assert.InDelta(t, 93.2, *resp.SimilarityScore, 0.001)
	assert.NotEmpty(t, resp.PreviewURL)

	require.Equal(t, 1, fixture.verifications.insertedCount())
	outcome := fixture.verifications.lastOutcome()
	assert.Equal(t, entity.ResultApproved, outcome.ResultGeneral)
	assert.True(t, outcome.MatchResult)
	require.NotNil(t, outcome.AgeValid)
	assert.True(t, *outcome.AgeValid)
	assert.Equal(t, "10.0.0.1", outcome.IP)

	assert.Equal(t, 1, fixture.redis.incrementCount())

	require.Eventually(t, func() bool {
		return fixture.mailer.sentCount() == 1 && len(fixture.verifications.notifiedIDs()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, outcome.ID, fixture.verifications.notifiedIDs()[0])
}

func TestVerify_InvalidDocumentSkipsComparison(t *testing.T) {
	rek := &fakeRekognition{similarity: 99, matched: true}
	fixture := newPipelineFixture(t, "FACTURA COMERCIAL TOTAL 12.50", rek)

	resp, err := fixture.pipeline.Verify(context.Background(), duiRequest(t))
	require.NoError(t, err)

	assert.False(t, resp.Success)
	assert.Equal(t, entity.DocumentInvalid, resp.DocumentType)
	assert.Equal(t, "Documento no reconocido como DUI o pasaporte", resp.Message)

	require.Equal(t, 1, fixture.verifications.insertedCount())
	outcome := fixture.verifications.lastOutcome()
	assert.Equal(t, entity.ResultDocumentInvalid, outcome.ResultGeneral)
	assert.False(t, outcome.MatchResult)

	// the invalid run still burns an attempt
	assert.Equal(t, 1, fixture.redis.incrementCount())
}

func TestVerify_NoComparisonEngineRejects(t *testing.T) {
	fixture := newPipelineFixture(t, duiOCRText, nil)

	resp, err := fixture.pipeline.Verify(context.Background(), duiRequest(t))
	require.NoError(t, err)

	assert.False(t, resp.Success)
	assert.False(t, resp.Match)
	assert.Nil(t, resp.SimilarityScore)
	assert.Equal(t, entity.ResultRejected, fixture.verifications.lastOutcome().ResultGeneral)
}

func TestVerify_RateLimited(t *testing.T) {
	fixture := newPipelineFixture(t, duiOCRText, &fakeRekognition{matched: true, similarity: 90})
	fixture.redis.attempts = 5

	_, err := fixture.pipeline.Verify(context.Background(), duiRequest(t))

	assert.ErrorIs(t, err, verification.ErrRateLimited)
	assert.Zero(t, fixture.verifications.insertedCount())
	assert.Zero(t, fixture.redis.incrementCount())
}

func TestVerify_AttemptWindow(t *testing.T) {
	fixture := newPipelineFixture(t, duiOCRText, &fakeRekognition{matched: true, similarity: 90})

	base := time.Now()
	fixture.redis.now = func() time.Time { return base }

	for i := 0; i < 5; i++ {
		_, err := fixture.pipeline.Verify(context.Background(), duiRequest(t))
		require.NoError(t, err, "attempt %d inside the window must be processed", i+1)
	}
	assert.Equal(t, 5, fixture.redis.incrementCount())
	assert.Equal(t, 5, fixture.verifications.insertedCount())

	// the sixth submission is refused before any processing
	_, err := fixture.pipeline.Verify(context.Background(), duiRequest(t))
	assert.ErrorIs(t, err, verification.ErrRateLimited)
	assert.Equal(t, 5, fixture.redis.incrementCount())
	assert.Equal(t, 5, fixture.verifications.insertedCount())

	// once the 24h window elapses the counter resets
	fixture.redis.now = func() time.Time { return base.Add(24*time.Hour + time.Minute) }

	_, err = fixture.pipeline.Verify(context.Background(), duiRequest(t))
	require.NoError(t, err)
	assert.Equal(t, 6, fixture.redis.incrementCount())
	assert.Equal(t, 6, fixture.verifications.insertedCount())
}

func TestVerify_UnknownUserNotCharged(t *testing.T) {
	fixture := newPipelineFixture(t, duiOCRText, nil)
	fixture.users.err = errors.New("sql: no rows in result set")

	_, err := fixture.pipeline.Verify(context.Background(), duiRequest(t))

	assert.ErrorIs(t, err, verification.ErrUserNotFound)
	assert.Zero(t, fixture.redis.incrementCount())
}

func TestVerify_MissingDocument(t *testing.T) {
	fixture := newPipelineFixture(t, duiOCRText, nil)

	req := duiRequest(t)
	req.Document = nil

	_, err := fixture.pipeline.Verify(context.Background(), req)
	assert.ErrorIs(t, err, verification.ErrDocumentMissing)
}

func TestVerify_UsesStoredReferenceFace(t *testing.T) {
	fixture := newPipelineFixture(t, duiOCRText, &fakeRekognition{similarity: 88, matched: true})
	fixture.redis.referenceFace = base64.StdEncoding.EncodeToString(testPNG(t, 320, 240))

	req := duiRequest(t)
	req.Evidence = verification.Evidence{Kind: verification.EvidenceNone}

	resp, err := fixture.pipeline.Verify(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, entity.ResultApproved, fixture.verifications.lastOutcome().ResultGeneral)
}

func TestVerify_NoEvidenceNoReferenceFace(t *testing.T) {
	fixture := newPipelineFixture(t, duiOCRText, &fakeRekognition{similarity: 88, matched: true})

	req := duiRequest(t)
	req.Evidence = verification.Evidence{Kind: verification.EvidenceNone}

	resp, err := fixture.pipeline.Verify(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, resp.Success)
	assert.Equal(t, "Documento recibido, sin evidencia facial para comparar", resp.Message)
	assert.Nil(t, resp.SimilarityScore)
}

func TestVerify_ActionLogVerdictPersisted(t *testing.T) {
	fixture := newPipelineFixture(t, duiOCRText, &fakeRekognition{similarity: 91, matched: true})

	req := duiRequest(t)
	req.ActionsLog = []entity.ClientAction{
		{Challenge: entity.ChallengeSmile, Success: true},
		{Challenge: entity.ChallengeBlinkTwice, Success: true},
	}

	_, err := fixture.pipeline.Verify(context.Background(), req)
	require.NoError(t, err)

	outcome := fixture.verifications.lastOutcome()
	require.NotNil(t, outcome.LivenessPassed)
	assert.True(t, *outcome.LivenessPassed)
	assert.Contains(t, outcome.Actions, string(entity.ChallengeSmile))
}

func TestStoreReferenceFace(t *testing.T) {
	fixture := newPipelineFixture(t, duiOCRText, nil)

	err := fixture.pipeline.StoreReferenceFace(context.Background(), "user-1", "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", fixture.redis.referenceFace)

	fixture.redis.refErr = errors.New("redis down")
	err = fixture.pipeline.StoreReferenceFace(context.Background(), "user-1", "aGVsbG8=")
	assert.ErrorIs(t, err, verification.ErrReferenceNotStored)
}

func TestAgeFromText(t *testing.T) {
	now := time.Now()
	turned18Today := now.AddDate(-18, 0, 0).Format("02/01/2006")
	turns18Soon := now.AddDate(-18, 0, 3).Format("02/01/2006")

	adult := ageFromText("NACIMIENTO " + turned18Today)
	require.NotNil(t, adult)
	assert.True(t, *adult)

	// still a minor for three more days, calendar years not day counts
	minor := ageFromText("NACIMIENTO " + turns18Soon)
	require.NotNil(t, minor)
	assert.False(t, *minor)

	assert.Nil(t, ageFromText("sin fecha legible"))
}

func TestSummarize_KeepsRuneBoundaries(t *testing.T) {
	long := strings.Repeat("ÑÚÉ", 100)

	summary := summarize(long)

	assert.True(t, utf8.ValidString(summary))
	assert.Equal(t, string([]rune(long)[:200])+"...", summary)
	assert.Equal(t, "corto", summarize("corto"))
}

func TestListOutcomes(t *testing.T) {
	fixture := newPipelineFixture(t, duiOCRText, nil)
	fixture.verifications.rows = []entity.AdminVerificationRow{
		{VerificationOutcome: entity.VerificationOutcome{ID: "a"}},
		{VerificationOutcome: entity.VerificationOutcome{ID: "b"}},
	}

	rows, err := fixture.pipeline.ListOutcomes(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
