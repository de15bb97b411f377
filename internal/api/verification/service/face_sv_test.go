package verificationService

import (
	"VidaSegura/internal/api/verification"
	"VidaSegura/internal/entity"
	"VidaSegura/pkg/rekognition"
	websocketPkg "VidaSegura/pkg/websocket"
	"bytes"
	"context"
	"errors"
	"image"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicLocator_Proportions(t *testing.T) {
	locator := &HeuristicLocator{}
	img := image.NewRGBA(image.Rect(0, 0, 1000, 600))

	region, err := locator.Locate(img)
	require.NoError(t, err)

	assert.Equal(t, 350, region.Min.X)
	assert.Equal(t, 108, region.Min.Y)
	assert.Equal(t, 300, region.Dx())
	assert.Equal(t, 270, region.Dy())
}

func TestHeuristicLocator_EnforcesMinimumCrop(t *testing.T) {
	locator := &HeuristicLocator{}
	img := image.NewRGBA(image.Rect(0, 0, 200, 150))

	region, err := locator.Locate(img)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, region.Dx(), 100)
	assert.GreaterOrEqual(t, region.Dy(), 100)
	assert.LessOrEqual(t, region.Max.X, 200)
	assert.LessOrEqual(t, region.Max.Y, 150)
	assert.GreaterOrEqual(t, region.Min.X, 0)
	assert.GreaterOrEqual(t, region.Min.Y, 0)
}

func TestLocateDocumentFace(t *testing.T) {
	domain := &faceDomainImpl{log: testLogger(), locator: &HeuristicLocator{}}

	crop, err := domain.LocateDocumentFace(testPNG(t, 1000, 600))
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(crop))
	require.NoError(t, err)

	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 270, img.Bounds().Dy())
}

func TestLocateDocumentFace_RejectsGarbage(t *testing.T) {
	domain := &faceDomainImpl{log: testLogger(), locator: &HeuristicLocator{}}

	_, err := domain.LocateDocumentFace([]byte("nope"))
	assert.ErrorIs(t, err, verification.ErrImageProcessing)
}

type fakeVisionWS struct {
	frame    []byte
	frameErr error
}

func (f *fakeVisionWS) ProcessLandmarkFrame(frame []byte) (*entity.LandmarkFrame, error) {
	return nil, errors.New("not used")
}

func (f *fakeVisionWS) ExtractVideoFrame(video []byte, position float64) ([]byte, error) {
	return f.frame, f.frameErr
}

func (f *fakeVisionWS) IsConnected(kind websocketPkg.StreamKind) bool { return true }

func (f *fakeVisionWS) Reconnect(kind websocketPkg.StreamKind) error { return nil }

func (f *fakeVisionWS) CloseConnections() {}

type fakeRekognition struct {
	similarity float64
	matched    bool
	err        error
}

func (f *fakeRekognition) CompareFaces(ctx context.Context, sourceImage []byte, targetImage []byte, threshold float64) (*rekognition.CompareResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &rekognition.CompareResult{Matched: f.matched, Similarity: f.similarity}, nil
}

func TestRepresentativeFrame_Image(t *testing.T) {
	domain := &faceDomainImpl{log: testLogger()}
	selfie := []byte{0x01, 0x02}

	frame, err := domain.RepresentativeFrame(context.Background(), verification.Evidence{
		Kind:  verification.EvidenceImage,
		Image: selfie,
	})

	require.NoError(t, err)
	assert.Equal(t, selfie, frame)
}

func TestRepresentativeFrame_SequencePrefersNeutralCenter(t *testing.T) {
	domain := &faceDomainImpl{log: testLogger()}

	frame, err := domain.RepresentativeFrame(context.Background(), verification.Evidence{
		Kind: verification.EvidenceSequence,
		Frames: []verification.TaggedFrame{
			{Challenge: entity.ChallengeLookLeft, Data: []byte{0x01}},
			{Challenge: entity.ChallengeNeutralCenter, Data: []byte{0x02}},
			{Challenge: entity.ChallengeSmile, Data: []byte{0x03}},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []byte{0x02}, frame)
}

func TestRepresentativeFrame_SequenceFallsBackToFirst(t *testing.T) {
	domain := &faceDomainImpl{log: testLogger()}

	frame, err := domain.RepresentativeFrame(context.Background(), verification.Evidence{
		Kind: verification.EvidenceSequence,
		Frames: []verification.TaggedFrame{
			{Challenge: entity.ChallengeLookLeft, Data: []byte{0x01}},
			{Challenge: entity.ChallengeSmile, Data: []byte{0x03}},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, frame)
}

func TestRepresentativeFrame_VideoUsesFrameService(t *testing.T) {
	domain := &faceDomainImpl{log: testLogger(), visionWS: &fakeVisionWS{frame: []byte{0x0a}}}

	frame, err := domain.RepresentativeFrame(context.Background(), verification.Evidence{
		Kind:  verification.EvidenceVideo,
		Video: []byte{0x01, 0x02},
	})

	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a}, frame)
}

func TestRepresentativeFrame_VideoExtractionFailure(t *testing.T) {
	domain := &faceDomainImpl{log: testLogger(), visionWS: &fakeVisionWS{frameErr: errors.New("frame service down")}}

	_, err := domain.RepresentativeFrame(context.Background(), verification.Evidence{
		Kind:  verification.EvidenceVideo,
		Video: []byte{0x01, 0x02},
	})

	assert.ErrorIs(t, err, verification.ErrImageProcessing)
}

func TestRepresentativeFrame_None(t *testing.T) {
	domain := &faceDomainImpl{log: testLogger()}

	frame, err := domain.RepresentativeFrame(context.Background(), verification.Evidence{
		Kind: verification.EvidenceNone,
	})

	require.NoError(t, err)
	assert.Nil(t, frame)
}

func TestCompare_NoEngineDegrades(t *testing.T) {
	domain := &faceDomainImpl{log: testLogger(), threshold: 80}

	result, err := domain.Compare(context.Background(), []byte{0x01}, []byte{0x02})

	require.NoError(t, err)
	assert.False(t, result.Matched)
	assert.Nil(t, result.SimilarityScore)
}

func TestCompare_EmptyInputsDegrade(t *testing.T) {
	domain := &faceDomainImpl{log: testLogger(), rekClient: &fakeRekognition{similarity: 95, matched: true}, threshold: 80}

	result, err := domain.Compare(context.Background(), nil, []byte{0x02})

	require.NoError(t, err)
	assert.False(t, result.Matched)
	assert.Nil(t, result.SimilarityScore)
}

func TestCompare_Match(t *testing.T) {
	domain := &faceDomainImpl{log: testLogger(), rekClient: &fakeRekognition{similarity: 92.5, matched: true}, threshold: 80}

	result, err := domain.Compare(context.Background(), []byte{0x01}, []byte{0x02})

	require.NoError(t, err)
	assert.True(t, result.Matched)
	require.NotNil(t, result.SimilarityScore)
	assert.InDelta(t, 92.5, *result.SimilarityScore, 0.001)
}

func TestCompare_ThresholdBoundary(t *testing.T) {
	tests := []struct {
		name       string
		similarity float64
		matched    bool
	}{
		{name: "exactly at threshold matches", similarity: 80.0, matched: true},
		{name: "just below threshold does not match", similarity: 79.9, matched: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// the engine always claims a match; the verdict must come
			// from the score
			domain := &faceDomainImpl{
				log:       testLogger(),
				rekClient: &fakeRekognition{similarity: tc.similarity, matched: true},
				threshold: 80,
			}

			result, err := domain.Compare(context.Background(), []byte{0x01}, []byte{0x02})

			require.NoError(t, err)
			assert.Equal(t, tc.matched, result.Matched)
			require.NotNil(t, result.SimilarityScore)
			assert.InDelta(t, tc.similarity, *result.SimilarityScore, 0.001)
		})
	}
}

func TestCompare_EngineErrorYieldsNoScore(t *testing.T) {
	domain := &faceDomainImpl{log: testLogger(), rekClient: &fakeRekognition{err: errors.New("throttled")}, threshold: 80}

	result, err := domain.Compare(context.Background(), []byte{0x01}, []byte{0x02})

	require.NoError(t, err)
	assert.False(t, result.Matched)
	assert.Nil(t, result.SimilarityScore)
}
