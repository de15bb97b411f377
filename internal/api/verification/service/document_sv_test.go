package verificationService

import (
	"VidaSegura/internal/entity"
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalize_DownscalesLongEdge(t *testing.T) {
	domain := &documentDomainImpl{log: testLogger()}

	normalized, err := domain.Normalize(testPNG(t, 2400, 1200))
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(normalized))
	require.NoError(t, err)

	assert.Equal(t, 1200, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestNormalize_KeepsSmallImages(t *testing.T) {
	domain := &documentDomainImpl{log: testLogger()}

	normalized, err := domain.Normalize(testPNG(t, 800, 500))
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(normalized))
	require.NoError(t, err)

	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 500, img.Bounds().Dy())
}

func TestNormalize_Deterministic(t *testing.T) {
	domain := &documentDomainImpl{log: testLogger()}
	input := testPNG(t, 1600, 900)

	first, err := domain.Normalize(input)
	require.NoError(t, err)
	second, err := domain.Normalize(input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNormalize_RejectsGarbage(t *testing.T) {
	domain := &documentDomainImpl{log: testLogger()}

	_, err := domain.Normalize([]byte("not an image at all"))
	assert.Error(t, err)
}

func TestCleanText(t *testing.T) {
	domain := &documentDomainImpl{log: testLogger()}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips noise glyphs",
			input:    "|DOCUMENTO; ÚNICO: DE {IDENTIDAD}",
			expected: "DOCUMENTO ÚNICO DE IDENTIDAD",
		},
		{
			name:     "collapses whitespace",
			input:    "REPUBLICA   DE \n\n EL  SALVADOR",
			expected: "REPUBLICA DE EL SALVADOR",
		},
		{
			name:     "keeps DUI hyphen",
			input:    "DUI:  06523981-4",
			expected: "DUI 06523981-4",
		},
		{
			name:     "drops single leading stray glyph",
			input:    "¬ DOCUMENTO UNICO",
			expected: "DOCUMENTO UNICO",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.CleanText(tt.input))
		})
	}
}

func TestClassify(t *testing.T) {
	domain := &documentDomainImpl{log: testLogger()}

	tests := []struct {
		name     string
		input    string
		expected entity.DocumentType
	}{
		{"dui keyword", "DOCUMENTO UNICO DE IDENTIDAD 06523981-4", entity.DocumentDUI},
		{"dui number only", "REPUBLICA DE EL SALVADOR 06523981-4", entity.DocumentDUI},
		{"passport spanish", "PASAPORTE REPUBLICA DE EL SALVADOR AB1234567", entity.DocumentPassport},
		{"passport english", "PASSPORT P<SLV", entity.DocumentPassport},
		{"dui wins over passport", "PASAPORTE Y DOCUMENTO UNICO DE IDENTIDAD", entity.DocumentDUI},
		{"unreadable", "lorem ipsum receipt total 12.50", entity.DocumentInvalid},
		{"empty", "", entity.DocumentInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.Classify(tt.input))
		})
	}
}

func TestExtractIdentifier(t *testing.T) {
	domain := &documentDomainImpl{log: testLogger()}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"dui format", "IDENTIDAD 06523981-4 SAN SALVADOR", "06523981-4"},
		{"passport alphanumeric", "PASAPORTE AB1234567 VENCE 2030", "AB1234567"},
		{"dui priority over passport token", "AB1234567 06523981-4", "06523981-4"},
		{"ignores plain words", "REPUBLICA DE EL SALVADOR", ""},
		{"nothing found", "texto sin numeros", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.ExtractIdentifier(tt.input))
		})
	}
}

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) Recognize(ctx context.Context, imageBytes []byte, language string) (string, error) {
	return f.text, f.err
}

func TestAnalyze_FullDocument(t *testing.T) {
	domain := &documentDomainImpl{
		log:       testLogger(),
		ocrEngine: &fakeOCR{text: "|DOCUMENTO UNICO DE IDENTIDAD|  06523981-4"},
	}

	analysis := domain.Analyze(context.Background(), testPNG(t, 1000, 600))

	assert.Equal(t, entity.DocumentDUI, analysis.DocumentType)
	assert.Equal(t, "06523981-4", analysis.ExtractedIdentifier)
	assert.NotEmpty(t, analysis.Normalized)
	assert.Contains(t, analysis.CleanedText, "DOCUMENTO UNICO")
}

func TestAnalyze_OCRFailureYieldsInvalid(t *testing.T) {
	domain := &documentDomainImpl{
		log:       testLogger(),
		ocrEngine: &fakeOCR{err: errors.New("service down")},
	}

	analysis := domain.Analyze(context.Background(), testPNG(t, 1000, 600))

	assert.Equal(t, entity.DocumentInvalid, analysis.DocumentType)
	assert.Empty(t, analysis.RawText)
	assert.Empty(t, analysis.ExtractedIdentifier)
}
