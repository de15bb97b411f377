package verificationService

import (
	"VidaSegura/internal/entity"
	"bytes"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const maxDocumentEdge = 1200

var (
	duiPattern      = regexp.MustCompile(`\d{8}-\d`)
	passportPattern = regexp.MustCompile(`\b[A-Z0-9]{6,9}\b`)
	digitPattern    = regexp.MustCompile(`\d`)
	noisePattern    = regexp.MustCompile("[|;:¡!·•\"'`´\\[\\]{}()<>—–_]+")
	spacePattern    = regexp.MustCompile(`\s+`)
)

// Normalize prepares a document photo for OCR: auto-orient, cap the longest
// edge at 1200px, grayscale, contrast stretch and a light sharpen. The same
// input always yields the same output.
func (s *documentDomainImpl) Normalize(rawImage []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(rawImage), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width >= height && width > maxDocumentEdge {
		img = imaging.Resize(img, maxDocumentEdge, 0, imaging.Lanczos)
	} else if height > width && height > maxDocumentEdge {
		img = imaging.Resize(img, 0, maxDocumentEdge, imaging.Lanczos)
	}

	img = imaging.Grayscale(img)
	img = imaging.AdjustContrast(img, 15)
	img = imaging.Sharpen(img, 0.7)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// CleanText strips OCR noise glyphs and collapses whitespace. Plain hyphens
// survive so DUI identifiers keep their check-digit separator.
func (s *documentDomainImpl) CleanText(rawText string) string {
	cleaned := noisePattern.ReplaceAllString(rawText, " ")
	cleaned = spacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	// A single stray glyph in front of the text is scanner artifact.
	if len(cleaned) > 2 {
		runes := []rune(cleaned)
		if !isAlphanumeric(runes[0]) && runes[1] == ' ' {
			cleaned = strings.TrimSpace(string(runes[2:]))
		}
	}

	return cleaned
}

func isAlphanumeric(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// Classify decides the document type from OCR text. DUI markers win over
// passport markers when both appear.
func (s *documentDomainImpl) Classify(ocrText string) entity.DocumentType {
	lowered := strings.ToLower(ocrText)

	switch {
	case strings.Contains(lowered, "dui"),
		strings.Contains(lowered, "documento único de identidad"),
		strings.Contains(lowered, "documento unico de identidad"),
		strings.Contains(lowered, "identidad"),
		duiPattern.MatchString(ocrText):
		return entity.DocumentDUI
	case strings.Contains(lowered, "pasaporte"),
		strings.Contains(lowered, "passport"):
		return entity.DocumentPassport
	default:
		return entity.DocumentInvalid
	}
}

// ExtractIdentifier pulls the document number out of cleaned OCR text. The
// DUI shape (8 digits, hyphen, check digit) takes priority; otherwise the
// first 6-9 character uppercase alphanumeric token containing a digit is
// taken as a passport number.
func (s *documentDomainImpl) ExtractIdentifier(cleanedText string) string {
	if dui := duiPattern.FindString(cleanedText); dui != "" {
		return dui
	}

	for _, candidate := range passportPattern.FindAllString(cleanedText, -1) {
		if digitPattern.MatchString(candidate) {
			return candidate
		}
	}

	return ""
}

// Analyze runs the full document stage: normalize, OCR, clean, classify and
// extract. OCR failure is not fatal; an unreadable document comes back as
// INVALIDO with empty text.
func (s *documentDomainImpl) Analyze(ctx context.Context, rawImage []byte) entity.DocumentAnalysis {
	analysis := entity.DocumentAnalysis{DocumentType: entity.DocumentInvalid}

	normalized, err := s.Normalize(rawImage)
	if err != nil {
		s.log.WithFields(logrus.Fields{"error": err}).Warn("document image could not be normalized, using raw bytes")
		normalized = rawImage
	}
	analysis.Normalized = normalized

	rawText, err := s.ocrEngine.Recognize(ctx, normalized, "spa")
	if err != nil {
		s.log.WithFields(logrus.Fields{"error": err}).Warn("OCR failed, treating document as unreadable")
		rawText = ""
	}

	analysis.RawText = rawText
	analysis.CleanedText = s.CleanText(rawText)
	analysis.DocumentType = s.Classify(analysis.CleanedText)
	analysis.ExtractedIdentifier = s.ExtractIdentifier(analysis.CleanedText)

	return analysis
}
