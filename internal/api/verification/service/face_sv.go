package verificationService

import (
	"VidaSegura/internal/api/verification"
	"VidaSegura/internal/entity"
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	faceRegionLeft   = 0.35
	faceRegionTop    = 0.18
	faceRegionWidth  = 0.30
	faceRegionHeight = 0.45
	minFaceCropEdge  = 100
)

// FaceLocator finds the portrait region inside a normalized document image.
type FaceLocator interface {
	Locate(img image.Image) (image.Rectangle, error)
}

// HeuristicLocator targets the fixed portrait position of Salvadoran DUI
// cards and machine-readable passports: the photo sits in the left third,
// below the header band.
type HeuristicLocator struct{}

func (l *HeuristicLocator) Locate(img image.Image) (image.Rectangle, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	x := int(float64(width) * faceRegionLeft)
	y := int(float64(height) * faceRegionTop)
	w := int(float64(width) * faceRegionWidth)
	h := int(float64(height) * faceRegionHeight)

	if w < minFaceCropEdge {
		w = minFaceCropEdge
	}
	if h < minFaceCropEdge {
		h = minFaceCropEdge
	}

	if x+w > width {
		x = width - w
	}
	if y+h > height {
		y = height - h
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if w > width {
		w = width
	}
	if h > height {
		h = height
	}

	return image.Rect(x, y, x+w, y+h).Add(bounds.Min), nil
}

// LocateDocumentFace crops the portrait region out of the normalized
// document image and re-encodes it for the comparison engine.
func (s *faceDomainImpl) LocateDocumentFace(normalizedImage []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(normalizedImage))
	if err != nil {
		return nil, verification.ErrImageProcessing
	}

	region, err := s.locator.Locate(img)
	if err != nil {
		return nil, verification.ErrImageProcessing
	}

	crop := imaging.Crop(img, region)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, crop, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, verification.ErrImageProcessing
	}

	return buf.Bytes(), nil
}

// RepresentativeFrame picks one selfie out of the submitted evidence. A
// single image is used as-is; a challenge sequence prefers the
// neutral-center frame; a video gets its midpoint frame extracted by the
// frame service.
func (s *faceDomainImpl) RepresentativeFrame(ctx context.Context, ev verification.Evidence) ([]byte, error) {
	switch ev.Kind {
	case verification.EvidenceImage:
		return ev.Image, nil

	case verification.EvidenceSequence:
		if len(ev.Frames) == 0 {
			return nil, nil
		}
		for _, frame := range ev.Frames {
			if frame.Challenge == entity.ChallengeNeutralCenter {
				return frame.Data, nil
			}
		}
		return ev.Frames[0].Data, nil

	case verification.EvidenceVideo:
		frame, err := s.visionWS.ExtractVideoFrame(ev.Video, 0.5)
		if err != nil {
			s.log.WithFields(logrus.Fields{"error": err}).Error("frame service failed to extract video frame")
			return nil, verification.ErrImageProcessing
		}
		return frame, nil

	default:
		return nil, nil
	}
}

// Compare matches the selfie frame against the document portrait. With no
// comparison engine configured the run degrades: no score, no match,
// no error.
func (s *faceDomainImpl) Compare(ctx context.Context, selfieFrame []byte, documentFace []byte) (entity.ComparisonResult, error) {
	if s.rekClient == nil {
		s.log.Warn("face comparison engine not configured, skipping comparison")
		return entity.ComparisonResult{}, nil
	}

	if len(selfieFrame) == 0 || len(documentFace) == 0 {
		return entity.ComparisonResult{}, nil
	}

	result, err := s.rekClient.CompareFaces(ctx, selfieFrame, documentFace, s.threshold)
	if err != nil {
		s.log.WithFields(logrus.Fields{"error": err}).Error("face comparison call failed")
		return entity.ComparisonResult{}, nil
	}

	// the match verdict is ours, the engine's flag is only a hint
	return entity.ComparisonResult{
		SimilarityScore: &result.Similarity,
		Matched:         result.Similarity >= s.threshold,
	}, nil
}
