package rekognition

import (
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/rekognition"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type ItfRekognition interface {
	CompareFaces(ctx context.Context, sourceImage []byte, targetImage []byte, threshold float64) (*CompareResult, error)
}

type CompareResult struct {
	Matched    bool
	Similarity float64
}

type rekognitionClient struct {
	client *rekognition.Rekognition
}

// New returns nil without error when AWS_REGION is not configured; callers
// treat a nil client as a degraded deployment without face comparison.
func New() (ItfRekognition, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		logrus.Warn("AWS_REGION not set, face comparison disabled")
		return nil, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
		Credentials: credentials.NewStaticCredentials(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			"",
		),
	})
	if err != nil {
		return nil, err
	}

	return &rekognitionClient{client: rekognition.New(sess)}, nil
}

func (r *rekognitionClient) CompareFaces(ctx context.Context, sourceImage []byte, targetImage []byte, threshold float64) (*CompareResult, error) {
	input := &rekognition.CompareFacesInput{
		SourceImage:         &rekognition.Image{Bytes: sourceImage},
		TargetImage:         &rekognition.Image{Bytes: targetImage},
		SimilarityThreshold: aws.Float64(threshold),
	}

	output, err := r.client.CompareFacesWithContext(ctx, input)
	if err != nil {
		return nil, err
	}

	if len(output.FaceMatches) == 0 {
		return &CompareResult{Matched: false, Similarity: 0}, nil
	}

	similarity := aws.Float64Value(output.FaceMatches[0].Similarity)

	return &CompareResult{
		Matched:    similarity >= threshold,
		Similarity: similarity,
	}, nil
}
