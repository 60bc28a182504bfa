package provider

import (
	"context"
	"image"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
)

// CaptionClassifier picks the best matching caption label for an image.
type CaptionClassifier interface {
	Classify(ctx context.Context, img *image.NRGBA) (*domain.CaptionResult, error)
}

// FaceAnalyzer estimates age and gender of the first face in an image.
//
// A missing face is reported as a domain.FaceNotFound outcome with a nil
// error. A returned error means the detector itself failed; callers turn it
// into a domain.FaceFailed outcome.
type FaceAnalyzer interface {
	Analyze(ctx context.Context, img *image.NRGBA) (domain.FaceAttributes, error)
}
