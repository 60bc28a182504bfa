package deepface

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"math"
	"os"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/provider"
)

const dataURIPrefix = "data:image/jpeg;base64,"

// Analyzer implements provider.FaceAnalyzer using DeepFace API
type Analyzer struct {
	client *Client
}

// NewAnalyzer creates a new DeepFace analyzer
func NewAnalyzer(config Config) *Analyzer {
	return &Analyzer{
		client: NewClient(config),
	}
}

// Analyze estimates age and gender of the first detected face.
// The image is materialized as a temporary JPEG for the detector and the file
// is gone by the time Analyze returns.
func (a *Analyzer) Analyze(ctx context.Context, img *image.NRGBA) (domain.FaceAttributes, error) {
	var resp *AnalyzeResponse
	err := imagecodec.WithTempFile(img, func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read temp image: %w", err)
		}

		resp, err = a.client.Analyze(ctx, dataURIPrefix+base64.StdEncoding.EncodeToString(data))
		return err
	})
	if err != nil {
		return domain.FaceAttributes{}, fmt.Errorf("analyze face: %w", err)
	}

	if len(resp.Results) == 0 {
		return domain.MissingFace(), nil
	}

	// Only the first face is reported
	result := resp.Results[0]
	if result.FaceConfidence != nil && *result.FaceConfidence == 0 {
		return domain.MissingFace(), nil
	}

	return domain.FoundFace(toAge(result.Age), toGender(result)), nil
}

func toAge(age *float64) *int {
	if age == nil {
		return nil
	}
	v := int(math.Round(*age))
	return &v
}

func toGender(result AnalyzeResult) *domain.GenderField {
	if len(result.Gender) > 0 {
		return domain.ScoredGender(result.Gender)
	}
	if result.DominantGender != "" {
		return domain.RawGender(result.DominantGender)
	}
	return nil
}

// Ensure Analyzer implements provider.FaceAnalyzer
var _ provider.FaceAnalyzer = (*Analyzer)(nil)
