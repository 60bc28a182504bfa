package rekognition

import (
	"context"
	"fmt"
	"image"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/provider"
)

// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
const maxImageSize = 5 * 1024 * 1024

// Analyzer implements provider.FaceAnalyzer using AWS Rekognition DetectFaces
type Analyzer struct {
	api RekognitionAPI
}

// Ensure Analyzer implements provider.FaceAnalyzer interface at compile time
var _ provider.FaceAnalyzer = (*Analyzer)(nil)

// NewAnalyzer creates an analyzer backed by a real AWS client
func NewAnalyzer(ctx context.Context, cfg Config) (*Analyzer, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return NewAnalyzerWithAPI(client), nil
}

// NewAnalyzerWithAPI creates an analyzer over any RekognitionAPI implementation
func NewAnalyzerWithAPI(api RekognitionAPI) *Analyzer {
	return &Analyzer{api: api}
}

// Analyze reports the age range midpoint and gender of the first face found
func (a *Analyzer) Analyze(ctx context.Context, img *image.NRGBA) (domain.FaceAttributes, error) {
	data, err := imagecodec.EncodeJPEG(img)
	if err != nil {
		return domain.FaceAttributes{}, fmt.Errorf("analyze face: %w", err)
	}
	if len(data) > maxImageSize {
		return domain.FaceAttributes{}, fmt.Errorf("analyze face: %w (%d bytes, maximum %d)", ErrImageTooLarge, len(data), maxImageSize)
	}

	input := &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: data,
		},
		Attributes: []types.Attribute{types.AttributeAll},
	}

	output, err := a.api.DetectFaces(ctx, input)
	if err != nil {
		return domain.FaceAttributes{}, fmt.Errorf("analyze face: detect faces: %w", mapAPIError(err))
	}

	if len(output.FaceDetails) == 0 {
		return domain.MissingFace(), nil
	}

	detail := output.FaceDetails[0]
	return domain.FoundFace(ageMidpoint(detail.AgeRange), genderLabel(detail.Gender)), nil
}

func ageMidpoint(r *types.AgeRange) *int {
	if r == nil || r.Low == nil || r.High == nil {
		return nil
	}
	age := int(*r.Low+*r.High) / 2
	return &age
}

func genderLabel(g *types.Gender) *domain.GenderField {
	if g == nil {
		return nil
	}
	switch g.Value {
	case types.GenderTypeMale:
		return domain.RawGender(domain.GenderMan)
	case types.GenderTypeFemale:
		return domain.RawGender(domain.GenderWoman)
	}
	return nil
}
