package mock

import (
	"context"
	"crypto/sha256"
	"image"
	"math"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/provider"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/provider/clip"
)

// minFaceSide is the smallest image side on which the mock reports a face
const minFaceSide = 32

// Provider implements provider.CaptionClassifier and provider.FaceAnalyzer
// for tests and local development. Results depend only on the pixels.
type Provider struct{}

// New creates a new mock Provider
func New() *Provider {
	return &Provider{}
}

// Classify uses the mean red, green and blue intensities as logits for
// "a photo", "a person" and "a performance"
func (p *Provider) Classify(ctx context.Context, img *image.NRGBA) (*domain.CaptionResult, error) {
	labels := domain.CaptionLabels()
	logits := meanChannels(img)

	probs := clip.Softmax(logits[:len(labels)])

	return &domain.CaptionResult{
		Label:  labels[clip.Argmax(probs)],
		Scores: probs,
	}, nil
}

// Analyze derives age and gender scores from a hash of the pixels
func (p *Provider) Analyze(ctx context.Context, img *image.NRGBA) (domain.FaceAttributes, error) {
	bounds := img.Bounds()
	if bounds.Dx() < minFaceSide || bounds.Dy() < minFaceSide {
		return domain.MissingFace(), nil
	}

	hash := sha256.Sum256(img.Pix)

	age := 18 + int(hash[0])%50
	woman := math.Round(float64(hash[1])/255*10000) / 100

	gender := domain.ScoredGender(map[string]float64{
		domain.GenderWoman: woman,
		domain.GenderMan:   math.Round((100-woman)*100) / 100,
	})

	return domain.FoundFace(&age, gender), nil
}

// meanChannels returns the mean R, G and B values scaled to 0..10
func meanChannels(img *image.NRGBA) []float64 {
	sums := make([]float64, 3)
	var n float64

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			sums[0] += float64(c.R)
			sums[1] += float64(c.G)
			sums[2] += float64(c.B)
			n++
		}
	}

	if n == 0 {
		return sums
	}
	for i := range sums {
		sums[i] = sums[i] / n / 25.5
	}
	return sums
}

var (
	_ provider.CaptionClassifier = (*Provider)(nil)
	_ provider.FaceAnalyzer      = (*Provider)(nil)
)
