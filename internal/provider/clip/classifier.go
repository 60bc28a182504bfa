package clip

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/provider"
)

// Classifier implements provider.CaptionClassifier against a CLIP server
type Classifier struct {
	client *Client
	labels []string
}

// NewClassifier creates a classifier over the fixed caption labels
func NewClassifier(config Config) *Classifier {
	return &Classifier{
		client: NewClient(config),
		labels: domain.CaptionLabels(),
	}
}

// Classify scores the image against every label and returns the most probable one
func (c *Classifier) Classify(ctx context.Context, img *image.NRGBA) (*domain.CaptionResult, error) {
	data, err := imagecodec.EncodeJPEG(img)
	if err != nil {
		return nil, fmt.Errorf("classify caption: %w", err)
	}

	resp, err := c.client.Logits(ctx, base64.StdEncoding.EncodeToString(data), c.labels)
	if err != nil {
		return nil, fmt.Errorf("classify caption: %w", err)
	}

	if len(resp.LogitsPerImage) == 0 || len(resp.LogitsPerImage[0]) != len(c.labels) {
		return nil, fmt.Errorf("classify caption: %w", ErrLogitsMismatch)
	}

	probs := Softmax(resp.LogitsPerImage[0])

	return &domain.CaptionResult{
		Label:  c.labels[Argmax(probs)],
		Scores: probs,
	}, nil
}

// Ensure Classifier implements provider.CaptionClassifier
var _ provider.CaptionClassifier = (*Classifier)(nil)
