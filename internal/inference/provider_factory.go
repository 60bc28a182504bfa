// Package inference builds the caption classifier and face analyzer selected
// by configuration.
package inference

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/config"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/provider"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/provider/clip"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/provider/rekognition"
)

// ProviderType defines supported inference provider types
type ProviderType string

const (
	// ProviderTypeClip is the CLIP inference server (caption)
	ProviderTypeClip ProviderType = "clip"
	// ProviderTypeDeepFace is the DeepFace provider (face, default)
	ProviderTypeDeepFace ProviderType = "deepface"
	// ProviderTypeRekognition is the AWS Rekognition provider (face, cloud)
	ProviderTypeRekognition ProviderType = "rekognition"
	// ProviderTypeMock is the deterministic in-process provider (both)
	ProviderTypeMock ProviderType = "mock"
)

// NewCaptionClassifier creates the caption classifier named by CAPTION_PROVIDER
func NewCaptionClassifier(cfg *config.Config) (provider.CaptionClassifier, error) {
	switch ProviderType(cfg.CaptionProvider) {
	case ProviderTypeClip, "":
		clipConfig := clip.DefaultConfig()
		if cfg.ClipURL != "" {
			clipConfig.BaseURL = cfg.ClipURL
		}
		return clip.NewClassifier(clipConfig), nil

	case ProviderTypeMock:
		return mock.New(), nil

	default:
		return nil, fmt.Errorf("unknown caption provider type: %s (supported: %s, %s)",
			cfg.CaptionProvider, ProviderTypeClip, ProviderTypeMock)
	}
}

// NewFaceAnalyzer creates the face analyzer named by FACE_PROVIDER.
//
// Environment variables:
//   - FACE_PROVIDER: "deepface", "rekognition" or "mock" (default: "deepface")
//   - DEEPFACE_URL, DEEPFACE_DETECTOR: DeepFace API location and detector backend
//   - AWS_REGION: AWS region for Rekognition; credentials come from the SDK chain
func NewFaceAnalyzer(ctx context.Context, cfg *config.Config) (provider.FaceAnalyzer, error) {
	switch ProviderType(cfg.FaceProvider) {
	case ProviderTypeDeepFace, "":
		return createDeepFaceAnalyzer(cfg), nil

	case ProviderTypeRekognition:
		analyzer, err := rekognition.NewAnalyzer(ctx, rekognition.Config{Region: cfg.AWSRegion})
		if err != nil {
			return nil, fmt.Errorf("create rekognition analyzer: %w", err)
		}
		return analyzer, nil

	case ProviderTypeMock:
		return mock.New(), nil

	default:
		return nil, fmt.Errorf("unknown face provider type: %s (supported: %s, %s, %s)",
			cfg.FaceProvider, ProviderTypeDeepFace, ProviderTypeRekognition, ProviderTypeMock)
	}
}

func createDeepFaceAnalyzer(cfg *config.Config) provider.FaceAnalyzer {
	deepfaceConfig := deepface.DefaultConfig()
	if cfg.DeepFaceURL != "" {
		deepfaceConfig.BaseURL = cfg.DeepFaceURL
	}
	if cfg.DeepFaceDetector != "" {
		deepfaceConfig.Detector = cfg.DeepFaceDetector
	}

	return deepface.NewAnalyzer(deepfaceConfig)
}
