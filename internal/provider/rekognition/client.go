package rekognition

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/smithy-go"
)

const (
	errCodeAccessDenied       = "AccessDeniedException"
	errCodeInvalidImageFormat = "InvalidImageFormatException"
	errCodeImageTooLarge      = "ImageTooLargeException"
	errCodeInvalidParameter   = "InvalidParameterException"
)

// RekognitionAPI is the subset of the AWS Rekognition client used here
type RekognitionAPI interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// NewClient creates an AWS Rekognition client using the default credential chain
func NewClient(ctx context.Context, cfg Config) (*rekognition.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return rekognition.NewFromConfig(awsCfg), nil
}

// mapAPIError translates Rekognition error codes into package errors
func mapAPIError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.ErrorCode() {
	case errCodeAccessDenied:
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.ErrorMessage())
	case errCodeInvalidImageFormat, errCodeInvalidParameter:
		return fmt.Errorf("%w: %s", ErrInvalidImage, apiErr.ErrorMessage())
	case errCodeImageTooLarge:
		return fmt.Errorf("%w: %s", ErrImageTooLarge, apiErr.ErrorMessage())
	}
	return err
}
