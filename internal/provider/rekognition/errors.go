package rekognition

import "errors"

var (
	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

	// ErrInvalidImage indicates that Rekognition rejected the image bytes
	ErrInvalidImage = errors.New("invalid image for rekognition")

	// ErrImageTooLarge indicates that the encoded image exceeds the API payload limit
	ErrImageTooLarge = errors.New("image exceeds rekognition size limit")
)
