package clip

import "errors"

var (
	ErrClipUnavailable = errors.New("clip service unavailable")
	ErrInvalidResponse = errors.New("invalid response from clip")
	ErrLogitsMismatch  = errors.New("clip logits do not match candidate labels")
)
