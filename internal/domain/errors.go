package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// IsClientError reports whether the error is caused by the request itself.
func (e *AppError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "Internal server error",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrMissingFile = &AppError{
		Code:       "MISSING_FILE",
		Message:    "A file must be uploaded in the 'file' form field",
		StatusCode: 400,
	}

	ErrNotAnImage = &AppError{
		Code:       "NOT_AN_IMAGE",
		Message:    "File must be an image",
		StatusCode: 400,
	}

	ErrImageTooLarge = &AppError{
		Code:       "IMAGE_TOO_LARGE",
		Message:    "File too large. Maximum size is 10MB",
		StatusCode: 400,
	}
)
