package deepface

import "errors"

// ErrDeepFaceUnavailable covers transport failures and 5xx answers.
var ErrDeepFaceUnavailable = errors.New("deepface service unavailable")

// ErrInvalidResponse is returned when the body is not the documented shape.
var ErrInvalidResponse = errors.New("invalid response from deepface")
