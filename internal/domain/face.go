package domain

import (
	"encoding/json"
	"fmt"
)

// NoFaceMessage is reported when the detector ran but found no face.
const NoFaceMessage = "Face could not be detected in the image"

// FaceOutcome tags which variant a FaceAttributes holds.
type FaceOutcome int

const (
	FaceFound FaceOutcome = iota + 1
	FaceNotFound
	FaceFailed
)

func (o FaceOutcome) String() string {
	switch o {
	case FaceFound:
		return "found"
	case FaceNotFound:
		return "not_found"
	case FaceFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FaceAttributes is the result of face analysis. Only FaceFound carries
// attributes; the other outcomes carry a message and serialize as
// {"error": message}.
type FaceAttributes struct {
	Outcome FaceOutcome
	Age     *int
	Gender  *GenderField
	Message string
}

// FoundFace builds an attribute record for the first detected face.
func FoundFace(age *int, gender *GenderField) FaceAttributes {
	return FaceAttributes{Outcome: FaceFound, Age: age, Gender: gender}
}

// MissingFace reports an image without a detectable face.
func MissingFace() FaceAttributes {
	return FaceAttributes{Outcome: FaceNotFound, Message: NoFaceMessage}
}

// FailedFace converts a detector failure into a degraded result.
func FailedFace(message string) FaceAttributes {
	return FaceAttributes{Outcome: FaceFailed, Message: message}
}

// WithNormalizedGender returns a copy whose gender went through NormalizeGender.
func (f FaceAttributes) WithNormalizedGender(threshold float64) FaceAttributes {
	if f.Outcome != FaceFound {
		return f
	}
	f.Gender = NormalizeGender(f.Gender, threshold)
	return f
}

type faceFoundJSON struct {
	Age    *int         `json:"age"`
	Gender *GenderField `json:"gender"`
}

type faceErrorJSON struct {
	Error string `json:"error"`
}

func (f FaceAttributes) MarshalJSON() ([]byte, error) {
	switch f.Outcome {
	case FaceFound:
		return json.Marshal(faceFoundJSON{Age: f.Age, Gender: f.Gender})
	case FaceNotFound, FaceFailed:
		return json.Marshal(faceErrorJSON{Error: f.Message})
	default:
		return nil, fmt.Errorf("face attributes: unknown outcome %d", f.Outcome)
	}
}

func (f *FaceAttributes) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("face attributes: %w", err)
	}

	if raw, ok := probe["error"]; ok {
		var message string
		if err := json.Unmarshal(raw, &message); err != nil {
			return fmt.Errorf("face attributes error: %w", err)
		}
		if message == NoFaceMessage {
			*f = MissingFace()
		} else {
			*f = FailedFace(message)
		}
		return nil
	}

	var found faceFoundJSON
	if err := json.Unmarshal(data, &found); err != nil {
		return fmt.Errorf("face attributes: %w", err)
	}
	*f = FoundFace(found.Age, found.Gender)
	return nil
}
