package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

const (
	GenderWoman = "Woman"
	GenderMan   = "Man"

	VerdictUncertain     = "Uncertain"
	VerdictLowConfidence = "Low_Confidence"

	// DefaultGenderThreshold is the minimum share (0-1) the dominant score
	// must hold before a verdict is considered confident.
	DefaultGenderThreshold = 0.7

	// uncertainMargin is on the detector's 0-100 scale.
	uncertainMargin = 20.0

	keyDominantGender       = "dominant_gender"
	keyConfidenceDifference = "confidence_difference"
	keyMaxConfidence        = "max_confidence"
)

// GenderKind tags which variant a GenderField holds.
type GenderKind int

const (
	// GenderRaw is a bare label straight from the detector ("Man").
	GenderRaw GenderKind = iota + 1
	// GenderScored is the detector's per-label confidence mapping.
	GenderScored
	// GenderNormalized is a scored mapping annotated with a verdict.
	GenderNormalized
)

// GenderField is the gender attribute of a detected face.
type GenderField struct {
	Kind   GenderKind
	Label  string
	Scores map[string]float64

	// Set only for GenderNormalized.
	Dominant             string
	ConfidenceDifference *float64
	MaxConfidence        *float64
}

// RawGender wraps a detector label.
func RawGender(label string) *GenderField {
	return &GenderField{Kind: GenderRaw, Label: label}
}

// ScoredGender wraps a copy of the detector's confidence mapping.
func ScoredGender(scores map[string]float64) *GenderField {
	return &GenderField{Kind: GenderScored, Scores: copyScores(scores)}
}

// NormalizeGender annotates a scored gender with a verdict when the two
// confidences are too close or the dominant one is too weak. Confident
// mappings and every other variant are returned unchanged.
func NormalizeGender(g *GenderField, threshold float64) *GenderField {
	if g == nil || g.Kind != GenderScored {
		return g
	}

	woman, okWoman := g.Scores[GenderWoman]
	man, okMan := g.Scores[GenderMan]
	if !okWoman || !okMan {
		return g
	}

	diff := math.Abs(woman - man)
	if diff < uncertainMargin {
		return &GenderField{
			Kind:                 GenderNormalized,
			Scores:               copyScores(g.Scores),
			Dominant:             VerdictUncertain,
			ConfidenceDifference: &diff,
		}
	}

	top := math.Max(woman, man)
	if dominantShare(top, woman+man) < threshold*100 {
		return &GenderField{
			Kind:          GenderNormalized,
			Scores:        copyScores(g.Scores),
			Dominant:      VerdictLowConfidence,
			MaxConfidence: &top,
		}
	}

	return g
}

// dominantShare rescales the top score to the pair's total so detectors that
// do not emit exactly complementary scores are judged on the same 0-100 scale.
func dominantShare(top, total float64) float64 {
	if total <= 0 {
		return top
	}
	return top / total * 100
}

// PropertyValue is the scalar stored on graph Person nodes: the label for raw
// values and the canonical (key-sorted) JSON object otherwise.
func (g GenderField) PropertyValue() (string, error) {
	if g.Kind == GenderRaw {
		return g.Label, nil
	}
	b, err := g.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (g GenderField) MarshalJSON() ([]byte, error) {
	switch g.Kind {
	case GenderRaw:
		return json.Marshal(g.Label)
	case GenderScored, GenderNormalized:
		return json.Marshal(g.object())
	default:
		return nil, fmt.Errorf("gender field: unknown kind %d", g.Kind)
	}
}

func (g GenderField) object() map[string]any {
	obj := make(map[string]any, len(g.Scores)+2)
	for label, score := range g.Scores {
		obj[label] = score
	}
	if g.Kind == GenderNormalized {
		obj[keyDominantGender] = g.Dominant
		if g.ConfidenceDifference != nil {
			obj[keyConfidenceDifference] = *g.ConfidenceDifference
		}
		if g.MaxConfidence != nil {
			obj[keyMaxConfidence] = *g.MaxConfidence
		}
	}
	return obj
}

func (g *GenderField) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		*g = GenderField{Kind: GenderRaw, Label: label}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("gender field: %w", err)
	}

	out := GenderField{Kind: GenderScored, Scores: make(map[string]float64, len(obj))}

	if raw, ok := obj[keyDominantGender]; ok {
		if err := json.Unmarshal(raw, &out.Dominant); err != nil {
			return fmt.Errorf("gender field %s: %w", keyDominantGender, err)
		}
		delete(obj, keyDominantGender)
		out.Kind = GenderNormalized

		var err error
		if out.ConfidenceDifference, err = popFloat(obj, keyConfidenceDifference); err != nil {
			return err
		}
		if out.MaxConfidence, err = popFloat(obj, keyMaxConfidence); err != nil {
			return err
		}
	}

	for key, raw := range obj {
		var score float64
		if err := json.Unmarshal(raw, &score); err != nil {
			return fmt.Errorf("gender field %s: %w", key, err)
		}
		out.Scores[key] = score
	}

	*g = out
	return nil
}

func popFloat(obj map[string]json.RawMessage, key string) (*float64, error) {
	raw, ok := obj[key]
	if !ok {
		return nil, nil
	}
	delete(obj, key)

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("gender field %s: %w", key, err)
	}
	return &v, nil
}

func copyScores(scores map[string]float64) map[string]float64 {
	if scores == nil {
		return nil
	}
	out := make(map[string]float64, len(scores))
	for k, v := range scores {
		out[k] = v
	}
	return out
}
