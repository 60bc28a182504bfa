package clip

import "math"

// Softmax converts logits into probabilities that sum to 1.
// The maximum logit is subtracted first so large logits do not overflow.
func Softmax(logits []float64) []float64 {
	if len(logits) == 0 {
		return nil
	}

	maxLogit := logits[0]
	for _, l := range logits[1:] {
		if l > maxLogit {
			maxLogit = l
		}
	}

	probs := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		probs[i] = math.Exp(l - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}

	return probs
}

// Argmax returns the index of the largest value; the first index wins ties.
// It returns -1 for an empty slice.
func Argmax(values []float64) int {
	best := -1
	for i, v := range values {
		if best == -1 || v > values[best] {
			best = i
		}
	}
	return best
}
