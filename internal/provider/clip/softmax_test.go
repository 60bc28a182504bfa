package clip

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSoftmax(t *testing.T) {
	tests := []struct {
		name   string
		logits []float64
		want   []float64
	}{
		{
			name:   "equal logits",
			logits: []float64{1, 1, 1},
			want:   []float64{1.0 / 3, 1.0 / 3, 1.0 / 3},
		},
		{
			name:   "two values",
			logits: []float64{0, math.Log(3)},
			want:   []float64{0.25, 0.75},
		},
		{
			name:   "large logits do not overflow",
			logits: []float64{1000, 1000},
			want:   []float64{0.5, 0.5},
		},
		{
			name:   "negative logits",
			logits: []float64{-1000, -1000, -1000, -1000},
			want:   []float64{0.25, 0.25, 0.25, 0.25},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Softmax(tt.logits)

			assert.InDeltaSlice(t, tt.want, got, 1e-9)
		})
	}
}

func TestSoftmax_SumsToOne(t *testing.T) {
	inputs := [][]float64{
		{24.1, 19.7, 21.3},
		{-3, 0, 3},
		{0.001, 0.002, 0.003},
		{88, -88, 0},
	}

	for _, logits := range inputs {
		var sum float64
		for _, p := range Softmax(logits) {
			assert.GreaterOrEqual(t, p, 0.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestSoftmax_Empty(t *testing.T) {
	assert.Nil(t, Softmax(nil))
}

func TestArgmax(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   int
	}{
		{"empty", nil, -1},
		{"single", []float64{0.3}, 0},
		{"last wins", []float64{0.1, 0.2, 0.7}, 2},
		{"first index wins ties", []float64{0.4, 0.4, 0.2}, 0},
		{"tie after first", []float64{0.2, 0.4, 0.4}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Argmax(tt.values))
		})
	}
}
