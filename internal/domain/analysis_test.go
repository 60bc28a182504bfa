package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptionLabels(t *testing.T) {
	labels := CaptionLabels()

	assert.Equal(t, []string{"a photo", "a person", "a performance"}, labels)

	labels[0] = "mutated"
	assert.Equal(t, "a photo", CaptionLabels()[0])
}

func TestAnalysisRecord_JSONRoundTrip(t *testing.T) {
	record := AnalysisRecord{
		Caption:  CaptionPerson,
		FaceInfo: FoundFace(ptrInt(28), NormalizeGender(ScoredGender(map[string]float64{"Woman": 65, "Man": 30}), 0.7)),
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	var got AnalysisRecord
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, record, got)
}

func TestNewGraphFact(t *testing.T) {
	tests := []struct {
		name   string
		record AnalysisRecord
		want   GraphFact
	}{
		{
			name:   "raw gender label",
			record: AnalysisRecord{Caption: CaptionPerson, FaceInfo: FoundFace(ptrInt(40), RawGender("Man"))},
			want:   GraphFact{Caption: CaptionPerson, Age: ptrInt(40), Gender: ptrString("Man")},
		},
		{
			name: "scored gender is stored as canonical json",
			record: AnalysisRecord{
				Caption:  CaptionPhoto,
				FaceInfo: FoundFace(ptrInt(22), ScoredGender(map[string]float64{"Woman": 60, "Man": 10})),
			},
			want: GraphFact{Caption: CaptionPhoto, Age: ptrInt(22), Gender: ptrString(`{"Man":10,"Woman":60}`)},
		},
		{
			name:   "no face keeps null attributes",
			record: AnalysisRecord{Caption: CaptionPerformance, FaceInfo: MissingFace()},
			want:   GraphFact{Caption: CaptionPerformance},
		},
		{
			name:   "detector failure keeps null attributes",
			record: AnalysisRecord{Caption: CaptionPhoto, FaceInfo: FailedFace("boom")},
			want:   GraphFact{Caption: CaptionPhoto},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewGraphFact(tt.record)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewGraphFact_UnserializableGender(t *testing.T) {
	record := AnalysisRecord{
		Caption:  CaptionPerson,
		FaceInfo: FoundFace(ptrInt(30), ScoredGender(map[string]float64{"Woman": math.Inf(1), "Man": 0})),
	}

	_, err := NewGraphFact(record)

	assert.Error(t, err)
}

func ptrString(v string) *string { return &v }
