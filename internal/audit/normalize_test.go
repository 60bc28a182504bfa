package audit

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
)

type inner struct {
	Score float32 `json:"score"`
}

type sample struct {
	Name     string            `json:"name"`
	Count    uint8             `json:"count"`
	Skipped  string            `json:"-"`
	Empty    []int             `json:"empty,omitempty"`
	Zero     inner             `json:"zero,omitempty"`
	Labels   map[int]string    `json:"labels"`
	Nested   *inner            `json:"nested"`
	Untagged bool
	private  int
	Attrs    map[string]any    `json:"attrs"`
	Raw      []byte            `json:"raw"`
	When     time.Time         `json:"when"`
	Err      error             `json:"err"`
	Tags     [2]string         `json:"tags"`
	Dict     map[string]string `json:"dict"`
	inner
}

func TestNormalize_PlainTree(t *testing.T) {
	when := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	v := sample{
		Name:     "x",
		Count:    7,
		Skipped:  "hidden",
		Labels:   map[int]string{1: "one"},
		Nested:   &inner{Score: 0.5},
		Untagged: true,
		private:  3,
		Attrs:    map[string]any{"n": int32(-4), "list": []float64{1.5}},
		Raw:      []byte("hi"),
		When:     when,
		Err:      errors.New("boom"),
		Tags:     [2]string{"a", "b"},
		inner:    inner{Score: 2},
	}

	got, err := Normalize(v)
	require.NoError(t, err)

	want := map[string]any{
		"name":     "x",
		"count":    uint64(7),
		"labels":   map[string]any{"1": "one"},
		"nested":   map[string]any{"score": 0.5},
		"zero":     map[string]any{"score": float64(0)},
		"Untagged": true,
		"attrs":    map[string]any{"n": int64(-4), "list": []any{1.5}},
		"raw":      "aGk=",
		"when":     "2026-01-02T03:04:05Z",
		"err":      "boom",
		"tags":     []any{"a", "b"},
		"dict":     nil,
		"score":    float64(2),
	}
	assert.Equal(t, want, got)
}

func TestNormalize_MatchesEncodingJSON(t *testing.T) {
	v := map[string]any{
		"face_info": domain.FoundFace(nil, domain.ScoredGender(map[string]float64{"Woman": 60, "Man": 40})),
		"caption":   domain.CaptionPerson,
		"size":      int64(1 << 40),
	}

	tree, err := Normalize(v)
	require.NoError(t, err)

	got, err := json.Marshal(tree)
	require.NoError(t, err)
	want, err := json.Marshal(v)
	require.NoError(t, err)

	assert.JSONEq(t, string(want), string(got))
}

func TestNormalize_MarshalerNumbers(t *testing.T) {
	tree, err := Normalize(domain.FoundFace(func() *int { v := 41; return &v }(), nil))
	require.NoError(t, err)

	m, ok := tree.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(41), m["age"], "integral JSON numbers decode as int64")
	assert.Nil(t, m["gender"])
}

func TestNormalize_Rejects(t *testing.T) {
	tests := []struct {
		name string
		v    any
	}{
		{"NaN", math.NaN()},
		{"positive infinity", map[string]float64{"x": math.Inf(1)}},
		{"channel", make(chan int)},
		{"func", func() {}},
		{"complex", complex(1, 2)},
		{"struct key map", map[inner]int{{Score: 1}: 1}},
		{"marshaler failure", domain.ScoredGender(map[string]float64{"Woman": math.NaN()})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.v)
			assert.ErrorIs(t, err, ErrNotSerializable)
		})
	}
}

func TestNormalize_Nil(t *testing.T) {
	var nilPtr *inner

	for _, v := range []any{nil, nilPtr, []int(nil), map[string]int(nil)} {
		got, err := Normalize(v)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
}
