package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSwagger_DocumentsRoutes(t *testing.T) {
	doc := NewSwagger().MustToJson()

	var parsed struct {
		Paths map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(doc, &parsed))

	for _, path := range []string{"/upload/", "/logs/uploads", "/logs/analysis", "/logs/analysis/timeline", "/health", "/ready"} {
		assert.Contains(t, parsed.Paths, path)
	}
}
