package clip

// LogitsRequest for POST /logits
type LogitsRequest struct {
	Image string   `json:"image"` // base64 encoded JPEG
	Texts []string `json:"texts"`
}

// LogitsResponse from POST /logits
type LogitsResponse struct {
	LogitsPerImage [][]float64 `json:"logits_per_image"` // one row per image
}
