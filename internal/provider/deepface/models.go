package deepface

// AnalyzeRequest for POST /analyze
type AnalyzeRequest struct {
	Img              string   `json:"img"`     // data URI, base64 encoded JPEG
	Actions          []string `json:"actions"` // ["age", "gender", "emotion", "race"]
	DetectorBackend  string   `json:"detector_backend"`
	EnforceDetection bool     `json:"enforce_detection"`
}

// AnalyzeResponse from POST /analyze
type AnalyzeResponse struct {
	Results []AnalyzeResult `json:"results"`
}

type AnalyzeResult struct {
	Region         FacialArea         `json:"region"`
	Age            *float64           `json:"age"`
	Gender         map[string]float64 `json:"gender"`
	DominantGender string             `json:"dominant_gender"`
	FaceConfidence *float64           `json:"face_confidence"`
}

type FacialArea struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}
