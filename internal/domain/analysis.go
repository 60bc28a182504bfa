package domain

// Caption labels, in tie-break order.
const (
	CaptionPhoto       = "a photo"
	CaptionPerson      = "a person"
	CaptionPerformance = "a performance"
)

// CaptionLabels returns the fixed candidate set scored for every image.
func CaptionLabels() []string {
	return []string{CaptionPhoto, CaptionPerson, CaptionPerformance}
}

// UploadedImage is a raw upload as received by the endpoint.
type UploadedImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CaptionResult is the winning label plus the softmax probabilities aligned
// with CaptionLabels.
type CaptionResult struct {
	Label  string    `json:"label"`
	Scores []float64 `json:"scores"`
}

// AnalysisRecord is the unit logged and returned for every processed upload.
type AnalysisRecord struct {
	Caption  string         `json:"caption"`
	FaceInfo FaceAttributes `json:"face_info"`
}

// GraphFact is (Description{text}) -[:DESCRIBES]-> (Person{age, gender}),
// merged by value.
type GraphFact struct {
	Caption string
	Age     *int
	Gender  *string
}

// NewGraphFact derives the persisted fact from an analysis record.
func NewGraphFact(record AnalysisRecord) (GraphFact, error) {
	fact := GraphFact{Caption: record.Caption}
	if record.FaceInfo.Outcome != FaceFound {
		return fact, nil
	}

	fact.Age = record.FaceInfo.Age
	if record.FaceInfo.Gender != nil {
		value, err := record.FaceInfo.Gender.PropertyValue()
		if err != nil {
			return GraphFact{}, err
		}
		fact.Gender = &value
	}
	return fact, nil
}

// GraphCounts reports node and edge totals of a graph store.
type GraphCounts struct {
	Descriptions int64 `json:"descriptions"`
	Persons      int64 `json:"persons"`
	Edges        int64 `json:"edges"`
}
