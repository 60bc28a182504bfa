package ws

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventAnalysisCompleted EventType = "analysis.completed"
)

type Event struct {
	ID        uuid.UUID   `json:"id"`
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// AnalysisData is the payload of an analysis.completed event
type AnalysisData struct {
	RequestID string      `json:"request_id,omitempty"`
	Caption   string      `json:"caption"`
	FaceInfo  interface{} `json:"face_info"`
}
