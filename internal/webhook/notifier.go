// Package webhook posts analysis events to an external URL. Delivery is a
// single best-effort attempt; nothing is queued durably or retried.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/audit"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
)

const (
	EventAnalysisCompleted = "analysis.completed"

	HeaderSignature = "X-KI-Signature"
	HeaderEvent     = "X-KI-Event"
)

type Config struct {
	URL       string
	Secret    string
	Timeout   time.Duration
	QueueSize int
}

type EventPayload struct {
	ID        uuid.UUID   `json:"id"`
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

type analysisData struct {
	RequestID string                `json:"request_id,omitempty"`
	Caption   string                `json:"caption"`
	FaceInfo  domain.FaceAttributes `json:"face_info"`
}

// Notifier delivers analysis events from a bounded in-memory queue
type Notifier struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
	queue  chan EventPayload
}

func NewNotifier(cfg Config, logger *slog.Logger) *Notifier {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}

	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		queue:  make(chan EventPayload, cfg.QueueSize),
	}
}

// PublishAnalysis enqueues the record; it drops the event when the queue is
// full so the request path never waits on the receiver.
func (n *Notifier) PublishAnalysis(ctx context.Context, record domain.AnalysisRecord) {
	event := EventPayload{
		ID:   uuid.New(),
		Type: EventAnalysisCompleted,
		Data: analysisData{
			RequestID: audit.RequestIDFrom(ctx),
			Caption:   record.Caption,
			FaceInfo:  record.FaceInfo,
		},
		Timestamp: time.Now().UTC(),
	}

	select {
	case n.queue <- event:
	default:
		n.logger.Warn("webhook queue full, dropping event", "event_id", event.ID)
	}
}

// Run delivers queued events until ctx is cancelled
func (n *Notifier) Run(ctx context.Context) {
	n.logger.Info("webhook notifier started", "url", n.cfg.URL)

	for {
		select {
		case <-ctx.Done():
			n.logger.Info("webhook notifier stopped")
			return
		case event := <-n.queue:
			if err := n.Send(ctx, event); err != nil {
				n.logger.Error("webhook delivery failed",
					"event_id", event.ID,
					"event_type", event.Type,
					"error", err,
				)
			}
		}
	}
}

// Send posts one signed event
func (n *Notifier) Send(ctx context.Context, event EventPayload) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, event.Type)
	req.Header.Set("User-Agent", "KI-Metadata-Webhook/1.0")
	if n.cfg.Secret != "" {
		req.Header.Set(HeaderSignature, Sign(n.cfg.Secret, payload))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("post event: HTTP %d", resp.StatusCode)
	}

	return nil
}
