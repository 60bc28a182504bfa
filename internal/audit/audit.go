// Package audit appends upload, analysis and error events to flat log files
// and reads them back for the log endpoints.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
)

// Tag labels each log line
type Tag string

const (
	TagUploaded Tag = "UPLOADED"
	TagMetadata Tag = "METADATA"
	TagError    Tag = "ERROR"
)

// Destination names one append-only log file
type Destination string

const (
	DestUploads  Destination = "uploads"
	DestAnalysis Destination = "analysis"
	DestErrors   Destination = "errors"
)

// FileName returns the file the destination is written to
func (d Destination) FileName() string {
	return string(d) + ".log"
}

// UploadEvent describes an accepted upload
type UploadEvent struct {
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// Logger records pipeline events. Implementations never fail the caller.
type Logger interface {
	LogUpload(ctx context.Context, event UploadEvent)
	LogAnalysis(ctx context.Context, record domain.AnalysisRecord)
	LogError(ctx context.Context, stage string, err error)
}

// FileLogger writes one line per event:
//
//	<RFC3339Nano timestamp> - <TAG>: <JSON payload>
type FileLogger struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
	locks  map[Destination]*sync.Mutex
}

// NewFileLogger creates a logger rooted at dir. The directory is created on
// first write, not here.
func NewFileLogger(dir string, logger *slog.Logger) *FileLogger {
	return &FileLogger{
		dir:    dir,
		logger: logger.With("component", "audit"),
		now:    func() time.Time { return time.Now().UTC() },
		locks: map[Destination]*sync.Mutex{
			DestUploads:  {},
			DestAnalysis: {},
			DestErrors:   {},
		},
	}
}

// Dir returns the log directory
func (l *FileLogger) Dir() string {
	return l.dir
}

func (l *FileLogger) LogUpload(ctx context.Context, event UploadEvent) {
	l.write(ctx, DestUploads, TagUploaded, map[string]any{
		"request_id":   RequestIDFrom(ctx),
		"filename":     event.Filename,
		"size":         event.Size,
		"content_type": event.ContentType,
	})
}

func (l *FileLogger) LogAnalysis(ctx context.Context, record domain.AnalysisRecord) {
	l.write(ctx, DestAnalysis, TagMetadata, map[string]any{
		"request_id": RequestIDFrom(ctx),
		"caption":    record.Caption,
		"face_info":  record.FaceInfo,
	})
}

func (l *FileLogger) LogError(ctx context.Context, stage string, err error) {
	if err == nil {
		return
	}
	l.write(ctx, DestErrors, TagError, map[string]any{
		"request_id": RequestIDFrom(ctx),
		"stage":      stage,
		"error":      err.Error(),
		"chain":      ErrorChain(err),
	})
}

func (l *FileLogger) write(ctx context.Context, dest Destination, tag Tag, payload any) {
	line := l.formatLine(ctx, tag, payload)

	mu := l.locks[dest]
	mu.Lock()
	defer mu.Unlock()

	if err := appendLine(l.dir, dest, line); err != nil {
		l.logger.ErrorContext(ctx, "failed to write log line",
			slog.String("destination", string(dest)),
			slog.String("error", err.Error()),
		)
	}
}

func (l *FileLogger) formatLine(ctx context.Context, tag Tag, payload any) []byte {
	ts := l.now().Format(time.RFC3339Nano)

	data, err := encodePayload(payload)
	if err != nil {
		l.logger.WarnContext(ctx, "log payload not JSON serializable, writing raw form",
			slog.String("tag", string(tag)),
			slog.String("error", err.Error()),
		)
		return []byte(fmt.Sprintf("%s - %s: %v\n", ts, tag, payload))
	}

	return []byte(fmt.Sprintf("%s - %s: %s\n", ts, tag, data))
}

func encodePayload(payload any) ([]byte, error) {
	tree, err := Normalize(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

func appendLine(dir string, dest Destination, line []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, dest.FileName()), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	_, writeErr := f.Write(line)
	closeErr := f.Close()
	return errors.Join(writeErr, closeErr)
}

// ErrorChain lists the messages of err and everything it wraps, outermost first
func ErrorChain(err error) []string {
	var chain []string
	queue := []error{err}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		if e == nil {
			continue
		}
		chain = append(chain, e.Error())

		switch u := e.(type) {
		case interface{ Unwrap() error }:
			queue = append(queue, u.Unwrap())
		case interface{ Unwrap() []error }:
			queue = append(queue, u.Unwrap()...)
		}
	}
	return chain
}

// NoOpLogger is a logger that does nothing (for testing or when logging is disabled)
type NoOpLogger struct{}

func (NoOpLogger) LogUpload(context.Context, UploadEvent) {}

func (NoOpLogger) LogAnalysis(context.Context, domain.AnalysisRecord) {}

func (NoOpLogger) LogError(context.Context, string, error) {}

var (
	_ Logger = (*FileLogger)(nil)
	_ Logger = NoOpLogger{}
)
