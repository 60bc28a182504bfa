package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxLineBytes = 4 << 20

var ErrMalformedLine = errors.New("malformed log line")

// Entry is one parsed log line
type Entry struct {
	Timestamp time.Time
	Tag       Tag
	Payload   string
}

// TimelineEntry is one analysis log line prepared for charting
type TimelineEntry struct {
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"request_id,omitempty"`
	Caption   string          `json:"caption"`
	FaceInfo  json.RawMessage `json:"face_info"`
}

// Reader exposes the log files to the HTTP layer
type Reader interface {
	Tail(dest Destination, n int) ([]string, error)
	Timeline(limit int) ([]TimelineEntry, error)
}

// Tail returns up to the last n lines of dest without their newline.
// A missing file yields an empty slice.
func (l *FileLogger) Tail(dest Destination, n int) ([]string, error) {
	lines := make([]string, 0, n)
	if n <= 0 {
		return lines, nil
	}

	f, err := os.Open(filepath.Join(l.dir, dest.FileName()))
	if errors.Is(err, os.ErrNotExist) {
		return lines, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s log: %w", dest, err)
	}
	defer func() { _ = f.Close() }()

	ring := make([]string, n)
	count := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		ring[count%n] = scanner.Text()
		count++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s log: %w", dest, err)
	}

	start := 0
	if count > n {
		start = count - n
	}
	for i := start; i < count; i++ {
		lines = append(lines, ring[i%n])
	}
	return lines, nil
}

// ParseLine splits "<timestamp> - <TAG>: <payload>" into its parts
func ParseLine(line string) (Entry, error) {
	ts, rest, ok := strings.Cut(line, " - ")
	if !ok {
		return Entry{}, fmt.Errorf("%w: missing timestamp separator", ErrMalformedLine)
	}
	tag, payload, ok := strings.Cut(rest, ": ")
	if !ok {
		return Entry{}, fmt.Errorf("%w: missing tag separator", ErrMalformedLine)
	}

	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrMalformedLine, err)
	}

	return Entry{Timestamp: parsed, Tag: Tag(tag), Payload: payload}, nil
}

// Timeline parses the last limit analysis lines. Lines that are not METADATA
// entries with a JSON payload are skipped.
func (l *FileLogger) Timeline(limit int) ([]TimelineEntry, error) {
	lines, err := l.Tail(DestAnalysis, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]TimelineEntry, 0, len(lines))
	for _, line := range lines {
		entry, err := ParseLine(line)
		if err != nil || entry.Tag != TagMetadata {
			continue
		}

		var payload struct {
			RequestID string          `json:"request_id"`
			Caption   string          `json:"caption"`
			FaceInfo  json.RawMessage `json:"face_info"`
		}
		if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
			continue
		}

		entries = append(entries, TimelineEntry{
			Timestamp: entry.Timestamp,
			RequestID: payload.RequestID,
			Caption:   payload.Caption,
			FaceInfo:  payload.FaceInfo,
		})
	}
	return entries, nil
}

var _ Reader = (*FileLogger)(nil)
