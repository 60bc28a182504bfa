package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/audit"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
)

// Disclaimer accompanies every analysis response.
const Disclaimer = "Caption, age and gender are model estimates and may be inaccurate."

const unserializableAnalysis = "analysis result is not JSON serializable"

type AnalysisServiceInterface interface {
	Analyze(ctx context.Context, upload domain.UploadedImage) (*domain.AnalysisRecord, error)
}

type UploadRecorder interface {
	UploadAccepted()
	UploadRejected(reason string)
}

type UploadHandler struct {
	service  AnalysisServiceInterface
	audit    audit.Logger
	logger   *slog.Logger
	maxBytes int64
	recorder UploadRecorder
}

func NewUploadHandler(service AnalysisServiceInterface, auditLogger audit.Logger, logger *slog.Logger, maxBytes int64) *UploadHandler {
	return &UploadHandler{
		service:  service,
		audit:    auditLogger,
		logger:   logger,
		maxBytes: maxBytes,
	}
}

func (h *UploadHandler) WithRecorder(r UploadRecorder) *UploadHandler {
	h.recorder = r
	return h
}

type UploadResponse struct {
	Filename   string          `json:"filename"`
	Size       int64           `json:"size"`
	Analysis   json.RawMessage `json:"analysis"`
	Disclaimer string          `json:"disclaimer"`
}

// Upload handles POST /upload/
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		h.rejected("missing_file")
		return domain.ErrMissingFile
	}

	contentType := file.Header.Get(fiber.HeaderContentType)
	if !strings.HasPrefix(contentType, "image/") {
		h.rejected("not_an_image")
		return domain.ErrNotAnImage
	}

	if file.Size > h.maxBytes {
		h.rejected("too_large")
		return domain.ErrImageTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.maxBytes+1))
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > h.maxBytes {
		h.rejected("too_large")
		return domain.ErrImageTooLarge
	}

	if h.recorder != nil {
		h.recorder.UploadAccepted()
	}

	ctx := c.UserContext()
	h.audit.LogUpload(ctx, audit.UploadEvent{
		Filename:    file.Filename,
		Size:        file.Size,
		ContentType: contentType,
	})

	record, err := h.service.Analyze(ctx, domain.UploadedImage{
		Filename:    file.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		return err
	}

	return c.JSON(UploadResponse{
		Filename:   file.Filename,
		Size:       file.Size,
		Analysis:   h.encodeAnalysis(ctx, record),
		Disclaimer: Disclaimer,
	})
}

func (h *UploadHandler) rejected(reason string) {
	if h.recorder != nil {
		h.recorder.UploadRejected(reason)
	}
}

// encodeAnalysis never fails: a record that cannot be marshalled is replaced
// by a description of the failure.
func (h *UploadHandler) encodeAnalysis(ctx context.Context, record *domain.AnalysisRecord) json.RawMessage {
	encoded, err := json.Marshal(record)
	if err == nil {
		return encoded
	}

	h.logger.WarnContext(ctx, unserializableAnalysis, "error", err)

	fallback, _ := json.Marshal(map[string]string{
		"error":               unserializableAnalysis,
		"raw":                 fmt.Sprintf("%v", *record),
		"serialization_error": err.Error(),
	})
	return fallback
}
