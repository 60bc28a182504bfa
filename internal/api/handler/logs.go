package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/audit"
)

const (
	defaultTailLines = 100
	maxTimelineLimit = 10000
)

type LogsHandler struct {
	reader audit.Reader
}

func NewLogsHandler(reader audit.Reader) *LogsHandler {
	return &LogsHandler{reader: reader}
}

type UploadsLogResponse struct {
	Uploads []string `json:"uploads"`
}

type AnalysisLogResponse struct {
	Analysis []string `json:"analysis"`
}

type TimelineResponse struct {
	Entries []audit.TimelineEntry `json:"entries"`
}

// Uploads handles GET /logs/uploads
func (h *LogsHandler) Uploads(c *fiber.Ctx) error {
	lines, err := h.reader.Tail(audit.DestUploads, defaultTailLines)
	if err != nil {
		return err
	}
	return c.JSON(UploadsLogResponse{Uploads: lines})
}

// Analysis handles GET /logs/analysis
func (h *LogsHandler) Analysis(c *fiber.Ctx) error {
	lines, err := h.reader.Tail(audit.DestAnalysis, defaultTailLines)
	if err != nil {
		return err
	}
	return c.JSON(AnalysisLogResponse{Analysis: lines})
}

// Timeline handles GET /logs/analysis/timeline?limit=N
func (h *LogsHandler) Timeline(c *fiber.Ctx) error {
	limit := defaultTailLines
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "limit must be an integer")
		}
		limit = n
	}
	if limit <= 0 || limit > maxTimelineLimit {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be between 1 and 10000")
	}

	entries, err := h.reader.Timeline(limit)
	if err != nil {
		return err
	}
	return c.JSON(TimelineResponse{Entries: entries})
}
