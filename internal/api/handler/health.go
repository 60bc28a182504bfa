package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
)

const readyTimeout = 3 * time.Second

// GraphProbe is the part of the graph store readiness depends on.
type GraphProbe interface {
	Ping(ctx context.Context) error
	Counts(ctx context.Context) (domain.GraphCounts, error)
}

type HealthHandler struct {
	graph GraphProbe
}

func NewHealthHandler(graph GraphProbe) *HealthHandler {
	return &HealthHandler{graph: graph}
}

type RootResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string              `json:"status"`
	Graph  string              `json:"graph,omitempty"`
	Counts *domain.GraphCounts `json:"counts,omitempty"`
}

func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(RootResponse{Message: "KI Metadata Extended API is running"})
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "healthy"})
}

// Ready reports 503 while the graph store is unreachable. Counts are
// best-effort and omitted when they cannot be read.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
	defer cancel()

	if err := h.graph.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status: "degraded",
			Graph:  err.Error(),
		})
	}

	resp := HealthResponse{Status: "ready"}
	if counts, err := h.graph.Counts(ctx); err == nil {
		resp.Counts = &counts
	}
	return c.JSON(resp)
}
