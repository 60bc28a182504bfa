package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
)

// CountSource reports graph totals; graph.Store satisfies it.
type CountSource interface {
	Counts(ctx context.Context) (domain.GraphCounts, error)
}

// GraphSampler periodically copies graph totals into gauges
type GraphSampler struct {
	source   CountSource
	metrics  *Metrics
	logger   *slog.Logger
	interval time.Duration
	done     chan struct{}
}

// NewGraphSampler creates a new sampler worker
func NewGraphSampler(source CountSource, m *Metrics, logger *slog.Logger, interval time.Duration) *GraphSampler {
	if interval == 0 {
		interval = 1 * time.Minute
	}

	return &GraphSampler{
		source:   source,
		metrics:  m,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start samples once immediately, then on every tick until stopped
func (s *GraphSampler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("graph sampler started", "interval", s.interval)
	s.sample(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("graph sampler stopped")
			return
		case <-s.done:
			s.logger.Info("graph sampler stopped")
			return
		case <-ticker.C:
			s.sample(ctx)
		}
	}
}

// Stop shuts the sampler down; call at most once
func (s *GraphSampler) Stop() {
	close(s.done)
}

func (s *GraphSampler) sample(ctx context.Context) {
	counts, err := s.source.Counts(ctx)
	if err != nil {
		s.logger.Warn("failed to sample graph counts", "error", err)
		return
	}
	s.metrics.SetGraphCounts(counts)
}
