package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/audit"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/provider"
)

// Error log stages.
const (
	StagePipeline = "pipeline"
	StageGraph    = "graph_upsert"
	StageFace     = "face_analysis"
)

type GraphWriterInterface interface {
	Upsert(ctx context.Context, fact domain.GraphFact) error
}

// Publisher receives every finished analysis, e.g. the websocket hub.
type Publisher interface {
	PublishAnalysis(ctx context.Context, record domain.AnalysisRecord)
}

type Recorder interface {
	ObserveAnalysis(record domain.AnalysisRecord, elapsed time.Duration)
	GraphWriteFailed()
}

type AnalysisService struct {
	classifier provider.CaptionClassifier
	analyzer   provider.FaceAnalyzer
	graph      GraphWriterInterface
	audit      audit.Logger
	logger     *slog.Logger
	publishers []Publisher
	recorder   Recorder
	threshold  float64
}

func NewAnalysisService(
	classifier provider.CaptionClassifier,
	analyzer provider.FaceAnalyzer,
	graph GraphWriterInterface,
	auditLogger audit.Logger,
	logger *slog.Logger,
) *AnalysisService {
	return &AnalysisService{
		classifier: classifier,
		analyzer:   analyzer,
		graph:      graph,
		audit:      auditLogger,
		logger:     logger,
		threshold:  domain.DefaultGenderThreshold,
	}
}

func (s *AnalysisService) WithGenderThreshold(threshold float64) *AnalysisService {
	s.threshold = threshold
	return s
}

// WithPublisher adds a receiver of finished analyses; it can be called more
// than once.
func (s *AnalysisService) WithPublisher(p Publisher) *AnalysisService {
	s.publishers = append(s.publishers, p)
	return s
}

func (s *AnalysisService) WithRecorder(r Recorder) *AnalysisService {
	s.recorder = r
	return s
}

// Analyze runs the pipeline for one upload. Only decode and caption failures
// are returned; face and graph failures degrade the record or are swallowed.
func (s *AnalysisService) Analyze(ctx context.Context, upload domain.UploadedImage) (*domain.AnalysisRecord, error) {
	start := time.Now()

	img, err := imagecodec.Decode(upload.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", upload.Filename, err)
	}

	caption, err := s.classifier.Classify(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("classify caption: %w", err)
	}

	face, err := s.analyzer.Analyze(ctx, img)
	if err != nil {
		s.logger.WarnContext(ctx, "face analysis failed", "error", err, "request_id", audit.RequestIDFrom(ctx))
		s.audit.LogError(ctx, StageFace, err)
		face = domain.FailedFace(err.Error())
	}

	record := domain.AnalysisRecord{
		Caption:  caption.Label,
		FaceInfo: face.WithNormalizedGender(s.threshold),
	}

	s.persist(ctx, record)
	s.audit.LogAnalysis(ctx, record)

	for _, p := range s.publishers {
		p.PublishAnalysis(ctx, record)
	}
	if s.recorder != nil {
		s.recorder.ObserveAnalysis(record, time.Since(start))
	}

	return &record, nil
}

func (s *AnalysisService) persist(ctx context.Context, record domain.AnalysisRecord) {
	fact, err := domain.NewGraphFact(record)
	if err == nil {
		err = s.graph.Upsert(ctx, fact)
	}
	if err == nil {
		return
	}

	// Persistence is best-effort; the response never reflects it.
	s.logger.ErrorContext(ctx, "graph upsert failed", "error", err, "request_id", audit.RequestIDFrom(ctx))
	s.audit.LogError(ctx, StageGraph, err)
	if s.recorder != nil {
		s.recorder.GraphWriteFailed()
	}
}
