package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/audit"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/graph"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/metrics"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/provider"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/service"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/webhook"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/ws"
)

const (
	defaultMaxUploadBytes = 10 << 20
	graphSampleInterval   = 30 * time.Second
)

type Dependencies struct {
	Classifier      provider.CaptionClassifier
	Analyzer        provider.FaceAnalyzer
	Graph           graph.Store
	Logs            *audit.FileLogger
	Metrics         *metrics.Metrics
	Webhook         *webhook.Notifier
	GenderThreshold float64
	MaxUploadBytes  int64
}

type Router struct {
	app           *fiber.App
	logger        *slog.Logger
	deps          *Dependencies
	wsHub         *ws.Hub
	sampler       *metrics.GraphSampler
	cancelHub     context.CancelFunc
	cancelStats   context.CancelFunc
	cancelWebhook context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = defaultMaxUploadBytes
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger, deps.Logs),
		AppName:      "KI Metadata Extended API",
		// Oversized uploads must reach the handler to be rejected with 400.
		BodyLimit: int(2*deps.MaxUploadBytes) + 1<<20,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.RequestContext())
	r.app.Use(middleware.Logger(r.logger, r.deps.Metrics))
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))

	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	healthHandler := handler.NewHealthHandler(r.deps.Graph)
	r.app.Get("/", healthHandler.Root)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)
	r.app.Get("/metrics", r.deps.Metrics.Handler())

	r.wsHub = ws.NewHub()
	hubCtx, hubCancel := context.WithCancel(context.Background())
	r.cancelHub = hubCancel
	go r.wsHub.Run(hubCtx)

	r.sampler = metrics.NewGraphSampler(r.deps.Graph, r.deps.Metrics, r.logger, graphSampleInterval)
	statsCtx, statsCancel := context.WithCancel(context.Background())
	r.cancelStats = statsCancel
	go r.sampler.Start(statsCtx)

	analysisService := service.NewAnalysisService(
		r.deps.Classifier,
		r.deps.Analyzer,
		r.deps.Graph,
		r.deps.Logs,
		r.logger,
	).WithPublisher(r.wsHub).WithRecorder(r.deps.Metrics)
	if r.deps.Webhook != nil {
		webhookCtx, webhookCancel := context.WithCancel(context.Background())
		r.cancelWebhook = webhookCancel
		go r.deps.Webhook.Run(webhookCtx)
		analysisService.WithPublisher(r.deps.Webhook)
	}
	if r.deps.GenderThreshold > 0 {
		analysisService.WithGenderThreshold(r.deps.GenderThreshold)
	}

	uploadHandler := handler.NewUploadHandler(analysisService, r.deps.Logs, r.logger, r.deps.MaxUploadBytes).
		WithRecorder(r.deps.Metrics)
	r.app.Post("/upload/", uploadHandler.Upload)

	logsHandler := handler.NewLogsHandler(r.deps.Logs)
	r.app.Get("/logs/uploads", logsHandler.Uploads)
	r.app.Get("/logs/analysis", logsHandler.Analysis)
	r.app.Get("/logs/analysis/timeline", logsHandler.Timeline)

	r.app.Get("/ws/analysis", ws.UpgradeMiddleware(), ws.Handler(r.wsHub))
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Hub() *ws.Hub {
	return r.wsHub
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	if r.cancelHub != nil {
		r.cancelHub()
	}

	if r.cancelStats != nil {
		r.cancelStats()
	}

	if r.cancelWebhook != nil {
		r.cancelWebhook()
	}

	return r.app.Shutdown()
}
