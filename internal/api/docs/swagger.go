package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// FaceInfo is either the detected attributes or {"error": message}
type FaceInfo struct {
	Age    int    `json:"age,omitempty" example:"31"`
	Gender string `json:"gender,omitempty" example:"Woman"`
	Error  string `json:"error,omitempty" example:"Face could not be detected in the image"`
}

// AnalysisResponse is the per-image analysis result
type AnalysisResponse struct {
	Caption  string   `json:"caption" example:"a person"`
	FaceInfo FaceInfo `json:"face_info"`
}

// UploadResponse represents a processed upload
type UploadResponse struct {
	Filename   string           `json:"filename" example:"portrait.jpg"`
	Size       int64            `json:"size" example:"48213"`
	Analysis   AnalysisResponse `json:"analysis"`
	Disclaimer string           `json:"disclaimer" example:"Caption, age and gender are model estimates and may be inaccurate."`
}

// ErrorResponse represents every error body
type ErrorResponse struct {
	Detail string `json:"detail" example:"File must be an image"`
}

type MessageResponse struct {
	Message string `json:"message" example:"KI Metadata Extended API is running"`
}

type StatusResponse struct {
	Status string `json:"status" example:"healthy"`
}

// GraphCounts reports stored graph elements
type GraphCounts struct {
	Descriptions int64 `json:"descriptions" example:"3"`
	Persons      int64 `json:"persons" example:"42"`
	Edges        int64 `json:"edges" example:"57"`
}

type ReadyResponse struct {
	Status string       `json:"status" example:"ready"`
	Graph  string       `json:"graph,omitempty" example:"connection refused"`
	Counts *GraphCounts `json:"counts,omitempty"`
}

type UploadsLogResponse struct {
	Uploads []string `json:"uploads" example:"2026-03-14T09:26:53.589793Z - UPLOADED: {\"filename\":\"portrait.jpg\"}"`
}

type AnalysisLogResponse struct {
	Analysis []string `json:"analysis" example:"2026-03-14T09:26:53.589793Z - METADATA: {\"caption\":\"a person\"}"`
}

// TimelineEntry is one parsed analysis log line
type TimelineEntry struct {
	Timestamp string   `json:"timestamp" example:"2026-03-14T09:26:53.589793Z"`
	RequestID string   `json:"request_id,omitempty" example:"7b0f4c1e-2d1a-4a55-9a0e-2f1f6f7e9d11"`
	Caption   string   `json:"caption" example:"a person"`
	FaceInfo  FaceInfo `json:"face_info"`
}

type TimelineResponse struct {
	Entries []TimelineEntry `json:"entries"`
}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "KI Metadata Extended API",
		Version:     "v1.0.0",
		Description: "Image captioning, face age/gender estimation and graph metadata persistence",
		Host:        "localhost:8000",
		Path:        "/",
	})

	internalError := response.New(ErrorResponse{Detail: "Internal server error: connection refused"}, "500", "Internal Server Error")

	endpoints := []*endpoint.EndPoint{
		endpoint.New(
			endpoint.POST,
			"/upload/",
			endpoint.WithTags("Analysis"),
			endpoint.WithSummary("Analyze an image"),
			endpoint.WithDescription("Upload an image in the multipart field 'file' (image/*, at most 10MB). Returns the caption, the estimated age and gender of the first face, and a disclaimer. Face failures are reported inside face_info with status 200."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(UploadResponse{}, "200", "Image analyzed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Detail: "File must be an image"}, "400", "Bad Request"),
				internalError,
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/logs/uploads",
			endpoint.WithTags("Logs"),
			endpoint.WithSummary("Last 100 upload log lines"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(UploadsLogResponse{}, "200", "Raw log lines, oldest first"),
			}),
			endpoint.WithErrors([]response.Response{internalError}),
		),

		endpoint.New(
			endpoint.GET,
			"/logs/analysis",
			endpoint.WithTags("Logs"),
			endpoint.WithSummary("Last 100 analysis log lines"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AnalysisLogResponse{}, "200", "Raw log lines, oldest first"),
			}),
			endpoint.WithErrors([]response.Response{internalError}),
		),

		endpoint.New(
			endpoint.GET,
			"/logs/analysis/timeline",
			endpoint.WithTags("Logs"),
			endpoint.WithSummary("Parsed analysis timeline"),
			endpoint.WithDescription("Analysis log lines parsed into timestamped records. Lines without a JSON payload are skipped."),
			endpoint.WithParams(
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Number of log lines to scan (default: 100, max: 10000)")),
			),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(TimelineResponse{}, "200", "Timeline entries, oldest first"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Detail: "limit must be between 1 and 10000"}, "400", "Bad Request"),
				internalError,
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Service banner"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(MessageResponse{}, "200", "Running"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StatusResponse{}, "200", "Healthy"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithDescription("Pings the graph store and reports its element counts when available"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ReadyResponse{}, "200", "Ready"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ReadyResponse{Status: "degraded", Graph: "connection refused"}, "503", "Graph store unreachable"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
