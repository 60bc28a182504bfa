package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/audit"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
)

const testMaxBytes = 10 << 20

type fakeAnalysisService struct {
	calls  int
	record *domain.AnalysisRecord
	err    error
}

func (f *fakeAnalysisService) Analyze(_ context.Context, _ domain.UploadedImage) (*domain.AnalysisRecord, error) {
	f.calls++
	return f.record, f.err
}

type fakeUploadRecorder struct {
	accepted int
	rejected []string
}

func (f *fakeUploadRecorder) UploadAccepted() { f.accepted++ }
func (f *fakeUploadRecorder) UploadRejected(reason string) { f.rejected = append(f.rejected, reason) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newUploadApp(t *testing.T, svc AnalysisServiceInterface) (*fiber.App, *audit.FileLogger, *fakeUploadRecorder) {
	t.Helper()

	logs := audit.NewFileLogger(t.TempDir(), discardLogger())
	recorder := &fakeUploadRecorder{}
	h := NewUploadHandler(svc, logs, discardLogger(), testMaxBytes).WithRecorder(recorder)

	app := fiber.New(fiber.Config{
		BodyLimit:    32 << 20,
		ErrorHandler: middleware.ErrorHandler(discardLogger(), logs),
	})
	app.Post("/upload/", h.Upload)
	return app, logs, recorder
}

func newMultipartRequest(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &body, w.FormDataContentType()
}

func doUpload(t *testing.T, app *fiber.App, filename, contentType string, data []byte) (int, []byte) {
	t.Helper()

	body, formType := newMultipartRequest(t, filename, contentType, data)
	req := httptest.NewRequest("POST", "/upload/", body)
	req.Header.Set("Content-Type", formType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestUploadHandler_Success(t *testing.T) {
	age := 34
	svc := &fakeAnalysisService{record: &domain.AnalysisRecord{
		Caption:  domain.CaptionPerson,
		FaceInfo: domain.FoundFace(&age, domain.RawGender("Man")),
	}}
	app, logs, recorder := newUploadApp(t, svc)

	status, body := doUpload(t, app, "face.jpg", "image/jpeg", []byte("jpeg bytes"))

	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{
		"filename": "face.jpg",
		"size": 10,
		"analysis": {"caption": "a person", "face_info": {"age": 34, "gender": "Man"}},
		"disclaimer": "`+Disclaimer+`"
	}`, string(body))
	assert.Equal(t, 1, svc.calls)
	assert.Equal(t, 1, recorder.accepted)

	lines, err := logs.Tail(audit.DestUploads, 10)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	entry, err := audit.ParseLine(lines[0])
	require.NoError(t, err)
	assert.Equal(t, audit.TagUploaded, entry.Tag)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(entry.Payload), &payload))
	assert.Equal(t, "face.jpg", payload["filename"])
	assert.Equal(t, float64(10), payload["size"])
	assert.Equal(t, "image/jpeg", payload["content_type"])
}

func TestUploadHandler_NoFaceIsStill200(t *testing.T) {
	svc := &fakeAnalysisService{record: &domain.AnalysisRecord{
		Caption:  domain.CaptionPhoto,
		FaceInfo: domain.MissingFace(),
	}}
	app, _, _ := newUploadApp(t, svc)

	status, body := doUpload(t, app, "landscape.png", "image/png", []byte("png"))

	assert.Equal(t, fiber.StatusOK, status)

	var resp struct {
		Analysis map[string]json.RawMessage `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.JSONEq(t, `{"error":"Face could not be detected in the image"}`, string(resp.Analysis["face_info"]))
}

func TestUploadHandler_ClientErrors(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		size        int
		wantDetail  string
		wantReason  string
	}{
		{
			name:        "not an image",
			filename:    "notes.txt",
			contentType: "text/plain",
			size:        16,
			wantDetail:  domain.ErrNotAnImage.Message,
			wantReason:  "not_an_image",
		},
		{
			name:        "too large",
			filename:    "huge.jpg",
			contentType: "image/jpeg",
			size:        11 << 20,
			wantDetail:  domain.ErrImageTooLarge.Message,
			wantReason:  "too_large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAnalysisService{}
			app, logs, recorder := newUploadApp(t, svc)

			status, body := doUpload(t, app, tt.filename, tt.contentType, bytes.Repeat([]byte{0xff}, tt.size))

			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.JSONEq(t, `{"detail":"`+tt.wantDetail+`"}`, string(body))
			assert.Equal(t, 0, svc.calls)
			assert.Equal(t, []string{tt.wantReason}, recorder.rejected)

			for _, dest := range []audit.Destination{audit.DestUploads, audit.DestAnalysis, audit.DestErrors} {
				lines, err := logs.Tail(dest, 10)
				require.NoError(t, err)
				assert.Empty(t, lines, "nothing is logged to %s", dest)
			}
		})
	}
}

func TestUploadHandler_MissingFile(t *testing.T) {
	app, _, _ := newUploadApp(t, &fakeAnalysisService{})

	req := httptest.NewRequest("POST", "/upload/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadHandler_InternalError(t *testing.T) {
	svc := &fakeAnalysisService{err: errors.New("clip unavailable")}
	app, logs, _ := newUploadApp(t, svc)

	status, body := doUpload(t, app, "a.jpg", "image/jpeg", []byte("x"))

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.JSONEq(t, `{"detail":"Internal server error: clip unavailable"}`, string(body))

	lines, err := logs.Tail(audit.DestErrors, 10)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "clip unavailable")
}

func TestUploadHandler_SerializationGuard(t *testing.T) {
	age := 20
	svc := &fakeAnalysisService{record: &domain.AnalysisRecord{
		Caption: domain.CaptionPerson,
		FaceInfo: domain.FoundFace(&age, domain.ScoredGender(map[string]float64{
			"Woman": math.NaN(),
			"Man":   10,
		})),
	}}
	app, _, _ := newUploadApp(t, svc)

	status, body := doUpload(t, app, "a.jpg", "image/jpeg", []byte("x"))

	assert.Equal(t, fiber.StatusOK, status)

	var resp struct {
		Analysis map[string]string `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, unserializableAnalysis, resp.Analysis["error"])
	assert.NotEmpty(t, resp.Analysis["raw"])
	assert.Contains(t, resp.Analysis["serialization_error"], "NaN")
}
