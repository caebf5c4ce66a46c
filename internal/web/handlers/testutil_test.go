package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-gate/internal/detector"
	"github.com/kozaktomas/face-gate/internal/events"
	"github.com/kozaktomas/face-gate/internal/registry/mock"
	"github.com/kozaktomas/face-gate/internal/service"
	"github.com/kozaktomas/face-gate/internal/trigger"
)

// fakeDetector implements service.Detector with a canned response.
type fakeDetector struct {
	descriptor []float32
	err        error
}

func (f *fakeDetector) Detect(ctx context.Context, imageData []byte) (*detector.Detection, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &detector.Detection{Descriptor: f.descriptor, Dim: len(f.descriptor)}, nil
}

// testService builds a service over a mock store for handler tests.
func testService(det service.Detector) (*service.Service, *mock.MockStore, *events.Hub) {
	store := mock.NewMockStore()
	hub := events.NewHub()
	gate := trigger.NewGate(3 * time.Second)
	svc := service.New(store, det, hub, gate, 0.45, 128)
	return svc, store, hub
}

func testDescriptor(fill float32) []float32 {
	d := make([]float32, 128)
	for i := range d {
		d[i] = fill
	}
	return d
}

// testImageBase64 returns a small PNG as a base64 string.
func testImageBase64(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// jsonRequest creates a request with a JSON body.
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(string(data)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type.
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code.
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}
