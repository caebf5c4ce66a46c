// Package detector is the HTTP client for the external face detection and
// embedding service. The service is a black box: given an image it either
// reports no face or returns a fixed-length descriptor vector.
package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const (
	defaultDetectorURL   = "http://localhost:8000"
	defaultDetectorModel = "facenet"
)

var (
	// ErrNoFace means the detector processed the image and found no face.
	// This is a user-retriable condition, not a system failure.
	ErrNoFace = errors.New("no face detected")

	// ErrUnavailable means the detector service could not be reached.
	ErrUnavailable = errors.New("detector unavailable")
)

// Client talks to the detection service.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewClient creates a detector client. Empty arguments fall back to the
// defaults.
func NewClient(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = defaultDetectorURL
	}
	if model == "" {
		model = defaultDetectorModel
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// detectResponse represents the response from the detection endpoint.
type detectResponse struct {
	Found      bool      `json:"found"`
	Descriptor []float32 `json:"descriptor"`
	Model      string    `json:"model"`
	Dim        int       `json:"dim"`
}

// Detection contains the extracted descriptor and its metadata.
type Detection struct {
	Descriptor []float32
	Model      string
	Dim        int
}

// postMultipartImage constructs a multipart form with the image data and
// posts it to the given endpoint. The part carries an explicit
// Content-Type based on magic byte detection.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="capture.jpg"`)
	h.Set("Content-Type", detectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// Detect runs single-face detection with descriptor extraction. When the
// image contains more than one face, the detector returns its best
// detection; registration is single-face-only by policy.
func (c *Client) Detect(ctx context.Context, imageData []byte) (*Detection, error) {
	body, err := c.postMultipartImage(ctx, "/detect?model="+c.model, imageData)
	if err != nil {
		return nil, err
	}

	var detResp detectResponse
	if err := json.Unmarshal(body, &detResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !detResp.Found {
		return nil, ErrNoFace
	}
	if len(detResp.Descriptor) == 0 {
		return nil, errors.New("detector reported a face but returned an empty descriptor")
	}

	return &Detection{
		Descriptor: detResp.Descriptor,
		Model:      detResp.Model,
		Dim:        detResp.Dim,
	}, nil
}

// Health probes the detection service. It returns nil when the service is
// up and its models are loaded.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detector unhealthy (status %d)", resp.StatusCode)
	}
	return nil
}

// Model returns the model name being used.
func (c *Client) Model() string {
	return c.model
}

// detectMIMEType detects the MIME type from image data.
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// GIF: 47 49 46 38
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x38 {
		return "image/gif"
	}
	// BMP: 42 4D
	if data[0] == 0x42 && data[1] == 0x4D {
		return "image/bmp"
	}
	return "application/octet-stream"
}
