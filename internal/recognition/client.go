// Package recognition wraps the external text-recognition HTTP service.
package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pasecure/idverify/internal/common"
)

// responseSchema pins the service's contract: a JSON object with a string
// "text" field. Anything else counts as a service error, not a parse input.
const responseSchema = `{
	"type": "object",
	"properties": {
		"text": {"type": "string"}
	},
	"required": ["text"]
}`

var compiledSchema = jsonschema.MustCompileString("recognition-response.json", responseSchema)

// Client posts image bytes to the recognition service as a multipart upload
// and returns the recognized free text.
type Client struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type textResponse struct {
	Text string `json:"text"`
}

// Recognize sends the image and returns the recognized text. Transport
// failures map to ErrRecognitionUnreachable, non-2xx or malformed responses
// to ErrRecognitionFailed, a missing URL to ErrConfiguration.
func (c *Client) Recognize(ctx context.Context, image []byte, filename string) (string, error) {
	if c.url == "" {
		return "", common.NewAppError("CONFIG_ERROR", "recognition service URL not configured", common.ErrConfiguration)
	}
	if filename == "" {
		filename = "id.jpg"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("write multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("recognition.request_failed", "url", c.url, "error", err)
		return "", common.NewAppError("OCR_UNREACHABLE", "recognition service unreachable", common.ErrRecognitionUnreachable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", common.NewAppError("OCR_READ", "read recognition response", common.ErrRecognitionFailed)
	}

	c.logger.Info("recognition.response",
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return "", common.NewAppError("OCR_STATUS",
			fmt.Sprintf("recognition service returned %d: %s", resp.StatusCode, truncate(string(raw), 200)),
			common.ErrRecognitionFailed)
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", common.NewAppError("OCR_DECODE", "recognition response is not JSON", common.ErrRecognitionFailed)
	}
	if err := compiledSchema.Validate(decoded); err != nil {
		return "", common.NewAppError("OCR_SHAPE", "recognition response shape invalid", common.ErrRecognitionFailed)
	}

	var tr textResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return "", common.NewAppError("OCR_DECODE", "decode recognition response", common.ErrRecognitionFailed)
	}
	return tr.Text, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
