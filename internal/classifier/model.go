package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pasecure/idverify/constants"
	"github.com/pasecure/idverify/internal/common"
)

// Model scores one preprocessed image and returns the class probability
// vector, index-aligned with constants.ClassLabels.
type Model interface {
	Score(ctx context.Context, t *Tensor) ([]float32, error)
}

// HTTPModel calls a TensorFlow-Serving style scoring endpoint.
type HTTPModel struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewHTTPModel(url string, timeout time.Duration, logger *slog.Logger) *HTTPModel {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPModel{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type scoreRequest struct {
	Instances [][]float32 `json:"instances"`
}

type scoreResponse struct {
	Predictions [][]float32 `json:"predictions"`
}

func (m *HTTPModel) Score(ctx context.Context, t *Tensor) ([]float32, error) {
	if m.url == "" {
		return nil, common.NewAppError("MODEL_UNAVAILABLE", "model scoring URL not configured", common.ErrModelUnavailable)
	}

	payload, err := json.Marshal(scoreRequest{Instances: [][]float32{t.Data}})
	if err != nil {
		return nil, fmt.Errorf("marshal scoring request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build scoring request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		m.logger.Error("classifier.model.request_failed", "url", m.url, "error", err)
		return nil, common.NewAppError("MODEL_UNAVAILABLE", "model scoring service unreachable", common.ErrModelUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, common.NewAppError("MODEL_STATUS",
			fmt.Sprintf("model scoring service returned %d", resp.StatusCode),
			common.ErrInferenceFailed)
	}

	var sr scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, common.NewAppError("MODEL_DECODE", "decode model response", common.ErrInferenceFailed)
	}
	if len(sr.Predictions) != 1 || len(sr.Predictions[0]) != len(constants.ClassLabels) {
		return nil, common.NewAppError("MODEL_SHAPE",
			fmt.Sprintf("model returned %d predictions, want a single %d-class vector",
				len(sr.Predictions), len(constants.ClassLabels)),
			common.ErrInferenceFailed)
	}
	return sr.Predictions[0], nil
}
