package classification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vietfact/newsguard/pkg/config"
	"github.com/vietfact/newsguard/pkg/observability/logging"
)

// ProbabilityProvider produces a probability distribution over the label set
// for a piece of text. The distribution is aligned to the label registry's
// id order. Implemented by ModelClient; substituted in tests.
type ProbabilityProvider interface {
	Probabilities(ctx context.Context, text string) ([]float64, error)
}

// ModelClient calls the external model server over its REST API. The
// transformer forward pass is the latency-dominant step of a request and
// lives entirely behind this client.
type ModelClient struct {
	httpClient *http.Client
	baseURL    string
	modelName  string
	accessKey  string
}

// NewModelClient creates a client for the configured model server.
func NewModelClient(cfg config.ModelConfig) *ModelClient {
	return &ModelClient{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		baseURL:   fmt.Sprintf("http://%s:%d", cfg.Address, cfg.Port),
		modelName: cfg.Name,
		accessKey: cfg.AccessKey,
	}
}

// classifyRequest is the model server's classification request body.
type classifyRequest struct {
	Model string `json:"model,omitempty"`
	Text  string `json:"text"`
}

// classifyResponse is the model server's classification response body.
type classifyResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

// Probabilities sends the text to the model server and returns the raw
// probability vector. No retries: a failed model call is a hard failure of
// the request, reported immediately.
func (c *ModelClient) Probabilities(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(classifyRequest{Model: c.modelName, Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/classify", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.accessKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.accessKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("model HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read model response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("model server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed classifyResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	logging.Debugf("model call successful: model=%s, classes=%d", c.modelName, len(parsed.Probabilities))
	return parsed.Probabilities, nil
}
