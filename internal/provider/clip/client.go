package clip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config holds the configuration for the CLIP client
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
// Timeout is zero: inference latency is bounded by the caller's context.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:5010",
	}
}

// Client is the HTTP client for the CLIP inference server
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates a new CLIP client
func NewClient(config Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// Logits calls POST /logits to score one image against the candidate texts
func (c *Client) Logits(ctx context.Context, imageBase64 string, texts []string) (*LogitsResponse, error) {
	req := LogitsRequest{
		Image: imageBase64,
		Texts: texts,
	}

	var resp LogitsResponse
	if err := c.doRequest(ctx, http.MethodPost, "/logits", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// doRequest executes a single HTTP request. There are no retries.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	url := c.config.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrClipUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: clip returned status %d: %s", ErrClipUnavailable, resp.StatusCode, string(respBody))
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("clip returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	return nil
}
