// Package answer is an HTTP client to the inference/orchestration endpoint.
// The chat surface works without it; when configured it turns the
// acknowledgement into a generated answer.
package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Client struct {
	baseURL    string
	model      string
	client     *http.Client
	maxRetries int
}

type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

func NewClient(cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = "llama3"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		model:      model,
		client:     &http.Client{Timeout: timeout},
		maxRetries: 2,
	}
}

// Ask forwards the question and returns the generated answer. Transient
// backend statuses (429, 5xx) are retried a bounded number of times.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	body, _ := json.Marshal(map[string]any{
		"query":  question,
		"model":  c.model,
		"stream": false,
	})
	url := fmt.Sprintf("%s/query", c.baseURL)
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryDelay(attempt)):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("answer endpoint returned %s", resp.Status)
			continue
		}
		if resp.StatusCode >= 300 {
			resp.Body.Close()
			return "", fmt.Errorf("answer endpoint returned %s", resp.Status)
		}
		var out struct {
			Response string `json:"response"`
		}
		err = json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return out.Response, nil
	}
	return "", lastErr
}

func retryDelay(attempt int) time.Duration {
	base := 200 * time.Millisecond
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
