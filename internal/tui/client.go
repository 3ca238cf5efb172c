package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ClusterView mirrors one entry of GET /faq/clusters.
type ClusterView struct {
	RepresentativeQuery string   `json:"representativeQuery"`
	Variants            []string `json:"variants"`
	TotalCount          int64    `json:"totalCount"`
	VariantCounts       []int64  `json:"variantCounts"`
}

// StatsView mirrors GET /statistics.
type StatsView struct {
	UptimeSeconds      int64   `json:"uptime_seconds"`
	TotalRequests      int64   `json:"total_requests"`
	SuccessfulRequests int64   `json:"successful_requests"`
	FailedRequests     int64   `json:"failed_requests"`
	AvgLatencyMs       float64 `json:"avg_latency_ms"`
}

// Client polls the faqmill reporting API.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

func (c *Client) Clusters(ctx context.Context) ([]ClusterView, error) {
	var out struct {
		Clusters []ClusterView `json:"clusters"`
	}
	if err := c.getJSON(ctx, "/faq/clusters", &out); err != nil {
		return nil, err
	}
	return out.Clusters, nil
}

func (c *Client) Statistics(ctx context.Context) (StatsView, error) {
	var out StatsView
	err := c.getJSON(ctx, "/statistics", &out)
	return out, err
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s failed: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
