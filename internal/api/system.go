package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/Veraticus/contractdesk/internal/model"
)

// Health returns the backend liveness status.
func (c *Client) Health(ctx context.Context) (*model.HealthStatus, error) {
	var status model.HealthStatus
	if err := c.getJSON(ctx, "/api/health/", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Ready returns the backend readiness status. A 503 carrying a readiness
// body is reported as a not-ready status rather than an error.
func (c *Client) Ready(ctx context.Context) (*model.ReadinessStatus, error) {
	var status model.ReadinessStatus
	err := c.getJSON(ctx, "/api/ready/", nil, &status)
	if err == nil {
		return &status, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable {
		if jsonErr := json.Unmarshal([]byte(apiErr.Body), &status); jsonErr == nil && status.Status != "" {
			return &status, nil
		}
	}
	return nil, err
}

// Logs returns one page of request logs. query carries page and filters.
func (c *Client) Logs(ctx context.Context, query url.Values) (*model.LogsPage, error) {
	var page model.LogsPage
	if err := c.getJSON(ctx, "/api/logs/", query, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		page.Results = []model.LogEntry{}
	}
	return &page, nil
}
