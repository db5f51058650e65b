// Package openexchange fetches exchange rate tables from openexchangerates.org.
package openexchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/metrics"
)

const defaultBaseURL = "https://openexchangerates.org/api"

// Config holds rate provider settings.
type Config struct {
	AppID   string
	BaseURL string
	Timeout time.Duration
}

// Client is a stateless rate provider. Every call hits the API.
type Client struct {
	appID   string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// New creates a rate provider client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		appID:   cfg.AppID,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

type latestResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

type errorResponse struct {
	Status      int    `json:"status"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

// Rates returns the latest rate table relative to base.
func (c *Client) Rates(ctx context.Context, base string) (map[string]float64, error) {
	start := time.Now()
	rates, err := c.fetch(ctx, base)
	duration := time.Since(start)

	metrics.CurrencyRequestsTotal.WithLabelValues(metrics.Status(err)).Inc()
	if err != nil {
		c.logger.Debug("Rate lookup failed",
			zap.String("base", base),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}
	metrics.CurrencyRequestDuration.Observe(duration.Seconds())

	c.logger.Debug("Rate lookup done",
		zap.String("base", base),
		zap.Int("rates", len(rates)),
		zap.Duration("duration", duration),
	)
	return rates, nil
}

func (c *Client) fetch(ctx context.Context, base string) (map[string]float64, error) {
	q := url.Values{}
	q.Set("app_id", c.appID)
	q.Set("base", base)
	endpoint := c.baseURL + "/latest.json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %v: %w", err, domain.ErrUpstreamUnavailable)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %v: %w", err, domain.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %v: %w", err, domain.ErrUpstreamUnavailable)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := extractDescription(body)
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("rate API error %d: %s: %w", resp.StatusCode, detail, domain.ErrUpstreamUnavailable)
	}

	var parsed latestResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %v: %w", err, domain.ErrUpstreamUnavailable)
	}
	if parsed.Rates == nil {
		return nil, fmt.Errorf("response has no rates: %w", domain.ErrUpstreamUnavailable)
	}
	return parsed.Rates, nil
}

func extractDescription(body []byte) string {
	var parsed errorResponse
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if parsed.Description != "" {
		return parsed.Description
	}
	return parsed.Message
}
