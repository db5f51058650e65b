package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxErrorBody caps how much of a non-2xx body is read.
const maxErrorBody = 64 << 10

// Client is the shopassist SDK entry point.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	obs     *observer
}

// New creates a Client for the API rooted at baseURL.
// It fails only when metrics registration fails.
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.apiKey,
		http:    hc,
		obs:     obs,
	}, nil
}

type chatRequest struct {
	UserPrompt string `json:"userPrompt"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SendMessage sends a shopper message and returns the assistant's reply.
func (c *Client) SendMessage(ctx context.Context, prompt string) (reply string, err error) {
	requestID := uuid.NewString()
	start := time.Now()
	defer func() { c.obs.observe("send_message", requestID, start, err) }()

	body, err := json.Marshal(chatRequest{UserPrompt: prompt})
	if err != nil {
		return "", fmt.Errorf("shopassist: marshal request: %w", err)
	}

	var resp chatResponse
	if _, err = c.do(ctx, http.MethodPost, "/chat", requestID, body, &resp, http.StatusOK); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// do sends a request and decodes the body into out when the status is one of accept.
func (c *Client) do(
	ctx context.Context, method, path, requestID string, body []byte, out any, accept ...int,
) (int, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return 0, fmt.Errorf("shopassist: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("shopassist: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	for _, code := range accept {
		if resp.StatusCode == code {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return resp.StatusCode, fmt.Errorf("shopassist: decode response: %w", err)
			}
			return resp.StatusCode, nil
		}
	}
	return resp.StatusCode, decodeError(resp)
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err == nil && er.Code != "" {
		apiErr.Code = er.Code
		apiErr.Message = er.Message
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// IsAPIError reports whether err carries a server response and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
