// Package remote provides the HTTP client for the remote item API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/itemdesk/internal/model"
)

// ErrRemote wraps every failure reported by the remote API or the transport.
// The wrapped message carries the X-Request-ID sent with the failed call.
var ErrRemote = errors.New("remote store request failed")

// RequestIDHeader is the HTTP header carrying the per-request ID.
const RequestIDHeader = "X-Request-ID"

// Operation names used in logs and metrics.
const (
	OpFetchAll = "fetch_all"
	OpCreate   = "create"
	OpDelete   = "delete"
)

// maxErrorBody bounds how much of an error response is kept for diagnostics.
const maxErrorBody = 512

// Client talks to the remote item API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Client for the API rooted at baseURL.
// A zero timeout means requests are bounded only by their context.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchAll handles GET /items.
func (c *Client) FetchAll(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	if err := c.do(ctx, OpFetchAll, http.MethodGet, "/items", nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = make([]model.Item, 0)
	}
	return items, nil
}

// Create handles POST /items. The form ID is never sent.
func (c *Client) Create(ctx context.Context, draft model.FormState) (*model.Item, error) {
	body, err := json.Marshal(draft.Draft())
	if err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}

	var item model.Item
	if err := c.do(ctx, OpCreate, http.MethodPost, "/items", body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete handles DELETE /items/{id}.
func (c *Client) Delete(ctx context.Context, id model.ItemID) error {
	return c.do(ctx, OpDelete, http.MethodDelete, "/items/"+url.PathEscape(id.String()), nil, nil)
}

// do performs a single request and decodes a JSON response into out when out is not nil.
func (c *Client) do(ctx context.Context, op, method, path string, body []byte, out any) (err error) {
	start := time.Now()
	requestID := uuid.New().String()
	defer func() {
		observe(op, start, err)
	}()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %s request %s: build request: %w", ErrRemote, op, requestID, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("remote request",
		zap.String("operation", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s request %s: %w", ErrRemote, op, requestID, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s request %s: unexpected status %d: %s",
			ErrRemote, op, requestID, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s request %s: decode response: %w", ErrRemote, op, requestID, err)
	}
	return nil
}
