package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pomodoro/internal/pomodoro"
)

// ErrUnavailable is returned when no daemon answers at the client address.
var ErrUnavailable = errors.New("pomodoro daemon unavailable")

// APIError is a non-2xx response from the daemon.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("daemon returned %d: %s", e.Status, e.Message)
}

// Client talks to a running `pomodoro serve`.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for addr, either host:port or a full URL.
func NewClient(addr string) *Client {
	base := addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Health checks that a daemon is listening. It uses a short timeout so the
// CLI can fall back to the local store quickly.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	var resp HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("%w: status %q", ErrUnavailable, resp.Status)
	}
	return nil
}

func (c *Client) State(ctx context.Context) (StateResponse, error) {
	var resp StateResponse
	err := c.do(ctx, http.MethodGet, "/state", nil, &resp)
	return resp, err
}

func (c *Client) Start(ctx context.Context, mode pomodoro.Mode) (StateResponse, error) {
	var resp StateResponse
	err := c.do(ctx, http.MethodPost, "/start", ModeRequest{Mode: string(mode)}, &resp)
	return resp, err
}

func (c *Client) Pause(ctx context.Context) (StateResponse, error) {
	var resp StateResponse
	err := c.do(ctx, http.MethodPost, "/pause", nil, &resp)
	return resp, err
}

func (c *Client) Resume(ctx context.Context) (StateResponse, error) {
	var resp StateResponse
	err := c.do(ctx, http.MethodPost, "/resume", nil, &resp)
	return resp, err
}

// Reset resets to mode; an empty mode keeps the current one.
func (c *Client) Reset(ctx context.Context, mode pomodoro.Mode) (StateResponse, error) {
	var resp StateResponse
	err := c.do(ctx, http.MethodPost, "/reset", ModeRequest{Mode: string(mode)}, &resp)
	return resp, err
}

func (c *Client) History(ctx context.Context, limit int) ([]pomodoro.SessionItem, error) {
	path := "/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var items []pomodoro.SessionItem
	err := c.do(ctx, http.MethodGet, path, nil, &items)
	return items, err
}

func (c *Client) SetDurations(ctx context.Context, d pomodoro.Durations) (StateResponse, error) {
	var resp StateResponse
	body := DurationsBody{Work: d.Work.String(), Break: d.Break.String()}
	err := c.do(ctx, http.MethodPut, "/durations", body, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
