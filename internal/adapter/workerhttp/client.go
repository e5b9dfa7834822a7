// Package workerhttp implements the dispatch port over plain JSON HTTP.
package workerhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Strob0t/AgentRelay/internal/domain/agent"
	"github.com/Strob0t/AgentRelay/internal/port/dispatch"
	"github.com/Strob0t/AgentRelay/internal/resilience"
)

// maxInFlight caps concurrent outbound dispatches across all tasks so a
// submission burst cannot exhaust connections to a small worker fleet.
const maxInFlight = 32

// Client dispatches subtasks to workers with a fixed timeout and a circuit
// breaker in front of the call. One attempt per subtask, no retry.
type Client struct {
	httpClient *http.Client
	breaker    *resilience.Breaker
	pool       *resilience.Pool
}

// New creates a dispatcher. The breaker may be nil to disable it.
func New(timeout time.Duration, breaker *resilience.Breaker) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		pool:       resilience.NewPool(maxInFlight),
	}
}

// Execute POSTs the subtask to the worker's /execute endpoint.
func (c *Client) Execute(ctx context.Context, w *agent.Worker, req *dispatch.ExecuteRequest) (*dispatch.ExecuteResponse, error) {
	var resp *dispatch.ExecuteResponse

	call := func() error {
		var err error
		resp, err = c.post(ctx, w.URL+"/execute", req)
		return err
	}

	err := c.pool.Run(ctx, func() error {
		if c.breaker != nil {
			return c.breaker.Execute(call)
		}
		return call()
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, url string, req *dispatch.ExecuteRequest) (*dispatch.ExecuteResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal execute request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build execute request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("worker call: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		// Drain a little of the body for the error message, then give up.
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, 256))
		return nil, fmt.Errorf("worker returned %d: %s", httpResp.StatusCode, snippet)
	}

	var resp dispatch.ExecuteResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode execute response: %w", err)
	}
	return &resp, nil
}
