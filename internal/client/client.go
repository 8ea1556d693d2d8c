// Package client is a Go client for the contract engine's HTTP API.
package client

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

	"github.com/rogers-f/contract-engine/internal/domain"
	"github.com/rogers-f/contract-engine/internal/ipc"
)

// Config holds the settings needed to construct a Client.
type Config struct {
	// BaseURL is the root URL of the engine (e.g. "http://127.0.0.1:9810").
	BaseURL string

	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client

	// Timeout applies to individual requests. Defaults to 10 seconds.
	Timeout time.Duration
}

// Client talks to a running engine. Safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("client: BaseURL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  httpClient,
	}, nil
}

// Error is a non-2xx response. When the server reported an engine error code
// the error unwraps to the matching domain.EngineError, so errors.Is works
// against the domain sentinels.
type Error struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("client: %d (%d): %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap returns the engine error carried by the response, if any.
func (e *Error) Unwrap() error {
	if e.Code >= 0 {
		return nil
	}
	return domain.NewEngineError(e.Code, e.Message)
}

// Health checks the engine.
func (c *Client) Health(ctx context.Context) (*ipc.HealthResponse, error) {
	var resp ipc.HealthResponse
	if err := c.get(ctx, "/api/v1/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Board generates a fresh board of kind at origin. An empty origin uses the
// engine's configured home port.
func (c *Client) Board(ctx context.Context, origin string, kind domain.Kind) (*ipc.BoardResponse, error) {
	var resp ipc.BoardResponse
	if err := c.post(ctx, "/api/v1/board", ipc.BoardRequest{Origin: origin, Kind: kind}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Missions lists missions, optionally filtered by state.
func (c *Client) Missions(ctx context.Context, state domain.MissionState) ([]domain.Mission, error) {
	path := "/api/v1/missions"
	if state != "" {
		path += "?state=" + url.QueryEscape(string(state))
	}
	var missions []domain.Mission
	if err := c.get(ctx, path, &missions); err != nil {
		return nil, err
	}
	return missions, nil
}

// Accept starts a mission. An empty resourceID lets the engine pick a ship.
func (c *Client) Accept(ctx context.Context, missionID, resourceID string) (*domain.Mission, error) {
	var m domain.Mission
	path := "/api/v1/missions/" + url.PathEscape(missionID) + "/accept"
	if err := c.post(ctx, path, ipc.AcceptRequest{ResourceID: resourceID}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ResolveInterruption clears a mission's pending interruption.
func (c *Client) ResolveInterruption(ctx context.Context, missionID string) (*domain.Interruption, error) {
	var in domain.Interruption
	path := "/api/v1/missions/" + url.PathEscape(missionID) + "/interruption/resolve"
	if err := c.post(ctx, path, struct{}{}, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// Prune removes a completed mission.
func (c *Client) Prune(ctx context.Context, missionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/missions/"+url.PathEscape(missionID), nil, nil)
}

// Fleet lists every ship.
func (c *Client) Fleet(ctx context.Context) ([]domain.Resource, error) {
	var ships []domain.Resource
	if err := c.get(ctx, "/api/v1/resources", &ships); err != nil {
		return nil, err
	}
	return ships, nil
}

// Repair restores a damaged ship.
func (c *Client) Repair(ctx context.Context, resourceID string) (*domain.Resource, error) {
	var r domain.Resource
	path := "/api/v1/resources/" + url.PathEscape(resourceID) + "/repair"
	if err := c.post(ctx, path, struct{}{}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Locations lists the lane graph, each location with its neighbors.
func (c *Client) Locations(ctx context.Context) ([]ipc.LocationResponse, error) {
	var locs []ipc.LocationResponse
	if err := c.get(ctx, "/api/v1/locations", &locs); err != nil {
		return nil, err
	}
	return locs, nil
}

// Player returns the player's balances.
func (c *Client) Player(ctx context.Context) (*domain.Player, error) {
	var p domain.Player
	if err := c.get(ctx, "/api/v1/player", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	return c.do(ctx, http.MethodGet, path, nil, dest)
}

func (c *Client) post(ctx context.Context, path string, body any, dest any) error {
	return c.do(ctx, http.MethodPost, path, body, dest)
}

func (c *Client) do(ctx context.Context, method, path string, body any, dest any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return handleResponse(resp, dest)
}

func handleResponse(resp *http.Response, dest any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseErrorResponse(resp.StatusCode, data)
	}
	if resp.StatusCode == http.StatusNoContent || dest == nil {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

func parseErrorResponse(status int, body []byte) *Error {
	e := &Error{StatusCode: status}
	var apiErr ipc.APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		e.Code = apiErr.Code
		e.Message = apiErr.Message
	} else {
		e.Message = strings.TrimSpace(string(body))
	}
	return e
}
