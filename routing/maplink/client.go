// Package maplink is the HTTP adapter for the route planning service.
package maplink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/routing"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type optimizeRequest struct {
	Origin routing.Waypoint   `json:"origin"`
	Stops  []routing.Waypoint `json:"stops"`
	// Drivers return to the depot after the last stop.
	RoundTrip bool `json:"round_trip"`
}

func (c *Client) OptimizeWaypoints(origin routing.Waypoint, stops []routing.Waypoint) (*routing.Plan, error) {
	var plan routing.Plan
	if err := c.post("/v1/optimize", optimizeRequest{Origin: origin, Stops: stops, RoundTrip: true}, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *Client) Ping() error {
	return c.get("/v1/health", nil)
}

func (c *Client) get(path string, result any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("maplink request: %w", err)
	}
	c.auth(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("maplink GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	return c.decode(resp, result)
}

func (c *Client) post(path string, body any, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("maplink marshal: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("maplink request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("maplink POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	return c.decode(resp, result)
}

func (c *Client) auth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *Client) decode(resp *http.Response, result any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("maplink read body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("maplink HTTP %d: %s", resp.StatusCode, string(data))
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("maplink decode: %w", err)
		}
	}
	return nil
}
