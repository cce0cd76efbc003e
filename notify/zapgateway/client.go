// Package zapgateway is the HTTP adapter for the WhatsApp messaging gateway.
package zapgateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/neitanzinx/Moveis-Pedro-II-Hub-sub002/notify"
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

type batchRequest struct {
	Messages []notify.Message `json:"messages"`
}

// SendBatch posts every message in one call. The gateway replies with a
// whole-batch result only.
func (c *Client) SendBatch(messages []notify.Message) error {
	return c.post("/messages/batch", batchRequest{Messages: messages}, nil)
}

func (c *Client) SendSingle(message notify.Message) error {
	return c.post("/messages", message, nil)
}

func (c *Client) Ping() error {
	return c.get("/health", nil)
}

func (c *Client) get(path string, result any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	c.auth(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	return c.decode(resp, result)
}

func (c *Client) post(path string, body any, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("gateway marshal: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway POST %s: %w", path, err)
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
		return fmt.Errorf("gateway read body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gateway HTTP %d: %s", resp.StatusCode, string(data))
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("gateway decode: %w", err)
		}
	}
	return nil
}
