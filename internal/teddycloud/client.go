package teddycloud

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Endpoints served by TeddyCloud that the wizard relies on. The custom
// tonies catalog doubles as the health check because every TeddyCloud
// deployment answers it without authentication.
const (
	healthEndpoint = "/api/toniesCustomJson"
	boxesEndpoint  = "/api/tonieboxes"
)

// errorExcerptLimit caps how much of a response body is copied into error
// text so large HTML error pages do not leak into wizard output.
const errorExcerptLimit = 100

// HTTPDoer describes the HTTP client used to reach TeddyCloud.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Box identifies a Toniebox device managed by the TeddyCloud server.
type Box struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StatusError reports a non-200 answer from the health endpoint.
type StatusError struct {
	StatusCode int
	Excerpt    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Excerpt)
}

// Client is a minimal TeddyCloud API client.
type Client struct {
	baseURL string
	client  HTTPDoer
}

// NewClient constructs a client with a bounded-timeout HTTP transport.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithDoer(baseURL, &http.Client{Timeout: timeout})
}

// NewClientWithDoer constructs a client around an injected HTTP doer.
func NewClientWithDoer(baseURL string, doer HTTPDoer) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  doer,
	}
}

// Health issues the primary reachability check. A non-200 answer returns a
// *StatusError carrying the status code and a truncated body excerpt;
// transport faults are returned wrapped.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthEndpoint, nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("reach teddycloud: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, Excerpt: readExcerpt(resp.Body)}
	}
	return nil
}

// Boxes fetches the devices managed by the server. The response must be a
// JSON list; any other shape is an error so callers can fall back to an
// empty device list without guessing.
func (c *Client) Boxes(ctx context.Context) ([]Box, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+boxesEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build boxes request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list boxes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Excerpt: readExcerpt(resp.Body)}
	}

	var raw []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode boxes response: %w", err)
	}

	boxes := make([]Box, 0, len(raw))
	for _, entry := range raw {
		box := Box{Name: "Unknown"}
		if id, ok := entry["id"]; ok && id != nil {
			box.ID = fmt.Sprint(id)
		}
		if name, ok := entry["name"].(string); ok && strings.TrimSpace(name) != "" {
			box.Name = name
		}
		boxes = append(boxes, box)
	}
	return boxes, nil
}

func readExcerpt(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, errorExcerptLimit))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
