// Package push talks to the external push-delivery gateway.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultEndpoint is the Expo push API.
const DefaultEndpoint = "https://exp.host/--/api/v2/push/send"

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// Message is the gateway payload.
type Message struct {
	To    string `json:"to"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound,omitempty"`
}

// Gateway delivers one push message.
type Gateway interface {
	Send(ctx context.Context, msg Message) error
}

// ExpoClient posts messages to an Expo-compatible endpoint.
type ExpoClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewExpoClient builds a client; empty endpoint and zero timeout use defaults.
func NewExpoClient(endpoint string, timeout time.Duration) *ExpoClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ExpoClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

var _ Gateway = (*ExpoClient)(nil)

// Send is fire-and-forget from the caller's perspective: only transport
// failures and non-2xx statuses are reported, the body is not interpreted.
func (c *ExpoClient) Send(ctx context.Context, msg Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal push message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post push message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("push gateway status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
