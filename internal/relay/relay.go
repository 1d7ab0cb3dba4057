// Package relay is a client for the push relay API.
package relay

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

	"github.com/dukerupert/tally/internal/model"
)

// ErrUnexpectedStatus is wrapped by every non-success response.
var ErrUnexpectedStatus = errors.New("relay returned unexpected status")

// Client talks to one relay base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL, e.g. "http://localhost:3000".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Subscribe registers sub with the relay.
func (c *Client) Subscribe(ctx context.Context, sub model.Subscription) error {
	return c.post(ctx, "/api/save-subscription", sub, http.StatusCreated, nil)
}

// Unsubscribe removes the subscription with endpoint.
func (c *Client) Unsubscribe(ctx context.Context, endpoint string) error {
	body := map[string]string{"endpoint": endpoint}
	return c.post(ctx, "/api/remove-subscription", body, http.StatusCreated, nil)
}

// SendResult is the relay's broadcast summary.
type SendResult struct {
	Message   string `json:"message"`
	Attempted int    `json:"attempted"`
	Delivered int    `json:"delivered"`
	Pruned    int    `json:"pruned"`
	Failed    int    `json:"failed"`
}

// SendPush asks the relay to broadcast message. An empty message lets the
// relay use its default text.
func (c *Client) SendPush(ctx context.Context, message string) (SendResult, error) {
	body := map[string]string{}
	if message != "" {
		body["message"] = message
	}
	var res SendResult
	err := c.post(ctx, "/api/send-push", body, http.StatusOK, &res)
	return res, err
}

// VAPIDPublicKey fetches the key browsers need to subscribe.
func (c *Client) VAPIDPublicKey(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/vapid-public-key", nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	var out struct {
		PublicKey string `json:"publicKey"`
	}
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return "", err
	}
	return out.PublicKey, nil
}

func (c *Client) post(ctx context.Context, path string, in any, want int, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, want, out)
}

func (c *Client) do(req *http.Request, want int, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		msg := readError(resp.Body)
		return fmt.Errorf("%w: %s %s: %d %s", ErrUnexpectedStatus, req.Method, req.URL.Path, resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readError(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(r, 4096))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(data))
}
