// Package triplog mirrors session boundaries to a remote trip-logging
// endpoint. Delivery is strictly best-effort: failures are logged and
// swallowed so a dead endpoint can never block or fail a session transition.
package triplog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Record is the payload shape the trip-logging backend expects.
type Record struct {
	TripID string         `json:"tripId"`
	Data   map[string]any `json:"data"`
}

type Client struct {
	endpoint string
	client   *http.Client
}

// New returns a client, or nil when no endpoint is configured. All methods
// are nil-safe.
func New(endpoint string) *Client {
	if endpoint == "" {
		return nil
	}
	return &Client{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Send posts one record. Errors are logged, never returned.
func (c *Client) Send(ctx context.Context, tripID string, data map[string]any) {
	if c == nil {
		return
	}
	if err := c.post(ctx, Record{TripID: tripID, Data: data}); err != nil {
		log.Printf("triplog send failed: %v", err)
	}
}

func (c *Client) post(ctx context.Context, rec Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal trip record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create trip request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("trip log request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("trip log returned status: %d", resp.StatusCode)
	}
	return nil
}
