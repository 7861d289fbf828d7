// Package exposureapi is the network upload transport: it submits prepared
// diagnosis payloads to the exposure ingestion service. Token validation and
// green-pass issuance live server-side.
package exposureapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"

	"veglia/internal/upload"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
	// Retries caps transient-failure retries per Submit. Client errors
	// (4xx) never retry: a rejected token stays rejected.
	Retries uint64
}

func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: 30 * time.Second}, Retries: 3}
}

// ServerTime asks the ingestion service for its notion of now. Upload
// records are stamped with this, never with the device clock.
func (c *Client) ServerTime(ctx context.Context) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/now", nil)
	if err != nil {
		return time.Time{}, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return time.Time{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return time.Time{}, fmt.Errorf("upload service: now returned %d", resp.StatusCode)
	}
	var body struct {
		Now time.Time `json:"now"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return time.Time{}, err
	}
	return body.Now, nil
}

// Submit posts the payload, retrying transient failures with exponential
// backoff. The payload is identical across attempts.
func (c *Client) Submit(ctx context.Context, token string, payload upload.Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.BaseURL+"/v1/ingestion/upload", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := c.HTTP.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		switch {
		case resp.StatusCode < 300:
			return nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return backoff.Permanent(fmt.Errorf("upload rejected: status %d", resp.StatusCode))
		default:
			return fmt.Errorf("upload failed: status %d", resp.StatusCode)
		}
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.Retries), ctx)
	return backoff.Retry(attempt, b)
}
