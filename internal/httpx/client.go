package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodyBytes caps in-memory fetches. Cover images and API payloads
// stay well under this; anything larger belongs on Stream.
const maxBodyBytes = 32 << 20

// Client wraps HTTP operations shared by the upstream API clients and
// the asset proxy.
//
// Example usage:
//
//	client := NewClient()
//
//	// Fetch generated cover art into memory
//	data, err := client.Get(ctx, coverURL)
//
//	// Proxy an audio file without buffering it
//	resp, err := client.Stream(ctx, audioURL)
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a client with a 60 second timeout for buffered
// fetches. Streamed requests use their own untimed client so long
// audio transfers are bounded by the caller's context instead.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		userAgent: "musicsync",
	}
}

// Get performs a GET request and returns the response body as bytes.
//
// The request includes the configured User-Agent header. Bodies are
// capped at 32 MiB; use Stream for anything that might be larger.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 200 OK
//   - Reading the body fails
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

// Stream performs a GET request and returns the raw response without
// reading the body.
//
// The caller owns resp.Body and must close it. Cancellation comes from
// ctx rather than a client timeout, so long transfers are not cut off
// mid-stream.
//
// Example:
//
//	resp, err := client.Stream(ctx, audioURL)
//	if err != nil {
//	    return err
//	}
//	defer resp.Body.Close()
//	io.Copy(w, resp.Body)
func (c *Client) Stream(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return resp, nil
}

// PostJSON performs a POST request with a JSON body and returns the
// response body as bytes. The Authorization header is set when token is
// non-empty.
func (c *Client) PostJSON(ctx context.Context, url, token string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

// GetAuth performs a GET request with a bearer token and returns the
// response body as bytes.
func (c *Client) GetAuth(ctx context.Context, url, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
