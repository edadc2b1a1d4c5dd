package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	agenterr "github.com/restakehq/restake-agent/internal/errors"
)

// Client is a JSON HTTP client with typed status classification. It does one
// request per call; retry policy belongs to the caller.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

func New(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "restake-agent/1.0",
	}
}

// GetJSON issues one GET and decodes a 2xx JSON body into out. Non-2xx
// statuses map onto the error taxonomy: 404 is NotFound, 5xx is ServerError,
// everything else is Unavailable.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return agenterr.Wrap(agenterr.CodeInternal, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mapNetError(err)
	}
	buf, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return agenterr.Wrap(agenterr.CodeUnavailable, "read index response", readErr)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return agenterr.New(agenterr.CodeNotFound, "resource not found in index")
	case resp.StatusCode >= http.StatusInternalServerError:
		return agenterr.New(agenterr.CodeServerError, fmt.Sprintf("index server error (status %d)", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return agenterr.New(agenterr.CodeUnavailable, fmt.Sprintf("index returned unexpected status %d", resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(buf)) == 0 {
		return agenterr.New(agenterr.CodeUnavailable, "index returned empty response")
	}
	if err := json.Unmarshal(buf, out); err != nil {
		return agenterr.Wrap(agenterr.CodeUnavailable, "decode index JSON", err)
	}
	return nil
}

func mapNetError(err error) error {
	if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
		return agenterr.Wrap(agenterr.CodeUnavailable, "index timeout", err)
	}
	return agenterr.Wrap(agenterr.CodeUnavailable, "index request failed", err)
}
