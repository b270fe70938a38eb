package firestore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPDoer defines http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client fetches the fixed parking lot query endpoint.
type Client struct {
	url    string
	client HTTPDoer
}

// NewClient builds a client for the given query URL.
func NewClient(url string, client HTTPDoer) *Client {
	return &Client{
		url:    strings.TrimSpace(url),
		client: client,
	}
}

// FetchDocuments performs the read query and returns the raw response body.
// The body is handed to Decode untouched; transport errors and non-2xx
// statuses are reported as errors so the caller can keep its previous state.
func (c *Client) FetchDocuments(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("firestore: query returned status %d", resp.StatusCode)
	}
	return body, nil
}

// NewDefaultHTTPClient returns *http.Client with timeout.
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
