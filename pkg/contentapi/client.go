// Package contentapi is the kiosk-side client for the content service's
// HTTP read contract.
package contentapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vogiaan1904/repairhub-display/internal/models"
)

type Client struct {
	baseURL string
	httpCli *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpCli: &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchContent retrieves the current content bundle for a location.
func (c *Client) FetchContent(ctx context.Context, locationID string) (*models.ContentBundle, error) {
	url := fmt.Sprintf("%s/api/v1/locations/%s/content", c.baseURL, locationID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build content request: %w", err)
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("content request returned status %d", resp.StatusCode)
	}

	var bundle models.ContentBundle
	if err := json.NewDecoder(resp.Body).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("failed to decode content bundle: %w", err)
	}

	return &bundle, nil
}
