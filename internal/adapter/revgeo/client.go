// internal/adapter/revgeo/client.go

package revgeo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"lifeline/internal/domain/geo"
)

// Client talks to the external reverse-geocode collaborator. The contract is
// an opaque best-effort lookup: coordinates in, a city name out, anything
// else is a failure the caller falls back from.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a reverse-geocode client against the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// CityAt looks up the city name at the given coordinates.
func (c *Client) CityAt(ctx context.Context, coords geo.Coordinates) (string, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	endpoint := c.baseURL + "/api/reverse-geocode?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode returned status %d", resp.StatusCode)
	}

	var payload struct {
		City string `json:"city"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding reverse geocode response: %w", err)
	}
	return payload.City, nil
}
