package geo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/meteora/weather-history/internal/upstream"
)

// Candidate is one ranked geocoding match.
type Candidate struct {
	Name      string  `json:"name"`
	Admin1    string  `json:"admin1,omitempty"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DisplayName joins the non-empty name, region and country segments.
func (c Candidate) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.Name, c.Admin1, c.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Client implements Geocoder using the Open-Meteo geocoding API.
type Client struct {
	baseURL  string
	upstream *upstream.Client
}

// NewClient creates an Open-Meteo geocoding client rooted at baseURL.
func NewClient(baseURL string, up *upstream.Client) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		upstream: up,
	}
}

// Search returns up to count ranked candidates for name.
func (c *Client) Search(ctx context.Context, name string, count int) ([]Candidate, error) {
	params := url.Values{
		"name":     {name},
		"count":    {strconv.Itoa(count)},
		"language": {"en"},
		"format":   {"json"},
	}

	var resp response
	if err := c.upstream.GetJSON(ctx, c.baseURL+"/search", params, &resp); err != nil {
		return nil, fmt.Errorf("forward geocode request: %w", err)
	}
	return resp.Results, nil
}

// Reverse returns the best match for the coordinates, or nil when there is none.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*Candidate, error) {
	params := url.Values{
		"latitude":  {formatCoord(lat)},
		"longitude": {formatCoord(lon)},
		"count":     {"1"},
		"language":  {"en"},
	}

	var resp response
	if err := c.upstream.GetJSON(ctx, c.baseURL+"/reverse", params, &resp); err != nil {
		return nil, fmt.Errorf("reverse geocode request: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return &resp.Results[0], nil
}

// Open-Meteo API response types.

type response struct {
	Results []Candidate `json:"results"`
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
