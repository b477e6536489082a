// Package geocode resolves free-text queries to coordinates via the Nominatim
// search API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"hihimaps/pkg/config"
	"hihimaps/pkg/model"
	"hihimaps/pkg/request"
)

// Client queries a Nominatim-compatible geocoder.
type Client struct {
	http       *request.Client
	baseURL    string
	maxResults int
}

// New creates a geocoding Client.
func New(rc *request.Client, cfg *config.GeocodingConfig) *Client {
	max := cfg.MaxResults
	if max <= 0 {
		max = 10
	}
	return &Client{
		http:       rc,
		baseURL:    cfg.BaseURL,
		maxResults: max,
	}
}

// searchEntry is the wire format of one Nominatim result. Coordinates arrive
// as strings; they stay strings in the model and are coerced on selection.
type searchEntry struct {
	PlaceID     int64  `json:"place_id"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Search returns candidate locations for q. Results are cached by query text;
// geocoding the same string twice hits the local cache, not the API.
func (c *Client) Search(ctx context.Context, q string) ([]model.SearchResult, error) {
	v := url.Values{}
	v.Set("q", q)
	v.Set("format", "json")
	v.Set("limit", strconv.Itoa(c.maxResults))

	body, err := c.http.Get(ctx, c.baseURL+"/search?"+v.Encode(), "geocode:"+q)
	if err != nil {
		return nil, fmt.Errorf("geocoding failed: %w", err)
	}

	var entries []searchEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("geocoding response malformed: %w", err)
	}

	results := make([]model.SearchResult, 0, len(entries))
	for _, e := range entries {
		results = append(results, model.SearchResult{
			PlaceID:     e.PlaceID,
			DisplayName: e.DisplayName,
			Lat:         e.Lat,
			Lon:         e.Lon,
		})
	}
	return results, nil
}
