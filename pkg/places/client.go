// Package places talks to the remote places REST API.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/uber/h3-go/v4"

	"hihimaps/pkg/config"
	"hihimaps/pkg/model"
	"hihimaps/pkg/request"
)

// dedupeResolution is the H3 resolution used to collapse duplicate markers.
// Res 11 cells are ~25m across; two places inside one cell render as one pin.
const dedupeResolution = 11

// Client fetches nearby summaries and place details.
type Client struct {
	http    *request.Client
	baseURL string
}

// New creates a places Client.
func New(rc *request.Client, cfg *config.PlacesConfig) *Client {
	return &Client{
		http:    rc,
		baseURL: cfg.BaseURL,
	}
}

// nearbyEntry is the wire format of one nearby result.
type nearbyEntry struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"location"`
}

// Nearby returns the points of interest within distanceMeters of loc.
// Responses are never cached; every poll sees fresh data.
func (c *Client) Nearby(ctx context.Context, loc model.Location, distanceMeters int) ([]model.Place, error) {
	q := url.Values{}
	q.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	q.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	q.Set("distance", strconv.Itoa(distanceMeters))

	body, err := c.http.Get(ctx, c.baseURL+"/places/nearby?"+q.Encode(), "")
	if err != nil {
		return nil, fmt.Errorf("nearby fetch failed: %w", err)
	}

	var entries []nearbyEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("nearby response malformed: %w", err)
	}

	places := make([]model.Place, 0, len(entries))
	seen := make(map[h3.Cell]struct{}, len(entries))
	for _, e := range entries {
		if len(e.Location.Coordinates) < 2 {
			slog.Debug("Nearby entry without coordinates dropped", "id", e.ID, "name", e.Name)
			continue
		}
		lon, lat := e.Location.Coordinates[0], e.Location.Coordinates[1]

		if cell, err := h3.LatLngToCell(h3.NewLatLng(lat, lon), dedupeResolution); err == nil {
			if _, dup := seen[cell]; dup {
				slog.Debug("Duplicate marker collapsed", "id", e.ID, "name", e.Name)
				continue
			}
			seen[cell] = struct{}{}
		}

		places = append(places, model.Place{
			ID:   e.ID,
			Name: e.Name,
			Lat:  lat,
			Lon:  lon,
		})
	}
	return places, nil
}

// detailWire tolerates missing fields in the detail response.
type detailWire struct {
	ID           int64 `json:"id"`
	Descriptions []struct {
		Language string `json:"language"`
		Name     string `json:"name"`
		Content  string `json:"content"`
		Audios   []struct {
			ID    string `json:"_id"`
			Voice string `json:"voice"`
			URL   string `json:"url"`
		} `json:"audios"`
	} `json:"descriptions"`
	Images []string `json:"images"`
}

// Detail fetches the full record for one place. Detail content is static, so
// responses are cached per (id, language).
func (c *Client) Detail(ctx context.Context, id int64, lang model.Language) (*model.PlaceDetail, error) {
	u := fmt.Sprintf("%s/places/%d?lang=%s", c.baseURL, id, lang)
	cacheKey := fmt.Sprintf("detail:%d:%s", id, lang)

	body, err := c.http.Get(ctx, u, cacheKey)
	if err != nil {
		return nil, fmt.Errorf("detail fetch failed: %w", err)
	}

	var w detailWire
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("detail response malformed: %w", err)
	}

	detail := &model.PlaceDetail{
		ID:     w.ID,
		Images: w.Images,
	}
	if detail.ID == 0 {
		detail.ID = id
	}
	for _, d := range w.Descriptions {
		desc := model.Description{
			Language: model.Language(d.Language),
			Name:     d.Name,
			Content:  d.Content,
		}
		for i, a := range d.Audios {
			if a.URL == "" {
				continue
			}
			// _id is optional on the wire; the player addresses tracks by ID,
			// so synthesize one from the voice name or the position.
			id := a.ID
			if id == "" {
				id = a.Voice
			}
			if id == "" {
				id = "track-" + strconv.Itoa(i)
			}
			desc.Audios = append(desc.Audios, model.AudioTrack{ID: id, Voice: a.Voice, URL: a.URL})
		}
		detail.Descriptions = append(detail.Descriptions, desc)
	}
	return detail, nil
}

// HealthCheck verifies the places API is reachable. Used by startup probes.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.Nearby(ctx, model.Location{}, 1)
	return err
}
