// Package model defines the shared data types of the guide client.
package model

import (
	"strconv"
	"strings"
)

// Location is the current device position. It is replaced wholesale on every
// sensor update; no history is kept.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is a nearby point of interest summary as returned by the places API.
type Place struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// AudioTrack is one named voice rendition of a description.
type AudioTrack struct {
	ID    string `json:"id"`
	Voice string `json:"voice"`
	URL   string `json:"url"`
}

// Description is the language-specific text + audio bundle of a place.
type Description struct {
	Language Language     `json:"language"`
	Name     string       `json:"name"`
	Content  string       `json:"content"`
	Audios   []AudioTrack `json:"audios"`
}

// PlaceDetail is the full record for a selected place. It is fetched lazily on
// selection and discarded when the detail modal closes.
type PlaceDetail struct {
	ID           int64         `json:"id"`
	Descriptions []Description `json:"descriptions"`
	Images       []string      `json:"images"`
}

// DescriptionFor returns the description matching lang, or the first available
// one as a fallback. The second return value reports whether the language
// matched exactly, so the UI can flag "not available in your language".
func (d *PlaceDetail) DescriptionFor(lang Language) (Description, bool) {
	for _, desc := range d.Descriptions {
		if desc.Language == lang {
			return desc, true
		}
	}
	if len(d.Descriptions) > 0 {
		return d.Descriptions[0], false
	}
	return Description{}, false
}

// SearchResult is one geocoder hit. Nominatim encodes coordinates as strings.
type SearchResult struct {
	PlaceID     int64  `json:"place_id"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// SelectedLocation is a search result the user picked, with coordinates
// coerced to numbers. Single writer (search), single reader (map recenter).
type SelectedLocation struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	PlaceID     int64   `json:"place_id"`
	DisplayName string  `json:"display_name"`
}

// NewSelectedLocation normalizes a raw search result. Unparsable coordinates
// coerce to 0, mirroring the lenient handling of the UI layer.
func NewSelectedLocation(r SearchResult) SelectedLocation {
	lat, _ := strconv.ParseFloat(strings.TrimSpace(r.Lat), 64)
	lon, _ := strconv.ParseFloat(strings.TrimSpace(r.Lon), 64)
	return SelectedLocation{
		Lat:         lat,
		Lng:         lon,
		PlaceID:     r.PlaceID,
		DisplayName: r.DisplayName,
	}
}
