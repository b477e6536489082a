package guide

import (
	"hihimaps/pkg/geo"
	"hihimaps/pkg/model"
)

// recenterViewportMeters frames the map around a committed search selection.
const recenterViewportMeters = 1000

// MapState is the full UI-facing snapshot, serialized as-is to the frontend.
// Search suggestions are per UI client and live outside the snapshot; only a
// committed selection shows up here.
type MapState struct {
	Location      *model.Location         `json:"location,omitempty"`
	LocationError string                  `json:"location_error,omitempty"`
	Language      model.Language          `json:"language"`
	Places        []model.Place           `json:"places"`
	Selected      *model.SelectedLocation `json:"selected,omitempty"`
	Viewport      *geo.Viewport           `json:"viewport,omitempty"`
	Modal         ModalState              `json:"modal"`
	Audio         AudioState              `json:"audio"`
	Notice        string                  `json:"notice,omitempty"`
}

// ModalState describes the place detail modal.
type ModalState struct {
	Open            bool               `json:"open"`
	PlaceID         int64              `json:"place_id,omitempty"`
	Loading         bool               `json:"loading,omitempty"`
	Error           string             `json:"error,omitempty"`
	Name            string             `json:"name,omitempty"`
	Content         string             `json:"content,omitempty"`
	LanguageMatched bool               `json:"language_matched"`
	Images          []string           `json:"images,omitempty"`
	Audios          []model.AudioTrack `json:"audios,omitempty"`
}

// AudioState describes the narration player.
type AudioState struct {
	State string  `json:"state"`
	Voice string  `json:"voice,omitempty"`
	Error string  `json:"error,omitempty"`
	Vol   float64 `json:"volume"`
}

// Snapshot assembles the current MapState from all components.
func (c *Controller) Snapshot() MapState {
	st := MapState{
		Language: c.store.Language(),
		Places:   c.store.Places(),
	}

	if loc, ok := c.store.CurrentLocation(); ok {
		st.Location = &loc
	}
	if err := c.LocationError(); err != nil {
		st.LocationError = err.Error()
	}
	if sel, ok := c.store.SelectedLocation(); ok {
		st.Selected = &sel
		vp := geo.ViewportAround(geo.Point{Lat: sel.Lat, Lon: sel.Lng}, recenterViewportMeters)
		st.Viewport = &vp
	}
	if notice, _, ok := c.store.Notice(); ok {
		st.Notice = notice
	}

	ds := c.detail.Snapshot()
	if ds.PlaceID != 0 {
		st.Modal = ModalState{
			Open:    true,
			PlaceID: ds.PlaceID,
			Loading: ds.Loading,
		}
		if ds.Err != nil {
			st.Modal.Error = ds.Err.Error()
		}
		if ds.Result != nil {
			st.Modal.Name = ds.Result.Description.Name
			st.Modal.Content = ds.Result.Description.Content
			st.Modal.LanguageMatched = ds.Result.LanguageMatched
			st.Modal.Images = ds.Result.Detail.Images
			st.Modal.Audios = ds.Result.Description.Audios
		}
	}

	as := c.player.Status()
	st.Audio = AudioState{
		State: as.State.String(),
		Voice: as.Track.Voice,
		Vol:   c.player.Volume(),
	}
	if as.Err != nil {
		st.Audio.Error = as.Err.Error()
	}
	return st
}
