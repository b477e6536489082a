// Package guide orchestrates the tour client: it feeds sensor positions into
// the store, drives the place detail modal, and routes audio commands. The
// HTTP layer talks to this package for everything except search, which runs
// per UI client; committed search selections arrive through the shared store.
package guide

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"hihimaps/pkg/audio"
	"hihimaps/pkg/detail"
	"hihimaps/pkg/model"
	"hihimaps/pkg/sensor"
	"hihimaps/pkg/store"
)

// Controller owns the client-side lifecycle. All mutating entry points are
// safe for concurrent use.
type Controller struct {
	store    *store.Store
	detail   *detail.Fetcher
	player   *audio.Player
	provider sensor.Provider
	opts     sensor.Options

	mu       sync.Mutex
	locErr   error
	cancel   context.CancelFunc
	onChange func()
}

// New wires a Controller and hooks all component change signals into one
// OnChange stream.
func New(st *store.Store, df *detail.Fetcher, pl *audio.Player, sp sensor.Provider, opts sensor.Options) *Controller {
	c := &Controller{
		store:    st,
		detail:   df,
		player:   pl,
		provider: sp,
		opts:     opts,
	}
	st.Subscribe(func(store.Event) { c.changed() })
	df.SetOnChange(c.changed)
	pl.SetOnChange(c.changed)
	return c
}

// SetOnChange registers a callback fired after any visible state change.
func (c *Controller) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Start begins watching the position sensor. A permission denial is terminal:
// the controller records the error state and does not retry.
func (c *Controller) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	ch, err := c.provider.Watch(ctx, c.opts)
	if err != nil {
		cancel()
		if errors.Is(err, sensor.ErrPermissionDenied) {
			c.mu.Lock()
			c.locErr = err
			c.mu.Unlock()
			c.changed()
			slog.Warn("Location permission denied, map stays in error state")
			return nil
		}
		return fmt.Errorf("sensor watch failed: %w", err)
	}

	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	go func() {
		for loc := range ch {
			c.store.SetCurrentLocation(loc)
		}
		slog.Debug("Sensor stream ended")
	}()
	return nil
}

// LocationError returns the terminal sensor error, if any.
func (c *Controller) LocationError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locErr
}

// SelectPlace opens the detail modal for a marker and starts loading its
// record in the active language.
func (c *Controller) SelectPlace(id int64) {
	slog.Info("Place selected", "place", id)
	c.detail.Fetch(id, c.store.Language())
}

// CloseModal dismisses the detail modal. Any playing narration stops; the
// loaded detail is discarded.
func (c *Controller) CloseModal() {
	c.player.Stop()
	c.detail.Clear()
}

// PlayVoice starts narration with the given track from the open modal.
func (c *Controller) PlayVoice(trackID string) error {
	s := c.detail.Snapshot()
	if s.Result == nil {
		return errors.New("no place detail loaded")
	}
	for _, tr := range s.Result.Description.Audios {
		if tr.ID == trackID {
			c.player.Play(tr)
			return nil
		}
	}
	return fmt.Errorf("unknown audio track %q", trackID)
}

// PauseAudio pauses the current narration.
func (c *Controller) PauseAudio() { c.player.Pause() }

// ResumeAudio resumes paused narration.
func (c *Controller) ResumeAudio() { c.player.Resume() }

// StopAudio stops the current narration without closing the modal.
func (c *Controller) StopAudio() { c.player.Stop() }

// SetVolume adjusts narration volume (0.0 to 1.0).
func (c *Controller) SetVolume(vol float64) { c.player.SetVolume(vol) }

// SetLanguage switches the UI language. An open modal reloads its detail in
// the new language; running narration stops because its tracks belong to the
// old language.
func (c *Controller) SetLanguage(lang model.Language) error {
	parsed, err := model.ParseLanguage(string(lang))
	if err != nil {
		return err
	}
	c.store.SetLanguage(parsed)

	if c.detail.Snapshot().PlaceID != 0 {
		c.player.Stop()
		c.detail.Refetch(parsed)
	}
	return nil
}

// Close shuts down the controller and its components.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()

	c.provider.Close()
	c.player.Shutdown()
}

func (c *Controller) changed() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
