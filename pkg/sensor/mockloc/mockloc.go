// Package mockloc provides a fake position stream: a pedestrian wandering away
// from a start point. It stands in for the device GPS during development.
package mockloc

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"hihimaps/pkg/config"
	"hihimaps/pkg/geo"
	"hihimaps/pkg/model"
	"hihimaps/pkg/sensor"
)

// Walker implements sensor.Provider with a random walk.
type Walker struct {
	mu      sync.Mutex
	pos     geo.Point
	heading float64
	speed   float64 // meters per second
	tick    time.Duration
	rng     *rand.Rand
	closed  chan struct{}
	once    sync.Once
}

// New creates a Walker from config.
func New(cfg config.MockLocConfig) *Walker {
	speedKmh := cfg.SpeedKmh
	if speedKmh <= 0 {
		speedKmh = 5
	}
	tick := time.Duration(cfg.Tick)
	if tick <= 0 {
		tick = time.Second
	}
	return &Walker{
		pos:     geo.Point{Lat: cfg.StartLat, Lon: cfg.StartLon},
		heading: rand.Float64() * 360,
		speed:   speedKmh / 3.6,
		tick:    tick,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		closed:  make(chan struct{}),
	}
}

// Watch implements sensor.Provider. The first position is delivered
// immediately; later ones only after moving at least opts.DistanceInterval.
func (w *Walker) Watch(ctx context.Context, opts sensor.Options) (<-chan model.Location, error) {
	out := make(chan model.Location, 1)

	w.mu.Lock()
	start := w.pos
	w.mu.Unlock()
	out <- model.Location{Latitude: start.Lat, Longitude: start.Lon}

	go func() {
		defer close(out)
		lastSent := start
		ticker := time.NewTicker(w.tick)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-w.closed:
				return
			case <-ticker.C:
				cur := w.step()
				if geo.Distance(lastSent, cur) < opts.DistanceInterval {
					continue
				}
				lastSent = cur
				select {
				case out <- model.Location{Latitude: cur.Lat, Longitude: cur.Lon}:
				case <-ctx.Done():
					return
				case <-w.closed:
					return
				}
			}
		}
	}()

	return out, nil
}

// step advances the walk by one tick and returns the new position.
func (w *Walker) step() geo.Point {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Wander: drift the heading a little each tick.
	w.heading += (w.rng.Float64() - 0.5) * 30
	if w.heading < 0 {
		w.heading += 360
	} else if w.heading >= 360 {
		w.heading -= 360
	}

	dist := w.speed * w.tick.Seconds()
	w.pos = geo.DestinationPoint(w.pos, dist, w.heading)
	return w.pos
}

// Close stops all watches.
func (w *Walker) Close() error {
	w.once.Do(func() { close(w.closed) })
	return nil
}
