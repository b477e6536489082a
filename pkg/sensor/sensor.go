// Package sensor abstracts the device position source.
package sensor

import (
	"context"
	"errors"
	"fmt"

	"hihimaps/pkg/config"
	"hihimaps/pkg/model"
)

// ErrPermissionDenied is returned when the platform refuses location access.
// The map view renders a persistent error state in that case; there is no
// retry loop.
var ErrPermissionDenied = errors.New("location permission denied")

// Accuracy mirrors the accuracy hint passed to platform location APIs.
type Accuracy string

const (
	AccuracyHigh     Accuracy = "high"
	AccuracyBalanced Accuracy = "balanced"
)

// Options configure a position watch.
type Options struct {
	Accuracy Accuracy
	// DistanceInterval suppresses updates closer than this many meters to the
	// previously delivered position.
	DistanceInterval float64
}

// Provider is a continuous position source. Watch returns a channel that is
// closed when the context is cancelled or the provider shuts down.
type Provider interface {
	Watch(ctx context.Context, opts Options) (<-chan model.Location, error)
	Close() error
}

// deniedProvider simulates a rejected permission prompt. Useful for exercising
// the error path without a device.
type deniedProvider struct{}

func (deniedProvider) Watch(context.Context, Options) (<-chan model.Location, error) {
	return nil, ErrPermissionDenied
}

func (deniedProvider) Close() error { return nil }

// NewDenied returns a Provider that always reports permission denied.
func NewDenied() Provider { return deniedProvider{} }

// FromConfig builds the configured provider.
func FromConfig(cfg *config.SensorConfig, newMock func(config.MockLocConfig) Provider) (Provider, error) {
	switch cfg.Provider {
	case "mock", "":
		return newMock(cfg.Mock), nil
	case "denied":
		return NewDenied(), nil
	default:
		return nil, fmt.Errorf("unknown sensor provider %q", cfg.Provider)
	}
}
