// Package audio plays narrated place descriptions using gopxl/beep.
package audio

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"

	"hihimaps/pkg/model"
)

// PlayState is the playback lifecycle phase.
type PlayState int

const (
	StateIdle PlayState = iota
	StateLoading
	StatePlaying
	StatePaused
)

func (s PlayState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// Status is a snapshot of the player.
type Status struct {
	State PlayState
	Track model.AudioTrack
	Err   error
}

// LoadFunc fetches and decodes an audio resource.
type LoadFunc func(ctx context.Context, url string) (beep.StreamSeekCloser, beep.Format, error)

// Engine abstracts the speaker so tests can run without an audio device.
type Engine interface {
	Init(sr beep.SampleRate, bufLen int) error
	Play(s ...beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

// speakerEngine delegates to the process-wide beep speaker.
type speakerEngine struct{}

func (speakerEngine) Init(sr beep.SampleRate, bufLen int) error { return speaker.Init(sr, bufLen) }
func (speakerEngine) Play(s ...beep.Streamer)                   { speaker.Play(s...) }
func (speakerEngine) Clear()                                    { speaker.Clear() }
func (speakerEngine) Lock()                                     { speaker.Lock() }
func (speakerEngine) Unlock()                                   { speaker.Unlock() }

// Player drives at most one playback session. Starting a new track stops the
// current one; a load that finishes after a newer Play or a Stop is discarded.
type Player struct {
	mu   sync.Mutex
	load LoadFunc
	eng  Engine

	state    PlayState
	track    model.AudioTrack
	err      error
	gen      uint64
	cancel   context.CancelFunc
	ctrl     *beep.Ctrl
	vol      *effects.Volume
	streamer beep.StreamSeekCloser
	volume   float64

	inited     bool
	sampleRate beep.SampleRate

	onChange func()
}

// NewPlayer creates a Player using the real speaker and network loader.
func NewPlayer() *Player {
	return &Player{
		load:   FetchMedia,
		eng:    speakerEngine{},
		volume: 1.0,
	}
}

// NewPlayerWith creates a Player with injected loader and engine.
func NewPlayerWith(load LoadFunc, eng Engine) *Player {
	return &Player{
		load:   load,
		eng:    eng,
		volume: 1.0,
	}
}

// SetOnChange registers a callback invoked after every state change.
func (p *Player) SetOnChange(fn func()) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

// Play starts playback of track, replacing any current session. The call
// returns immediately; the player moves Loading -> Playing -> Idle on its own.
func (p *Player) Play(track model.AudioTrack) {
	p.mu.Lock()
	p.stopLocked()
	p.gen++
	gen := p.gen
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.state = StateLoading
	p.track = track
	p.err = nil
	p.mu.Unlock()
	p.changed()

	slog.Debug("Audio: loading track", "voice", track.Voice, "url", track.URL)
	go p.run(ctx, gen, track)
}

func (p *Player) run(ctx context.Context, gen uint64, track model.AudioTrack) {
	streamer, format, err := p.load(ctx, track.URL)

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		if streamer != nil {
			streamer.Close()
		}
		slog.Debug("Audio: superseded load discarded", "voice", track.Voice)
		return
	}

	if err != nil {
		p.state = StateIdle
		p.err = err
		p.cancel = nil
		p.mu.Unlock()
		p.changed()
		slog.Warn("Audio: load failed", "url", track.URL, "error", err)
		return
	}

	if ierr := p.ensureInitLocked(); ierr != nil {
		streamer.Close()
		p.state = StateIdle
		p.err = ierr
		p.cancel = nil
		p.mu.Unlock()
		p.changed()
		return
	}

	resampled := beep.Resample(3, format.SampleRate, p.sampleRate, streamer)
	vol := &effects.Volume{
		Streamer: resampled,
		Base:     2,
		Volume:   volumeToPower(p.volume),
		Silent:   p.volume <= 0.01,
	}
	ctrl := &beep.Ctrl{Streamer: vol}

	p.streamer = streamer
	p.vol = vol
	p.ctrl = ctrl
	p.state = StatePlaying

	// Enqueue while still holding p.mu: a concurrent Stop must not clear the
	// mixer between the gen check above and the Play. The callback runs on
	// the speaker thread; finish in a goroutine to avoid deadlocking against
	// speaker.Lock.
	p.eng.Play(beep.Seq(ctrl, beep.Callback(func() {
		go p.finish(gen)
	})))
	p.mu.Unlock()
	p.changed()
	slog.Debug("Audio: playing", "voice", track.Voice)
}

// finish returns the player to idle when a track ends naturally.
func (p *Player) finish(gen uint64) {
	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.stopLocked()
	p.state = StateIdle
	p.track = model.AudioTrack{}
	p.mu.Unlock()
	p.changed()
	slog.Debug("Audio: playback finished")
}

// Pause pauses current playback.
func (p *Player) Pause() {
	p.mu.Lock()
	if p.ctrl != nil && p.state == StatePlaying {
		p.eng.Lock()
		p.ctrl.Paused = true
		p.eng.Unlock()
		p.state = StatePaused
	}
	p.mu.Unlock()
	p.changed()
}

// Resume resumes paused playback.
func (p *Player) Resume() {
	p.mu.Lock()
	if p.ctrl != nil && p.state == StatePaused {
		p.eng.Lock()
		p.ctrl.Paused = false
		p.eng.Unlock()
		p.state = StatePlaying
	}
	p.mu.Unlock()
	p.changed()
}

// Stop ends the current session, whatever phase it is in. In-flight loads are
// cancelled and their results discarded.
func (p *Player) Stop() {
	p.mu.Lock()
	p.gen++
	p.stopLocked()
	p.state = StateIdle
	p.track = model.AudioTrack{}
	p.mu.Unlock()
	p.changed()
}

func (p *Player) stopLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	if p.ctrl != nil {
		p.eng.Clear()
		p.ctrl = nil
		p.vol = nil
	}
}

// SetVolume sets playback volume (0.0 to 1.0).
func (p *Player) SetVolume(vol float64) {
	if vol < 0 {
		vol = 0
	} else if vol > 1 {
		vol = 1
	}

	p.mu.Lock()
	p.volume = vol
	if p.vol != nil {
		p.eng.Lock()
		p.vol.Volume = volumeToPower(vol)
		p.vol.Silent = vol <= 0.01
		p.eng.Unlock()
	}
	p.mu.Unlock()
}

// Volume returns the current volume level.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Status returns a snapshot of the player.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{State: p.state, Track: p.track, Err: p.err}
}

// IsBusy reports whether a session exists (loading, playing, or paused).
func (p *Player) IsBusy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state != StateIdle
}

// Shutdown stops playback and releases resources.
func (p *Player) Shutdown() {
	p.Stop()
}

func (p *Player) ensureInitLocked() error {
	const targetSampleRate = 48000
	if p.inited {
		return nil
	}
	sr := beep.SampleRate(targetSampleRate)
	if err := p.eng.Init(sr, sr.N(time.Second/10)); err != nil {
		slog.Error("Failed to initialize speaker", "error", err)
		return err
	}
	p.inited = true
	p.sampleRate = sr
	return nil
}

func (p *Player) changed() {
	p.mu.Lock()
	fn := p.onChange
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}
