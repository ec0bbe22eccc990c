// ABOUTME: Time-scaled playback of a recorded trip onto a canvas
// ABOUTME: Only one replay runs at a time; starting another tears the previous one down

package replay

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harper/wander/internal/geo"
	"github.com/harper/wander/internal/log"
	"github.com/harper/wander/internal/models"
	"github.com/harper/wander/internal/notify"
)

// ErrEmptyTrip is returned when asked to replay a trip without points.
var ErrEmptyTrip = errors.New("trip has no points to replay")

// Canvas is where a replay is drawn.
type Canvas interface {
	// ShowRoute draws the full route as a faint underlay.
	ShowRoute(points []models.TrackPoint)
	// MoveMarker moves the position marker.
	MoveMarker(p models.TrackPoint)
	// DrawTrace extends the replayed trace by one segment.
	DrawTrace(from, to models.TrackPoint, color string)
	// ClearLayers removes the underlay, marker and trace.
	ClearLayers()
}

// Options tune playback speed.
type Options struct {
	Frame       time.Duration
	Speedup     float64
	MinDuration time.Duration
	MaxDuration time.Duration
}

// DefaultOptions plays at 60x real time, bounded to 2-30 seconds, at 10 frames per second.
func DefaultOptions() Options {
	return Options{
		Frame:       100 * time.Millisecond,
		Speedup:     60,
		MinDuration: 2 * time.Second,
		MaxDuration: 30 * time.Second,
	}
}

// Option mutates Options.
type Option func(*Options)

// WithOptions replaces all options.
func WithOptions(o Options) Option {
	return func(opts *Options) { *opts = o }
}

// WithFrame sets the frame interval.
func WithFrame(d time.Duration) Option {
	return func(opts *Options) { opts.Frame = d }
}

// WithDurationBounds bounds how long a replay may take.
func WithDurationBounds(minDur, maxDur time.Duration) Option {
	return func(opts *Options) {
		opts.MinDuration = minDur
		opts.MaxDuration = maxDur
	}
}

// playback is one run of the player.
type playback struct {
	id     string
	tripID int64
	cancel context.CancelFunc
	done   chan struct{}
}

// Player replays trips one at a time.
type Player struct {
	canvas Canvas
	hub    *notify.Hub
	opts   Options
	log    *log.Logger

	mu  sync.Mutex
	run *playback
}

// NewPlayer creates an idle player.
func NewPlayer(canvas Canvas, hub *notify.Hub, opts ...Option) *Player {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Frame <= 0 {
		o.Frame = DefaultOptions().Frame
	}
	if o.Speedup <= 0 {
		o.Speedup = 1
	}
	if o.MaxDuration < o.MinDuration {
		o.MaxDuration = o.MinDuration
	}
	return &Player{
		canvas: canvas,
		hub:    hub,
		opts:   o,
		log:    log.Default().Named("replay"),
	}
}

// Frames returns how many frames a trip of duration d plays in.
func (p *Player) Frames(d time.Duration) int {
	play := time.Duration(float64(d) / p.opts.Speedup)
	if play < p.opts.MinDuration {
		play = p.opts.MinDuration
	}
	if play > p.opts.MaxDuration {
		play = p.opts.MaxDuration
	}
	frames := int(play / p.opts.Frame)
	if frames < 1 {
		frames = 1
	}
	return frames
}

// Start replays trip, replacing any replay in flight. The underlay and the
// marker appear immediately; the trace grows one frame at a time.
func (p *Player) Start(ctx context.Context, trip *models.Trip) error {
	if trip == nil || len(trip.Points) == 0 {
		return ErrEmptyTrip
	}
	points := append([]models.TrackPoint(nil), trip.Points...)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.canvas.ClearLayers()
	p.canvas.ShowRoute(points)
	p.canvas.MoveMarker(points[0])

	runCtx, cancel := context.WithCancel(ctx)
	run := &playback{
		id:     uuid.NewString(),
		tripID: trip.ID,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	p.run = run

	frames := p.Frames(time.Duration(trip.Duration) * time.Millisecond)
	p.log.Debug("replay started",
		log.String("run", run.id),
		log.Int64("trip", trip.ID),
		log.Int("points", len(points)),
		log.Int("frames", frames))

	go p.play(runCtx, run, points, frames)
	return nil
}

func (p *Player) play(ctx context.Context, run *playback, points []models.TrackPoint, frames int) {
	defer close(run.done)

	last := len(points) - 1
	perFrame := float64(last) / float64(frames)
	drawn := 0

	ticker := time.NewTicker(p.opts.Frame)
	defer ticker.Stop()

	for frame := 1; ; frame++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		target := int(math.Ceil(float64(frame) * perFrame))
		if target > last || frame >= frames {
			target = last
		}
		for drawn < target {
			from, to := points[drawn], points[drawn+1]
			p.canvas.DrawTrace(from, to, geo.SpeedColor(geo.MpsToKmh(to.Speed)))
			drawn++
		}
		p.canvas.MoveMarker(points[drawn])

		if drawn == last {
			p.log.Debug("replay finished", log.String("run", run.id), log.Int64("trip", run.tripID))
			p.hub.Publish(notify.ReplayFinished{TripID: run.tripID})
			return
		}
	}
}

// Stop cancels the replay in flight. Drawn layers stay on the canvas.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.run == nil {
		return
	}
	p.run.cancel()
	<-p.run.done
	p.run = nil
}

// Active reports whether a replay is still playing.
func (p *Player) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.run == nil {
		return false
	}
	select {
	case <-p.run.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the current replay finishes or is stopped.
func (p *Player) Wait() {
	p.mu.Lock()
	run := p.run
	p.mu.Unlock()
	if run != nil {
		<-run.done
	}
}
