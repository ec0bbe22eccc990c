// ABOUTME: Tracking engine state machine turning GPS fixes into trips
// ABOUTME: Handles sampling, periodic recovery snapshots, UI ticks and trip finalization

package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/harper/wander/internal/geo"
	"github.com/harper/wander/internal/log"
	"github.com/harper/wander/internal/models"
	"github.com/harper/wander/internal/notify"
	"github.com/harper/wander/internal/positioning"
	"github.com/harper/wander/internal/recovery"
)

// Default timer intervals.
const (
	DefaultSnapshotInterval = 10 * time.Second
	DefaultTickInterval     = time.Second
)

// ErrTripNotSaved is returned by Stop when the finished trip could not be persisted.
var ErrTripNotSaved = errors.New("trip could not be saved")

// ErrRecording is returned when an operation requires the engine to be idle.
var ErrRecording = errors.New("a recording is already in progress")

// Config holds engine timing.
type Config struct {
	SnapshotInterval time.Duration
	TickInterval     time.Duration
}

// Deps are the engine's collaborators. Source and Trips are required.
type Deps struct {
	Source   positioning.Source
	Trips    TripWriter
	Recovery recovery.Slot
	Renderer Renderer
	WakeLock WakeLock
	Target   TargetChecker
	Hub      *notify.Hub
	Clock    Clock
	Logger   *log.Logger
}

// Session is the state of the current (or last) recording.
type Session struct {
	ID         string
	Active     bool
	Resumed    bool
	Path       []models.TrackPoint
	StartTime  time.Time
	Distance   float64
	LastSample time.Time
}

// Status is a read-only summary of the engine.
type Status struct {
	Active     bool          `json:"active"`
	Resumed    bool          `json:"resumed"`
	SessionID  string        `json:"session_id,omitempty"`
	Points     int           `json:"points"`
	DistanceKm float64       `json:"distance_km"`
	Elapsed    time.Duration `json:"elapsed"`
	StartTime  time.Time     `json:"start_time,omitempty"`
}

// run holds everything started for one recording so Stop can tear it down
// without racing a following Start.
type run struct {
	gen        uint64
	sub        positioning.Subscription
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	wakeHeld   bool
	sourceDone chan struct{}
}

// Engine records one session at a time.
type Engine struct {
	cfg      Config
	source   positioning.Source
	trips    TripWriter
	slot     recovery.Slot
	renderer Renderer
	wake     WakeLock
	target   TargetChecker
	hub      *notify.Hub
	clock    Clock
	log      *log.Logger

	// lifecycle serializes Start, Resume and Stop. Stop holds it through
	// teardown so a new run cannot acquire the wake lock before the old run
	// has released it.
	lifecycle sync.Mutex

	mu      sync.Mutex
	session Session
	current *run
	gen     uint64
}

// New creates an idle engine.
func New(cfg Config, deps Deps) (*Engine, error) {
	if deps.Source == nil {
		return nil, fmt.Errorf("tracking engine needs a positioning source")
	}
	if deps.Trips == nil {
		return nil, fmt.Errorf("tracking engine needs a trip writer")
	}
	if cfg.SnapshotInterval <= 0 {
		cfg.SnapshotInterval = DefaultSnapshotInterval
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}

	e := &Engine{
		cfg:      cfg,
		source:   deps.Source,
		trips:    deps.Trips,
		slot:     deps.Recovery,
		renderer: deps.Renderer,
		wake:     deps.WakeLock,
		target:   deps.Target,
		hub:      deps.Hub,
		clock:    deps.Clock,
		log:      deps.Logger,
	}
	if e.renderer == nil {
		e.renderer = nopRenderer{}
	}
	if e.wake == nil {
		e.wake = nopWakeLock{}
	}
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	if e.log == nil {
		e.log = log.Default()
	}
	e.log = e.log.Named("tracking")
	return e, nil
}

// Start begins a new recording. Starting while already recording does nothing.
// A recovery snapshot left by an earlier session is not touched.
func (e *Engine) Start(ctx context.Context) error {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Active {
		return nil
	}

	e.session = Session{
		ID:        models.NewSessionID(),
		Active:    true,
		StartTime: e.clock.Now(),
	}
	e.renderer.ClearTrace()

	if err := e.beginLocked(ctx); err != nil {
		e.session.Active = false
		return err
	}
	e.log.Info("recording started", log.String("session", e.session.ID))
	return nil
}

// beginLocked acquires the wake lock, subscribes to fixes and starts the timers.
func (e *Engine) beginLocked(ctx context.Context) error {
	r := &run{sourceDone: make(chan struct{})}
	if err := e.wake.Acquire(); err != nil {
		e.log.Warn("wake lock unavailable", log.ErrorField(err))
	} else {
		r.wakeHeld = true
	}

	sub, err := e.source.Subscribe(ctx)
	if err != nil {
		if r.wakeHeld {
			e.releaseWake()
		}
		return fmt.Errorf("subscribe to positions: %w", err)
	}

	e.gen++
	r.gen = e.gen
	r.sub = sub
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancel = cancel

	r.wg.Add(3)
	go e.consume(loopCtx, r)
	go e.every(loopCtx, r, e.cfg.SnapshotInterval, e.snapshotTick)
	go e.every(loopCtx, r, e.cfg.TickInterval, e.uiTick)

	e.current = r
	return nil
}

func (e *Engine) consume(ctx context.Context, r *run) {
	defer r.wg.Done()
	for {
		select {
		case fix, ok := <-r.sub.Fixes():
			if !ok {
				close(r.sourceDone)
				return
			}
			e.handleFix(r.gen, fix)
		case err := <-r.sub.Errors():
			e.log.Warn("positioning error", log.ErrorField(err))
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) every(ctx context.Context, r *run, interval time.Duration, fn func(context.Context)) {
	defer r.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fn(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// handleFix applies one sample. The whole update runs under the engine lock.
func (e *Engine) handleFix(gen uint64, fix positioning.Fix) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.session.Active || gen != e.gen {
		return
	}
	if err := models.ValidateCoordinates(fix.Latitude, fix.Longitude); err != nil {
		e.log.Warn("dropping invalid fix", log.ErrorField(err))
		return
	}

	at := fix.Timestamp
	if at.IsZero() {
		at = e.clock.Now()
	}

	point := models.TrackPoint{
		Latitude:  fix.Latitude,
		Longitude: fix.Longitude,
		Altitude:  fix.Altitude,
	}

	n := len(e.session.Path)
	var prev models.TrackPoint
	var stepKm, elapsed float64
	if n > 0 {
		prev = e.session.Path[n-1]
		stepKm = geo.HaversineKm(prev.Latitude, prev.Longitude, point.Latitude, point.Longitude)
		if !e.session.LastSample.IsZero() {
			elapsed = at.Sub(e.session.LastSample).Seconds()
		}
	}
	point.Speed = geo.DeriveSpeed(fix.Speed, n > 0, stepKm*1000, elapsed)

	e.session.Path = append(e.session.Path, point)
	e.session.Distance += stepKm
	e.session.LastSample = at

	if e.target != nil {
		e.target.Check(point)
	}
	if n > 0 {
		e.renderer.DrawSegment(prev, point, geo.SpeedColor(geo.MpsToKmh(point.Speed)))
	}
	e.hub.Publish(notify.SampleArrived{
		Lat:      fix.Latitude,
		Lng:      fix.Longitude,
		Accuracy: fix.Accuracy,
		Heading:  fix.Heading,
	})
}

// snapshotTick writes the current session to the recovery slot. Failures are logged only.
func (e *Engine) snapshotTick(ctx context.Context) {
	e.mu.Lock()
	if !e.session.Active || len(e.session.Path) == 0 || e.slot == nil {
		e.mu.Unlock()
		return
	}
	snap := &models.RecoverySnapshot{
		SessionID: e.session.ID,
		Path:      append([]models.TrackPoint(nil), e.session.Path...),
		StartTime: e.session.StartTime,
		Distance:  e.session.Distance,
	}
	e.mu.Unlock()

	if err := e.slot.Save(ctx, snap); err != nil {
		e.log.Warn("recovery snapshot failed", log.ErrorField(err), log.Int("points", len(snap.Path)))
		return
	}
	e.log.Debug("recovery snapshot written", log.Int("points", len(snap.Path)))
}

// uiTick publishes the elapsed time for clock displays.
func (e *Engine) uiTick(_ context.Context) {
	st := e.Status()
	if !st.Active {
		return
	}
	e.hub.Publish(notify.Tick{Elapsed: st.Elapsed, Points: st.Points, Km: st.DistanceKm})
}

// Stop ends the recording. Timers and the subscription are torn down before
// anything is written. An empty recording produces no trip and no notification.
// When the trip cannot be saved it is still returned along with an error
// wrapping ErrTripNotSaved.
func (e *Engine) Stop(ctx context.Context) (*models.Trip, error) {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	e.mu.Lock()
	if !e.session.Active {
		e.mu.Unlock()
		return nil, nil
	}
	r := e.current
	e.current = nil
	e.session.Active = false
	e.gen++
	path := append([]models.TrackPoint(nil), e.session.Path...)
	start := e.session.StartTime
	distance := e.session.Distance
	sessionID := e.session.ID
	e.mu.Unlock()

	e.teardown(r)

	if e.slot != nil {
		if err := e.slot.Delete(ctx); err != nil {
			e.log.Warn("could not delete recovery snapshot", log.ErrorField(err))
		}
	}

	if len(path) == 0 {
		e.log.Info("recording stopped without samples", log.String("session", sessionID))
		return nil, nil
	}

	elev := geo.Elevation(path)
	trip, err := models.NewTrip(path, start, e.clock.Now(), distance, elev.Gain, elev.Loss)
	if err != nil {
		return nil, fmt.Errorf("build trip: %w", err)
	}

	if _, err := e.trips.Insert(ctx, trip); err != nil {
		e.log.Error("trip write failed", log.Int64("trip", trip.ID), log.ErrorField(err))
		return trip, fmt.Errorf("%w: %w", ErrTripNotSaved, err)
	}

	e.log.Info("trip recorded",
		log.Int64("trip", trip.ID),
		log.Int("points", len(trip.Points)),
		log.Float64("km", trip.Distance))
	e.hub.Publish(notify.TripRecorded{TripID: trip.ID})
	return trip, nil
}

// teardown stops a run's goroutines and waits for them.
func (e *Engine) teardown(r *run) {
	if r == nil {
		return
	}
	r.cancel()
	r.sub.Cancel()
	r.wg.Wait()
	if r.wakeHeld {
		e.releaseWake()
	}
}

func (e *Engine) releaseWake() {
	if err := e.wake.Release(); err != nil {
		e.log.Warn("wake lock release failed", log.ErrorField(err))
	}
}

// Status returns a snapshot of the engine state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{
		Active:     e.session.Active,
		Resumed:    e.session.Resumed,
		SessionID:  e.session.ID,
		Points:     len(e.session.Path),
		DistanceKm: e.session.Distance,
		StartTime:  e.session.StartTime,
	}
	if st.Active {
		st.Elapsed = e.clock.Now().Sub(e.session.StartTime)
	}
	return st
}

// Session returns a copy of the current session.
func (e *Engine) Session() Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	s.Path = append([]models.TrackPoint(nil), e.session.Path...)
	return s
}

// SourceClosed returns a channel closed when the current recording's
// positioning source runs out of fixes. It is closed immediately when idle.
func (e *Engine) SourceClosed() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return e.current.sourceDone
}

// Active reports whether a recording is in progress.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Active
}
