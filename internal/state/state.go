// ABOUTME: In-memory cache of stored points, parcels and trips plus ambient session data
// ABOUTME: Keeps itself fresh by listening to tracking notifications

package state

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/harper/wander/internal/log"
	"github.com/harper/wander/internal/models"
	"github.com/harper/wander/internal/notify"
	"github.com/harper/wander/internal/storage"
	"github.com/samber/lo"
)

// SynodicMonthDays is the mean length of a lunar cycle.
const SynodicMonthDays = 29.530588853

// referenceNewMoon is a known new moon used as the cycle origin.
var referenceNewMoon = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

// Weather is the last weather report attached to the session.
type Weather struct {
	TemperatureC float64   `json:"temperature_c"`
	Condition    string    `json:"condition"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Position is the user's last known location.
type Position struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	Accuracy  float64   `json:"accuracy"`
	Heading   float64   `json:"heading"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Moon describes the lunar phase at a moment.
type Moon struct {
	Age      float64 `json:"age_days"`
	Fraction float64 `json:"fraction"`
	Name     string  `json:"name"`
}

// Stats aggregates recorded trips.
type Stats struct {
	Trips         int     `json:"trips"`
	TotalKm       float64 `json:"total_km"`
	TotalGain     int     `json:"total_gain"`
	LongestKm     float64 `json:"longest_km"`
	TotalDuration int64   `json:"total_duration_ms"`
}

// State caches collections loaded from the store.
type State struct {
	store *storage.Store
	now   func() time.Time
	log   *log.Logger

	mu       sync.RWMutex
	points   []*models.Point
	parcels  []*models.Parcel
	trips    []*models.Trip
	weather  *Weather
	position *Position
}

// New creates an empty state bound to store. A nil clock uses time.Now.
func New(store *storage.Store, now func() time.Time) *State {
	if now == nil {
		now = time.Now
	}
	return &State{
		store: store,
		now:   now,
		log:   log.Default().Named("state"),
	}
}

// Load reads every collection from the store.
func (s *State) Load(ctx context.Context) error {
	points, err := s.store.Points.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load points: %w", err)
	}
	parcels, err := s.store.Parcels.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load parcels: %w", err)
	}
	trips, err := s.store.ListTrips(ctx)
	if err != nil {
		return fmt.Errorf("load trips: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = points
	s.parcels = parcels
	s.trips = trips
	return nil
}

// ReloadTrips refreshes only the trips collection.
func (s *State) ReloadTrips(ctx context.Context) error {
	trips, err := s.store.ListTrips(ctx)
	if err != nil {
		return fmt.Errorf("reload trips: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips = trips
	return nil
}

// Trips returns the cached trips, newest first.
func (s *State) Trips() []*models.Trip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Trip, len(s.trips))
	for i, t := range s.trips {
		cp := *t
		cp.Points = append([]models.TrackPoint(nil), t.Points...)
		out[i] = &cp
	}
	storage.SortTripsByRecency(out)
	return out
}

// Points returns the cached points.
func (s *State) Points() []*models.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.points, func(p *models.Point, _ int) *models.Point {
		cp := *p
		return &cp
	})
}

// Parcels returns the cached parcels.
func (s *State) Parcels() []*models.Parcel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.parcels, func(p *models.Parcel, _ int) *models.Parcel {
		cp := *p
		return &cp
	})
}

// SetWeather records the latest weather report.
func (s *State) SetWeather(w Weather) {
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = s.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weather = &w
}

// Weather returns the latest weather report, if any.
func (s *State) Weather() (Weather, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.weather == nil {
		return Weather{}, false
	}
	return *s.weather, true
}

// SetUserPosition records the user's location.
func (s *State) SetUserPosition(p Position) {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = s.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = &p
}

// UserPosition returns the user's last known location, if any.
func (s *State) UserPosition() (Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.position == nil {
		return Position{}, false
	}
	return *s.position, true
}

// MoonPhase returns the lunar phase for the state's clock.
func (s *State) MoonPhase() Moon {
	return MoonAt(s.now())
}

// MoonAt returns the lunar phase at t.
func MoonAt(t time.Time) Moon {
	days := t.Sub(referenceNewMoon).Hours() / 24
	age := math.Mod(days, SynodicMonthDays)
	if age < 0 {
		age += SynodicMonthDays
	}
	frac := age / SynodicMonthDays
	return Moon{Age: age, Fraction: frac, Name: moonName(frac)}
}

var moonNames = []string{
	"new moon",
	"waxing crescent",
	"first quarter",
	"waxing gibbous",
	"full moon",
	"waning gibbous",
	"last quarter",
	"waning crescent",
}

func moonName(frac float64) string {
	idx := int(math.Floor(frac*8+0.5)) % 8
	return moonNames[idx]
}

// Stats aggregates the cached trips.
func (s *State) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{Trips: len(s.trips)}
	st.TotalKm = lo.SumBy(s.trips, func(t *models.Trip) float64 { return t.Distance })
	st.TotalGain = lo.SumBy(s.trips, func(t *models.Trip) int { return t.ElevationGain })
	st.TotalDuration = lo.SumBy(s.trips, func(t *models.Trip) int64 { return t.Duration })
	if len(s.trips) > 0 {
		st.LongestKm = lo.MaxBy(s.trips, func(a, b *models.Trip) bool { return a.Distance > b.Distance }).Distance
	}
	return st
}

// Watch keeps the state in sync with hub events until ctx is done or the
// returned stop function is called. Stop waits for the listener to exit.
func (s *State) Watch(ctx context.Context, hub *notify.Hub) (stop func()) {
	l := hub.Subscribe(notify.DefaultBuffer)
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-l.C:
				if !ok {
					return
				}
				s.apply(ctx, ev)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
			hub.Unsubscribe(l)
		})
	}
}

func (s *State) apply(ctx context.Context, ev notify.Event) {
	switch e := ev.(type) {
	case notify.TripRecorded:
		if err := s.ReloadTrips(ctx); err != nil {
			s.log.Warn("trip reload failed", log.Int64("trip", e.TripID), log.ErrorField(err))
		}
	case notify.SampleArrived:
		s.SetUserPosition(Position{
			Latitude:  e.Lat,
			Longitude: e.Lng,
			Accuracy:  e.Accuracy,
			Heading:   e.Heading,
		})
	}
}
