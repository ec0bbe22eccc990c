// ABOUTME: Daily target location and proximity checks during recording
// ABOUTME: Publishes a notification the first time each day the target is reached

package target

import (
	"fmt"
	"sync"
	"time"

	"github.com/harper/wander/internal/geo"
	"github.com/harper/wander/internal/log"
	"github.com/harper/wander/internal/models"
	"github.com/harper/wander/internal/notify"
)

// DefaultRadiusM is used when a target has no radius.
const DefaultRadiusM = 50.0

// Target is a named place to visit.
type Target struct {
	Name      string  `json:"name" mapstructure:"name" yaml:"name"`
	Latitude  float64 `json:"lat" mapstructure:"lat" yaml:"lat"`
	Longitude float64 `json:"lng" mapstructure:"lng" yaml:"lng"`
	RadiusM   float64 `json:"radius_m" mapstructure:"radius_m" yaml:"radius_m"`
}

// Validate checks the target's coordinates.
func (t Target) Validate() error {
	if err := models.ValidateName(t.Name); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	if err := models.ValidateCoordinates(t.Latitude, t.Longitude); err != nil {
		return fmt.Errorf("target %s: %w", t.Name, err)
	}
	return nil
}

// ForDay picks the target for a calendar day. The choice is stable for a given
// day and rotates through candidates.
func ForDay(day time.Time, candidates []Target) (Target, bool) {
	if len(candidates) == 0 {
		return Target{}, false
	}
	y, m, d := day.Date()
	n := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
	k := int64(len(candidates))
	// days before 1970 are negative
	return candidates[int(((n%k)+k)%k)], true
}

// Checker tests samples against the day's target.
type Checker struct {
	candidates []Target
	hub        *notify.Hub
	now        func() time.Time
	log        *log.Logger

	mu      sync.Mutex
	day     string
	current Target
	reached bool
}

// NewChecker creates a checker rotating through candidates.
func NewChecker(candidates []Target, hub *notify.Hub, now func() time.Time) *Checker {
	if now == nil {
		now = time.Now
	}
	return &Checker{
		candidates: candidates,
		hub:        hub,
		now:        now,
		log:        log.Default().Named("target"),
	}
}

// Current returns today's target.
func (c *Checker) Current() (Target, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollLocked()
	return c.current, len(c.candidates) > 0
}

// Reached reports whether today's target has been reached.
func (c *Checker) Reached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollLocked()
	return c.reached
}

// Check publishes TargetReached when p is within the target radius for the first time today.
func (c *Checker) Check(p models.TrackPoint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollLocked()
	if len(c.candidates) == 0 || c.reached {
		return
	}

	radius := c.current.RadiusM
	if radius <= 0 {
		radius = DefaultRadiusM
	}
	d := geo.HaversineM(p.Latitude, p.Longitude, c.current.Latitude, c.current.Longitude)
	if d > radius {
		return
	}

	c.reached = true
	c.log.Info("daily target reached", log.String("target", c.current.Name), log.Float64("meters", d))
	c.hub.Publish(notify.TargetReached{Name: c.current.Name, Distance: d})
}

func (c *Checker) rollLocked() {
	today := c.now().Format("2006-01-02")
	if today == c.day {
		return
	}
	c.day = today
	c.reached = false
	c.current, _ = ForDay(c.now(), c.candidates)
}
