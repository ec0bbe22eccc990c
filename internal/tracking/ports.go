// ABOUTME: Collaborator interfaces the tracking engine depends on
// ABOUTME: Rendering, wake lock, trip persistence, target checks, confirmation and time

package tracking

import (
	"context"
	"time"

	"github.com/harper/wander/internal/models"
)

// Renderer draws the live trace.
type Renderer interface {
	// DrawSegment draws one colored segment between consecutive samples.
	DrawSegment(from, to models.TrackPoint, color string)
	// DrawPath draws a whole restored path at once.
	DrawPath(points []models.TrackPoint)
	// ClearTrace removes the live trace.
	ClearTrace()
}

// WakeLock keeps the device awake while recording. Failures are not fatal.
type WakeLock interface {
	Acquire() error
	Release() error
}

// TripWriter persists finished trips. Insert may move the trip to a free id
// and returns the id it was stored under.
type TripWriter interface {
	Insert(ctx context.Context, trip *models.Trip) (int64, error)
}

// TargetChecker is told about every accepted sample.
type TargetChecker interface {
	Check(p models.TrackPoint)
}

// Confirmer asks the user whether to resume an interrupted recording.
type Confirmer interface {
	ConfirmResume(snap *models.RecoverySnapshot) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(snap *models.RecoverySnapshot) bool

// ConfirmResume calls f.
func (f ConfirmFunc) ConfirmResume(snap *models.RecoverySnapshot) bool { return f(snap) }

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the device clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

type nopRenderer struct{}

func (nopRenderer) DrawSegment(models.TrackPoint, models.TrackPoint, string) {}
func (nopRenderer) DrawPath([]models.TrackPoint)                             {}
func (nopRenderer) ClearTrace()                                              {}

type nopWakeLock struct{}

func (nopWakeLock) Acquire() error { return nil }
func (nopWakeLock) Release() error { return nil }
