// ABOUTME: Positioning source abstraction delivering GPS fixes
// ABOUTME: Subscriptions are cancellable and stop delivering once cancelled

package positioning

import (
	"context"
	"sync"
	"time"
)

// Fix is one position report from a positioning source.
// Altitude and Speed are nil when the source does not report them.
type Fix struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	Altitude  *float64  `json:"alt,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Heading   float64   `json:"heading,omitempty"`
	Timestamp time.Time `json:"time"`
}

// Source produces fixes for subscribers.
type Source interface {
	Subscribe(ctx context.Context) (Subscription, error)
}

// Subscription is a live stream of fixes. Cancel is synchronous and idempotent:
// once it returns, the producer has stopped and Fixes is closed.
type Subscription interface {
	Fixes() <-chan Fix
	Errors() <-chan error
	Cancel()
}

// stream is the Subscription shared by the built-in sources.
type stream struct {
	fixes  chan Fix
	errs   chan error
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func newStream(parent context.Context) (*stream, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	return &stream{
		fixes:  make(chan Fix),
		errs:   make(chan error, 8),
		cancel: cancel,
		done:   make(chan struct{}),
	}, ctx
}

func (s *stream) Fixes() <-chan Fix    { return s.fixes }
func (s *stream) Errors() <-chan error { return s.errs }

func (s *stream) Cancel() {
	s.once.Do(s.cancel)
	<-s.done
}

// emit delivers a fix unless ctx is cancelled first.
func (s *stream) emit(ctx context.Context, fix Fix) bool {
	select {
	case s.fixes <- fix:
		return true
	case <-ctx.Done():
		return false
	}
}

// fail reports a non-fatal error. Errors are dropped when nobody is listening.
func (s *stream) fail(err error) {
	select {
	case s.errs <- err:
	default:
	}
}

// finish marks the producer as stopped. Must be deferred by the producer goroutine.
func (s *stream) finish() {
	s.cancel()
	close(s.fixes)
	close(s.done)
}
