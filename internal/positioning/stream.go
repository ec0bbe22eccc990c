// ABOUTME: Newline-delimited JSON positioning source
// ABOUTME: Reads fixes from files or stdin, optionally paced by their timestamps

package positioning

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Opener returns a fresh reader for each subscription.
type Opener func() (io.ReadCloser, error)

// StreamSource decodes one JSON Fix per line.
type StreamSource struct {
	open     Opener
	realtime bool
	clock    func() time.Time
}

var _ Source = (*StreamSource)(nil)

// StreamOption configures a StreamSource.
type StreamOption func(*StreamSource)

// WithRealtime paces delivery by the gaps between fix timestamps.
func WithRealtime() StreamOption {
	return func(s *StreamSource) { s.realtime = true }
}

// WithClock stamps fixes that carry no timestamp.
func WithClock(now func() time.Time) StreamOption {
	return func(s *StreamSource) { s.clock = now }
}

// NewStreamSource creates a source reading from open.
func NewStreamSource(open Opener, opts ...StreamOption) *StreamSource {
	s := &StreamSource{open: open, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FileOpener opens path for each subscription. "-" means stdin.
func FileOpener(path string) Opener {
	return func() (io.ReadCloser, error) {
		if path == "-" {
			return io.NopCloser(os.Stdin), nil
		}
		f, err := os.Open(path) //nolint:gosec // user-supplied track file
		if err != nil {
			return nil, fmt.Errorf("open fix stream: %w", err)
		}
		return f, nil
	}
}

// Subscribe starts reading fixes.
func (s *StreamSource) Subscribe(ctx context.Context) (Subscription, error) {
	rc, err := s.open()
	if err != nil {
		return nil, err
	}

	sub, ctx := newStream(ctx)
	go func() {
		<-ctx.Done()
		_ = rc.Close()
	}()
	go s.run(ctx, sub, rc)
	return sub, nil
}

func (s *StreamSource) run(ctx context.Context, sub *stream, r io.Reader) {
	defer sub.finish()

	lines, readErr := readLines(ctx, r)
	var prev time.Time
	n := 0
	for {
		var raw []byte
		var ok bool
		select {
		case raw, ok = <-lines:
		case <-ctx.Done():
			return
		}
		if !ok {
			break
		}
		n++
		if len(raw) == 0 {
			continue
		}
		var fix Fix
		if err := json.Unmarshal(raw, &fix); err != nil {
			sub.fail(fmt.Errorf("decode fix on line %d: %w", n, err))
			continue
		}
		if fix.Timestamp.IsZero() {
			fix.Timestamp = s.clock()
		} else if s.realtime && !prev.IsZero() {
			if gap := fix.Timestamp.Sub(prev); gap > 0 {
				select {
				case <-time.After(gap):
				case <-ctx.Done():
					return
				}
			}
		}
		prev = fix.Timestamp
		if !sub.emit(ctx, fix) {
			return
		}
	}
	if err := <-readErr; err != nil && ctx.Err() == nil {
		sub.fail(fmt.Errorf("read fix stream: %w", err))
	}
}

// readLines scans r on its own goroutine so a blocked read (stdin) never
// holds up cancellation. The error channel yields once after lines closes.
func readLines(ctx context.Context, r io.Reader) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}
