// ABOUTME: gpsd client positioning source
// ABOUTME: Streams TPV reports from a gpsd daemon over its JSON watch protocol

package positioning

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"time"
)

// DefaultGPSDAddr is gpsd's standard listen address.
const DefaultGPSDAddr = "127.0.0.1:2947"

const watchCommand = `?WATCH={"enable":true,"json":true};` + "\n"

// GPSD subscribes to a gpsd daemon.
type GPSD struct {
	addr        string
	dialTimeout time.Duration
}

var _ Source = (*GPSD)(nil)

// NewGPSD creates a gpsd source for addr (host:port).
func NewGPSD(addr string) *GPSD {
	if addr == "" {
		addr = DefaultGPSDAddr
	}
	return &GPSD{addr: addr, dialTimeout: 5 * time.Second}
}

// tpv is the subset of gpsd's TPV report we use.
type tpv struct {
	Class  string   `json:"class"`
	Mode   int      `json:"mode"`
	Time   string   `json:"time"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Alt    *float64 `json:"alt"`
	AltHAE *float64 `json:"altHAE"`
	Speed  *float64 `json:"speed"`
	Track  float64  `json:"track"`
	Eph    float64  `json:"eph"`
	Epx    float64  `json:"epx"`
	Epy    float64  `json:"epy"`
}

// Subscribe connects to gpsd and enables watch mode.
func (g *GPSD) Subscribe(ctx context.Context) (Subscription, error) {
	dialer := net.Dialer{Timeout: g.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", g.addr)
	if err != nil {
		return nil, fmt.Errorf("dial gpsd %s: %w", g.addr, err)
	}
	if _, err := conn.Write([]byte(watchCommand)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enable gpsd watch: %w", err)
	}

	sub, ctx := newStream(ctx)
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	go g.run(ctx, sub, conn)
	return sub, nil
}

func (g *GPSD) run(ctx context.Context, sub *stream, conn net.Conn) {
	defer sub.finish()

	lines, readErr := readLines(ctx, conn)
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
		fix, isFix, err := parseTPV(raw)
		if err != nil {
			sub.fail(err)
			continue
		}
		if !isFix {
			continue
		}
		if !sub.emit(ctx, fix) {
			return
		}
	}
	if err := <-readErr; err != nil && ctx.Err() == nil {
		sub.fail(fmt.Errorf("read gpsd: %w", err))
	}
}

// parseTPV converts one gpsd report. ok is false for non-TPV reports and
// reports without a 2D fix.
func parseTPV(line []byte) (Fix, bool, error) {
	var r tpv
	if err := json.Unmarshal(line, &r); err != nil {
		return Fix{}, false, fmt.Errorf("decode gpsd report: %w", err)
	}
	if r.Class != "TPV" || r.Mode < 2 || r.Lat == nil || r.Lon == nil {
		return Fix{}, false, nil
	}

	fix := Fix{
		Latitude:  *r.Lat,
		Longitude: *r.Lon,
		Speed:     r.Speed,
		Heading:   r.Track,
		Accuracy:  r.Eph,
	}
	if fix.Accuracy == 0 {
		fix.Accuracy = math.Max(r.Epx, r.Epy)
	}
	if r.Mode >= 3 {
		fix.Altitude = r.AltHAE
		if fix.Altitude == nil {
			fix.Altitude = r.Alt
		}
	}
	if ts, err := time.Parse(time.RFC3339Nano, r.Time); err == nil {
		fix.Timestamp = ts
	} else {
		fix.Timestamp = time.Now()
	}
	return fix, true, nil
}
