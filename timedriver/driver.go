// Package timedriver implements the deterministic time driver (component
// H): a lazy, monotonic sequence of aware instants over [start, end] at a
// fixed calendar frequency, the single clock the exchange, account and
// strategy all observe.
package timedriver

import (
	"time"

	"github.com/monkbacktest/engine/simerrors"
)

// Frequency is a supported tick cadence. Only calendar-aligned frequencies
// are implemented; intra-bar "tick" cadence is explicitly unsupported (see
// NewDriver).
type Frequency string

const (
	OneMinute Frequency = "1m"
	OneDay    Frequency = "1d"
)

func (f Frequency) step() (time.Duration, bool) {
	switch f {
	case OneMinute:
		return time.Minute, true
	case OneDay:
		return 24 * time.Hour, true
	default:
		return 0, false
	}
}

// Driver lazily produces a monotonic sequence of instants from start to
// end inclusive, advancing by one step per Next call. It holds no
// goroutine or channel: the caller drives it at its own pace, which is
// what lets the exchange and strategy share one "now" without races.
type Driver struct {
	cursor time.Time
	end    time.Time
	step   time.Duration
	// started is false before the first Next call; the cursor then holds
	// the instant to emit, not the last one emitted.
	started bool
}

// NewDriver validates (start, end, frequency) and returns a Driver
// positioned before the first instant. It fails with setting-error if
// start is not strictly before end or if either instant is naive (no UTC
// location), and with unsupported-frequency if frequency is not a
// calendar-aligned cadence this driver can produce — FREQUENCY=tick is
// named in configuration but has no defined intra-bar ordering, so it is
// rejected rather than silently approximated.
func NewDriver(start, end time.Time, frequency Frequency) (*Driver, error) {
	if frequency == "tick" {
		return nil, simerrors.Newf(simerrors.UnsupportedFrequency, "frequency %q has no defined intra-bar ordering", frequency)
	}
	step, ok := frequency.step()
	if !ok {
		return nil, simerrors.Newf(simerrors.UnsupportedFrequency, "frequency %q is not supported", frequency)
	}
	if !start.Before(end) {
		return nil, simerrors.Newf(simerrors.SettingError, "start %s must be strictly before end %s", start, end)
	}
	if start.Location() != time.UTC || end.Location() != time.UTC {
		return nil, simerrors.Newf(simerrors.SettingError, "start and end must be UTC-aware instants")
	}
	return &Driver{cursor: start, end: end, step: step}, nil
}

// Next returns the next instant and true, or the zero time and false once
// the sequence is exhausted (cursor would exceed end). Every returned
// instant is >= start, <= end, and strictly greater than the previous one
// returned.
func (d *Driver) Next() (time.Time, bool) {
	if !d.started {
		d.started = true
		if d.cursor.After(d.end) {
			return time.Time{}, false
		}
		return d.cursor, true
	}
	next := d.cursor.Add(d.step)
	if next.After(d.end) {
		return time.Time{}, false
	}
	d.cursor = next
	return d.cursor, true
}
