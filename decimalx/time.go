package decimalx

import (
	"time"

	"github.com/relvacode/iso8601"
)

// RequireUTC reports whether t carries a UTC (zero) offset, the "aware
// instant" invariant the time driver and instrument snapshot timestamps
// must satisfy.
func RequireUTC(t time.Time) bool {
	_, offset := t.Zone()
	return offset == 0
}

// ParseISO8601 parses a timestamp using the looser ISO-8601 grammar the
// instrument snapshot and quote/trade archives use (fractional seconds,
// missing colons in the offset, etc.), then normalizes it to UTC.
func ParseISO8601(s string) (time.Time, error) {
	t, err := iso8601.ParseString(s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
