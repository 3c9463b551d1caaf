// Package timestamp defines the playback timestamp representation shared by the resolver and the player utilities.
//
// In-process code carries optional timestamps as mo.Option[float64] seconds.
// The NoPTS sentinel exists only for boundaries that need a plain number,
// such as IPC payloads and flag values.
package timestamp

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/mo"
)

// NoPTS is the reserved value meaning "no defined timestamp". It is smaller than any real timestamp.
const NoPTS = -0x1p63

// ErrInvalid is returned when a time string cannot be parsed.
var ErrInvalid = errors.New("invalid time string")

// None returns an absent timestamp.
func None() mo.Option[float64] {
	return mo.None[float64]()
}

// Some wraps a defined timestamp.
func Some(seconds float64) mo.Option[float64] {
	return mo.Some(seconds)
}

// FromPTS converts a sentinel-encoded value into an optional timestamp.
func FromPTS(pts float64) mo.Option[float64] {
	if pts == NoPTS || math.IsNaN(pts) {
		return None()
	}
	return Some(pts)
}

// ToPTS converts an optional timestamp into its sentinel encoding.
func ToPTS(ts mo.Option[float64]) float64 {
	return ts.OrElse(NoPTS)
}

// Parse reads a time string of the form [[hh:]mm:]ss[.frac].
// Minutes and seconds following a colon must be below 60.
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalid)
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	var total float64
	for i, part := range parts {
		last := i == len(parts)-1

		var (
			value float64
			err   error
		)
		if last {
			value, err = strconv.ParseFloat(part, 64)
		} else {
			var n uint64
			n, err = strconv.ParseUint(part, 10, 32)
			value = float64(n)
		}
		if err != nil || value < 0 || math.IsInf(value, 0) || math.IsNaN(value) {
			return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
		}

		if i > 0 && value >= 60 {
			return 0, fmt.Errorf("%w: %q: field out of range", ErrInvalid, s)
		}

		total = total*60 + value
	}

	return total, nil
}

// Format renders a timestamp as hh:mm:ss.mmm, or "none" when absent.
func Format(ts mo.Option[float64]) string {
	seconds, ok := ts.Get()
	if !ok {
		return "none"
	}
	return FormatSeconds(seconds)
}

// FormatSeconds renders seconds as hh:mm:ss.mmm with a leading '-' for negative values.
func FormatSeconds(seconds float64) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}

	ms := int64(math.Round(seconds * 1000))
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%s%02d:%02d:%02d.%03d", sign, h, m, s, ms%1000)
}
