// Package reltime models relative playback positions and resolves them into absolute timestamps.
//
// A Time is one of: unset, absolute seconds, seconds before the end,
// a percentage of the total length, or a chapter index. Its payload can
// only be read through the accessor of its own kind.
package reltime

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/playspan/playspan/timestamp"
)

// ErrInvalid is returned when a relative time string cannot be parsed.
var ErrInvalid = errors.New("invalid relative time")

// Kind discriminates the unit a Time is expressed in.
type Kind uint8

const (
	Unset Kind = iota
	Absolute
	NegativeFromEnd
	Percent
	Chapter
)

func (k Kind) String() string {
	switch k {
	case Unset:
		return "unset"
	case Absolute:
		return "absolute"
	case NegativeFromEnd:
		return "negative"
	case Percent:
		return "percent"
	case Chapter:
		return "chapter"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Time is an immutable relative time specification. The zero value is Unset.
type Time struct {
	kind    Kind
	seconds float64
	percent float64
	chapter int
}

// At returns an absolute position in seconds.
func At(seconds float64) Time {
	return Time{kind: Absolute, seconds: seconds}
}

// BeforeEnd returns a position the given number of seconds before the end of the media.
func BeforeEnd(seconds float64) Time {
	return Time{kind: NegativeFromEnd, seconds: seconds}
}

// PercentOf returns a position expressed as a percentage (0-100) of the media length.
func PercentOf(percent float64) Time {
	return Time{kind: Percent, percent: percent}
}

// ChapterAt returns the start of the chapter with the given zero-based index.
func ChapterAt(index int) Time {
	return Time{kind: Chapter, chapter: index}
}

// Kind returns the discriminant.
func (t Time) Kind() Kind {
	return t.kind
}

// IsSet reports whether t carries any specification.
func (t Time) IsSet() bool {
	return t.kind != Unset
}

// Seconds returns the payload of an Absolute or NegativeFromEnd time.
func (t Time) Seconds() (float64, bool) {
	switch t.kind {
	case Absolute, NegativeFromEnd:
		return t.seconds, true
	default:
		return 0, false
	}
}

// Percent returns the payload of a Percent time.
func (t Time) Percent() (float64, bool) {
	if t.kind != Percent {
		return 0, false
	}
	return t.percent, true
}

// Chapter returns the zero-based index of a Chapter time.
func (t Time) Chapter() (int, bool) {
	if t.kind != Chapter {
		return 0, false
	}
	return t.chapter, true
}

// Parse reads the textual form of a relative time:
//
//	""  or "none"   unset
//	"50%"           percentage, 0 to 100
//	"#3"            third chapter (one-based in text)
//	"-1:30"         90 seconds before the end
//	"1:02:03.5"     absolute position
func Parse(s string) (Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return Time{}, nil
	}

	if rest, ok := strings.CutSuffix(s, "%"); ok {
		p, err := strconv.ParseFloat(rest, 64)
		if err != nil || math.IsNaN(p) || p < 0 || p > 100 {
			return Time{}, fmt.Errorf("%w: %q: percentage must be within 0-100", ErrInvalid, s)
		}
		return PercentOf(p), nil
	}

	if rest, ok := strings.CutPrefix(s, "#"); ok {
		n, err := strconv.Atoi(rest)
		switch {
		case errors.Is(err, strconv.ErrRange):
			return Time{}, fmt.Errorf("%w: %q: chapter number is too large", ErrInvalid, s)
		case err != nil:
			return Time{}, fmt.Errorf("%w: %q: chapter must be a number", ErrInvalid, s)
		case n < 1:
			return Time{}, fmt.Errorf("%w: %q: chapter numbers start at 1", ErrInvalid, s)
		}
		return ChapterAt(n - 1), nil
	}

	negative := false
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		negative = true
		s = rest
	}

	seconds, err := timestamp.Parse(s)
	if err != nil {
		return Time{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if negative {
		return BeforeEnd(seconds), nil
	}
	return At(seconds), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Time {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the textual form accepted by Parse.
func (t Time) String() string {
	switch t.kind {
	case Absolute:
		return formatFloat(t.seconds)
	case NegativeFromEnd:
		return "-" + formatFloat(t.seconds)
	case Percent:
		return formatFloat(t.percent) + "%"
	case Chapter:
		return "#" + strconv.Itoa(t.chapter+1)
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Time) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Time) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
