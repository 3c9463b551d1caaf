package reltime

import (
	"math"
	"strings"

	"github.com/samber/mo"
)

// ChapterLookup returns the start time of the chapter at a zero-based index,
// or an absent value when the index is invalid or there are no chapters.
type ChapterLookup func(index int) mo.Option[float64]

// NoChapters is a ChapterLookup for media without chapter metadata.
func NoChapters(int) mo.Option[float64] {
	return mo.None[float64]()
}

// Resolve converts t into an absolute timestamp.
//
// length is the total media length, where 0 means unknown. Every form that
// depends on an unavailable quantity yields fallback unchanged.
func (t Time) Resolve(fallback mo.Option[float64], length float64, chapters ChapterLookup) mo.Option[float64] {
	switch t.kind {
	case Absolute:
		return mo.Some(t.seconds)
	case NegativeFromEnd:
		if length != 0 {
			return mo.Some(math.Max(length-t.seconds, 0))
		}
	case Percent:
		if length != 0 {
			return mo.Some(length * (t.percent / 100))
		}
	case Chapter:
		if chapters == nil {
			break
		}
		if start, ok := chapters(t.chapter).Get(); ok && start >= 0 {
			return mo.Some(start)
		}
	case Unset:
	}

	return fallback
}

// Range is the configured play window. End and Length need not agree.
type Range struct {
	Start  Time `json:"start"`
	End    Time `json:"end"`
	Length Time `json:"length"`
}

// IsZero reports whether no part of the range is configured.
func (r Range) IsZero() bool {
	return !r.Start.IsSet() && !r.End.IsSet() && !r.Length.IsSet()
}

// PlayStart resolves the position playback should begin at, if any.
func (r Range) PlayStart(length float64, chapters ChapterLookup) mo.Option[float64] {
	return r.Start.Resolve(mo.None[float64](), length, chapters)
}

// PlayEnd resolves the position playback should stop at.
//
// An explicit End always wins over Length. A Length is measured from the
// resolved Start, which falls back to startPTS, the earliest timestamp of
// the media. The result is absent when no restriction applies or when a
// needed quantity is unknown.
func (r Range) PlayEnd(startPTS, length float64, chapters ChapterLookup) mo.Option[float64] {
	switch {
	case r.End.IsSet():
		return r.End.Resolve(mo.None[float64](), length, chapters)
	case r.Length.IsSet():
		start, startOK := r.Start.Resolve(mo.Some(startPTS), length, chapters).Get()
		span, spanOK := r.Length.Resolve(mo.None[float64](), length, chapters).Get()
		if startOK && spanOK {
			return mo.Some(start + span)
		}
	}

	return mo.None[float64]()
}

// String renders the configured parts of the range.
func (r Range) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []struct {
		name string
		t    Time
	}{
		{"start", r.Start},
		{"end", r.End},
		{"length", r.Length},
	} {
		if p.t.IsSet() {
			parts = append(parts, p.name+"="+p.t.String())
		}
	}

	if len(parts) == 0 {
		return "unrestricted"
	}

	return strings.Join(parts, " ")
}
