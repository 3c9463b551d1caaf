// Package chapter provides chapter lists and the lookups the resolver needs from them.
package chapter

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Chapter is a titled subdivision of the media. End is 0 when unknown.
// A chapter whose start could not be read keeps its place in the list
// with StartUnknown set.
type Chapter struct {
	Title        string  `json:"title"`
	Start        float64 `json:"start"`
	End          float64 `json:"end,omitempty"`
	StartUnknown bool    `json:"start_unknown,omitempty"`
}

// StartTime returns the start, absent when it is unknown.
func (c Chapter) StartTime() mo.Option[float64] {
	if c.StartUnknown {
		return mo.None[float64]()
	}
	return mo.Some(c.Start)
}

// List is a set of chapters ordered by start time.
type List []Chapter

// New returns the chapters sorted by start time. It is meant for chapters
// with known starts; lists in container order are built with List directly.
func New(chapters ...Chapter) List {
	l := List(append([]Chapter(nil), chapters...))
	sort.SliceStable(l, func(i, j int) bool {
		return l[i].Start < l[j].Start
	})
	return l
}

// StartTime returns the start of the chapter at a zero-based index.
func (l List) StartTime(index int) mo.Option[float64] {
	if index < 0 || index >= len(l) {
		return mo.None[float64]()
	}
	return l[index].StartTime()
}

// Current returns the index of the chapter containing pos.
// Chapters with unknown starts are skipped.
func (l List) Current(pos float64) mo.Option[int] {
	current := mo.None[int]()
	for i, c := range l {
		if c.StartUnknown {
			continue
		}
		if c.Start > pos {
			break
		}
		current = mo.Some(i)
	}
	return current
}

// Find returns the index of the chapter whose title best matches query.
func (l List) Find(query string) mo.Option[int] {
	titles := lo.Map(l, func(c Chapter, _ int) string {
		return c.Title
	})

	ranks := fuzzy.RankFindNormalizedFold(query, titles)
	if len(ranks) == 0 {
		return mo.None[int]()
	}

	sort.Sort(ranks)
	return mo.Some(ranks[0].OriginalIndex)
}
