package player

import (
	"fmt"
	"sync"

	"github.com/playspan/playspan/log"
	"github.com/playspan/playspan/timestamp"
	"github.com/samber/mo"
)

// startTolerance absorbs keyframe snapping when the player already honoured the start.
const startTolerance = 0.5

// Action is what a Guard did in response to a position update.
type Action int

const (
	ActionNone Action = iota
	ActionSeek
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionSeek:
		return "seek"
	case ActionQuit:
		return "quit"
	default:
		return "none"
	}
}

// Guard keeps playback inside a resolved play range. It seeks to the start
// once, on the first position it sees, and quits when the end is reached.
type Guard struct {
	controller Controller

	mu     sync.Mutex
	start  mo.Option[float64]
	end    mo.Option[float64]
	seeked bool
	quit   bool
}

// NewGuard creates a guard for the range [start, end). Absent bounds are not enforced.
func NewGuard(controller Controller, start, end mo.Option[float64]) *Guard {
	return &Guard{
		controller: controller,
		start:      start,
		end:        end,
	}
}

// SetRange replaces the bounds, for example once the media length became known.
// A start that was absent until now is enforced on the next position.
func (g *Guard) SetRange(start, end mo.Option[float64]) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.seeked = g.seeked && g.start.IsPresent()
	g.start = start
	g.end = end
}

// Range returns the enforced bounds.
func (g *Guard) Range() (start, end mo.Option[float64]) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.start, g.end
}

// Check inspects a playback position and seeks or quits if it is outside the range.
func (g *Guard) Check(pos float64) (Action, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.quit {
		return ActionNone, nil
	}

	if end, ok := g.end.Get(); ok && pos >= end {
		g.quit = true
		log.Infof("play end reached at %s", timestamp.FormatSeconds(pos))
		if err := g.controller.Quit(); err != nil {
			return ActionNone, fmt.Errorf("quit at play end: %w", err)
		}
		return ActionQuit, nil
	}

	if g.seeked {
		return ActionNone, nil
	}
	g.seeked = true

	if start, ok := g.start.Get(); ok && pos < start-startTolerance {
		log.Infof("seeking to play start: %s -> %s", timestamp.FormatSeconds(pos), timestamp.FormatSeconds(start))
		if err := g.controller.Seek(start); err != nil {
			return ActionNone, fmt.Errorf("seek to play start: %w", err)
		}
		return ActionSeek, nil
	}

	return ActionNone, nil
}

// Handle feeds time-pos events to Check. Other events are ignored.
func (g *Guard) Handle(e Event) (Action, error) {
	if e.Name != "time-pos" {
		return ActionNone, nil
	}

	pos, ok := e.Float()
	if !ok {
		return ActionNone, nil
	}
	return g.Check(pos)
}
