// Package player drives an external media player over IPC.
// The only backend is mpv through its JSON-IPC interface.
package player

import (
	"github.com/playspan/playspan/chapter"
	"github.com/playspan/playspan/playback"
	"github.com/samber/mo"
)

// Controller is the part of a player a Guard needs.
type Controller interface {
	// Seek moves playback to an absolute position in seconds.
	Seek(seconds float64) error

	// Quit ends playback.
	Quit() error
}

// Player is a running media player.
type Player interface {
	Controller
	playback.VideoOut

	// Play starts the player on target.
	Play(target string, opts PlayOptions) error

	// TimePos is the current playback position in seconds.
	TimePos() (float64, error)

	// Duration is the length of the loaded media in seconds.
	Duration() (float64, error)

	// Chapters is the chapter list of the loaded media.
	Chapters() (chapter.List, error)

	// Media snapshots the loaded media as a demuxer for the resolver.
	Media() (*Media, error)

	// Wait returns a channel that is closed when the player exits.
	Wait() <-chan struct{}

	// Close terminates the player and releases its resources.
	Close() error
}

// PlayOptions configure a playback session.
type PlayOptions struct {
	// MediaTitle overrides the title mpv shows for the media.
	MediaTitle string

	// Start and End are passed to the player as its initial range.
	Start mo.Option[float64]
	End   mo.Option[float64]
}

// Media is what the player reports about the loaded file.
type Media struct {
	Offset   float64
	Duration float64
	Chapters chapter.List
}

var _ playback.Demuxer = (*Media)(nil)

func (m *Media) Streams() []playback.Stream { return nil }

func (m *Media) StartTime() float64 { return m.Offset }

// Length returns 0 when the player does not know the duration.
func (m *Media) Length() float64 { return m.Duration }

func (m *Media) ChapterStart(index int) mo.Option[float64] {
	return m.Chapters.StartTime(index)
}
