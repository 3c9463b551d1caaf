// Package playback holds the player-side state that relative times are resolved against.
//
// A Context bundles the play options with the collaborators the player
// talks to: demuxer, stream cache, video output, input queue and the raw
// source used for stream dumps. Every collaborator is optional; a nil
// collaborator is treated as absent and queries degrade to neutral values.
package playback

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playspan/playspan/reltime"
	"github.com/samber/mo"
)

// Stream is a single elementary stream of the demuxer.
type Stream interface {
	// NextPTS returns the timestamp of the next queued packet, if known.
	NextPTS() mo.Option[float64]
}

// Demuxer exposes the media-level facts the resolver depends on.
type Demuxer interface {
	Streams() []Stream
	// StartTime is the earliest valid timestamp of the media.
	StartTime() float64
	// Length is the total duration, 0 when unknown (live or not probed yet).
	Length() float64
	// ChapterStart returns the start of the chapter at a zero-based index.
	ChapterStart(index int) mo.Option[float64]
}

// Cache reports the state of the stream read-ahead cache. Size and Fill are -1 when unknown.
type Cache interface {
	Size() int64
	Fill() int64
	Idle() bool
}

// VideoOut is the window the title is pushed to.
type VideoOut interface {
	SetWindowTitle(title string) error
}

// Command is a queued user command.
type Command interface {
	Name() string
	Run(c *Context) error
}

// Input hands out pending commands without blocking.
type Input interface {
	Poll() (Command, bool)
}

// Source is the raw byte stream consumed by StreamDump.
type Source interface {
	io.Reader
	// Position is the absolute byte offset of the next read.
	Position() int64
	// Span returns the first and one-past-last byte offsets; end is -1 when unknown.
	Span() (start, end int64)
}

// Options is the configuration a Context is created with.
type Options struct {
	Range reltime.Range

	// Path and MediaTitle feed the window title properties.
	Path       string
	MediaTitle string

	WindowTitle string
	TitleWidth  int

	DumpPath  string
	ChunkSize int
	Quiet     bool

	// Properties are extra ${name} values available to the title template.
	Properties map[string]string
}

const defaultChunkSize = 64 * 1024

// Context is the player state shared by the controller utilities.
type Context struct {
	Options Options

	Demuxer  Demuxer
	Cache    Cache
	VideoOut VideoOut
	Input    Input
	Source   Source

	// Status receives transient status lines. Nil disables them.
	Status io.Writer

	now      func() time.Time
	clockMu  sync.Mutex
	lastTime time.Time

	titleMu     sync.Mutex
	windowTitle mo.Option[string]

	stopped atomic.Bool
}

// New creates a Context with the given options and no collaborators.
func New(opts Options) *Context {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}

	c := &Context{
		Options: opts,
		now:     time.Now,
	}
	c.lastTime = c.now()
	return c
}

// Stop asks blocking loops such as StreamDump to return.
func (c *Context) Stop() {
	c.stopped.Store(true)
}

// Stopped reports whether Stop has been called.
func (c *Context) Stopped() bool {
	return c.stopped.Load()
}
