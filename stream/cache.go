package stream

import (
	"sync"

	"github.com/playspan/playspan/playback"
)

const maxFillChunk = 64 * 1024

// Cached reads ahead of its consumer into a bounded buffer.
// It implements both Stream and playback.Cache.
type Cached struct {
	src      Stream
	capacity int
	start    int64

	mu        sync.Mutex
	cond      *sync.Cond
	buf       []byte
	delivered int64
	err       error
	idle      bool
	closed    bool
}

var _ playback.Cache = (*Cached)(nil)

// NewCached wraps src with a read-ahead buffer of capacity bytes and starts filling it.
func NewCached(src Stream, capacity int) *Cached {
	if capacity <= 0 {
		capacity = maxFillChunk
	}

	c := &Cached{
		src:      src,
		capacity: capacity,
		start:    src.Position(),
	}
	c.cond = sync.NewCond(&c.mu)

	go c.fill()
	return c
}

func (c *Cached) fill() {
	chunk := make([]byte, min(c.capacity, maxFillChunk))

	for {
		c.mu.Lock()
		for len(c.buf) >= c.capacity && !c.closed {
			c.idle = true
			c.cond.Wait()
		}
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.idle = false
		room := c.capacity - len(c.buf)
		c.mu.Unlock()

		n, err := c.src.Read(chunk[:min(room, len(chunk))])

		c.mu.Lock()
		c.buf = append(c.buf, chunk[:n]...)
		if err != nil {
			c.err = err
			c.idle = true
		}
		c.cond.Broadcast()
		c.mu.Unlock()

		if err != nil {
			return
		}
	}
}

// Read returns buffered bytes, blocking until some are available or the source ended.
func (c *Cached) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.buf) == 0 && c.err == nil && !c.closed {
		c.cond.Wait()
	}

	if c.closed {
		return 0, ErrClosed
	}

	if len(c.buf) > 0 {
		n := copy(p, c.buf)
		c.buf = c.buf[n:]
		c.delivered += int64(n)
		c.cond.Broadcast()
		return n, nil
	}

	return 0, c.err
}

// Position is the offset of the next byte handed to the consumer.
func (c *Cached) Position() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start + c.delivered
}

func (c *Cached) Span() (int64, int64) {
	return c.src.Span()
}

// Size implements playback.Cache.
func (c *Cached) Size() int64 {
	return int64(c.capacity)
}

// Fill implements playback.Cache.
func (c *Cached) Fill() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.buf))
}

// Idle implements playback.Cache. The cache is idle when full or when the source has ended.
func (c *Cached) Idle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idle
}

// Close stops filling and closes the source.
func (c *Cached) Close() error {
	c.mu.Lock()
	c.closed = true
	c.cond.Broadcast()
	c.mu.Unlock()

	return c.src.Close()
}
