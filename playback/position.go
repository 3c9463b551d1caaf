package playback

import (
	"github.com/playspan/playspan/reltime"
	"github.com/samber/mo"
)

// RelativeTime returns the seconds elapsed since the previous call, or since New for the first call.
func (c *Context) RelativeTime() float64 {
	c.clockMu.Lock()
	defer c.clockMu.Unlock()

	now := c.now()
	delta := now.Sub(c.lastTime)
	c.lastTime = now
	return delta.Seconds()
}

// StartTime returns the earliest timestamp of the media, 0 without a demuxer.
func (c *Context) StartTime() float64 {
	if c.Demuxer == nil {
		return 0
	}
	return c.Demuxer.StartTime()
}

// TimeLength returns the media length, 0 when unknown or without a demuxer.
func (c *Context) TimeLength() float64 {
	if c.Demuxer == nil {
		return 0
	}
	return c.Demuxer.Length()
}

// ChapterStart returns the start of a chapter, absent without a demuxer.
func (c *Context) ChapterStart(index int) mo.Option[float64] {
	if c.Demuxer == nil {
		return mo.None[float64]()
	}
	return c.Demuxer.ChapterStart(index)
}

// RelToAbs resolves t against the current media.
func (c *Context) RelToAbs(t reltime.Time, fallback mo.Option[float64]) mo.Option[float64] {
	return t.Resolve(fallback, c.TimeLength(), c.ChapterStart)
}

// PlayStartPTS returns the configured start position, if one resolves.
func (c *Context) PlayStartPTS() mo.Option[float64] {
	return c.Options.Range.PlayStart(c.TimeLength(), c.ChapterStart)
}

// PlayEndPTS returns the configured end position, if one resolves.
func (c *Context) PlayEndPTS() mo.Option[float64] {
	return c.Options.Range.PlayEnd(c.StartTime(), c.TimeLength(), c.ChapterStart)
}

// MainDemuxPTS returns the first known next-packet timestamp across the demuxer streams.
// External tracks are seeked to this position.
func (c *Context) MainDemuxPTS() mo.Option[float64] {
	if c.Demuxer == nil {
		return mo.None[float64]()
	}

	for _, s := range c.Demuxer.Streams() {
		if pts := s.NextPTS(); pts.IsPresent() {
			return pts
		}
	}
	return mo.None[float64]()
}

// CachePercent returns the cache fill level in whole percent.
func (c *Context) CachePercent() mo.Option[int] {
	if c.Cache == nil {
		return mo.None[int]()
	}

	size, fill := c.Cache.Size(), c.Cache.Fill()
	if size/100 <= 0 || fill < 0 {
		return mo.None[int]()
	}
	return mo.Some(int(fill / (size / 100)))
}

// CacheIdle reports whether the cache has stopped filling. False without a cache.
func (c *Context) CacheIdle() bool {
	if c.Cache == nil {
		return false
	}
	return c.Cache.Idle()
}
