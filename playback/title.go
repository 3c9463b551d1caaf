package playback

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/muesli/reflow/truncate"
	"github.com/playspan/playspan/timestamp"
	"github.com/samber/mo"
)

// Property returns the current value of a named title property.
func (c *Context) Property(name string) (string, bool) {
	if v, ok := c.Options.Properties[name]; ok {
		return v, true
	}

	present := func(ts mo.Option[float64]) (string, bool) {
		if ts.IsAbsent() {
			return "", false
		}
		return timestamp.Format(ts), true
	}

	switch name {
	case "$":
		return "$", true
	case "path":
		return c.Options.Path, c.Options.Path != ""
	case "filename":
		if c.Options.Path == "" {
			return "", false
		}
		return filepath.Base(c.Options.Path), true
	case "media-title":
		if c.Options.MediaTitle != "" {
			return c.Options.MediaTitle, true
		}
		return c.Property("filename")
	case "duration":
		if length := c.TimeLength(); length != 0 {
			return timestamp.FormatSeconds(length), true
		}
	case "play-start":
		return present(c.PlayStartPTS())
	case "play-end":
		return present(c.PlayEndPTS())
	case "demux-pts":
		return present(c.MainDemuxPTS())
	case "cache":
		if p, ok := c.CachePercent().Get(); ok {
			return fmt.Sprintf("%d%%", p), true
		}
	}

	return "", false
}

// ExpandProperties substitutes ${name} and ${name:fallback} references in tmpl.
// Unknown properties without a fallback expand to the empty string.
func (c *Context) ExpandProperties(tmpl string) string {
	return os.Expand(tmpl, func(ref string) string {
		name, fallback, _ := strings.Cut(ref, ":")
		if v, ok := c.Property(name); ok {
			return v
		}
		return fallback
	})
}

// UpdateWindowTitle pushes the expanded window title to the video output when it changed.
func (c *Context) UpdateWindowTitle() error {
	if c.VideoOut == nil {
		return nil
	}

	title := c.ExpandProperties(c.Options.WindowTitle)
	if width := c.Options.TitleWidth; width > 0 {
		title = truncate.StringWithTail(title, uint(width), "…")
	}

	c.titleMu.Lock()
	defer c.titleMu.Unlock()

	if current, ok := c.windowTitle.Get(); ok && current == title {
		return nil
	}

	if err := c.VideoOut.SetWindowTitle(title); err != nil {
		return fmt.Errorf("set window title: %w", err)
	}
	c.windowTitle = mo.Some(title)
	return nil
}
