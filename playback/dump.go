package playback

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/playspan/playspan/filesystem"
	"github.com/playspan/playspan/log"
)

var (
	ErrNoSource   = errors.New("no stream to dump")
	ErrNoDumpPath = errors.New("no dump path configured")
)

const mib = 1024 * 1024

// StreamDump copies the source into Options.DumpPath until the source ends,
// ctx is cancelled or a command stops playback. Pending input commands are
// run after every chunk.
func (c *Context) StreamDump(ctx context.Context) error {
	if c.Source == nil {
		return ErrNoSource
	}
	if c.Options.DumpPath == "" {
		return ErrNoDumpPath
	}

	out, err := filesystem.Truncate(c.Options.DumpPath)
	if err != nil {
		return fmt.Errorf("open capture file: %w", err)
	}
	defer out.Close()

	logger := log.WithField("component", "dump")
	logger.Infof("dumping stream to %s", c.Options.DumpPath)

	buf := make([]byte, c.Options.ChunkSize)
	start, end := c.Source.Span()

	for !c.Stopped() {
		if err := ctx.Err(); err != nil {
			return err
		}

		if pos := c.Source.Position(); !c.Options.Quiet && (pos/mib)%2 == 1 {
			c.writeStatus(dumpStatus(pos-start, end-start, end >= 0))
		}

		n, readErr := c.Source.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return fmt.Errorf("write capture file: %w", err)
			}
		}

		c.RunPendingCommands()

		if errors.Is(readErr, io.EOF) {
			logger.Infof("stream ended at byte %d", c.Source.Position())
			break
		}
		if readErr != nil {
			return fmt.Errorf("read stream: %w", readErr)
		}
	}

	return nil
}

// RunPendingCommands drains the input queue, running every queued command.
func (c *Context) RunPendingCommands() {
	if c.Input == nil {
		return
	}

	for {
		cmd, ok := c.Input.Poll()
		if !ok {
			return
		}
		if err := cmd.Run(c); err != nil {
			log.WithField("command", cmd.Name()).Warnf("command failed: %v", err)
		}
	}
}

func dumpStatus(pos, end int64, endKnown bool) string {
	if !endKnown {
		return fmt.Sprintf("Dumping %d/?...", pos)
	}
	return fmt.Sprintf("Dumping %d/%d...", pos, end)
}

func (c *Context) writeStatus(line string) {
	if c.Status == nil {
		return
	}
	_, _ = fmt.Fprintf(c.Status, "\r%s", line)
}
