// Package input turns terminal lines into playback commands.
package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/playspan/playspan/log"
	"github.com/playspan/playspan/playback"
	"golang.org/x/term"
)

// ErrUnknownCommand is returned by Parse for a command name it does not know.
var ErrUnknownCommand = errors.New("unknown command")

const defaultQueueSize = 16

// Queue is a bounded command queue. Push never blocks and Poll never waits.
type Queue struct {
	commands chan playback.Command
}

var _ playback.Input = (*Queue)(nil)

// NewQueue creates a queue that holds up to size pending commands.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Queue{commands: make(chan playback.Command, size)}
}

// Push enqueues cmd. It reports false when the queue is full and cmd was dropped.
func (q *Queue) Push(cmd playback.Command) bool {
	select {
	case q.commands <- cmd:
		return true
	default:
		return false
	}
}

// Poll implements playback.Input.
func (q *Queue) Poll() (playback.Command, bool) {
	select {
	case cmd := <-q.commands:
		return cmd, true
	default:
		return nil, false
	}
}

// Len is the number of pending commands.
func (q *Queue) Len() int {
	return len(q.commands)
}

// Quit stops the playback loop.
type Quit struct{}

func (Quit) Name() string { return "quit" }

func (Quit) Run(c *playback.Context) error {
	c.Stop()
	return nil
}

// Title replaces the media title and refreshes the window title.
type Title struct {
	Text string
}

func (Title) Name() string { return "title" }

func (t Title) Run(c *playback.Context) error {
	c.Options.MediaTitle = t.Text
	return c.UpdateWindowTitle()
}

// Parse reads a single command line. Blank lines yield no command and no error.
func Parse(line string) (playback.Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	name, rest, _ := strings.Cut(line, " ")
	switch strings.ToLower(name) {
	case "q", "quit", "stop":
		return Quit{}, nil
	case "title":
		return Title{Text: strings.TrimSpace(rest)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
}

// Listen parses lines from r into q until r is exhausted or ctx is done.
// Unparsable lines are logged and skipped.
func Listen(ctx context.Context, r io.Reader, q *Queue) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	logger := log.WithField("component", "input")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}

			cmd, err := Parse(line)
			if err != nil {
				logger.Warn(err)
				continue
			}
			if cmd == nil {
				continue
			}
			if !q.Push(cmd) {
				logger.Warnf("queue full, dropped %s", cmd.Name())
			}
		}
	}
}

// Interactive reports whether both stdin and stderr are terminals.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}
