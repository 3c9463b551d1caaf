// Package tui provides the interactive terminal view shown while dumping a stream.
package tui

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/playspan/playspan/input"
	"github.com/playspan/playspan/log"
	"github.com/playspan/playspan/playback"
)

// DumpOptions configures the dump view.
type DumpOptions struct {
	Title string

	// Context is sampled for the stream position and the cache fill.
	Context *playback.Context

	// Queue receives a quit command when the user stops the dump.
	Queue *input.Queue

	// Dump performs the dump. It is run in its own goroutine and its
	// context is cancelled when the user forces the view to quit.
	Dump func(ctx context.Context) error
}

// dumpResult is shared by the program and RunDump so either side can wait on it.
type dumpResult struct {
	done chan struct{}
	err  error
}

func runInBackground(ctx context.Context, dump func(context.Context) error) *dumpResult {
	r := &dumpResult{done: make(chan struct{})}
	go func() {
		defer close(r.done)
		r.err = dump(ctx)
	}()
	return r
}

// RunDump runs the dump and renders its progress until it ends.
// The returned error is the one of the dump. A forced quit cancels the
// dump and returns context.Canceled without waiting for the dump loop,
// which may be stuck in a read.
func RunDump(ctx context.Context, options DumpOptions, programOptions ...tea.ProgramOption) error {
	dumpCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := runInBackground(dumpCtx, options.Dump)
	bubble := newDumpBubble(options, result)

	programOptions = append([]tea.ProgramOption{tea.WithOutput(os.Stderr), tea.WithContext(ctx)}, programOptions...)
	_, err := tea.NewProgram(bubble, programOptions...).Run()

	if bubble.forced {
		cancel()
		log.WithField("component", "tui").Warn("dump abandoned on user request")
		return context.Canceled
	}

	if err != nil {
		log.WithField("component", "tui").Warnf("dump view stopped: %v", err)
		if bubble.state == dumpingState {
			bubble.stop()
		}
		cancel()
		<-result.done
		return errors.Join(result.err, err)
	}

	<-result.done
	return result.err
}
