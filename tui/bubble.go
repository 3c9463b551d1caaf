package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/playspan/playspan/input"
	"github.com/playspan/playspan/log"
	"github.com/playspan/playspan/playback"
	"github.com/playspan/playspan/style"
	"github.com/samber/mo"
)

const (
	refreshInterval = 100 * time.Millisecond
	maxBarWidth     = 60
)

type (
	tickMsg     time.Time
	dumpDoneMsg struct{}
)

type dumpBubble struct {
	state  state
	keymap *dumpKeymap

	spinnerC  spinner.Model
	progressC progress.Model
	helpC     help.Model

	title   string
	context *playback.Context
	queue   *input.Queue
	result  *dumpResult

	// sampled stream state, relative to the start of the span
	pos, end int64
	cache    mo.Option[int]

	width int

	// forced is set when the user quit without waiting for the dump to stop.
	forced bool
}

func newDumpBubble(options DumpOptions, result *dumpResult) *dumpBubble {
	bubble := &dumpBubble{
		state:   dumpingState,
		keymap:  newDumpKeymap(),
		title:   options.Title,
		context: options.Context,
		queue:   options.Queue,
		result:  result,
		end:     -1,
		cache:   mo.None[int](),
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(style.AccentColor)

	bubble.progressC = progress.New(progress.WithDefaultGradient())
	bubble.progressC.Width = maxBarWidth

	return bubble
}

func (b *dumpBubble) Init() tea.Cmd {
	return tea.Batch(b.spinnerC.Tick, tick(), b.waitForDump())
}

func (b *dumpBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, b.keymap.forceQuit) && b.state == stoppingState:
			b.forced = true
			return b, tea.Quit
		case key.Matches(msg, b.keymap.quit, b.keymap.forceQuit):
			b.stop()
		case key.Matches(msg, b.keymap.showHelp):
			b.helpC.ShowAll = !b.helpC.ShowAll
		}
	case tickMsg:
		b.sample()
		if b.state == doneState {
			return b, nil
		}
		return b, tick()
	case dumpDoneMsg:
		b.sample()
		b.state = doneState
		return b, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, cmd
	}

	return b, nil
}

// stop asks the dump loop to finish after the current chunk.
func (b *dumpBubble) stop() {
	if b.state != dumpingState {
		return
	}

	if b.queue == nil || !b.queue.Push(input.Quit{}) {
		log.WithField("component", "tui").Warn("input queue is full, stop request dropped")
		return
	}
	b.state = stoppingState
}

func (b *dumpBubble) sample() {
	if b.context == nil || b.context.Source == nil {
		return
	}

	start, end := b.context.Source.Span()
	b.pos = b.context.Source.Position() - start
	if end >= 0 {
		b.end = end - start
	}
	b.cache = b.context.CachePercent()
}

// percent is the fraction of the span dumped so far, if the span end is known.
func (b *dumpBubble) percent() mo.Option[float64] {
	if b.end <= 0 {
		return mo.None[float64]()
	}
	return mo.Some(min(float64(b.pos)/float64(b.end), 1))
}

func (b *dumpBubble) resize(width int) {
	b.width = width
	b.helpC.Width = width
	b.progressC.Width = max(min(width-paddingStyle.GetHorizontalFrameSize(), maxBarWidth), 10)
}

func (b *dumpBubble) waitForDump() tea.Cmd {
	return func() tea.Msg {
		<-b.result.done
		return dumpDoneMsg{}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
