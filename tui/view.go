package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
	"github.com/playspan/playspan/color"
	"github.com/playspan/playspan/icon"
	"github.com/playspan/playspan/style"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

func (b *dumpBubble) View() string {
	lines := []string{
		b.viewHeader(),
		"",
		b.viewProgress(),
	}

	if p, ok := b.cache.Get(); ok {
		lines = append(lines, style.Faint(fmt.Sprintf("cache %d%%", p)))
	}

	if b.state != doneState {
		lines = append(lines, "", b.helpC.View(b.keymap))
	}

	return paddingStyle.Render(strings.Join(lines, "\n"))
}

func (b *dumpBubble) viewHeader() string {
	var status string
	switch b.state {
	case dumpingState:
		status = b.spinnerC.View() + " " + style.Title("Dumping")
	case stoppingState:
		status = b.spinnerC.View() + " " + style.Tag(style.Base, style.WarningColor)("Stopping")
	case doneState:
		status = style.Fg(color.Green)(icon.Get(icon.Success)) + " " + style.Tag(style.Base, style.SuccessColor)("Done")
	}

	if b.title == "" {
		return status
	}

	title := b.title
	if b.width > 0 {
		title = truncate.StringWithTail(title, uint(max(b.width-30, 10)), "…")
	}
	return status + " " + style.Fg(color.Purple)(title)
}

func (b *dumpBubble) viewProgress() string {
	written := humanize.IBytes(uint64(max(b.pos, 0)))

	percent, ok := b.percent().Get()
	if !ok {
		return fmt.Sprintf("%s / ?", written)
	}

	return b.progressC.ViewAs(percent) + "  " + fmt.Sprintf("%s / %s", written, humanize.IBytes(uint64(b.end)))
}
