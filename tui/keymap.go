package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type dumpKeymap struct {
	quit, forceQuit, showHelp key.Binding
}

func newDumpKeymap() *dumpKeymap {
	return &dumpKeymap{
		quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "stop dumping"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "stop"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *dumpKeymap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit, k.showHelp}
}

func (k *dumpKeymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.quit, k.forceQuit, k.showHelp}}
}
