package tui

type state int

const (
	dumpingState state = iota
	stoppingState
	doneState
)
