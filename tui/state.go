package tui

type state int

const (
	playingState state = iota
	queueState
	historyState
	errorState
)
