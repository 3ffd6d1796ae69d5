package common

import "filecat/internal/organize"

// Phase is where a run shown in the TUI stands
type Phase int

const (
	Running Phase = iota
	Finished
	Failed
)

// ModelReader defines the interface that views use to read model state
type ModelReader interface {
	Root() string
	Phase() Phase
	Stage() organize.Stage
	Scanned() int
	Result() *organize.Result
	Err() error
	StatusView() string
	NarrativeView() string
	HelpView() string
}
