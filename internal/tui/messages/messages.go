package messages

import "filecat/internal/organize"

// StageMsg reports that the pipeline entered a new stage
type StageMsg struct {
	Stage organize.Stage
}

// ProgressMsg carries the running count of scanned files
type ProgressMsg struct {
	Scanned int
}

// DoneMsg is sent once when a run succeeds
type DoneMsg struct {
	Result *organize.Result
}

// ErrMsg is sent once when a run fails. Result holds whatever was finished
// before the failure and may be nil.
type ErrMsg struct {
	Err    error
	Result *organize.Result
}
