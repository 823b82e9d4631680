package domain

// RunState is a stage of the run state machine.
type RunState string

// Run states, in the order a run visits them.
const (
	StateStart         RunState = "START"
	StateFetchSourceA  RunState = "FETCH_SOURCE_A"
	StateFetchSourceB  RunState = "FETCH_SOURCE_B"
	StateCheckStatus   RunState = "CHECK_STATUS"
	StateCommitIfDirty RunState = "COMMIT_IF_DIRTY"
	StatePush          RunState = "PUSH"
	StateDone          RunState = "DONE"
)

// RunReport summarizes a finished run.
type RunReport struct {
	RunID   string
	States  []RunState
	Results []StageResult

	// Dirty is true if the status check reported uncommitted changes.
	Dirty     bool
	StatusErr error
	SweepErr  error
	Pushed    bool
	PushErr   error
}

// Final returns the last state the run reached.
func (r *RunReport) Final() RunState {
	if len(r.States) == 0 {
		return StateStart
	}
	return r.States[len(r.States)-1]
}

// ResultsFor returns the stage results of a single source.
func (r *RunReport) ResultsFor(source string) []StageResult {
	var out []StageResult
	for _, res := range r.Results {
		if res.Source == source {
			out = append(out, res)
		}
	}
	return out
}
