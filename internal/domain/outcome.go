package domain

// Outcome classifies the result of a single fetch query.
type Outcome string

// Outcome constants
const (
	// OutcomeSuccess means the document was retrieved and persisted.
	OutcomeSuccess Outcome = "success"
	// OutcomeEmpty means the response was well-formed but carried no usable result.
	OutcomeEmpty Outcome = "empty"
	// OutcomeFailed means transport, HTTP, decoding or write failure.
	OutcomeFailed Outcome = "failed"
)

// StageResult records what happened to one query of one source.
// Fetch and commit are reported separately: a persisted snapshot whose
// commit failed is still OutcomeSuccess with a non-nil CommitErr.
type StageResult struct {
	Source    string
	Query     string
	Path      string
	Outcome   Outcome
	Err       error
	Committed bool
	CommitErr error
}

// Persisted returns true if the snapshot file was written.
func (r StageResult) Persisted() bool {
	return r.Outcome == OutcomeSuccess
}
