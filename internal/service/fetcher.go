package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/vilaca/profile-sync/internal/domain"
)

// ErrEmptyResult marks a well-formed response that carries nothing to persist.
var ErrEmptyResult = errors.New("empty result")

// SnapshotWriter persists a raw document at path.
type SnapshotWriter interface {
	Write(path string, raw json.RawMessage) error
}

// Committer records the current working-tree changes.
type Committer interface {
	Commit(ctx context.Context, message string) error
}

// Query is one retrieval of a source: fetch, check, persist, commit.
type Query struct {
	Name          string
	Path          string
	CommitMessage string

	// Retrieve performs the request and returns the raw document.
	Retrieve func(ctx context.Context) (json.RawMessage, error)

	// Check inspects the document. Errors wrapping ErrEmptyResult skip the
	// write; any other error fails the query.
	Check func(raw json.RawMessage) error
}

// Fetcher runs the queries of a single source in order.
// Queries are independent: a failed query does not stop the next one.
type Fetcher struct {
	source    string
	queries   []Query
	writer    SnapshotWriter
	committer Committer
	logger    Logger
}

// NewFetcher creates a fetcher for source.
func NewFetcher(source string, queries []Query, writer SnapshotWriter, committer Committer, logger Logger) *Fetcher {
	return &Fetcher{
		source:    source,
		queries:   queries,
		writer:    writer,
		committer: committer,
		logger:    logger,
	}
}

// Source returns the source name.
func (f *Fetcher) Source() string {
	return f.source
}

// Fetch runs every query and returns one result per query.
func (f *Fetcher) Fetch(ctx context.Context) []domain.StageResult {
	f.logger.Infof("Fetcher %s: starting (%d queries)", f.source, len(f.queries))

	results := make([]domain.StageResult, 0, len(f.queries))
	for _, q := range f.queries {
		results = append(results, f.runQuery(ctx, q))
	}
	return results
}

func (f *Fetcher) runQuery(ctx context.Context, q Query) domain.StageResult {
	result := domain.StageResult{
		Source: f.source,
		Query:  q.Name,
		Path:   q.Path,
	}

	raw, err := q.Retrieve(ctx)
	if err != nil {
		f.logger.Errorf("Fetcher %s: %s failed: %v", f.source, q.Name, err)
		result.Outcome = domain.OutcomeFailed
		result.Err = err
		return result
	}

	if q.Check != nil {
		if err := q.Check(raw); err != nil {
			result.Err = err
			if errors.Is(err, ErrEmptyResult) {
				f.logger.Warnf("Fetcher %s: %s returned no data, skipping write: %v", f.source, q.Name, err)
				result.Outcome = domain.OutcomeEmpty
				return result
			}
			f.logger.Errorf("Fetcher %s: %s returned an unusable document: %v", f.source, q.Name, err)
			result.Outcome = domain.OutcomeFailed
			return result
		}
	}

	if err := f.writer.Write(q.Path, raw); err != nil {
		f.logger.Errorf("Fetcher %s: failed to save %s to %s: %v", f.source, q.Name, q.Path, err)
		result.Outcome = domain.OutcomeFailed
		result.Err = err
		return result
	}
	result.Outcome = domain.OutcomeSuccess
	f.logger.Infof("Fetcher %s: saved %s to %s", f.source, q.Name, q.Path)

	if err := f.committer.Commit(ctx, q.CommitMessage); err != nil {
		result.CommitErr = err
		return result
	}
	result.Committed = true
	return result
}
