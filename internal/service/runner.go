package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vilaca/profile-sync/internal/domain"
)

// SourceFetcher retrieves and persists the snapshots of one source.
type SourceFetcher interface {
	Source() string
	Fetch(ctx context.Context) []domain.StageResult
}

// Runner drives one run through its states:
//
//	START → FETCH_SOURCE_A → FETCH_SOURCE_B → CHECK_STATUS → [COMMIT_IF_DIRTY] → PUSH → DONE
//
// Every state runs exactly once and no failure leaves the sequence.
type Runner struct {
	sourceA   SourceFetcher
	sourceB   SourceFetcher
	publisher *Publisher
	delay     time.Duration
	logger    Logger

	sleep    func(ctx context.Context, d time.Duration)
	newRunID func() string
}

// NewRunner creates a runner. delay is waited between the two sources so
// their commits get distinct timestamps.
func NewRunner(sourceA, sourceB SourceFetcher, publisher *Publisher, delay time.Duration, logger Logger) *Runner {
	return &Runner{
		sourceA:   sourceA,
		sourceB:   sourceB,
		publisher: publisher,
		delay:     delay,
		logger:    logger,
		sleep:     sleepContext,
		newRunID:  uuid.NewString,
	}
}

// Run executes a full run and always reaches StateDone.
func (r *Runner) Run(ctx context.Context) *domain.RunReport {
	report := &domain.RunReport{RunID: r.newRunID()}
	r.logger.Infof("Run %s: starting profile data update", report.RunID)

	state := domain.StateStart
	report.States = append(report.States, state)
	for state != domain.StateDone {
		state = r.step(ctx, state, report)
		report.States = append(report.States, state)
	}

	r.logger.Infof("Run %s: done (%d snapshots persisted, pushed: %t)", report.RunID, countPersisted(report.Results), report.Pushed)
	return report
}

// step executes state and returns the next one.
func (r *Runner) step(ctx context.Context, state domain.RunState, report *domain.RunReport) domain.RunState {
	switch state {
	case domain.StateStart:
		return domain.StateFetchSourceA

	case domain.StateFetchSourceA:
		report.Results = append(report.Results, r.sourceA.Fetch(ctx)...)
		r.sleep(ctx, r.delay)
		return domain.StateFetchSourceB

	case domain.StateFetchSourceB:
		report.Results = append(report.Results, r.sourceB.Fetch(ctx)...)
		return domain.StateCheckStatus

	case domain.StateCheckStatus:
		dirty, err := r.publisher.HasChanges(ctx)
		report.StatusErr = err
		report.Dirty = dirty
		if err == nil && dirty {
			return domain.StateCommitIfDirty
		}
		if err == nil {
			r.logger.Infof("Run %s: no changes to commit", report.RunID)
		}
		return domain.StatePush

	case domain.StateCommitIfDirty:
		report.SweepErr = r.publisher.sweep(ctx)
		return domain.StatePush

	case domain.StatePush:
		_, err := r.publisher.Push(ctx)
		report.PushErr = err
		report.Pushed = err == nil
		return domain.StateDone
	}

	return domain.StateDone
}

func countPersisted(results []domain.StageResult) int {
	n := 0
	for _, res := range results {
		if res.Persisted() {
			n++
		}
	}
	return n
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
