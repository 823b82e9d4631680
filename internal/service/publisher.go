package service

import (
	"context"
	"errors"

	"github.com/vilaca/profile-sync/internal/domain"
	"github.com/vilaca/profile-sync/internal/vcs"
)

// SweepCommitMessage is used for changes no fetcher committed.
const SweepCommitMessage = "chore: Final commit for remaining changes"

// Publisher commits snapshot changes and pushes them.
// Every failure is logged and returned; none is fatal to a run.
type Publisher struct {
	repo     vcs.Repository
	identity domain.CommitIdentity
	remote   string
	logger   Logger
}

// FinalizeResult reports what Finalize did.
type FinalizeResult struct {
	Dirty     bool
	StatusErr error
	SweepErr  error
	Branch    string
	PushErr   error
}

// NewPublisher creates a publisher for repo.
func NewPublisher(repo vcs.Repository, identity domain.CommitIdentity, remote string, logger Logger) *Publisher {
	return &Publisher{
		repo:     repo,
		identity: identity,
		remote:   remote,
		logger:   logger,
	}
}

// Commit configures the bot identity, stages everything and commits.
// No rollback: a failed commit leaves the index staged for the next attempt.
func (p *Publisher) Commit(ctx context.Context, message string) error {
	if err := p.repo.ConfigureIdentity(ctx, p.identity); err != nil {
		p.logger.Errorf("Publisher: failed to configure commit identity: %v", err)
		return err
	}

	if err := p.repo.StageAll(ctx); err != nil {
		p.logger.Errorf("Publisher: failed to stage changes: %v", err)
		return err
	}

	if err := p.repo.Commit(ctx, message); err != nil {
		if errors.Is(err, vcs.ErrNothingToCommit) {
			p.logger.Warnf("Publisher: nothing to commit for '%s'", message)
		} else {
			p.logger.Errorf("Publisher: commit '%s' failed: %v", message, err)
		}
		return err
	}

	p.logger.Infof("Publisher: committed '%s'", message)
	return nil
}

// HasChanges reports whether the working tree has uncommitted changes.
func (p *Publisher) HasChanges(ctx context.Context) (bool, error) {
	status, err := p.repo.Status(ctx)
	if err != nil {
		p.logger.Errorf("Publisher: failed to query status: %v", err)
		return false, err
	}
	return status != "", nil
}

// Push pushes the current branch to the configured remote.
func (p *Publisher) Push(ctx context.Context) (string, error) {
	branch, err := p.repo.CurrentBranch(ctx)
	if err != nil {
		p.logger.Errorf("Publisher: failed to determine current branch: %v", err)
		return "", err
	}

	if err := p.repo.Push(ctx, p.remote, branch); err != nil {
		p.logger.Errorf("Publisher: push of %s to %s failed: %v", branch, p.remote, err)
		return branch, err
	}

	p.logger.Infof("Publisher: pushed %s to %s", branch, p.remote)
	return branch, nil
}

// Finalize sweeps uncommitted changes into one commit, then pushes.
// A failed status query skips the sweep but still attempts the push.
func (p *Publisher) Finalize(ctx context.Context) FinalizeResult {
	var result FinalizeResult

	dirty, err := p.HasChanges(ctx)
	result.StatusErr = err
	if err == nil && dirty {
		result.Dirty = true
		result.SweepErr = p.sweep(ctx)
	} else if err == nil {
		p.logger.Infof("Publisher: no changes to commit")
	}

	result.Branch, result.PushErr = p.Push(ctx)
	return result
}

func (p *Publisher) sweep(ctx context.Context) error {
	p.logger.Infof("Publisher: changes detected, making final commit")
	return p.Commit(ctx, SweepCommitMessage)
}
