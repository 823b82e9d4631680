// Package vcs defines the version-control operations the publisher relies on.
package vcs

import (
	"context"
	"errors"

	"github.com/vilaca/profile-sync/internal/domain"
)

// ErrNothingToCommit is returned by Commit when the index has no changes.
var ErrNothingToCommit = errors.New("nothing to commit")

// Repository is a working tree that can be committed and pushed.
// Implementations must not keep state between calls beyond what lives in
// the repository itself.
type Repository interface {
	// ConfigureIdentity sets the local author name and email.
	ConfigureIdentity(ctx context.Context, identity domain.CommitIdentity) error

	// StageAll stages every change in the working tree, including deletions.
	StageAll(ctx context.Context) error

	// Commit records the staged changes with message.
	Commit(ctx context.Context, message string) error

	// Status returns the working-tree status in porcelain form.
	// An empty string means the tree is clean.
	Status(ctx context.Context) (string, error)

	// CurrentBranch returns the short name of the checked-out branch.
	CurrentBranch(ctx context.Context) (string, error)

	// Push pushes branch to the same-named branch on remote.
	Push(ctx context.Context, remote, branch string) error
}
