// Package gitcli implements vcs.Repository by running the git binary.
package gitcli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/vilaca/profile-sync/internal/domain"
	"github.com/vilaca/profile-sync/internal/vcs"
)

// CommandError describes a failed git invocation.
type CommandError struct {
	Args   []string
	Err    error
	Stdout string
	Stderr string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Repository runs git commands inside dir.
type Repository struct {
	dir    string
	binary string
}

// New returns a Repository for the working tree at dir.
func New(dir string) *Repository {
	return &Repository{dir: dir, binary: "git"}
}

// ConfigureIdentity implements vcs.Repository.
func (r *Repository) ConfigureIdentity(ctx context.Context, identity domain.CommitIdentity) error {
	if _, err := r.run(ctx, "config", "user.name", identity.Name); err != nil {
		return err
	}
	_, err := r.run(ctx, "config", "user.email", identity.Email)
	return err
}

// StageAll implements vcs.Repository.
func (r *Repository) StageAll(ctx context.Context) error {
	_, err := r.run(ctx, "add", ".")
	return err
}

// Commit implements vcs.Repository.
func (r *Repository) Commit(ctx context.Context, message string) error {
	_, err := r.run(ctx, "commit", "-m", message)
	if err != nil && isNothingToCommit(err) {
		return fmt.Errorf("%w: %v", vcs.ErrNothingToCommit, err)
	}
	return err
}

// Status implements vcs.Repository.
func (r *Repository) Status(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch implements vcs.Repository.
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Push implements vcs.Repository.
func (r *Repository) Push(ctx context.Context, remote, branch string) error {
	_, err := r.run(ctx, "push", remote, branch)
	return err
}

func (r *Repository) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Dir = r.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), &CommandError{
			Args:   args,
			Err:    err,
			Stdout: stdout.String(),
			Stderr: stderr.String(),
		}
	}
	return stdout.String(), nil
}

// git reports an empty commit on stdout with exit status 1.
func isNothingToCommit(err error) bool {
	cmdErr, ok := err.(*CommandError)
	if !ok {
		return false
	}
	out := cmdErr.Stdout + cmdErr.Stderr
	return strings.Contains(out, "nothing to commit") ||
		strings.Contains(out, "nothing added to commit") ||
		strings.Contains(out, "no changes added to commit")
}

var _ vcs.Repository = (*Repository)(nil)
