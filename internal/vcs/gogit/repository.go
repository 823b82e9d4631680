// Package gogit implements vcs.Repository on go-git, without a git binary.
package gogit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goGit "github.com/go-git/go-git/v5"
	goGitConfig "github.com/go-git/go-git/v5/config"
	goGitPlumbing "github.com/go-git/go-git/v5/plumbing"
	goGitObject "github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/vilaca/profile-sync/internal/domain"
	"github.com/vilaca/profile-sync/internal/vcs"
)

// tokenUser is the username paired with a push token over HTTPS.
const tokenUser = "x-access-token"

// Auth holds optional push credentials.
type Auth struct {
	Token string
}

// Repository operates on the repository at path.
// The repository is reopened on every call so that changes made by other
// tools between calls are always observed.
type Repository struct {
	path string
	auth *Auth
	now  func() time.Time
}

// Open returns a Repository for the working tree at path.
// It fails if path is not inside a git repository.
func Open(path string, auth *Auth) (*Repository, error) {
	r := &Repository{path: path, auth: auth, now: time.Now}
	if _, err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

// ConfigureIdentity implements vcs.Repository.
func (r *Repository) ConfigureIdentity(ctx context.Context, identity domain.CommitIdentity) error {
	repo, err := r.open()
	if err != nil {
		return err
	}

	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("failed to read repository config: %w", err)
	}
	cfg.User.Name = identity.Name
	cfg.User.Email = identity.Email

	if err := repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("failed to write repository config: %w", err)
	}
	return nil
}

// StageAll implements vcs.Repository.
func (r *Repository) StageAll(ctx context.Context) error {
	_, wt, err := r.worktree()
	if err != nil {
		return err
	}

	if err := wt.AddWithOptions(&goGit.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// Commit implements vcs.Repository.
func (r *Repository) Commit(ctx context.Context, message string) error {
	repo, wt, err := r.worktree()
	if err != nil {
		return err
	}

	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	if !hasStagedChanges(status) {
		return vcs.ErrNothingToCommit
	}

	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("failed to read repository config: %w", err)
	}
	if cfg.User.Name == "" || cfg.User.Email == "" {
		return errors.New("commit identity is not configured")
	}

	signature := &goGitObject.Signature{
		Name:  cfg.User.Name,
		Email: cfg.User.Email,
		When:  r.now(),
	}

	if _, err := wt.Commit(message, &goGit.CommitOptions{Author: signature, Committer: signature}); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Status implements vcs.Repository.
func (r *Repository) Status(ctx context.Context) (string, error) {
	_, wt, err := r.worktree()
	if err != nil {
		return "", err
	}

	status, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("failed to get status: %w", err)
	}
	if status.IsClean() {
		return "", nil
	}
	return strings.TrimSpace(status.String()), nil
}

// CurrentBranch implements vcs.Repository.
// A detached HEAD is reported as "HEAD".
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	repo, err := r.open()
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get repository head: %w", err)
	}
	if !head.Name().IsBranch() {
		return string(goGitPlumbing.HEAD), nil
	}
	return head.Name().Short(), nil
}

// Push implements vcs.Repository.
func (r *Repository) Push(ctx context.Context, remote, branch string) error {
	repo, err := r.open()
	if err != nil {
		return err
	}

	ref := goGitPlumbing.NewBranchReferenceName(branch)
	opts := &goGit.PushOptions{
		RemoteName: remote,
		RefSpecs:   []goGitConfig.RefSpec{goGitConfig.RefSpec(fmt.Sprintf("%s:%s", ref, ref))},
		Auth:       r.authMethod(),
	}

	err = repo.PushContext(ctx, opts)
	if errors.Is(err, goGit.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to push %s to %s: %w", branch, remote, err)
	}
	return nil
}

func (r *Repository) open() (*goGit.Repository, error) {
	repo, err := goGit.PlainOpenWithOptions(r.path, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", r.path, err)
	}
	return repo, nil
}

func (r *Repository) worktree() (*goGit.Repository, *goGit.Worktree, error) {
	repo, err := r.open()
	if err != nil {
		return nil, nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	return repo, wt, nil
}

func (r *Repository) authMethod() transport.AuthMethod {
	if r.auth == nil || r.auth.Token == "" {
		return nil
	}
	return &http.BasicAuth{
		Username: tokenUser,
		Password: r.auth.Token,
	}
}

func hasStagedChanges(status goGit.Status) bool {
	for _, s := range status {
		if s.Staging != goGit.Unmodified && s.Staging != goGit.Untracked {
			return true
		}
	}
	return false
}

var _ vcs.Repository = (*Repository)(nil)
