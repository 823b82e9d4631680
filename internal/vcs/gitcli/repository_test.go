package gitcli

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vilaca/profile-sync/internal/domain"
	"github.com/vilaca/profile-sync/internal/vcs"
)

var botIdentity = domain.CommitIdentity{Name: "sync-bot", Email: "sync-bot@example.test"}

func git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

// newRepo initialises a working tree on branch main with a bare remote named origin.
func newRepo(t *testing.T) (work, remote string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	t.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")

	root := t.TempDir()
	work = filepath.Join(root, "work")
	remote = filepath.Join(root, "remote.git")
	require.NoError(t, os.MkdirAll(work, 0755))

	git(t, root, "init", "--bare", remote)
	git(t, work, "init")
	git(t, work, "symbolic-ref", "HEAD", "refs/heads/main")
	git(t, work, "remote", "add", "origin", remote)
	return work, remote
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCommitCycle(t *testing.T) {
	work, _ := newRepo(t)
	repo := New(work)
	ctx := context.Background()

	writeFile(t, work, "data/info.json", `{"a": 1}`)

	status, err := repo.Status(ctx)
	require.NoError(t, err)
	assert.Contains(t, status, "data/")

	require.NoError(t, repo.ConfigureIdentity(ctx, botIdentity))
	require.NoError(t, repo.StageAll(ctx))
	require.NoError(t, repo.Commit(ctx, "feat: Update info"))

	status, err = repo.Status(ctx)
	require.NoError(t, err)
	assert.Empty(t, status)

	assert.Equal(t, "feat: Update info", git(t, work, "log", "-1", "--format=%s"))
	assert.Equal(t, "sync-bot <sync-bot@example.test>", git(t, work, "log", "-1", "--format=%an <%ae>"))
	assert.Equal(t, "sync-bot", git(t, work, "config", "--local", "user.name"))
}

func TestCommit_NothingToCommit(t *testing.T) {
	work, _ := newRepo(t)
	repo := New(work)
	ctx := context.Background()

	writeFile(t, work, "a.json", `{}`)
	require.NoError(t, repo.ConfigureIdentity(ctx, botIdentity))
	require.NoError(t, repo.StageAll(ctx))
	require.NoError(t, repo.Commit(ctx, "first"))

	require.NoError(t, repo.StageAll(ctx))
	err := repo.Commit(ctx, "second")

	assert.ErrorIs(t, err, vcs.ErrNothingToCommit)
}

func TestCurrentBranchAndPush(t *testing.T) {
	work, remote := newRepo(t)
	repo := New(work)
	ctx := context.Background()

	writeFile(t, work, "a.json", `{}`)
	require.NoError(t, repo.ConfigureIdentity(ctx, botIdentity))
	require.NoError(t, repo.StageAll(ctx))
	require.NoError(t, repo.Commit(ctx, "first"))

	branch, err := repo.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	require.NoError(t, repo.Push(ctx, "origin", branch))

	assert.Equal(t, git(t, work, "rev-parse", "HEAD"), git(t, remote, "rev-parse", "main"))
}

func TestPush_UnknownRemote(t *testing.T) {
	work, _ := newRepo(t)
	repo := New(work)
	ctx := context.Background()

	writeFile(t, work, "a.json", `{}`)
	require.NoError(t, repo.ConfigureIdentity(ctx, botIdentity))
	require.NoError(t, repo.StageAll(ctx))
	require.NoError(t, repo.Commit(ctx, "first"))

	err := repo.Push(ctx, "nowhere", "main")

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, []string{"push", "nowhere", "main"}, cmdErr.Args)
	assert.NotEmpty(t, cmdErr.Stderr)
}

func TestStageAll_SweepsPreviouslyStagedChanges(t *testing.T) {
	work, _ := newRepo(t)
	repo := New(work)
	ctx := context.Background()

	writeFile(t, work, "a.json", `{}`)
	require.NoError(t, repo.StageAll(ctx))

	// Commit without identity may fail or succeed depending on the host;
	// either way a later configured commit must leave the tree clean.
	_ = repo.Commit(ctx, "unconfigured")

	writeFile(t, work, "b.json", `{}`)
	require.NoError(t, repo.ConfigureIdentity(ctx, botIdentity))
	require.NoError(t, repo.StageAll(ctx))
	require.NoError(t, repo.Commit(ctx, "chore: Final commit for remaining changes"))

	status, err := repo.Status(ctx)
	require.NoError(t, err)
	assert.Empty(t, status)
}
