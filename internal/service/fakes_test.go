package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vilaca/profile-sync/internal/domain"
)

// fakeRepository is a test double for vcs.Repository that records every call.
type fakeRepository struct {
	calls []string

	configureErr error
	stageErr     error
	commitFunc   func(message string) error
	statusFunc   func() (string, error)
	branch       string
	branchErr    error
	pushErr      error
}

func (f *fakeRepository) ConfigureIdentity(ctx context.Context, identity domain.CommitIdentity) error {
	f.calls = append(f.calls, fmt.Sprintf("config %s <%s>", identity.Name, identity.Email))
	return f.configureErr
}

func (f *fakeRepository) StageAll(ctx context.Context) error {
	f.calls = append(f.calls, "add")
	return f.stageErr
}

func (f *fakeRepository) Commit(ctx context.Context, message string) error {
	f.calls = append(f.calls, "commit "+message)
	if f.commitFunc != nil {
		return f.commitFunc(message)
	}
	return nil
}

func (f *fakeRepository) Status(ctx context.Context) (string, error) {
	f.calls = append(f.calls, "status")
	if f.statusFunc != nil {
		return f.statusFunc()
	}
	return "", nil
}

func (f *fakeRepository) CurrentBranch(ctx context.Context) (string, error) {
	f.calls = append(f.calls, "branch")
	if f.branchErr != nil {
		return "", f.branchErr
	}
	if f.branch == "" {
		return "main", nil
	}
	return f.branch, nil
}

func (f *fakeRepository) Push(ctx context.Context, remote, branch string) error {
	f.calls = append(f.calls, fmt.Sprintf("push %s %s", remote, branch))
	return f.pushErr
}

// commits returns the messages passed to Commit, in order.
func (f *fakeRepository) commits() []string {
	var out []string
	for _, c := range f.calls {
		if len(c) > len("commit ") && c[:len("commit ")] == "commit " {
			out = append(out, c[len("commit "):])
		}
	}
	return out
}

// fakeWriter is a test double for SnapshotWriter.
type fakeWriter struct {
	written map[string]json.RawMessage
	err     error
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{written: make(map[string]json.RawMessage)}
}

func (f *fakeWriter) Write(path string, raw json.RawMessage) error {
	if f.err != nil {
		return f.err
	}
	f.written[path] = raw
	return nil
}

// fakeCommitter is a test double for Committer.
type fakeCommitter struct {
	messages []string
	err      error
}

func (f *fakeCommitter) Commit(ctx context.Context, message string) error {
	f.messages = append(f.messages, message)
	return f.err
}

// fakeFetcher is a test double for SourceFetcher.
type fakeFetcher struct {
	source  string
	results []domain.StageResult
	onFetch func()
}

func (f *fakeFetcher) Source() string {
	return f.source
}

func (f *fakeFetcher) Fetch(ctx context.Context) []domain.StageResult {
	if f.onFetch != nil {
		f.onFetch()
	}
	return f.results
}

func observedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}

var testIdentity = domain.CommitIdentity{Name: "sync-bot", Email: "sync-bot@example.test"}
