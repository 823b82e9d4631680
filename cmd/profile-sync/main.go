package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/vilaca/profile-sync/internal/api"
	"github.com/vilaca/profile-sync/internal/api/codeforces"
	"github.com/vilaca/profile-sync/internal/api/leetcode"
	"github.com/vilaca/profile-sync/internal/config"
	"github.com/vilaca/profile-sync/internal/domain"
	"github.com/vilaca/profile-sync/internal/service"
	"github.com/vilaca/profile-sync/internal/snapshot"
	"github.com/vilaca/profile-sync/internal/vcs"
	"github.com/vilaca/profile-sync/internal/vcs/gitcli"
	"github.com/vilaca/profile-sync/internal/vcs/gogit"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fallback, _ := zap.NewDevelopment()
		fallback.Sugar().Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fallback, _ := zap.NewDevelopment()
		fallback.Sugar().Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	// Wire up dependencies
	runner, err := buildRunner(cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialise: %v", err)
	}

	log.Infow("Starting automated profile data update",
		"codeforces_handle", cfg.CodeforcesHandle,
		"leetcode_username", cfg.LeetCodeUsername,
		"repo_dir", cfg.RepoDir,
		"git_backend", cfg.GitBackend,
	)

	report := runner.Run(context.Background())
	logSummary(log, report)
}

// buildRunner is the composition root: every component is created here and
// injected into the runner.
func buildRunner(cfg *config.Config, log *zap.SugaredLogger) (*service.Runner, error) {
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout(),
	}

	repo, err := buildRepository(cfg)
	if err != nil {
		return nil, err
	}

	publisher := service.NewPublisher(repo, cfg.CommitIdentity(), cfg.GitRemote, log)
	writer := snapshot.NewWriter()

	cfClient := codeforces.NewClient(api.ClientConfig{BaseURL: cfg.CodeforcesURL}, httpClient)
	lcClient := leetcode.NewClient(api.ClientConfig{BaseURL: cfg.LeetCodeURL}, httpClient)

	cfFetcher := service.NewFetcher(domain.SourceCodeforces,
		service.CodeforcesQueries(cfClient, cfg.CodeforcesHandle, service.CodeforcesPaths{
			Info:        cfg.SnapshotPath(cfg.CodeforcesInfoFile),
			Submissions: cfg.SnapshotPath(cfg.CodeforcesSubmissionsFile),
		}),
		writer, publisher, log.Named(domain.SourceCodeforces))

	lcFetcher := service.NewFetcher(domain.SourceLeetCode,
		service.LeetCodeQueries(lcClient, cfg.LeetCodeUsername, cfg.RecentSubmissionsLimit, service.LeetCodePaths{
			Info:              cfg.SnapshotPath(cfg.LeetCodeInfoFile),
			RecentSubmissions: cfg.SnapshotPath(cfg.LeetCodeRecentSubmissionsFile),
		}),
		writer, publisher, log.Named(domain.SourceLeetCode))

	return service.NewRunner(cfFetcher, lcFetcher, publisher, cfg.FetchDelay, log), nil
}

func buildRepository(cfg *config.Config) (vcs.Repository, error) {
	switch cfg.GitBackend {
	case config.GitBackendCLI:
		return gitcli.New(cfg.RepoDir), nil
	case config.GitBackendGoGit:
		return gogit.Open(cfg.RepoDir, &gogit.Auth{Token: cfg.GitPushToken})
	default:
		return nil, fmt.Errorf("unknown git backend %q", cfg.GitBackend)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = atomicLevel
	zcfg.DisableStacktrace = true
	return zcfg.Build()
}

// logSummary reports per-query outcomes. The exit status never reflects them.
func logSummary(log *zap.SugaredLogger, report *domain.RunReport) {
	for _, res := range report.Results {
		fields := []interface{}{
			"run_id", report.RunID,
			"source", res.Source,
			"query", res.Query,
			"outcome", res.Outcome,
			"committed", res.Committed,
		}
		if res.Err != nil {
			fields = append(fields, "error", res.Err)
		}
		if res.CommitErr != nil {
			fields = append(fields, "commit_error", res.CommitErr)
		}
		log.Infow("Query result", fields...)
	}

	if report.Pushed {
		log.Infow("Successfully pushed all changes", "run_id", report.RunID)
	} else {
		log.Warnw("Changes were not pushed", "run_id", report.RunID, "error", report.PushErr)
	}
}
