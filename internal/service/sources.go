package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vilaca/profile-sync/internal/api/codeforces"
	"github.com/vilaca/profile-sync/internal/api/leetcode"
)

// Query names
const (
	QueryUserInfo          = "user info"
	QuerySubmissions       = "submissions"
	QueryProfile           = "profile"
	QueryRecentSubmissions = "recent submissions"
)

// CodeforcesAPI is the subset of the Codeforces client used by the fetcher.
type CodeforcesAPI interface {
	UserInfo(ctx context.Context, handle string) (json.RawMessage, error)
	UserStatus(ctx context.Context, handle string) (json.RawMessage, error)
}

// LeetCodeAPI is the subset of the LeetCode client used by the fetcher.
type LeetCodeAPI interface {
	UserProfile(ctx context.Context, username string) (json.RawMessage, error)
	RecentAcSubmissions(ctx context.Context, username string, limit int) (json.RawMessage, error)
}

// CodeforcesPaths are the snapshot files of the Codeforces source.
type CodeforcesPaths struct {
	Info        string
	Submissions string
}

// LeetCodePaths are the snapshot files of the LeetCode source.
type LeetCodePaths struct {
	Info              string
	RecentSubmissions string
}

// CodeforcesQueries returns the info and submissions queries for handle.
func CodeforcesQueries(client CodeforcesAPI, handle string, paths CodeforcesPaths) []Query {
	check := emptyOn(codeforces.CheckEnvelope, codeforces.ErrAPIFailed)

	return []Query{
		{
			Name:          QueryUserInfo,
			Path:          paths.Info,
			CommitMessage: fmt.Sprintf("feat: Update Codeforces user info for %s", handle),
			Retrieve: func(ctx context.Context) (json.RawMessage, error) {
				return client.UserInfo(ctx, handle)
			},
			Check: check,
		},
		{
			Name:          QuerySubmissions,
			Path:          paths.Submissions,
			CommitMessage: fmt.Sprintf("feat: Update Codeforces submissions for %s", handle),
			Retrieve: func(ctx context.Context) (json.RawMessage, error) {
				return client.UserStatus(ctx, handle)
			},
			Check: check,
		},
	}
}

// LeetCodeQueries returns the profile and recent submissions queries for username.
func LeetCodeQueries(client LeetCodeAPI, username string, limit int, paths LeetCodePaths) []Query {
	return []Query{
		{
			Name:          QueryProfile,
			Path:          paths.Info,
			CommitMessage: fmt.Sprintf("feat: Update LeetCode user info for %s", username),
			Retrieve: func(ctx context.Context) (json.RawMessage, error) {
				return client.UserProfile(ctx, username)
			},
			Check: emptyOn(leetcode.CheckProfile, leetcode.ErrGraphQL, leetcode.ErrNoMatchedUser),
		},
		{
			Name:          QueryRecentSubmissions,
			Path:          paths.RecentSubmissions,
			CommitMessage: fmt.Sprintf("feat: Update LeetCode recent submissions for %s", username),
			Retrieve: func(ctx context.Context) (json.RawMessage, error) {
				return client.RecentAcSubmissions(ctx, username, limit)
			},
			Check: emptyOn(leetcode.CheckRecentSubmissions, leetcode.ErrGraphQL, leetcode.ErrNoSubmissions),
		},
	}
}

// emptyOn tags the given sentinel errors of check as ErrEmptyResult.
func emptyOn(check func(json.RawMessage) error, sentinels ...error) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		err := check(raw)
		if err == nil {
			return nil
		}
		for _, sentinel := range sentinels {
			if errors.Is(err, sentinel) {
				return fmt.Errorf("%w: %w", ErrEmptyResult, err)
			}
		}
		return err
	}
}
