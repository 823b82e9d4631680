package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCodeforcesAPI struct {
	info, status json.RawMessage
	handles      []string
}

func (f *fakeCodeforcesAPI) UserInfo(ctx context.Context, handle string) (json.RawMessage, error) {
	f.handles = append(f.handles, handle)
	return f.info, nil
}

func (f *fakeCodeforcesAPI) UserStatus(ctx context.Context, handle string) (json.RawMessage, error) {
	f.handles = append(f.handles, handle)
	return f.status, nil
}

type fakeLeetCodeAPI struct {
	profile, submissions json.RawMessage
	limit                int
}

func (f *fakeLeetCodeAPI) UserProfile(ctx context.Context, username string) (json.RawMessage, error) {
	return f.profile, nil
}

func (f *fakeLeetCodeAPI) RecentAcSubmissions(ctx context.Context, username string, limit int) (json.RawMessage, error) {
	f.limit = limit
	return f.submissions, nil
}

func TestCodeforcesQueries(t *testing.T) {
	client := &fakeCodeforcesAPI{
		info:   json.RawMessage(`{"status":"OK","result":[]}`),
		status: json.RawMessage(`{"status":"FAILED","comment":"handle: not found"}`),
	}

	queries := CodeforcesQueries(client, "tourist", CodeforcesPaths{Info: "i.json", Submissions: "s.json"})

	require.Len(t, queries, 2)
	assert.Equal(t, "feat: Update Codeforces user info for tourist", queries[0].CommitMessage)
	assert.Equal(t, "feat: Update Codeforces submissions for tourist", queries[1].CommitMessage)
	assert.Equal(t, "i.json", queries[0].Path)
	assert.Equal(t, "s.json", queries[1].Path)

	raw, err := queries[0].Retrieve(context.Background())
	require.NoError(t, err)
	assert.NoError(t, queries[0].Check(raw))

	raw, err = queries[1].Retrieve(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, queries[1].Check(raw), ErrEmptyResult)

	assert.Equal(t, []string{"tourist", "tourist"}, client.handles)
}

func TestCodeforcesQueries_UndecodableIsNotEmpty(t *testing.T) {
	queries := CodeforcesQueries(&fakeCodeforcesAPI{}, "tourist", CodeforcesPaths{})

	err := queries[0].Check(json.RawMessage(`[1,2]`))

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyResult)
}

func TestLeetCodeQueries(t *testing.T) {
	client := &fakeLeetCodeAPI{
		profile:     json.RawMessage(`{"data":{"matchedUser":null}}`),
		submissions: json.RawMessage(`{"data":{"recentAcSubmissionList":[{"id":"1"}]}}`),
	}

	queries := LeetCodeQueries(client, "lee215", 20, LeetCodePaths{Info: "li.json", RecentSubmissions: "ls.json"})

	require.Len(t, queries, 2)
	assert.Equal(t, "feat: Update LeetCode user info for lee215", queries[0].CommitMessage)
	assert.Equal(t, "feat: Update LeetCode recent submissions for lee215", queries[1].CommitMessage)

	raw, err := queries[0].Retrieve(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, queries[0].Check(raw), ErrEmptyResult)

	raw, err = queries[1].Retrieve(context.Background())
	require.NoError(t, err)
	assert.NoError(t, queries[1].Check(raw))
	assert.Equal(t, 20, client.limit)
}

func TestLeetCodeQueries_GraphQLErrorsAreEmpty(t *testing.T) {
	queries := LeetCodeQueries(&fakeLeetCodeAPI{}, "lee215", 20, LeetCodePaths{})

	err := queries[1].Check(json.RawMessage(`{"errors":[{"message":"boom"}]}`))

	assert.ErrorIs(t, err, ErrEmptyResult)
}
