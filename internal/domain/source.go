package domain

// Source constants
const (
	// SourceCodeforces represents the Codeforces statistics API
	SourceCodeforces = "codeforces"
	// SourceLeetCode represents the LeetCode GraphQL API
	SourceLeetCode = "leetcode"
)

// CommitIdentity is the author recorded on every commit of a run.
type CommitIdentity struct {
	Name  string
	Email string
}
