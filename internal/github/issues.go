package github

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v66/github"
)

// IssueDetails carries the fields of a GitHub issue the orchestrator
// cares about when building prompts.
type IssueDetails struct {
	Number int
	Title  string
	Body   string
}

// IssueFetcher retrieves issue details for a repository.
type IssueFetcher interface {
	FetchIssue(ctx context.Context, repo, issueID string) (*IssueDetails, error)
}

// APIIssueFetcher fetches issues through the GitHub REST API using an
// installation token from the App auth provider.
type APIIssueFetcher struct {
	auth AuthProvider

	// newClient is swapped out in tests.
	newClient func(token string) *gh.Client
}

// NewAPIIssueFetcher creates a fetcher backed by App authentication.
func NewAPIIssueFetcher(auth AuthProvider) *APIIssueFetcher {
	return &APIIssueFetcher{
		auth: auth,
		newClient: func(token string) *gh.Client {
			return gh.NewClient(nil).WithAuthToken(token)
		},
	}
}

// FetchIssue returns the title and body of an issue. repo is "owner/name"
// and issueID is the decimal issue number.
func (f *APIIssueFetcher) FetchIssue(ctx context.Context, repo, issueID string) (*IssueDetails, error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid repo format: %s (expected owner/repo)", repo)
	}

	number, err := strconv.Atoi(issueID)
	if err != nil {
		return nil, fmt.Errorf("invalid issue id %q: %w", issueID, err)
	}

	token, err := f.auth.GetInstallationToken(repo)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	client := f.newClient(token.Token)
	issue, _, err := client.Issues.Get(ctx, parts[0], parts[1], number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issue %s#%d: %w", repo, number, err)
	}

	return &IssueDetails{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		Body:   issue.GetBody(),
	}, nil
}
