package github

import (
	"fmt"
	"os"
	"os/exec"
)

// runRepoClone is swapped out in tests.
var runRepoClone = func(repo, branch, token, dest string) error {
	// Shallow single-branch clone; git flags go after the '--' separator.
	cmd := exec.Command("gh", "repo", "clone", repo, dest, "--", "-b", branch, "--depth=1", "--single-branch")
	if token != "" {
		// Set both GITHUB_TOKEN and GH_TOKEN for maximum compatibility with gh CLI
		cmd.Env = append(os.Environ(),
			fmt.Sprintf("GITHUB_TOKEN=%s", token),
			fmt.Sprintf("GH_TOKEN=%s", token),
		)
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("gh repo clone failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}

// CloneInto clones a GitHub repository at the given branch or commit ref
// into dest (an existing workspace directory), retrying transient
// failures with exponential backoff. The token is optional; public repos
// clone without one.
func CloneInto(repo, branch, token, dest string) error {
	if repo == "" {
		return fmt.Errorf("repo is required (owner/repo)")
	}
	if branch == "" {
		return fmt.Errorf("branch is required")
	}

	return retryWithBackoff(func() error {
		return runRepoClone(repo, branch, token, dest)
	})
}
