// Package prompt renders the agent and task prompts from Go text templates.
package prompt

import (
	"bytes"
	"strings"
	"text/template"
)

// BackstoryData carries the substitution fields for agent backstories.
type BackstoryData struct {
	WorkspaceID string
	RepoName    string
	RepoNameDir string
	BaseCommit  string
}

// TaskData carries the substitution fields for task descriptions.
type TaskData struct {
	Issue       string
	IssueID     string
	RepoNameDir string
}

var (
	coderBackstoryTmpl    = template.Must(template.New("coder-backstory").Parse(coderBackstoryTemplate))
	coderTaskTmpl         = template.Must(template.New("coder-task").Parse(coderTaskTemplate))
	reviewerBackstoryTmpl = template.Must(template.New("reviewer-backstory").Parse(reviewerBackstoryTemplate))
	reviewerTaskTmpl      = template.Must(template.New("reviewer-task").Parse(reviewerTaskTemplate))
)

// RepoNameDir converts an "owner/repo" name into the directory the clone
// lives under inside the workspace, e.g. "ComposioHQ/composio" -> "/composio".
func RepoNameDir(repoName string) string {
	parts := strings.Split(repoName, "/")
	short := strings.TrimSpace(parts[len(parts)-1])
	return "/" + short
}

// CoderBackstory renders the coder agent's backstory.
func CoderBackstory(d BackstoryData) (string, error) {
	return render(coderBackstoryTmpl, d)
}

// CoderTask renders the coder task description.
func CoderTask(d TaskData) (string, error) {
	return render(coderTaskTmpl, d)
}

// ReviewerBackstory renders the reviewer agent's backstory.
func ReviewerBackstory(d BackstoryData) (string, error) {
	return render(reviewerBackstoryTmpl, d)
}

// ReviewerTask renders the reviewer task description.
func ReviewerTask(d TaskData) (string, error) {
	return render(reviewerTaskTmpl, d)
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
