package report

import (
	"fmt"
	"time"

	"github.com/funcinfra/pipelinectl/internal/build"
)

// InvocationResult represents the outcome of a single pipeline invocation. It is filled in step by step while the
// invocation progresses and persisted as JSON once it has finished.
type InvocationResult struct {
	Name          string         `json:"name"`
	DisplayName   string         `json:"displayName"`
	Owner         string         `json:"owner,omitempty"`
	Type          string         `json:"type"`
	SourceBranch  string         `json:"sourceBranch"`
	ExecutionTime time.Time      `json:"executionTime"`
	Status        string         `json:"status"`
	TestResults   map[string]int `json:"testResults,omitempty"`
	BuildURL      string         `json:"buildUrl"`
	BuildID       int            `json:"buildId"`
}

// Queued records the build that was queued for this invocation. The build can only be recorded once.
func (r *InvocationResult) Queued(b build.Build, at time.Time) error {
	if r.BuildID != 0 {
		return fmt.Errorf("invocation %q is already associated with build %d", r.Name, r.BuildID)
	}

	r.BuildID = b.ID
	r.BuildURL = b.WebURL()
	r.ExecutionTime = at
	r.Status = string(b.Status)

	return nil
}

// Completed records the final state of the build.
func (r *InvocationResult) Completed(b build.Build) {
	r.Status = string(b.Result)
	if b.Result == "" {
		r.Status = string(b.Status)
	}
}

// Passed returns true if the build succeeded and no test failed.
func (r *InvocationResult) Passed() bool {
	return build.Result(r.Status).Passed() && r.TestResults["Failed"] == 0
}

// Reporter is the interface for rendering an invocation result.
type Reporter interface {
	// Add adds the result to the reporter. Results added this way can then be rendered out by calling Render().
	Add(r InvocationResult)
	// Render renders the results. The destination depends on the implementation.
	Render() error
}
