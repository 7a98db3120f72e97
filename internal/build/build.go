package build

import (
	"context"
)

// Build represents a single run of a remote pipeline definition.
type Build struct {
	ID          int    `json:"id"`
	BuildNumber string `json:"buildNumber"`
	Status      Status `json:"status"`
	Result      Result `json:"result"`
	// URL is the REST resource of the build and is the URL that is polled for status updates.
	URL   string `json:"url"`
	Links struct {
		Web struct {
			Href string `json:"href"`
		} `json:"web"`
	} `json:"_links"`
}

// WebURL returns the human-facing URL of the build, falling back to the REST URL.
func (b Build) WebURL() string {
	if b.Links.Web.Href != "" {
		return b.Links.Web.Href
	}
	return b.URL
}

// Status is the lifecycle state of a build.
type Status string

const (
	StatusNotStarted Status = "notStarted"
	StatusInProgress Status = "inProgress"
	StatusCompleted  Status = "completed"
	StatusCancelling Status = "cancelling"
	StatusPostponed  Status = "postponed"
	StatusNone       Status = "none"
)

// Pending returns true while the build has not reached a terminal state.
func (s Status) Pending() bool {
	return s == StatusNotStarted || s == StatusInProgress
}

// Result is the outcome of a completed build.
type Result string

const (
	ResultSucceeded          Result = "succeeded"
	ResultPartiallySucceeded Result = "partiallySucceeded"
	ResultFailed             Result = "failed"
	ResultCanceled           Result = "canceled"
	ResultNone               Result = "none"
)

// Passed returns true if the build ended without failures.
func (r Result) Passed() bool {
	return r == ResultSucceeded
}

// Reader is the interface for reading the current state of a build.
type Reader interface {
	// GetBuild returns the build found at url.
	GetBuild(ctx context.Context, url string) (Build, error)
}
