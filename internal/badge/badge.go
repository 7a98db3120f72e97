// Package badge describes the status badges published for every pipeline invocation.
//
// Images are rendered by an external badge service; this package only decides what a badge says and where to fetch
// it from.
package badge

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/funcinfra/pipelinectl/internal/build"
	"github.com/funcinfra/pipelinectl/internal/errkind"
)

// DefaultServiceURL is the badge service used when none is configured.
const DefaultServiceURL = "https://img.shields.io"

// File names of the rendered badges.
const (
	LastRunFile = "last-run.svg"
	ResultFile  = "pipeline-result.svg"
	TestsFile   = "test-results.svg"
)

// Color is the background color of the badge's content half.
type Color string

const (
	Red    Color = "red"
	Green  Color = "green"
	Orange Color = "orange"
	Blue   Color = "blue"
)

// Badge is a label/content/color triple.
type Badge struct {
	Label   string
	Content string
	Color   Color
}

// URL returns the address at which the badge service renders b.
func (b Badge) URL(serviceURL string) string {
	return fmt.Sprintf("%s/badge/%s-%s-%s.svg",
		strings.TrimSuffix(serviceURL, "/"), escape(b.Label), escape(b.Content), escape(string(b.Color)))
}

// escape doubles the characters the badge service treats as separators and makes the result path-safe.
func escape(s string) string {
	s = strings.NewReplacer("-", "--", "_", "__").Replace(s)
	return url.PathEscape(s)
}

// ForLastRun returns the badge that records when a pipeline was last invoked.
func ForLastRun(t time.Time) Badge {
	return Badge{
		Label:   "last run",
		Content: t.UTC().Format("2006-01-02 15:04 UTC"),
		Color:   Blue,
	}
}

// ForResult returns the badge for the final result of a build.
func ForResult(label string, r build.Result) Badge {
	b := Badge{Label: label, Content: string(r), Color: Red}
	switch r {
	case build.ResultSucceeded:
		b.Color = Green
	case build.ResultPartiallySucceeded:
		b.Color = Orange
	case "":
		b.Content = "unknown"
	}
	return b
}

// ForTests returns the badge summarizing the test outcomes of a build.
func ForTests(s build.TestSummary) Badge {
	return Badge{
		Label:   "tests",
		Content: TestContent(s),
		Color:   TestColor(s),
	}
}

// TestContent renders s as "N passed | N failed | N skipped", leaving out empty categories.
func TestContent(s build.TestSummary) string {
	if s.Total == 0 {
		return "not available"
	}

	var parts []string
	if s.Passed > 0 {
		parts = append(parts, fmt.Sprintf("%d passed", s.Passed))
	}
	if s.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", s.Failed))
	}
	if skipped := s.Skipped(); skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", skipped))
	}

	return strings.Join(parts, " | ")
}

// TestColor is red when any test failed or no tests were found, green otherwise.
func TestColor(s build.TestSummary) Color {
	if s.Failed > 0 || s.Total == 0 {
		return Red
	}
	return Green
}

// Renderer is the interface for turning a badge into an image file.
type Renderer interface {
	// Render writes the image for b to path.
	Render(ctx context.Context, b Badge, path string) error
}

// RenderError is returned when a badge image could not be fetched.
type RenderError struct {
	URL string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render badge from %s: %v", e.URL, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is reports a RenderError as a render error.
func (e *RenderError) Is(target error) bool {
	return target == errkind.ErrRender
}
