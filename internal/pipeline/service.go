package pipeline

import (
	"context"
	"fmt"

	"github.com/funcinfra/pipelinectl/internal/build"
	"github.com/funcinfra/pipelinectl/internal/errkind"
)

// Service is the interface of the CI service that runs pipelines.
type Service interface {
	build.Reader
	// QueueBuild queues a run of the pipeline described by body.
	QueueBuild(ctx context.Context, body RequestBody) (build.Build, error)
	// TestSummary returns the aggregated test outcomes of a build and false if the build published no tests.
	TestSummary(ctx context.Context, buildID int) (build.TestSummary, bool, error)
}

// SubmissionError is returned when a run could not be queued.
type SubmissionError struct {
	DefinitionID int
	Err          error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("failed to queue pipeline definition %d: %v", e.DefinitionID, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Is reports a SubmissionError as a submission error.
func (e *SubmissionError) Is(target error) bool {
	return target == errkind.ErrSubmission
}
