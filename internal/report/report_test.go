package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/funcinfra/pipelinectl/internal/build"
)

func TestInvocationResult_Queued(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	r := InvocationResult{Name: "nightly"}

	b := build.Build{ID: 42, Status: build.StatusNotStarted, URL: "https://dev.azure.com/o/p/_apis/build/Builds/42"}
	assert.NoError(t, r.Queued(b, at))
	assert.Equal(t, 42, r.BuildID)
	assert.Equal(t, b.URL, r.BuildURL)
	assert.Equal(t, at, r.ExecutionTime)
	assert.Equal(t, "notStarted", r.Status)

	err := r.Queued(build.Build{ID: 43}, at)
	assert.EqualError(t, err, `invocation "nightly" is already associated with build 42`)
	assert.Equal(t, 42, r.BuildID)
}

func TestInvocationResult_Completed(t *testing.T) {
	r := InvocationResult{}
	r.Completed(build.Build{Status: build.StatusCompleted, Result: build.ResultPartiallySucceeded})
	assert.Equal(t, "partiallySucceeded", r.Status)

	r.Completed(build.Build{Status: build.StatusCancelling})
	assert.Equal(t, "cancelling", r.Status)
}

func TestInvocationResult_Passed(t *testing.T) {
	testCases := []struct {
		name   string
		result InvocationResult
		want   bool
	}{
		{name: "succeeded without tests", result: InvocationResult{Status: "succeeded"}, want: true},
		{name: "succeeded with passing tests", result: InvocationResult{Status: "succeeded", TestResults: map[string]int{"Failed": 0}}, want: true},
		{name: "succeeded with failing tests", result: InvocationResult{Status: "succeeded", TestResults: map[string]int{"Failed": 1}}, want: false},
		{name: "failed", result: InvocationResult{Status: "failed"}, want: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.result.Passed())
		})
	}
}
