package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funcinfra/pipelinectl/internal/artifact"
	"github.com/funcinfra/pipelinectl/internal/badge"
	"github.com/funcinfra/pipelinectl/internal/build"
	"github.com/funcinfra/pipelinectl/internal/errkind"
	"github.com/funcinfra/pipelinectl/internal/notification"
	"github.com/funcinfra/pipelinectl/internal/report"
	jsonreport "github.com/funcinfra/pipelinectl/internal/report/json"
	"github.com/funcinfra/pipelinectl/internal/report/text"
)

type fakeService struct {
	queueErr  error
	queued    []RequestBody
	statuses  []build.Status
	result    build.Result
	queries   int
	summary   build.TestSummary
	hasTests  bool
	summaryID int
}

func (s *fakeService) QueueBuild(_ context.Context, body RequestBody) (build.Build, error) {
	if s.queueErr != nil {
		return build.Build{}, s.queueErr
	}
	s.queued = append(s.queued, body)
	b := build.Build{ID: 42, Status: build.StatusNotStarted, URL: "https://dev.azure.com/org/proj/_apis/build/Builds/42"}
	b.Links.Web.Href = "https://dev.azure.com/org/proj/_build/results?buildId=42"
	return b, nil
}

func (s *fakeService) GetBuild(_ context.Context, _ string) (build.Build, error) {
	st := s.statuses[s.queries]
	s.queries++
	b := build.Build{ID: 42, Status: st}
	if st == build.StatusCompleted {
		b.Result = s.result
	}
	return b, nil
}

func (s *fakeService) TestSummary(_ context.Context, buildID int) (build.TestSummary, bool, error) {
	s.summaryID = buildID
	return s.summary, s.hasTests, nil
}

type fakeRenderer struct {
	badges map[string]badge.Badge
	err    error
}

func (f *fakeRenderer) Render(_ context.Context, b badge.Badge, path string) error {
	if f.err != nil {
		return f.err
	}
	if f.badges == nil {
		f.badges = map[string]badge.Badge{}
	}
	f.badges[filepath.Base(path)] = b
	return os.WriteFile(path, []byte("<svg/>"), 0644)
}

type fakeStore struct {
	names []string
}

func (f *fakeStore) Put(_ context.Context, name, _, _ string) error {
	f.names = append(f.names, name)
	return nil
}

type fakeNotifier struct {
	got []report.InvocationResult
	err error
}

func (f *fakeNotifier) Notify(_ context.Context, res report.InvocationResult) error {
	f.got = append(f.got, res)
	return f.err
}

func newTestRunner(t *testing.T, svc *fakeService, renderer *fakeRenderer, store *fakeStore) *Runner {
	return &Runner{
		Service:          svc,
		Poller:           build.Poller{Reader: svc, Interval: time.Millisecond, MaxTries: 10},
		Badges:           renderer,
		Uploader:         artifact.Uploader{Store: store},
		ResultsDir:       t.TempDir(),
		FunctionsVersion: "4.0.1",
		Now: func() time.Time {
			return time.Date(2024, 3, 5, 14, 7, 30, 0, time.UTC)
		},
	}
}

func TestRunner_Run(t *testing.T) {
	svc := &fakeService{
		statuses: []build.Status{build.StatusNotStarted, build.StatusInProgress, build.StatusInProgress, build.StatusCompleted},
		result:   build.ResultSucceeded,
		summary:  build.TestSummary{Total: 10, Passed: 7, Failed: 2},
		hasTests: true,
	}
	renderer := &fakeRenderer{}
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	r := newTestRunner(t, svc, renderer, store)
	r.Notifiers = append(r.Notifiers, notifier)

	def, err := NewDefinition(DefinitionOptions{
		Name:         "Functions E2E.Tests",
		DisplayName:  "E2E",
		ID:           IntegrationDefinitionID,
		Type:         "Test",
		SourceBranch: DefaultSourceBranch,
		Parameters:   map[string]any{"Region": "westus"},
	})
	require.NoError(t, err)

	r.Reporters = append(r.Reporters, &jsonreport.Reporter{Filename: filepath.Join(r.Dir(def), jsonreport.FileName)})

	res, err := r.Run(context.Background(), def)
	require.NoError(t, err)

	// request
	require.Len(t, svc.queued, 1)
	assert.Equal(t, "PreRelease240305-1407", svc.queued[0].Parameters[IntegrationBuildNumberParam])
	assert.Equal(t, "westus", svc.queued[0].Parameters["Region"])
	assert.NotContains(t, def.Request.Parameters, IntegrationBuildNumberParam)

	// poll
	assert.Equal(t, 4, svc.queries)
	assert.Equal(t, 42, svc.summaryID)

	// result
	assert.Equal(t, "succeeded", res.Status)
	assert.Equal(t, 42, res.BuildID)
	assert.Equal(t, "https://dev.azure.com/org/proj/_build/results?buildId=42", res.BuildURL)
	assert.Equal(t, map[string]int{"Total": 10, "Passed": 7, "Failed": 2, "Skipped": 1}, res.TestResults)
	assert.False(t, res.Passed())

	// badges
	assert.Equal(t, "E2E", renderer.badges[badge.ResultFile].Label)
	assert.Equal(t, badge.Green, renderer.badges[badge.ResultFile].Color)
	assert.Equal(t, "7 passed | 2 failed | 1 skipped", renderer.badges[badge.TestsFile].Content)
	assert.Equal(t, badge.Red, renderer.badges[badge.TestsFile].Color)
	assert.Equal(t, "2024-03-05 14:07 UTC", renderer.badges[badge.LastRunFile].Content)

	// upload
	folder := "Functions_E2E-Tests"
	assert.Equal(t, filepath.Join(r.ResultsDir, folder), r.Dir(def))
	assert.Equal(t, []string{
		"4.0.1/" + folder + "/" + text.IDFile,
		"4.0.1/" + folder + "/" + text.URLFile,
		"4.0.1/" + folder + "/" + badge.LastRunFile,
		"4.0.1/" + folder + "/" + badge.ResultFile,
		"4.0.1/" + folder + "/" + jsonreport.FileName,
		"4.0.1/" + folder + "/" + badge.TestsFile,
	}, store.names)

	require.Len(t, notifier.got, 1)
	assert.Equal(t, 42, notifier.got[0].BuildID)
}

func TestRunner_Run_NoTests(t *testing.T) {
	svc := &fakeService{
		statuses: []build.Status{build.StatusCompleted},
		result:   build.ResultFailed,
	}
	renderer := &fakeRenderer{}
	store := &fakeStore{}
	r := newTestRunner(t, svc, renderer, store)

	def, err := NewDefinition(DefinitionOptions{ID: DefaultDefinitionID, Type: "Build", SourceBranch: DefaultSourceBranch})
	require.NoError(t, err)

	res, err := r.Run(context.Background(), def)
	require.NoError(t, err)

	assert.Equal(t, "failed", res.Status)
	assert.Nil(t, res.TestResults)
	assert.NotContains(t, svc.queued[0].Parameters, IntegrationBuildNumberParam)
	assert.NotContains(t, renderer.badges, badge.TestsFile)
	assert.Equal(t, badge.Red, renderer.badges[badge.ResultFile].Color)

	_, err = os.Stat(filepath.Join(r.Dir(def), badge.TestsFile))
	assert.True(t, os.IsNotExist(err))
	assert.Len(t, store.names, 4)
}

func TestRunner_Run_SubmissionError(t *testing.T) {
	svc := &fakeService{queueErr: errors.New("internal server error")}
	r := newTestRunner(t, svc, &fakeRenderer{}, &fakeStore{})

	def, err := NewDefinition(DefinitionOptions{ID: 5, Type: "Build", SourceBranch: DefaultSourceBranch})
	require.NoError(t, err)

	_, err = r.Run(context.Background(), def)
	assert.ErrorIs(t, err, errkind.ErrSubmission)
	assert.EqualError(t, err, "failed to queue pipeline definition 5: internal server error")
}

func TestRunner_Run_Timeout(t *testing.T) {
	svc := &fakeService{statuses: []build.Status{
		build.StatusInProgress, build.StatusInProgress, build.StatusInProgress, build.StatusInProgress,
	}}
	store := &fakeStore{}
	r := newTestRunner(t, svc, &fakeRenderer{}, store)
	r.Poller.MaxTries = 3

	def, err := NewDefinition(DefinitionOptions{ID: 5, Type: "Build", SourceBranch: DefaultSourceBranch})
	require.NoError(t, err)

	res, err := r.Run(context.Background(), def)
	assert.ErrorIs(t, err, errkind.ErrTimeout)
	assert.Equal(t, 3, svc.queries)
	assert.Equal(t, 42, res.BuildID)
	assert.Empty(t, store.names)
}

func TestRunner_Run_RenderError(t *testing.T) {
	svc := &fakeService{}
	renderErr := &badge.RenderError{URL: "https://img.shields.io/badge/x.svg", Err: errors.New("boom")}
	r := newTestRunner(t, svc, &fakeRenderer{err: renderErr}, &fakeStore{})

	def, err := NewDefinition(DefinitionOptions{ID: 5, Type: "Build", SourceBranch: DefaultSourceBranch})
	require.NoError(t, err)

	_, err = r.Run(context.Background(), def)
	assert.ErrorIs(t, err, errkind.ErrRender)
	assert.Equal(t, 0, svc.queries)
}

func TestRunner_Run_NotifierErrorIsNotFatal(t *testing.T) {
	svc := &fakeService{
		statuses: []build.Status{build.StatusCompleted},
		result:   build.ResultSucceeded,
	}
	store := &fakeStore{}
	failing := &fakeNotifier{err: errors.New("channel_not_found")}
	next := &fakeNotifier{}
	r := newTestRunner(t, svc, &fakeRenderer{}, store)
	r.Notifiers = []notification.Notifier{failing, next}

	def, err := NewDefinition(DefinitionOptions{Name: "Functions Build", ID: DefaultDefinitionID, Type: "Build", SourceBranch: DefaultSourceBranch})
	require.NoError(t, err)

	res, err := r.Run(context.Background(), def)
	require.NoError(t, err)
	assert.True(t, res.Passed())
	assert.NotEmpty(t, store.names)
	assert.Len(t, failing.got, 1)
	assert.Len(t, next.got, 1)
}
