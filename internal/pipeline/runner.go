package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/funcinfra/pipelinectl/internal/artifact"
	"github.com/funcinfra/pipelinectl/internal/badge"
	"github.com/funcinfra/pipelinectl/internal/build"
	"github.com/funcinfra/pipelinectl/internal/notification"
	"github.com/funcinfra/pipelinectl/internal/report"
	"github.com/funcinfra/pipelinectl/internal/report/text"
)

// Runner invokes a pipeline and reports on its outcome.
type Runner struct {
	Service  Service
	Poller   build.Poller
	Badges   badge.Renderer
	Uploader artifact.Uploader

	// Reporters are rendered before the results folder is uploaded.
	Reporters []report.Reporter
	// Notifiers are called once everything else has succeeded. Their failures are logged only.
	Notifiers []notification.Notifier

	ResultsDir       string
	FunctionsVersion string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Dir returns the local folder that holds the results of def.
func (r *Runner) Dir(def Definition) string {
	return filepath.Join(r.ResultsDir, def.FolderName())
}

// Run queues def, waits for it to complete, renders its results and uploads them. Any failure aborts the run.
func (r *Runner) Run(ctx context.Context, def Definition) (report.InvocationResult, error) {
	res := report.InvocationResult{
		Name:         def.Name,
		DisplayName:  def.DisplayName,
		Owner:        def.Owner,
		Type:         string(def.Type),
		SourceBranch: def.Request.SourceBranch,
	}

	dir := r.Dir(def)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return res, fmt.Errorf("failed to create results folder: %w", err)
	}

	queuedAt := r.now()
	log.Info().Str("pipeline", def.Name).Int("definition", def.ID).Str("branch", def.Request.SourceBranch).
		Msg("Queueing pipeline.")
	b, err := r.Service.QueueBuild(ctx, def.RequestAt(queuedAt))
	if err != nil {
		return res, &SubmissionError{DefinitionID: def.ID, Err: err}
	}
	if err := res.Queued(b, queuedAt); err != nil {
		return res, err
	}
	log.Info().Int("id", res.BuildID).Str("url", res.BuildURL).Msg("Pipeline queued.")

	if err := text.WriteBuildRef(dir, res.BuildURL, res.BuildID); err != nil {
		return res, err
	}
	if err := r.Badges.Render(ctx, badge.ForLastRun(queuedAt), filepath.Join(dir, badge.LastRunFile)); err != nil {
		return res, err
	}

	final, err := r.Poller.Poll(ctx, b.URL)
	if err != nil {
		return res, err
	}
	res.Completed(final)
	log.Info().Str("status", string(final.Status)).Str("result", string(final.Result)).Msg("Pipeline completed.")

	if err := r.Badges.Render(ctx, badge.ForResult(def.DisplayName, final.Result),
		filepath.Join(dir, badge.ResultFile)); err != nil {
		return res, err
	}

	summary, ok, err := r.Service.TestSummary(ctx, b.ID)
	if err != nil {
		return res, fmt.Errorf("failed to fetch test summary: %w", err)
	}
	if ok {
		res.TestResults = summary.Outcomes()
		if err := r.Badges.Render(ctx, badge.ForTests(summary), filepath.Join(dir, badge.TestsFile)); err != nil {
			return res, err
		}
	} else {
		log.Info().Int("id", res.BuildID).Msg("No test results published; skipping test badge.")
	}

	for _, rep := range r.Reporters {
		rep.Add(res)
		if err := rep.Render(); err != nil {
			return res, err
		}
	}

	if _, err := r.Uploader.Upload(ctx, dir, r.FunctionsVersion, def.FolderName()); err != nil {
		return res, err
	}

	for _, n := range r.Notifiers {
		if err := n.Notify(ctx, res); err != nil {
			log.Warn().Err(err).Int("id", res.BuildID).Msg("Failed to send notification.")
		}
	}

	return res, nil
}
