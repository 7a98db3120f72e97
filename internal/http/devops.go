package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/funcinfra/pipelinectl/internal/build"
	"github.com/funcinfra/pipelinectl/internal/credentials"
	"github.com/funcinfra/pipelinectl/internal/pipeline"
)

// DefaultDevOpsURL is the Azure DevOps base URL used when none is configured.
const DefaultDevOpsURL = "https://dev.azure.com"

// DevOpsService is the http client for the Azure DevOps build and test APIs.
type DevOpsService struct {
	Client       *retryablehttp.Client
	URL          string
	Organization string
	Project      string
	Credentials  credentials.Credentials
}

// NewDevOpsService creates a new client.
func NewDevOpsService(url, organization, project string, creds credentials.Credentials, timeout time.Duration) DevOpsService {
	return DevOpsService{
		Client:       NewRetryableClient(timeout),
		URL:          url,
		Organization: organization,
		Project:      project,
		Credentials:  creds,
	}
}

func (s *DevOpsService) projectURL() string {
	return fmt.Sprintf("%s/%s/%s", s.URL, url.PathEscape(s.Organization), url.PathEscape(s.Project))
}

// QueueBuild queues a new run of the definition named in body.
func (s *DevOpsService) QueueBuild(ctx context.Context, body pipeline.RequestBody) (build.Build, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return build.Build{}, err
	}

	req, err := NewRetryableRequestWithContext(ctx, http.MethodPost,
		s.projectURL()+"/_apis/build/builds?api-version=5.0", bytes.NewReader(payload))
	if err != nil {
		return build.Build{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var b build.Build
	if err := s.do(req, "queue build", &b); err != nil {
		return build.Build{}, err
	}
	if b.ID == 0 || b.URL == "" {
		return build.Build{}, fmt.Errorf("queue build: response is missing the build id or url")
	}

	return b, nil
}

// GetBuild returns the build at the given REST url.
func (s *DevOpsService) GetBuild(ctx context.Context, url string) (build.Build, error) {
	req, err := NewRetryableRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return build.Build{}, err
	}

	var b build.Build
	if err := s.do(req, "build status request", &b); err != nil {
		return build.Build{}, err
	}
	return b, nil
}

type resultSummary struct {
	AggregatedResultsAnalysis *struct {
		TotalTests       int `json:"totalTests"`
		ResultsByOutcome map[string]struct {
			Count int `json:"count"`
		} `json:"resultsByOutcome"`
	} `json:"aggregatedResultsAnalysis"`
}

// TestSummary returns the aggregated test outcomes of a build. The returned bool is false if the build did not
// publish any test results.
func (s *DevOpsService) TestSummary(ctx context.Context, buildID int) (build.TestSummary, bool, error) {
	q := url.Values{}
	q.Set("buildId", strconv.Itoa(buildID))
	q.Set("api-version", "5.0-preview.2")

	req, err := NewRetryableRequestWithContext(ctx, http.MethodGet,
		s.projectURL()+"/_apis/test/ResultSummaryByBuild?"+q.Encode(), nil)
	if err != nil {
		return build.TestSummary{}, false, err
	}

	var rs resultSummary
	if err := s.do(req, "test summary request", &rs); err != nil {
		return build.TestSummary{}, false, err
	}

	a := rs.AggregatedResultsAnalysis
	if a == nil {
		return build.TestSummary{}, false, nil
	}

	return build.TestSummary{
		Total:  a.TotalTests,
		Passed: a.ResultsByOutcome["Passed"].Count,
		Failed: a.ResultsByOutcome["Failed"].Count,
	}, true, nil
}

func (s *DevOpsService) do(req *retryablehttp.Request, what string, v interface{}) error {
	req.Header.Set("Authorization", s.Credentials.BasicAuth())
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s failed: %w", what, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, what); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", what, err)
	}
	return nil
}
