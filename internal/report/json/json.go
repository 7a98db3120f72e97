package json

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/funcinfra/pipelinectl/internal/report"
)

// FileName is the name of the file the results are written to.
const FileName = "pipeline-results.json"

// Reporter writes invocation results as a json document.
type Reporter struct {
	Filename string
	Results  []report.InvocationResult
}

// Add adds an InvocationResult.
func (r *Reporter) Add(res report.InvocationResult) {
	r.Results = append(r.Results, res)
}

// Render writes the results to Filename. A single result is written as an object, multiple results as an array.
func (r *Reporter) Render() error {
	var v interface{} = r.Results
	if len(r.Results) == 1 {
		v = r.Results[0]
	}

	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to generate invocation result: %w", err)
	}

	if err := os.WriteFile(r.Filename, body, 0644); err != nil {
		return fmt.Errorf("failed to write invocation result to %s: %w", r.Filename, err)
	}
	log.Debug().Str("file", r.Filename).Msg("Wrote invocation result.")

	return nil
}
