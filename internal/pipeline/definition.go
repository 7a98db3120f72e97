// Package pipeline queues a remote pipeline run, waits for it to finish and reports on the outcome.
package pipeline

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/funcinfra/pipelinectl/internal/errkind"
)

// Type is the kind of pipeline that is invoked.
type Type string

const (
	TypeBuild Type = "Build"
	TypeTest  Type = "Test"
)

// ParseType returns the Type named by s.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeBuild, TypeTest:
		return t, nil
	}
	return "", fmt.Errorf("invalid pipeline type %q, expected one of %s, %s: %w", s, TypeBuild, TypeTest, errkind.ErrValidation)
}

const (
	// DefaultDefinitionID is the definition that is queued when none is configured.
	DefaultDefinitionID = 21
	// DefaultSourceBranch is the branch that is built when none is configured.
	DefaultSourceBranch = "refs/heads/dev"

	// IntegrationDefinitionID is the definition whose runs are stamped with an integration build number.
	IntegrationDefinitionID = 11
	// IntegrationBuildNumberParam is the parameter carrying the integration build number.
	IntegrationBuildNumberParam = "IntegrationBuildNumber"
	integrationBuildNumberFmt   = "060102-1504"
)

// DefinitionRef identifies a pipeline definition.
type DefinitionRef struct {
	ID int `json:"id"`
}

// RequestBody is the payload used to queue a run.
type RequestBody struct {
	// Parameters holds the user supplied key/value pairs passed to the run.
	Parameters   map[string]any
	Definition   DefinitionRef
	SourceBranch string
}

// MarshalJSON serializes the body in the shape expected by the build API, in which the parameters are a JSON
// encoded string.
func (r RequestBody) MarshalJSON() ([]byte, error) {
	pp := r.Parameters
	if pp == nil {
		pp = map[string]any{}
	}
	encoded, err := json.Marshal(pp)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize parameters: %w", err)
	}

	return json.Marshal(struct {
		Parameters   string        `json:"parameters"`
		Definition   DefinitionRef `json:"definition"`
		SourceBranch string        `json:"sourceBranch"`
	}{
		Parameters:   string(encoded),
		Definition:   r.Definition,
		SourceBranch: r.SourceBranch,
	})
}

// Definition describes which pipeline to invoke and how.
type Definition struct {
	Name        string
	DisplayName string
	Owner       string
	ID          int
	Type        Type
	Request     RequestBody
}

// DefinitionOptions are the inputs to NewDefinition.
type DefinitionOptions struct {
	Name         string
	DisplayName  string
	Owner        string
	ID           int
	Type         string
	SourceBranch string
	Parameters   map[string]any
}

// NewDefinition validates opts and returns the resulting Definition.
func NewDefinition(opts DefinitionOptions) (Definition, error) {
	typ, err := ParseType(opts.Type)
	if err != nil {
		return Definition{}, err
	}
	if opts.ID <= 0 {
		return Definition{}, fmt.Errorf("invalid pipeline definition id %d: %w", opts.ID, errkind.ErrValidation)
	}
	if opts.SourceBranch == "" {
		return Definition{}, fmt.Errorf("no source branch specified: %w", errkind.ErrValidation)
	}

	name := opts.Name
	if name == "" {
		name = fmt.Sprintf("definition-%d", opts.ID)
	}
	displayName := opts.DisplayName
	if displayName == "" {
		displayName = name
	}

	pp := maps.Clone(opts.Parameters)
	if pp == nil {
		pp = map[string]any{}
	}

	return Definition{
		Name:        name,
		DisplayName: displayName,
		Owner:       opts.Owner,
		ID:          opts.ID,
		Type:        typ,
		Request: RequestBody{
			Parameters:   pp,
			Definition:   DefinitionRef{ID: opts.ID},
			SourceBranch: opts.SourceBranch,
		},
	}, nil
}

// RequestAt returns the request body for a run queued at the given time. The definition itself is left untouched.
func (d Definition) RequestAt(now time.Time) RequestBody {
	body := d.Request
	body.Parameters = maps.Clone(d.Request.Parameters)
	if body.Parameters == nil {
		body.Parameters = map[string]any{}
	}

	if d.ID == IntegrationDefinitionID {
		if _, ok := body.Parameters[IntegrationBuildNumberParam]; !ok {
			body.Parameters[IntegrationBuildNumberParam] = "PreRelease" + now.Format(integrationBuildNumberFmt)
		}
	}

	return body
}

// FolderName returns a name derived from the pipeline name that is safe to use as a directory or blob folder.
func (d Definition) FolderName() string {
	return strings.NewReplacer("/", "-", "\\", "-", ".", "-", " ", "_").Replace(d.Name)
}
