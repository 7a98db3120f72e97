// Package deploy deploys ARM templates into an existing resource group.
package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/funcinfra/pipelinectl/internal/errkind"
	"github.com/funcinfra/pipelinectl/internal/params"
)

// PollFrequency is how often a running deployment is checked.
const PollFrequency = 10 * time.Second

// Request describes a single deployment.
type Request struct {
	ResourceGroup string
	Name          string
	Template      map[string]any
	Parameters    map[string]any
}

// Result is the outcome of a finished deployment.
type Result struct {
	ID                string
	Name              string
	ProvisioningState string
	Outputs           any
}

type deploymentsClient interface {
	createOrUpdate(ctx context.Context, resourceGroup, name string, d armresources.Deployment) (armresources.DeploymentExtended, error)
}

// Deployer runs deployments in a subscription.
type Deployer struct {
	client deploymentsClient
}

// NewDeployer returns a Deployer for subscriptionID authenticated with the default Azure credential chain.
func NewDeployer(subscriptionID string) (*Deployer, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain azure credentials: %w: %w", errkind.ErrAuthentication, err)
	}
	client, err := armresources.NewDeploymentsClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create deployments client: %w", err)
	}
	return &Deployer{client: armClient{client}}, nil
}

// Deploy runs r as an incremental deployment and waits until it has finished.
func (d *Deployer) Deploy(ctx context.Context, r Request) (Result, error) {
	if r.ResourceGroup == "" {
		return Result{}, fmt.Errorf("no resource group specified: %w", errkind.ErrValidation)
	}
	if len(r.Template) == 0 {
		return Result{}, fmt.Errorf("empty template: %w", errkind.ErrValidation)
	}
	name := r.Name
	if name == "" {
		name = NewName()
	}

	log.Info().Str("resourceGroup", r.ResourceGroup).Str("name", name).Msg("Starting deployment.")
	ext, err := d.client.createOrUpdate(ctx, r.ResourceGroup, name, armresources.Deployment{
		Properties: &armresources.DeploymentProperties{
			Mode:       to.Ptr(armresources.DeploymentModeIncremental),
			Template:   r.Template,
			Parameters: r.Parameters,
		},
	})
	if err != nil {
		var authErr *azidentity.AuthenticationFailedError
		if errors.As(err, &authErr) {
			return Result{}, fmt.Errorf("deployment %s failed: %w: %w", name, errkind.ErrAuthentication, err)
		}
		return Result{}, fmt.Errorf("deployment %s failed: %w", name, err)
	}

	res := Result{ID: deref(ext.ID), Name: deref(ext.Name)}
	if res.Name == "" {
		res.Name = name
	}
	if p := ext.Properties; p != nil {
		if p.ProvisioningState != nil {
			res.ProvisioningState = string(*p.ProvisioningState)
		}
		res.Outputs = p.Outputs
	}
	log.Info().Str("name", res.Name).Str("state", res.ProvisioningState).Msg("Deployment finished.")

	return res, nil
}

// NewName returns a unique deployment name.
func NewName() string {
	return "pipelinectl-" + uuid.NewString()[:8]
}

// ReadTemplate reads a JSON template from path.
func ReadTemplate(path string) (map[string]any, error) {
	var t map[string]any
	if err := readJSON(path, &t); err != nil {
		return nil, err
	}
	return t, nil
}

// ReadParameters reads a JSON parameters file from path. Files in deployment parameter file form, whose values live
// under a top level "parameters" key, are unwrapped.
func ReadParameters(path string) (map[string]any, error) {
	var p map[string]any
	if err := readJSON(path, &p); err != nil {
		return nil, err
	}
	if inner, ok := p["parameters"].(map[string]any); ok {
		if _, schema := p["$schema"]; schema || len(p) == 1 {
			return inner, nil
		}
	}
	return p, nil
}

// MergeParameters returns the parameters of base overridden by the `key=value;key=value` pairs in overrides.
func MergeParameters(base map[string]any, overrides string) (map[string]any, error) {
	extra, err := params.ParseARM(overrides)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w: %w", path, errkind.ErrValidation, err)
	}
	return nil
}

type armClient struct {
	*armresources.DeploymentsClient
}

func (c armClient) createOrUpdate(ctx context.Context, resourceGroup, name string, d armresources.Deployment) (armresources.DeploymentExtended, error) {
	poller, err := c.BeginCreateOrUpdate(ctx, resourceGroup, name, d, nil)
	if err != nil {
		return armresources.DeploymentExtended{}, err
	}
	resp, err := poller.PollUntilDone(ctx, &runtime.PollUntilDoneOptions{Frequency: PollFrequency})
	if err != nil {
		return armresources.DeploymentExtended{}, err
	}
	return resp.DeploymentExtended, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
