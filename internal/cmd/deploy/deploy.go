package deploy

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/funcinfra/pipelinectl/internal/deploy"
	"github.com/funcinfra/pipelinectl/internal/errkind"
)

// Command creates the `deploy` command
func Command() *cobra.Command {
	var (
		subscription   string
		resourceGroup  string
		templatePath   string
		parametersPath string
		parameters     string
		name           string
	)

	cmd := &cobra.Command{
		Use:          "deploy",
		Short:        "Deploys an ARM template into an existing resource group",
		Example:      "pipelinectl deploy --subscription $SUB --resource-group funcs-e2e --template azuredeploy.json --parameters 'sku=Y1'",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkSubscription(subscription); err != nil {
				return err
			}

			req, err := newRequest(resourceGroup, name, templatePath, parametersPath, parameters)
			if err != nil {
				return err
			}

			d, err := deploy.NewDeployer(subscription)
			if err != nil {
				return err
			}
			res, err := d.Deploy(cmd.Context(), req)
			if err != nil {
				return err
			}

			log.Info().Str("id", res.ID).Str("state", res.ProvisioningState).Msg("Deployment done.")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&subscription, "subscription", "", "Id of the Azure subscription")
	flags.StringVar(&resourceGroup, "resource-group", "", "Resource group to deploy into")
	flags.StringVar(&templatePath, "template", "", "Path to the ARM template")
	flags.StringVar(&parametersPath, "parameters-file", "", "Path to a parameters file")
	flags.StringVar(&parameters, "parameters", "", "Parameter overrides, e.g. 'sku=Y1;alwaysOn=true'")
	flags.StringVar(&name, "name", "", "Name of the deployment (default: generated)")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

func checkSubscription(id string) error {
	if id == "" {
		return fmt.Errorf("no subscription specified: %w", errkind.ErrValidation)
	}
	return nil
}

func newRequest(resourceGroup, name, templatePath, parametersPath, overrides string) (deploy.Request, error) {
	tmpl, err := deploy.ReadTemplate(templatePath)
	if err != nil {
		return deploy.Request{}, err
	}

	var base map[string]any
	if parametersPath != "" {
		if base, err = deploy.ReadParameters(parametersPath); err != nil {
			return deploy.Request{}, err
		}
	}
	pp, err := deploy.MergeParameters(base, overrides)
	if err != nil {
		return deploy.Request{}, err
	}

	return deploy.Request{
		ResourceGroup: resourceGroup,
		Name:          name,
		Template:      tmpl,
		Parameters:    pp,
	}, nil
}
