package configure

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/funcinfra/pipelinectl/internal/credentials"
)

var (
	configureUse     = "configure"
	configureShort   = "Configure your Azure DevOps credentials"
	configureLong    = `Persist locally your Azure DevOps user name and personal access token`
	configureExample = "pipelinectl configure"
	cliUsername      = ""
	cliPAT           = ""
)

// Command creates the `configure` command
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:          configureUse,
		Short:        configureShort,
		Long:         configureLong,
		Example:      configureExample,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run()
		},
	}
	cmd.Flags().StringVarP(&cliUsername, "username", "u", "", "user name of your Azure DevOps account")
	cmd.Flags().StringVarP(&cliPAT, "pat", "p", "", "personal access token of your Azure DevOps account")

	cmd.AddCommand(ListCommand())
	return cmd
}

func notBlank(what string) survey.Validator {
	return func(val interface{}) error {
		str, ok := val.(string)
		if !ok {
			return fmt.Errorf("invalid %s", what)
		}
		if strings.TrimSpace(str) == "" {
			return fmt.Errorf("you need to type a %s", what)
		}
		return nil
	}
}

// interactiveConfiguration expect user to manually type-in its credentials
func interactiveConfiguration() (credentials.Credentials, error) {
	creds := credentials.Get()

	println("") // visual paragraph break
	qs := []*survey.Question{
		{
			Name: "username",
			Prompt: &survey.Input{
				Message: "Azure DevOps user name",
				Default: creds.Username,
			},
			Validate: notBlank("user name"),
		},
		{
			Name: "pat",
			Prompt: &survey.Password{
				Message: "Azure DevOps personal access token",
			},
			Validate: notBlank("personal access token"),
		},
	}

	if err := survey.Ask(qs, &creds); err != nil {
		return creds, err
	}
	println() // visual paragraph break
	return creds, nil
}

// Run starts the configure command
func Run() error {
	var creds credentials.Credentials
	var err error

	if cliUsername == "" && cliPAT == "" {
		creds, err = interactiveConfiguration()
	} else {
		creds = credentials.Credentials{
			Username: cliUsername,
			PAT:      cliPAT,
		}
	}
	if err != nil {
		return err
	}

	if !creds.IsSet() {
		log.Error().Msg("Both a user name and a personal access token are required. Nothing was saved.")
		return errors.New("incomplete credentials provided")
	}
	if err := credentials.ToFile(creds); err != nil {
		return fmt.Errorf("unable to save credentials: %w", err)
	}
	println("You're all set!")
	return nil
}
