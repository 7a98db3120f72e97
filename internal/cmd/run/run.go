package run

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/funcinfra/pipelinectl/internal/artifact"
	"github.com/funcinfra/pipelinectl/internal/badge"
	"github.com/funcinfra/pipelinectl/internal/build"
	"github.com/funcinfra/pipelinectl/internal/config"
	"github.com/funcinfra/pipelinectl/internal/credentials"
	"github.com/funcinfra/pipelinectl/internal/flags"
	"github.com/funcinfra/pipelinectl/internal/http"
	"github.com/funcinfra/pipelinectl/internal/msg"
	"github.com/funcinfra/pipelinectl/internal/notification"
	"github.com/funcinfra/pipelinectl/internal/notification/slack"
	"github.com/funcinfra/pipelinectl/internal/params"
	"github.com/funcinfra/pipelinectl/internal/pipeline"
	"github.com/funcinfra/pipelinectl/internal/report"
	"github.com/funcinfra/pipelinectl/internal/report/json"
	"github.com/funcinfra/pipelinectl/internal/report/table"
	"github.com/funcinfra/pipelinectl/internal/storage"
	"github.com/funcinfra/pipelinectl/internal/version"
)

var (
	runUse   = "run"
	runShort = "Invokes a pipeline, waits for it to complete and publishes its results"

	// General Request Timeouts
	devOpsTimeout = 30 * time.Second
	badgeTimeout  = 30 * time.Second
)

// Command creates the `run` command
func Command() *cobra.Command {
	var cfgFilePath string

	cmd := &cobra.Command{
		Use:          runUse,
		Short:        runShort,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgFilePath)
			if err != nil {
				return err
			}
			return Run(cmd.Context(), cfg)
		},
	}

	sc := flags.New(cmd.Flags())
	cmd.Flags().StringVarP(&cfgFilePath, "config", "c", "", "Specifies which config file to use")

	// Storage
	sc.String("storage-account-name", "storage::accountName", "", "Name of the storage account the results are uploaded to ($AZURE_STORAGE_ACCOUNT)")
	sc.String("storage-account-key", "storage::accountKey", "", "Key of the storage account the results are uploaded to ($AZURE_STORAGE_KEY)")
	sc.String("storage-container", "storage::container", storage.DefaultContainer, "Blob container the results are uploaded to")
	sc.String("functions-version", "functionsVersion", "", "Version of the functions host, used as the top level results folder")

	// DevOps
	sc.String("devops-url", "devops::url", http.DefaultDevOpsURL, "Base URL of the Azure DevOps service")
	sc.String("organization", "devops::organization", "", "Azure DevOps organization")
	sc.String("project", "devops::project", "", "Azure DevOps project")
	sc.String("devops-username", "devops::username", "", "Azure DevOps user name ($DEVOPS_USERNAME)")
	sc.String("devops-pat", "devops::pat", "", "Azure DevOps personal access token ($DEVOPS_PAT)")

	// Pipeline
	sc.String("pipeline-name", "pipeline::name", "", "Name of the pipeline, also names the results folder")
	sc.String("display-name", "pipeline::displayName", "", "Label of the result badge (default: pipeline name)")
	sc.String("owner", "pipeline::owner", "", "Owner of the pipeline")
	sc.Int("definition-id", "pipeline::definitionID", pipeline.DefaultDefinitionID, "Id of the pipeline definition to queue")
	sc.String("source-branch", "pipeline::sourceBranch", pipeline.DefaultSourceBranch, "Branch the pipeline runs on")
	sc.String("pipeline-parameters", "pipeline::parameters", "", "Parameters passed to the pipeline, e.g. 'key=value;flag=true'")
	sc.String("pipeline-type", "pipeline::type", string(pipeline.TypeBuild), "Type of the pipeline (Build|Test)")

	// Polling
	sc.Duration("poll-interval", "polling::interval", build.DefaultInterval, "Time between two status checks")
	sc.Int("max-tries", "polling::maxTries", build.DefaultMaxTries, "Maximum number of status checks")

	// Results
	sc.String("results-dir", "resultsDir", "results", "Local folder the results are written to")
	sc.String("badge-url", "badgeURL", badge.DefaultServiceURL, "Base URL of the badge service")

	// Notifications
	sc.StringSlice("slack-channel", "notifications::slack::channels", []string{}, "Slack channels to notify ($SLACK_TOKEN)")
	sc.String("slack-send", "notifications::slack::send", string(config.WhenNever), "When to notify slack (always|pass|fail|never)")

	sc.BindAll()

	return cmd
}

func loadConfig(cfgFilePath string) (config.Run, error) {
	var cfg config.Run
	if err := config.Unmarshal(cfgFilePath, &cfg); err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()

	if cfg.DevOps.Username == "" || cfg.DevOps.PAT == "" {
		if creds := credentials.FromFile(); creds.IsSet() {
			log.Debug().Msgf("Using DevOps credentials from %s", creds.Source)
			cfg.DevOps.Username = creds.Username
			cfg.DevOps.PAT = creds.PAT
		}
	}

	if err := cfg.Validate(); err != nil {
		if cfg.DevOps.Username == "" || cfg.DevOps.PAT == "" {
			msg.LogCredentialsNotSet()
		}
		return cfg, err
	}
	return cfg, nil
}

// Run runs the pipeline described by cfg.
func Run(ctx context.Context, cfg config.Run) error {
	log.Info().Msgf("Running version %s", version.Version)

	def, err := newDefinition(cfg.Pipeline)
	if err != nil {
		return err
	}

	account := storage.Account{Name: cfg.Storage.AccountName, Key: cfg.Storage.AccountKey}
	store, err := storage.NewBlobStore(account, cfg.Storage.Container)
	if err != nil {
		return err
	}

	devops := http.NewDevOpsService(cfg.DevOps.URL, cfg.DevOps.Organization, cfg.DevOps.Project,
		credentials.Credentials{Username: cfg.DevOps.Username, PAT: cfg.DevOps.PAT}, devOpsTimeout)
	badges := http.NewBadgeService(cfg.BadgeURL, badgeTimeout)

	runner := &pipeline.Runner{
		Service:          &devops,
		Poller:           build.Poller{Reader: &devops, Interval: cfg.Polling.Interval, MaxTries: cfg.Polling.MaxTries},
		Badges:           &badges,
		Uploader:         artifact.Uploader{Store: store},
		ResultsDir:       cfg.ResultsDir,
		FunctionsVersion: cfg.FunctionsVersion,
	}
	runner.Reporters = []report.Reporter{
		&json.Reporter{Filename: filepath.Join(runner.Dir(def), json.FileName)},
	}
	runner.Notifiers = notifiers(cfg.Notifications)

	res, err := runner.Run(ctx, def)
	if err != nil {
		return err
	}

	summary := &table.Reporter{Dst: os.Stdout}
	summary.Add(res)
	_ = summary.Render()

	if res.Passed() {
		msg.LogPipelineSuccess(def.DisplayName)
	} else {
		msg.LogPipelineFailure(def.DisplayName, res.Status, res.TestResults["Failed"])
	}

	return nil
}

func newDefinition(p config.Pipeline) (pipeline.Definition, error) {
	pp, err := params.Parse(p.Parameters)
	if err != nil {
		return pipeline.Definition{}, err
	}

	return pipeline.NewDefinition(pipeline.DefinitionOptions{
		Name:         p.Name,
		DisplayName:  p.DisplayName,
		Owner:        p.Owner,
		ID:           p.DefinitionID,
		Type:         p.Type,
		SourceBranch: p.SourceBranch,
		Parameters:   pp,
	})
}

func notifiers(n config.Notifications) []notification.Notifier {
	if len(n.Slack.Channels) == 0 || n.Slack.Send == config.WhenNever || n.Slack.Send == "" {
		return nil
	}

	token := os.Getenv(slack.TokenEnv)
	if token == "" {
		log.Warn().Msgf("Slack notifications are configured, but $%s is not set. Skipping.", slack.TokenEnv)
		return nil
	}
	return []notification.Notifier{slack.NewNotifier(token, n.Slack)}
}
