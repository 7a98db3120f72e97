package upload

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/funcinfra/pipelinectl/internal/artifact"
	"github.com/funcinfra/pipelinectl/internal/cmd"
	"github.com/funcinfra/pipelinectl/internal/errkind"
	"github.com/funcinfra/pipelinectl/internal/storage"
)

// Command creates the `upload` command
func Command() *cobra.Command {
	var (
		account   storage.Account
		container string
		dir       string
		version   string
		folder    string
	)

	c := &cobra.Command{
		Use:          "upload",
		Short:        "Uploads a results folder to blob storage",
		Example:      "pipelinectl upload --dir results/e2e --functions-version 4.0.1 --pipeline-folder e2e",
		SilenceUsage: true,
		RunE: func(c *cobra.Command, args []string) error {
			if version == "" || folder == "" {
				return fmt.Errorf("--functions-version and --pipeline-folder are required: %w", errkind.ErrValidation)
			}
			a, err := cmd.ResolveAccount(account)
			if err != nil {
				return err
			}
			store, err := storage.NewBlobStore(a, container)
			if err != nil {
				return err
			}

			names, err := artifact.Uploader{Store: store}.Upload(c.Context(), dir, version, folder)
			if err != nil {
				return err
			}
			log.Info().Msgf("Uploaded %d files to %s.", len(names), a.BlobURL()+container+"/"+version+"/"+folder)
			return nil
		},
	}

	flags := c.Flags()
	cmd.AccountFlags(flags, &account)
	flags.StringVar(&container, "container", storage.DefaultContainer, "Blob container to upload to")
	flags.StringVar(&dir, "dir", "", "Local folder that holds the results")
	flags.StringVar(&version, "functions-version", "", "Version of the functions host, used as the top level folder")
	flags.StringVar(&folder, "pipeline-folder", "", "Name of the folder the results are stored in")
	_ = c.MarkFlagRequired("dir")

	return c
}
