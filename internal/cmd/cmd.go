package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/funcinfra/pipelinectl/internal/config"
	"github.com/funcinfra/pipelinectl/internal/storage"
)

// FullName returns the full command name by concatenating the command names of any parents,
// except the name of the CLI itself.
func FullName(cmd *cobra.Command) string {
	name := ""

	for cmd != nil && cmd.HasParent() {
		// Prepending, because we are looking up names from the bottom up: send < queue < pipelinectl
		// which ends up correctly as 'queue send' (sans pipelinectl).
		name = fmt.Sprintf("%s %s", cmd.Name(), name)
		cmd = cmd.Parent()
	}

	return strings.TrimSpace(name)
}

// AccountFlags declares the storage account flags on fs.
func AccountFlags(fs *pflag.FlagSet, a *storage.Account) {
	fs.StringVar(&a.Name, "storage-account-name", "", "Name of the storage account ($AZURE_STORAGE_ACCOUNT)")
	fs.StringVar(&a.Key, "storage-account-key", "", "Key of the storage account ($AZURE_STORAGE_KEY)")
}

// ResolveAccount fills unset fields of a from the environment and checks that the account is complete.
func ResolveAccount(a storage.Account) (storage.Account, error) {
	if a.Name == "" {
		a.Name = os.Getenv("AZURE_STORAGE_ACCOUNT")
	}
	if a.Key == "" {
		a.Key = os.Getenv("AZURE_STORAGE_KEY")
	}

	var problems []string
	if a.Name == "" {
		problems = append(problems, "missing storage account name")
	}
	if a.Key == "" {
		problems = append(problems, "missing storage account key")
	}
	if len(problems) > 0 {
		return a, &config.ValidationError{Problems: problems}
	}
	return a, nil
}
