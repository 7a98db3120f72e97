package configure

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/funcinfra/pipelinectl/internal/credentials"
	"github.com/funcinfra/pipelinectl/internal/msg"
)

// ListCommand creates the `configure list` command
func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "list",
		Aliases: []string{
			"ls",
		},
		Short: "Shows the current credentials and where they come from",
		Run: func(cmd *cobra.Command, args []string) {
			creds := credentials.Get()
			if !creds.IsSet() {
				msg.LogCredentialsNotSet()
				return
			}
			printCreds(os.Stdout, creds)
		},
	}

	return cmd
}

func printCreds(w io.Writer, creds credentials.Credentials) {
	labelStyle := color.New(color.Bold)
	valueStyle := color.New(color.FgBlue)

	_, _ = fmt.Fprintln(w)
	_, _ = labelStyle.Fprint(w, "Currently configured credentials:\n")
	_, _ = labelStyle.Fprint(w, "\t        Username: ")
	_, _ = valueStyle.Fprintln(w, creds.Username)
	_, _ = labelStyle.Fprint(w, "\t   Access token: ")
	_, _ = valueStyle.Fprintln(w, mask(creds.PAT))
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Collected from: %s\n", creds.Source)
	_, _ = fmt.Fprintln(w)
}

// mask hides all but the last four characters of s.
func mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
