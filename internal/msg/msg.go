package msg

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
)

// CredentialsNotSet explains where DevOps credentials are looked up.
const CredentialsNotSet = `No DevOps credentials are set. Either set the environment variables $DEVOPS_USERNAME and $DEVOPS_PAT,
run 'pipelinectl configure' or pass --devops-username and --devops-pat.`

// LogCredentialsNotSet prints out a formatted and color coded version of CredentialsNotSet.
func LogCredentialsNotSet() {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Printf("\n%s: %s\n\n", red("WARNING"), CredentialsNotSet)
}

// LogPipelineSuccess prints out a pipeline success summary statement.
func LogPipelineSuccess(name string) {
	msg := fmt.Sprintf(" Pipeline %s has passed! ", name)
	dashes := strings.Repeat("─", len([]rune(msg))-2)
	log.Info().Msgf("┌%s┐", dashes)
	log.Info().Msg(msg)
	log.Info().Msgf("└%s┘", dashes)
}

// LogPipelineFailure prints out a pipeline failure summary statement.
func LogPipelineFailure(name, status string, failedTests int) {
	msg := fmt.Sprintf(" Pipeline %s has %s ", name, status)
	if failedTests > 0 {
		msg = fmt.Sprintf(" Pipeline %s has %s with %d failed tests ", name, status, failedTests)
	}
	dashes := strings.Repeat("─", len([]rune(msg))-2)
	log.Error().Msgf("┌%s┐", dashes)
	log.Error().Msg(msg)
	log.Error().Msgf("└%s┘", dashes)
}
