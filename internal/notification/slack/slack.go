package slack

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"

	"github.com/funcinfra/pipelinectl/internal/config"
	"github.com/funcinfra/pipelinectl/internal/report"
)

// TokenEnv is the environment variable that holds the bot token.
const TokenEnv = "SLACK_TOKEN"

type poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Notifier represents notifier for slack.
type Notifier struct {
	Channels []string
	Send     config.When
	api      poster
}

// NewNotifier returns a Notifier that posts to channels using token.
func NewNotifier(token string, cfg config.Slack) *Notifier {
	return &Notifier{
		Channels: cfg.Channels,
		Send:     cfg.Send,
		api:      slack.New(token),
	}
}

func (n *Notifier) shouldSend(passed bool) bool {
	return len(n.Channels) > 0 && n.Send.IsNow(passed)
}

// Notify posts a summary of res to all configured channels. Failing channels are logged and reported as one error.
func (n *Notifier) Notify(ctx context.Context, res report.InvocationResult) error {
	if !n.shouldSend(res.Passed()) {
		return nil
	}

	attachment := newAttachment(res)
	failed := 0
	for _, c := range n.Channels {
		channelID, timestamp, err := n.api.PostMessageContext(ctx,
			c,
			slack.MsgOptionText("pipelinectl result", false),
			slack.MsgOptionAttachments(attachment),
		)
		if err != nil {
			log.Error().Err(err).Str("channel", c).Msg("Failed to send message to slack.")
			failed++
			continue
		}
		log.Info().Msgf("Message successfully sent to slack channel %s at %s", channelID, timestamp)
	}

	if failed > 0 {
		return fmt.Errorf("failed to notify %d of %d slack channels", failed, len(n.Channels))
	}
	return nil
}

func newAttachment(res report.InvocationResult) slack.Attachment {
	color := "#F00000"
	if res.Passed() {
		color = "#008000"
	}

	fields := []slack.AttachmentField{
		{Title: "Status", Value: res.Status, Short: true},
		{Title: "Type", Value: res.Type, Short: true},
		{Title: "Branch", Value: res.SourceBranch, Short: true},
		{Title: "Build", Value: fmt.Sprintf("<%s|#%d>", res.BuildURL, res.BuildID), Short: true},
	}
	if len(res.TestResults) > 0 {
		fields = append(fields, slack.AttachmentField{
			Title: "Tests",
			Value: fmt.Sprintf("%d passed | %d failed | %d skipped",
				res.TestResults["Passed"], res.TestResults["Failed"], res.TestResults["Skipped"]),
		})
	}
	if res.Owner != "" {
		fields = append(fields, slack.AttachmentField{Title: "Owner", Value: res.Owner, Short: true})
	}

	return slack.Attachment{
		Color:  color,
		Title:  res.DisplayName,
		Fields: fields,
	}
}
