package queue

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/funcinfra/pipelinectl/internal/cmd"
	"github.com/funcinfra/pipelinectl/internal/queue"
	"github.com/funcinfra/pipelinectl/internal/storage"
)

// Command creates the `queue` command
func Command() *cobra.Command {
	var account storage.Account

	c := &cobra.Command{
		Use:              "queue",
		Short:            "Interact with storage queues",
		SilenceUsage:     true,
		TraverseChildren: true,
	}
	cmd.AccountFlags(c.PersistentFlags(), &account)

	c.AddCommand(
		SendCommand(&account),
		ReceiveCommand(&account),
		ValidateCommand(&account),
	)

	return c
}

func newClient(account storage.Account, name string) (*queue.Client, error) {
	if name == "" {
		return nil, errors.New("no queue name specified")
	}
	a, err := cmd.ResolveAccount(account)
	if err != nil {
		return nil, err
	}
	return queue.NewClient(a, name)
}

// SendCommand creates the `queue send` command
func SendCommand(account *storage.Account) *cobra.Command {
	var name string

	c := &cobra.Command{
		Use:   "send TEXT",
		Short: "Sends a base64 encoded message to a queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			client, err := newClient(*account, name)
			if err != nil {
				return err
			}
			id, err := client.Send(c.Context(), args[0])
			if err != nil {
				return err
			}
			log.Info().Str("queue", name).Str("messageID", id).Msg("Message sent.")
			return nil
		},
	}
	c.Flags().StringVar(&name, "queue", "", "Name of the queue")

	return c
}

// ReceiveCommand creates the `queue receive` command
func ReceiveCommand(account *storage.Account) *cobra.Command {
	var (
		name       string
		visibility time.Duration
		keep       bool
	)

	c := &cobra.Command{
		Use:   "receive",
		Short: "Receives and decodes a single message from a queue",
		RunE: func(c *cobra.Command, args []string) error {
			client, err := newClient(*account, name)
			if err != nil {
				return err
			}
			m, err := client.Receive(c.Context(), visibility)
			if err != nil {
				return err
			}
			fmt.Println(m.Text)

			if keep {
				return nil
			}
			return client.Delete(c.Context(), m)
		},
	}
	c.Flags().StringVar(&name, "queue", "", "Name of the queue")
	c.Flags().DurationVar(&visibility, "visibility", 30*time.Second, "How long the message stays invisible to other consumers")
	c.Flags().BoolVar(&keep, "keep", false, "Leave the message on the queue")

	return c
}

// ValidateCommand creates the `queue validate` command
func ValidateCommand(account *storage.Account) *cobra.Command {
	var (
		inName  string
		outName string
		opts    = queue.DefaultValidateOptions()
	)

	c := &cobra.Command{
		Use:   "validate",
		Short: "Sends a message to the input queue and waits for it to arrive on the output queue",
		RunE: func(c *cobra.Command, args []string) error {
			in, err := newClient(*account, inName)
			if err != nil {
				return err
			}
			out, err := newClient(*account, outName)
			if err != nil {
				return err
			}

			m, err := queue.Validate(c.Context(), in, out, opts)
			if err != nil {
				return err
			}
			log.Info().Str("messageID", m.ID).Msg("Queue round trip validated.")
			return nil
		},
	}
	c.Flags().StringVar(&inName, "input-queue", "", "Queue the function reads from")
	c.Flags().StringVar(&outName, "output-queue", "", "Queue the function writes to")
	c.Flags().UintVar(&opts.Attempts, "attempts", opts.Attempts, "Maximum number of receive attempts")
	c.Flags().DurationVar(&opts.Interval, "interval", opts.Interval, "Time between two receive attempts")

	return c
}
