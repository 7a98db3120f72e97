// Package queue sends and receives the base64 encoded messages consumed by queue triggered functions.
package queue

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/funcinfra/pipelinectl/internal/errkind"
	"github.com/funcinfra/pipelinectl/internal/retry"
	"github.com/funcinfra/pipelinectl/internal/storage"
)

// Message is a message read from a queue.
type Message struct {
	ID string
	// PopReceipt is required to delete the message after it has been received.
	PopReceipt string
	// Text is the decoded content of the message.
	Text string
}

// Encode returns the base64 wire form of text.
func Encode(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// Decode returns the text of a base64 encoded message.
func Decode(s string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("message is not base64 encoded: %w", err)
	}
	return string(b), nil
}

// ErrEmpty is returned by Receive when no message is available.
var ErrEmpty = errors.New("queue is empty")

type queueClient interface {
	EnqueueMessage(ctx context.Context, content string, o *azqueue.EnqueueMessageOptions) (azqueue.EnqueueMessagesResponse, error)
	DequeueMessage(ctx context.Context, o *azqueue.DequeueMessageOptions) (azqueue.DequeueMessagesResponse, error)
	DeleteMessage(ctx context.Context, messageID string, popReceipt string, o *azqueue.DeleteMessageOptions) (azqueue.DeleteMessageResponse, error)
}

// Client reads and writes a single queue.
type Client struct {
	client queueClient
	Name   string
}

// NewClient returns a Client for the named queue, authenticated with the account's shared key.
func NewClient(a storage.Account, name string) (*Client, error) {
	cred, err := azqueue.NewSharedKeyCredential(a.Name, a.Key)
	if err != nil {
		return nil, &storage.AuthenticationError{Account: a.Name, Err: err}
	}

	svc, err := azqueue.NewServiceClientWithSharedKeyCredential(a.QueueURL(), cred, nil)
	if err != nil {
		return nil, err
	}

	return &Client{client: svc.NewQueueClient(name), Name: name}, nil
}

// Send enqueues text, base64 encoded, and returns the id of the new message.
func (c *Client) Send(ctx context.Context, text string) (string, error) {
	resp, err := c.client.EnqueueMessage(ctx, Encode(text), nil)
	if err != nil {
		return "", fmt.Errorf("failed to send message to queue %s: %w", c.Name, err)
	}
	if len(resp.Messages) == 0 || resp.Messages[0].MessageID == nil {
		return "", fmt.Errorf("failed to send message to queue %s: no message id returned", c.Name)
	}

	return *resp.Messages[0].MessageID, nil
}

// Receive dequeues a single message. The message becomes invisible to other consumers for visibility and must be
// removed with Delete once processed. Returns ErrEmpty if the queue has no visible messages.
func (c *Client) Receive(ctx context.Context, visibility time.Duration) (Message, error) {
	resp, err := c.client.DequeueMessage(ctx, &azqueue.DequeueMessageOptions{
		VisibilityTimeout: to.Ptr(int32(visibility / time.Second)),
	})
	if err != nil {
		return Message{}, fmt.Errorf("failed to receive message from queue %s: %w", c.Name, err)
	}
	if len(resp.Messages) == 0 {
		return Message{}, ErrEmpty
	}

	m := resp.Messages[0]
	text, err := Decode(deref(m.MessageText))
	if err != nil {
		return Message{}, err
	}

	return Message{
		ID:         deref(m.MessageID),
		PopReceipt: deref(m.PopReceipt),
		Text:       text,
	}, nil
}

// Delete removes a received message from the queue.
func (c *Client) Delete(ctx context.Context, m Message) error {
	if _, err := c.client.DeleteMessage(ctx, m.ID, m.PopReceipt, nil); err != nil {
		return fmt.Errorf("failed to delete message %s from queue %s: %w", m.ID, c.Name, err)
	}
	return nil
}

// Sender is the interface for writing messages.
type Sender interface {
	Send(ctx context.Context, text string) (string, error)
}

// Receiver is the interface for consuming messages.
type Receiver interface {
	Receive(ctx context.Context, visibility time.Duration) (Message, error)
	Delete(ctx context.Context, m Message) error
}

// ValidateOptions controls how long Validate waits for the function's output.
type ValidateOptions struct {
	Attempts   uint
	Interval   time.Duration
	Visibility time.Duration
}

// DefaultValidateOptions waits for up to 5 minutes.
func DefaultValidateOptions() ValidateOptions {
	return ValidateOptions{
		Attempts:   60,
		Interval:   5 * time.Second,
		Visibility: 30 * time.Second,
	}
}

// MismatchError is returned when the message read back differs from the one that was sent.
type MismatchError struct {
	Sent     string
	Received string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("received message %q does not match sent message %q", e.Received, e.Sent)
}

// Is reports a MismatchError as a validation error.
func (e *MismatchError) Is(target error) bool {
	return target == errkind.ErrValidation
}

// Validate sends a unique message to in and waits for it to show up on out, which is where the function under test
// writes its input back to. The received message is deleted before it is compared.
func Validate(ctx context.Context, in Sender, out Receiver, opts ValidateOptions) (Message, error) {
	sent := "pipelinectl-validation-" + uuid.NewString()

	id, err := in.Send(ctx, sent)
	if err != nil {
		return Message{}, err
	}
	log.Info().Str("messageID", id).Str("content", sent).Msg("Message sent.")

	m, err := retry.Do(ctx, func() (Message, error) {
		m, err := out.Receive(ctx, opts.Visibility)
		if err != nil && !errors.Is(err, ErrEmpty) {
			log.Warn().Err(err).Msg("Failed to receive message. Will try again.")
		}
		return m, err
	}, retry.CreateOptions().WithMaxCount(opts.Attempts).WithInterval(opts.Interval))
	if err != nil {
		return Message{}, fmt.Errorf("no message received after %d attempts: %w", opts.Attempts, err)
	}
	log.Info().Str("messageID", m.ID).Msg("Message received.")

	if err := out.Delete(ctx, m); err != nil {
		return m, err
	}

	if m.Text != sent {
		return m, &MismatchError{Sent: sent, Received: m.Text}
	}

	return m, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
