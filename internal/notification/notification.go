package notification

import (
	"context"

	"github.com/funcinfra/pipelinectl/internal/report"
)

// Notifier represents common interface for sending notifications about a finished invocation.
type Notifier interface {
	Notify(ctx context.Context, res report.InvocationResult) error
}
