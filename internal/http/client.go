package http

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/funcinfra/pipelinectl/internal/logger"
)

const (
	// attempts is the total number of tries for a single request.
	attempts = 3
	// retryWait is the fixed spacing between tries.
	retryWait = 1 * time.Second
)

// NewRetryableClient returns a new pre-configured instance of retryablehttp.Client.
// Requests are attempted up to 3 times, 1 second apart. Connection errors, 429 and 5xx responses are retried.
func NewRetryableClient(timeout time.Duration) *retryablehttp.Client {
	return &retryablehttp.Client{
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
		},
		RetryWaitMin: retryWait,
		RetryWaitMax: retryWait,
		RetryMax:     attempts - 1,
		CheckRetry:   retryablehttp.DefaultRetryPolicy,
		Backoff:      retryablehttp.DefaultBackoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
		Logger:       &logger.Logger{},
	}
}
