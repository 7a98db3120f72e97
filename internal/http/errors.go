package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/funcinfra/pipelinectl/internal/errkind"
)

var (
	// ErrServerError is returned when the server was not able to correctly handle our request (status code >= 500).
	ErrServerError = errors.New("internal server error")
	// ErrUnauthorized is returned when the credentials were rejected.
	ErrUnauthorized = fmt.Errorf("credentials were rejected: %w", errkind.ErrAuthentication)
)

// checkResponse maps unsuccessful responses to errors. what describes the request in error messages.
func checkResponse(resp *http.Response, what string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 && resp.StatusCode != http.StatusNonAuthoritativeInfo {
		return nil
	}

	switch {
	// DevOps answers an invalid PAT with a 203 sign-in page.
	case resp.StatusCode == http.StatusNonAuthoritativeInfo,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s failed: %w", what, ErrUnauthorized)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%s failed: %w (%d)", what, ErrServerError, resp.StatusCode)
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("%s failed; unexpected response code:'%d', msg:'%v'", what, resp.StatusCode, string(body))
}
