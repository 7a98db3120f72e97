// Package errkind declares the kinds of fatal errors a pipelinectl command can end with.
//
// Concrete error types live with the component that produces them and match one of the kinds below via errors.Is.
package errkind

import "errors"

var (
	// ErrValidation means a missing or invalid parameter, or a malformed parameter string.
	ErrValidation = errors.New("validation error")
	// ErrAuthentication means the storage (or DevOps) credentials were rejected.
	ErrAuthentication = errors.New("authentication error")
	// ErrSubmission means a pipeline run could not be queued.
	ErrSubmission = errors.New("submission error")
	// ErrTimeout means polling exceeded its attempt budget.
	ErrTimeout = errors.New("timeout error")
	// ErrRender means a badge image could not be fetched.
	ErrRender = errors.New("render error")
	// ErrUpload means results could not be uploaded.
	ErrUpload = errors.New("upload error")
)

// Of returns the kind of err, or nil if err does not match any known kind.
func Of(err error) error {
	for _, k := range []error{ErrValidation, ErrAuthentication, ErrSubmission, ErrTimeout, ErrRender, ErrUpload} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
