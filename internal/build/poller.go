package build

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/funcinfra/pipelinectl/internal/errkind"
)

const (
	// DefaultInterval is the time waited before each status query.
	DefaultInterval = 10 * time.Second
	// DefaultMaxTries bounds polling to roughly one hour at DefaultInterval.
	DefaultMaxTries = 360
)

// TimeoutError is returned when a build did not reach a terminal state within the polling budget.
type TimeoutError struct {
	URL   string
	Tries int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("build did not complete after %d status checks; check its status manually at %s", e.Tries, e.URL)
}

// Is reports a TimeoutError as a timeout.
func (e *TimeoutError) Is(target error) bool {
	return target == errkind.ErrTimeout
}

// Poller waits for a build to leave the notStarted and inProgress states.
type Poller struct {
	Reader   Reader
	Interval time.Duration
	MaxTries int
}

// NewPoller returns a Poller with the default interval and attempt budget.
func NewPoller(r Reader) Poller {
	return Poller{
		Reader:   r,
		Interval: DefaultInterval,
		MaxTries: DefaultMaxTries,
	}
}

// Poll queries the build at url once per interval until its status is terminal, and returns that last response.
// A failed query counts as an attempt without a response. Once MaxTries queries have been made without reaching a
// terminal state, a *TimeoutError is returned.
func (p Poller) Poll(ctx context.Context, url string) (Build, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	maxTries := p.MaxTries
	if maxTries <= 0 {
		maxTries = DefaultMaxTries
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	started := time.Now()
	loggedMinutes := 0

	for try := 1; try <= maxTries; try++ {
		if try > 1 {
			// The wait starts once the previous query has returned.
			timer.Reset(interval)
		}
		select {
		case <-ctx.Done():
			return Build{}, ctx.Err()
		case <-timer.C:
		}

		b, err := p.Reader.GetBuild(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return Build{}, ctx.Err()
			}
			log.Warn().Err(err).Int("try", try).Msg("Failed to retrieve build status. Will try again.")
			continue
		}
		log.Debug().Int("try", try).Str("status", string(b.Status)).Msg("Retrieved build status.")

		if !b.Status.Pending() {
			return b, nil
		}

		if waited := int(time.Since(started) / time.Minute); waited > loggedMinutes {
			loggedMinutes = waited
			log.Info().Int("buildID", b.ID).Str("status", string(b.Status)).
				Msgf("Still waiting for build to complete (%d min).", waited)
		}
	}

	return Build{}, &TimeoutError{URL: url, Tries: maxTries}
}
