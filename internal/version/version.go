package version

// Default build-time variable.
// These values are overridden via ldflags
var (
	Version   = "0.0.0+unknown"
	GitCommit = "unknown-commit-sha"
)

// UserAgent returns the User-Agent header value sent with every outgoing request.
func UserAgent() string {
	return "pipelinectl/" + Version
}
