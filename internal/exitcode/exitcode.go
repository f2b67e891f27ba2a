// Package exitcode defines process exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError covers bad arguments, invalid config files, empty titles and
	// unknown task ids.
	UserError = 1

	// AuthError covers missing or rejected Google credentials.
	AuthError = 2

	// BackendError covers failed writes to the data file and remote API errors.
	BackendError = 3
)
