// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"tasktracker/internal/config"
	"tasktracker/internal/exitcode"
	"tasktracker/internal/service"
	"tasktracker/internal/storage"
	"tasktracker/internal/task"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command talks to Google Tasks.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, data path, logger).
	// svc is nil if NeedsAuth() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int
}

// openStore returns the storage handle for the configured data file.
func openStore(cfg *config.Config) *storage.File {
	return storage.New(cfg.DataPath(), cfg.Logger())
}

// errTaskIDRequired indicates no task id argument was given.
var errTaskIDRequired = errors.New("task id required")

// parseTaskID reads the single positional task id.
func parseTaskID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, errTaskIDRequired
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid task id: %s", args[0])
	}
	return id, nil
}

// reportTaskError prints a store error and returns its exit code.
func reportTaskError(errOut io.Writer, err error) int {
	var nf *task.NotFoundError
	switch {
	case errors.As(err, &nf):
		fmt.Fprintf(errOut, "error: task %d not found\n", nf.ID)
		return exitcode.UserError
	case errors.Is(err, task.ErrEmptyTitle):
		fmt.Fprintln(errOut, "error: title cannot be empty")
		return exitcode.UserError
	case errors.Is(err, task.ErrIDExhausted):
		fmt.Fprintln(errOut, "error: no task ids left")
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
}

// save persists l and reports failures.
func save(f *storage.File, l task.List, errOut io.Writer) int {
	if err := f.Save(l); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
