package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasktracker/internal/config"
	"tasktracker/internal/exitcode"
	"tasktracker/internal/output"
	"tasktracker/internal/service"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return nil }
func (c *ToggleCmd) Synopsis() string  { return "Mark or unmark a task as done" }
func (c *ToggleCmd) Usage() string     { return "tasktracker toggle <id>" }
func (c *ToggleCmd) NeedsAuth() bool   { return false }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := parseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	f := openStore(cfg)
	l := f.Load()
	toggled, err := l.Toggle(id)
	if err != nil {
		return reportTaskError(errOut, err)
	}
	if code := save(f, l, errOut); code != exitcode.Success {
		return code
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "Task %d is now %s.\n", toggled.ID, output.DoneState(toggled.Done))
	}
	return exitcode.Success
}
