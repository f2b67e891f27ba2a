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
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// It is also what runs when no command is given.
type ListCmd struct {
	done    bool
	notDone bool
}

// SetFilter sets the --done / --not-done flags (for testing).
func (c *ListCmd) SetFilter(done, notDone bool) {
	c.done = done
	c.notDone = notDone
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "Show tasks" }
func (c *ListCmd) Usage() string     { return "tasktracker list [--done | --not-done]" }
func (c *ListCmd) NeedsAuth() bool   { return false }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.done, "done", false, "")
	fs.BoolVar(&c.notDone, "not-done", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.done && c.notDone {
		fmt.Fprintln(errOut, "error: cannot use both --done and --not-done")
		return exitcode.UserError
	}
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	l := openStore(cfg).Load()
	if len(l.Tasks) == 0 {
		fmt.Fprintln(out, output.EmptyHint)
		return exitcode.Success
	}

	var filter *bool
	switch {
	case c.done:
		filter = &c.done
	case c.notDone:
		open := false
		filter = &open
	}

	tasks := l.Filter(filter)
	if len(tasks) == 0 {
		fmt.Fprintln(out, output.NoMatches)
		return exitcode.Success
	}
	output.FormatTasks(out, tasks)
	return exitcode.Success
}
