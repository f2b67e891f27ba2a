package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasktracker/internal/config"
	"tasktracker/internal/exitcode"
	"tasktracker/internal/service"
)

func init() {
	Register(&PushCmd{})
}

// PushCmd implements the push command: a one-way copy of open local tasks
// into a Google Tasks list. Nothing is read back into the local file.
type PushCmd struct {
	listName string
}

// SetListName sets the --list flag (for testing).
func (c *PushCmd) SetListName(name string) {
	c.listName = name
}

func (c *PushCmd) Name() string      { return "push" }
func (c *PushCmd) Aliases() []string { return nil }
func (c *PushCmd) Synopsis() string  { return "Copy open tasks to Google Tasks" }
func (c *PushCmd) Usage() string     { return "tasktracker push [--list <list-name>]" }
func (c *PushCmd) NeedsAuth() bool   { return true }

func (c *PushCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *PushCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	listName := c.listName
	if listName == "" {
		listName = cfg.RemoteList
	}

	var list service.TaskList
	var err error
	if listName != "" {
		list, err = svc.ResolveList(ctx, listName)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				fmt.Fprintf(errOut, "error: list not found: %s\n", listName)
				return exitcode.UserError
			}
			if strings.Contains(err.Error(), "ambiguous") {
				fmt.Fprintf(errOut, "error: ambiguous list name: %s\n", listName)
				return exitcode.UserError
			}
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
			return exitcode.BackendError
		}
	} else {
		list, err = svc.DefaultList(ctx)
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
			return exitcode.BackendError
		}
	}

	remote, err := svc.ListOpenTasks(ctx, list.ID)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	present := make(map[string]bool, len(remote))
	for _, rt := range remote {
		present[strings.TrimSpace(rt.Title)] = true
	}

	notDone := false
	local := openStore(cfg).Load().Filter(&notDone)

	logger := cfg.Logger().WithField("list", list.Title)
	pushed, skipped := 0, 0
	for _, t := range local {
		if present[t.Title] {
			skipped++
			continue
		}
		if err := svc.CreateTask(ctx, list.ID, t.Title, t.DescriptionText()); err != nil {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
			if pushed > 0 {
				fmt.Fprintf(errOut, "%d task(s) were pushed before the failure\n", pushed)
			}
			return exitcode.BackendError
		}
		logger.WithField("id", t.ID).Debug("pushed task")
		present[t.Title] = true
		pushed++
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "Pushed %d task(s) to %s (%d already present).\n", pushed, list.Title, skipped)
	}
	return exitcode.Success
}
