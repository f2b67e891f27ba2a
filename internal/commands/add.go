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
	Register(&AddCmd{})
}

// optionalString is a flag value that remembers whether it was set.
type optionalString struct {
	val **string
}

func (o optionalString) String() string {
	if o.val == nil || *o.val == nil {
		return ""
	}
	return **o.val
}

func (o optionalString) Set(s string) error {
	*o.val = &s
	return nil
}

// AddCmd implements the add command.
type AddCmd struct {
	description *string
}

// SetDescription sets the description (for testing).
func (c *AddCmd) SetDescription(d string) {
	c.description = &d
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return nil }
func (c *AddCmd) Synopsis() string  { return "Add a new task" }
func (c *AddCmd) Usage() string     { return "tasktracker add [--description <text>] <title...>" }
func (c *AddCmd) NeedsAuth() bool   { return false }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	c.description = nil
	fs.Var(optionalString{&c.description}, "description", "")
	fs.Var(optionalString{&c.description}, "d", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")

	f := openStore(cfg)
	l := f.Load()
	added, err := l.Add(title, c.description)
	if err != nil {
		return reportTaskError(errOut, err)
	}
	if code := save(f, l, errOut); code != exitcode.Success {
		return code
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "Added: %d %s\n", added.ID, added.Title)
	}
	return exitcode.Success
}
