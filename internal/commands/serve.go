package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"

	"tasktracker/internal/config"
	"tasktracker/internal/exitcode"
	"tasktracker/internal/service"
	"tasktracker/internal/web"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd implements the serve command. It blocks until ctx is cancelled.
type ServeCmd struct {
	listen string
}

// SetListen sets the --listen flag (for testing).
func (c *ServeCmd) SetListen(addr string) {
	c.listen = addr
}

func (c *ServeCmd) Name() string      { return "serve" }
func (c *ServeCmd) Aliases() []string { return nil }
func (c *ServeCmd) Synopsis() string  { return "Serve the task list as a web page" }
func (c *ServeCmd) Usage() string     { return "tasktracker serve [--listen <addr>]" }
func (c *ServeCmd) NeedsAuth() bool   { return false }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listen, "listen", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	addr := c.listen
	if addr == "" {
		addr = cfg.Listen
	}
	if addr == "" {
		addr = config.DefaultListen
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	srv := web.New(openStore(cfg), cfg.Logger().WithField("component", "web"))
	fmt.Fprintf(out, "Serving on http://%s\n", ln.Addr())

	if err := srv.Serve(ctx, ln); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
