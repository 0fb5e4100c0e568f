// Package ecadmin implements the erasure coding administration commands of
// ecfsctl: a registry of dash-prefixed commands, the dispatcher that resolves
// and runs them, and the four policy operations.
package ecadmin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/marmos91/ecfs/internal/logger"
)

// Dispatcher resolves the first argument to a command and runs it.
type Dispatcher struct {
	registry *Registry
	env      *Env
}

// NewDispatcher creates a dispatcher over registry. env is shared by every
// command it runs.
func NewDispatcher(registry *Registry, env *Env) *Dispatcher {
	e := *env
	e.registry = registry
	if e.Program == "" {
		e.Program = "ecfsctl"
	}
	return &Dispatcher{registry: registry, env: &e}
}

// Run executes the command named by args[0] with the remaining arguments and
// returns the process exit status. The error is non-nil only when results
// could not be written.
func (d *Dispatcher) Run(ctx context.Context, args []string) (int, error) {
	if len(args) == 0 {
		d.printUsage(d.env.Stderr)
		return ExitUsage, nil
	}

	cmd, ok := d.registry.Resolve(args[0])
	if !ok {
		fmt.Fprintf(d.env.Stderr, "Can't understand command '%s'\n", args[0])
		if !strings.HasPrefix(args[0], "-") {
			fmt.Fprintln(d.env.Stderr, "Command names must start with dashes.")
		}
		d.printUsage(d.env.Stderr)
		return ExitUsage, nil
	}

	status, err := cmd.Run(ctx, d.env, args[1:])
	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		logger.Debug("Invalid argument", "command", cmd.Name(), logger.KeyError, err)
		fmt.Fprintln(d.env.Stderr, Prettify(argErr))
		return ExitArgument, nil
	}
	if err != nil {
		return status, fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	return status, nil
}

func (d *Dispatcher) printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s [COMMANDS]\n", d.env.Program)
	for _, c := range d.registry.Commands() {
		fmt.Fprint(w, "          "+c.ShortUsage())
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, GenericUsage())
}
