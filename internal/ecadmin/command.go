package ecadmin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/marmos91/ecfs/internal/cli/output"
	"github.com/marmos91/ecfs/internal/logger"
)

// Kind identifies one of the administrative commands.
type Kind int

const (
	ListPolicies Kind = iota
	GetPolicy
	SetPolicy
	UnsetPolicy
	Help
)

// Command is an immutable administrative command. The set of commands is
// closed: every Command is built by NewCommand from a Kind.
type Command struct {
	kind        Kind
	name        string
	synopsis    string
	description string
	options     []OptionSpec
}

var pathOption = OptionSpec{
	Name:        "-path",
	Placeholder: "<path>",
	Required:    true,
	TakesValue:  true,
}

// NewCommand returns the command for kind. It panics on an unknown kind.
func NewCommand(kind Kind) Command {
	switch kind {
	case ListPolicies:
		return Command{
			kind:        kind,
			name:        "-listPolicies",
			description: "Get the list of supported erasure coding policies.",
		}

	case GetPolicy:
		path := pathOption
		path.Description = "The path of the file/directory for getting the erasure coding policy"
		path.MissingMessage = "Please specify the path with -path."
		return Command{
			kind:        kind,
			name:        "-getPolicy",
			synopsis:    "-path <path>",
			description: "Get the erasure coding policy of a file/directory.",
			options:     []OptionSpec{path},
		}

	case SetPolicy:
		path := pathOption
		path.Description = "The path of the file/directory to set the erasure coding policy"
		path.MissingMessage = "Please specify the path for setting the EC policy."
		return Command{
			kind:        kind,
			name:        "-setPolicy",
			synopsis:    "-path <path> -policy <policy>",
			description: "Set the erasure coding policy for a file/directory.",
			options: []OptionSpec{path, {
				Name:           "-policy",
				Placeholder:    "<policy>",
				Description:    "The name of the erasure coding policy",
				Required:       true,
				TakesValue:     true,
				MissingMessage: "Please specify the policy name.",
			}},
		}

	case UnsetPolicy:
		path := pathOption
		path.Description = "The path of the directory from which the erasure coding policy will be unset."
		path.MissingMessage = "Please specify a path."
		return Command{
			kind:        kind,
			name:        "-unsetPolicy",
			synopsis:    "-path <path>",
			description: "Unset the erasure coding policy for a directory.",
			options:     []OptionSpec{path},
		}

	case Help:
		return Command{
			kind:        kind,
			name:        "-help",
			synopsis:    "<command-name>",
			description: "Get detailed help about a command.",
			options: []OptionSpec{{
				Placeholder: "<command-name>",
				Description: "The command for which to get detailed help. If no command is specified, print detailed help for all commands",
			}},
		}
	}
	panic(fmt.Sprintf("ecadmin: unknown command kind %d", kind))
}

// Kind returns the command's kind.
func (c Command) Kind() Kind { return c.kind }

// Name returns the dash-prefixed name the command is invoked by.
func (c Command) Name() string { return c.name }

// Options returns the options the command declares.
func (c Command) Options() []OptionSpec { return c.options }

// ShortUsage returns the one line synopsis, newline terminated.
func (c Command) ShortUsage() string {
	if c.synopsis == "" {
		return "[" + c.name + "]\n"
	}
	return "[" + c.name + " " + c.synopsis + "]\n"
}

// LongUsage returns the synopsis, the description and the option listing.
func (c Command) LongUsage() string {
	var b strings.Builder
	b.WriteString(c.ShortUsage())
	b.WriteString("\n")
	b.WriteString(c.description)
	b.WriteString("\n")
	if len(c.options) == 0 {
		return b.String()
	}

	rows := make([]output.Option, 0, len(c.options))
	for _, o := range c.options {
		rows = append(rows, output.Option{Name: o.Placeholder, Description: o.Description})
	}
	b.WriteString("\n")
	output.PrintOptions(&b, rows)
	return b.String()
}

// Run executes the command with the arguments that followed its name.
//
// Usage problems are reported on env.Stderr and yield ExitUsage; failures of
// the namespace service are reported prettified and yield ExitRemote. An
// *ArgumentError is returned to the caller instead of being reported.
func (c Command) Run(ctx context.Context, env *Env, args []string) (int, error) {
	logger.Debug("Running command", "command", c.name, "args", len(args))

	switch c.kind {
	case ListPolicies:
		return c.listPolicies(ctx, env, args)
	case GetPolicy:
		return c.getPolicy(ctx, env, args)
	case SetPolicy:
		return c.setPolicy(ctx, env, args)
	case UnsetPolicy:
		return c.unsetPolicy(ctx, env, args)
	case Help:
		return c.help(env, args), nil
	}
	panic(fmt.Sprintf("ecadmin: unknown command kind %d", c.kind))
}

// parse extracts c's options. A usage error is printed and reported through
// status; any other error is returned.
func (c Command) parse(env *Env, args []string) (opts Options, status int, err error) {
	opts, err = ParseOptions(c.name, c.options, args, c.LongUsage())
	var usage *UsageError
	if errors.As(err, &usage) {
		fmt.Fprintln(env.Stderr, usage.Message)
		return Options{}, ExitUsage, nil
	}
	return opts, ExitOK, err
}

// target parses the -path option.
func (c Command) target(env *Env, opts Options) (Target, error) {
	raw, _ := opts.Value("-path")
	return ParsePath(raw, env.WorkingDir)
}

func remoteFailure(env *Env, command string, err error) int {
	logger.Debug("Namespace call failed", "command", command, logger.KeyError, err)
	fmt.Fprintln(env.Stderr, Prettify(err))
	return ExitRemote
}
