package ecadmin

import (
	"fmt"
	"strings"
)

// help prints detailed usage. It needs the registry, which the dispatcher
// places in env.
func (c Command) help(env *Env, args []string) int {
	commands := env.registry.Commands()

	switch len(args) {
	case 0:
		for _, cmd := range commands {
			fmt.Fprintln(env.Stderr, cmd.LongUsage())
		}
		return ExitOK
	case 1:
	default:
		fmt.Fprintln(env.Stderr, "You must give exactly one argument to -help.")
		return ExitUsage
	}

	name := args[0]
	if !strings.HasPrefix(name, "-") {
		name = "-" + name
	}
	cmd, ok := env.registry.Resolve(name)
	if !ok {
		names := make([]string, 0, len(commands))
		for _, cmd := range commands {
			names = append(names, strings.TrimPrefix(cmd.Name(), "-"))
		}
		fmt.Fprintf(env.Stderr, "Unknown command '%s'.\n", args[0])
		fmt.Fprintf(env.Stderr, "Valid help command names are:\n%s\n", strings.Join(names, ", "))
		return ExitUsage
	}

	fmt.Fprint(env.Stderr, cmd.LongUsage())
	return ExitOK
}
