package ecadmin

import (
	"fmt"
	"strings"
	"time"

	"github.com/marmos91/ecfs/internal/cli/output"
)

// GenericOptions are accepted by every invocation before the command name.
type GenericOptions struct {
	Conf     string        // -conf: client configuration file
	FS       string        // -fs: namespace server URL
	Token    string        // -token: bearer token
	WorkDir  string        // -workdir: base for relative paths
	Timeout  time.Duration // -timeout: per request timeout
	LogLevel string        // -loglevel
	Output   output.Format // -output
}

var genericSpecs = []OptionSpec{
	{Name: "-conf", Placeholder: "<configuration file>", Description: "specify a client configuration file", TakesValue: true},
	{Name: "-fs", Placeholder: "<ecfs://host:port>", Description: "specify the namespace server to use, overrides 'server_url' from configuration", TakesValue: true},
	{Name: "-token", Placeholder: "<token>", Description: "bearer token used to authenticate to the namespace server", TakesValue: true},
	{Name: "-workdir", Placeholder: "<path>", Description: "directory relative paths are resolved against", TakesValue: true},
	{Name: "-timeout", Placeholder: "<duration>", Description: "timeout for each request to the namespace server, e.g. 30s", TakesValue: true},
	{Name: "-loglevel", Placeholder: "<level>", Description: "log level: DEBUG, INFO, WARN or ERROR", TakesValue: true},
	{Name: "-output", Placeholder: "<format>", Description: "result format: text, table, json or yaml", TakesValue: true},
}

// ParseGenericOptions strips the generic options that precede the command
// name and returns them with the remaining arguments. Failures are
// *ArgumentError.
func ParseGenericOptions(args []string) (GenericOptions, []string, error) {
	var g GenericOptions

	for len(args) > 0 {
		name := args[0]
		if !isGeneric(name) {
			break
		}
		if len(args) < 2 {
			return GenericOptions{}, nil, &ArgumentError{Message: fmt.Sprintf("option %s requires 1 argument.", name)}
		}
		value := args[1]
		args = args[2:]

		switch name {
		case "-conf":
			g.Conf = value
		case "-fs":
			g.FS = value
		case "-token":
			g.Token = value
		case "-workdir":
			g.WorkDir = value
		case "-timeout":
			d, err := time.ParseDuration(value)
			if err != nil || d <= 0 {
				return GenericOptions{}, nil, &ArgumentError{Message: fmt.Sprintf("invalid -timeout %q: must be a positive duration", value)}
			}
			g.Timeout = d
		case "-loglevel":
			g.LogLevel = value
		case "-output":
			f, err := output.ParseFormat(value)
			if err != nil {
				return GenericOptions{}, nil, &ArgumentError{Message: err.Error()}
			}
			g.Output = f
		}
	}
	return g, args, nil
}

func isGeneric(name string) bool {
	for _, s := range genericSpecs {
		if s.Name == name {
			return true
		}
	}
	return false
}

// GenericUsage returns the help text describing the generic options.
func GenericUsage() string {
	rows := make([]output.Option, 0, len(genericSpecs))
	for _, s := range genericSpecs {
		rows = append(rows, output.Option{Name: s.Name + " " + s.Placeholder, Description: s.Description})
	}

	var b strings.Builder
	b.WriteString("Generic options supported are:\n")
	output.PrintOptions(&b, rows)
	b.WriteString("\nThe general command line syntax is:\n")
	b.WriteString("command [genericOptions] [commandOptions]\n\n")
	return b.String()
}
