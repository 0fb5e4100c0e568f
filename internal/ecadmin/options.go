package ecadmin

import "fmt"

// OptionSpec declares one option a command accepts.
type OptionSpec struct {
	Name        string // e.g. "-path"
	Placeholder string // e.g. "<path>", shown in usage
	Description string
	Required    bool
	TakesValue  bool

	// MissingMessage is printed, followed by the long usage, when a required
	// option is absent.
	MissingMessage string
}

// Options holds the values extracted by ParseOptions.
type Options struct {
	values map[string]string
	flags  map[string]bool
}

// Value returns the value given for a value option.
func (o Options) Value(name string) (string, bool) {
	v, ok := o.values[name]
	return v, ok
}

// Flag reports whether a flag option was present.
func (o Options) Flag(name string) bool {
	return o.flags[name]
}

// ParseOptions extracts the declared options from args in declaration order.
// Options may appear anywhere in args; scanning stops at "--". Only the first
// occurrence of an option is consumed.
//
// A required option that is absent yields a *UsageError built from its
// MissingMessage and usage. A value option given as the last token yields an
// *ArgumentError. Tokens left after all options are extracted yield a
// "<command>: Too many arguments" *UsageError. args is not modified.
func ParseOptions(command string, specs []OptionSpec, args []string, usage string) (Options, error) {
	rest := append([]string(nil), args...)
	opts := Options{values: make(map[string]string), flags: make(map[string]bool)}

	for _, spec := range specs {
		i := indexOption(rest, spec.Name)
		if i < 0 {
			if spec.Required {
				return Options{}, &UsageError{Message: spec.MissingMessage + "\nUsage: " + usage}
			}
			continue
		}

		if !spec.TakesValue {
			opts.flags[spec.Name] = true
			rest = append(rest[:i], rest[i+1:]...)
			continue
		}

		if i+1 >= len(rest) {
			return Options{}, &ArgumentError{Message: fmt.Sprintf("option %s requires 1 argument.", spec.Name)}
		}
		opts.values[spec.Name] = rest[i+1]
		rest = append(rest[:i], rest[i+2:]...)
	}

	if len(rest) > 0 {
		return Options{}, &UsageError{Message: command + ": Too many arguments"}
	}
	return opts, nil
}

func indexOption(args []string, name string) int {
	for i, a := range args {
		if a == "--" {
			return -1
		}
		if a == name {
			return i
		}
	}
	return -1
}
