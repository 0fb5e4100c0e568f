package ecadmin

import "fmt"

// Registry is an ordered set of commands. Registration order is the order
// commands are listed in usage output.
type Registry struct {
	commands []Command
	byName   map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// DefaultRegistry returns the registry used by ecfsctl.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, k := range []Kind{ListPolicies, GetPolicy, SetPolicy, UnsetPolicy, Help} {
		r.Register(NewCommand(k))
	}
	return r
}

// Register appends c. It panics if a command with the same name exists.
func (r *Registry) Register(c Command) {
	if _, exists := r.byName[c.Name()]; exists {
		panic(fmt.Sprintf("command %s already registered", c.Name()))
	}
	r.byName[c.Name()] = len(r.commands)
	r.commands = append(r.commands, c)
}

// Resolve returns the command whose name is exactly name.
func (r *Registry) Resolve(name string) (Command, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Command{}, false
	}
	return r.commands[i], true
}

// Commands returns the registered commands in registration order.
func (r *Registry) Commands() []Command {
	return append([]Command(nil), r.commands...)
}
