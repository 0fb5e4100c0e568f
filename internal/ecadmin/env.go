package ecadmin

import (
	"context"
	"fmt"
	"io"

	"github.com/marmos91/ecfs/internal/cli/output"
	"github.com/marmos91/ecfs/pkg/namespace"
)

// Connector returns a Service for a "host:port" endpoint named in an
// ecfs:// path.
type Connector func(ctx context.Context, endpoint string) (namespace.Service, error)

// Env is everything a command needs to run.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer

	// Service is the configured namespace service.
	Service namespace.Service

	// Connect is used when a path names its own endpoint. May be nil, in
	// which case such paths are rejected.
	Connect Connector

	// WorkingDir resolves relative paths.
	WorkingDir string

	// Program is the name printed in the usage header.
	Program string

	// Format selects how results are printed on Stdout.
	Format output.Format

	registry *Registry
}

// serviceFor returns the service addressed by t.
func (e *Env) serviceFor(ctx context.Context, t Target) (namespace.Service, error) {
	if t.Endpoint == "" {
		if e.Service == nil {
			return nil, &ArgumentError{Message: "no namespace server configured"}
		}
		return e.Service, nil
	}
	if e.Connect == nil {
		return nil, &ArgumentError{Message: fmt.Sprintf("cannot connect to %s://%s", Scheme, t.Endpoint)}
	}
	svc, err := e.Connect(ctx, t.Endpoint)
	if err != nil {
		return nil, &ArgumentError{Message: fmt.Sprintf("cannot connect to %s://%s: %v", Scheme, t.Endpoint, err)}
	}
	return svc, nil
}

func (e *Env) printer() *output.Printer {
	return output.NewPrinter(e.Stdout, e.Format)
}
