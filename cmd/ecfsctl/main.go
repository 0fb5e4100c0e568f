// Command ecfsctl administers the erasure coding policies of an ecfs
// namespace server.
//
//	ecfsctl [genericOptions] -listPolicies
//	ecfsctl [genericOptions] -getPolicy -path <path>
//	ecfsctl [genericOptions] -setPolicy -path <path> -policy <policy>
//	ecfsctl [genericOptions] -unsetPolicy -path <path>
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/ecfs/internal/ecadmin"
	"github.com/marmos91/ecfs/internal/logger"
	"github.com/marmos91/ecfs/pkg/apiclient"
	"github.com/marmos91/ecfs/pkg/namespace"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	status := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(status)
}

// run executes one ecfsctl invocation and returns its exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	generic, rest, err := ecadmin.ParseGenericOptions(args)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, ecadmin.Prettify(err))
		return ecadmin.ExitArgument
	}

	cfg, err := loadClientConfig(generic)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, ecadmin.Prettify(err))
		return ecadmin.ExitArgument
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		_, _ = fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return ecadmin.ExitArgument
	}
	logger.Debug("Client configuration loaded", "server_url", cfg.ServerURL, "working_dir", cfg.WorkingDir)

	newClient := func(baseURL string) *apiclient.Client {
		return apiclient.New(baseURL).WithToken(cfg.Token).WithTimeout(cfg.Timeout)
	}

	env := &ecadmin.Env{
		Stdout:  stdout,
		Stderr:  stderr,
		Service: newClient(cfg.ServerURL),
		Connect: func(ctx context.Context, endpoint string) (namespace.Service, error) {
			return newClient("http://" + endpoint), nil
		},
		WorkingDir: cfg.WorkingDir,
		Program:    "ecfsctl",
		Format:     generic.Output,
	}

	status, err := ecadmin.NewDispatcher(ecadmin.DefaultRegistry(), env).Run(ctx, rest)
	if err != nil {
		logger.Error("Command failed", logger.Err(err))
		_, _ = fmt.Fprintln(stderr, ecadmin.Prettify(err))
		if status == ecadmin.ExitOK {
			status = ecadmin.ExitRemote
		}
	}
	return status
}
