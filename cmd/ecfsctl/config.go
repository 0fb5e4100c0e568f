package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/marmos91/ecfs/internal/ecadmin"
	"github.com/marmos91/ecfs/pkg/config"
)

// loadClientConfig loads the client configuration and applies the generic
// options on top of it. Failures are *ecadmin.ArgumentError.
func loadClientConfig(g ecadmin.GenericOptions) (*config.ClientConfig, error) {
	cfg, err := config.LoadClient(g.Conf)
	if err != nil {
		return nil, &ecadmin.ArgumentError{Message: err.Error()}
	}

	if g.FS != "" {
		u, err := serverURL(g.FS)
		if err != nil {
			return nil, err
		}
		cfg.ServerURL = u
	}
	if g.Token != "" {
		cfg.Token = g.Token
	}
	if g.WorkDir != "" {
		cfg.WorkingDir = g.WorkDir
	}
	if g.Timeout > 0 {
		cfg.Timeout = g.Timeout
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = strings.ToUpper(g.LogLevel)
	}

	if err := config.ValidateClient(cfg); err != nil {
		return nil, &ecadmin.ArgumentError{Message: err.Error()}
	}
	return cfg, nil
}

// serverURL turns a -fs value into the base URL of the control plane.
// ecfs://host:port addresses the server over plain HTTP; http and https URLs
// are used as given.
func serverURL(fs string) (string, error) {
	u, err := url.Parse(fs)
	if err != nil || u.Host == "" {
		return "", &ecadmin.ArgumentError{Message: fmt.Sprintf("Invalid -fs %s: expected %s://host:port", fs, ecadmin.Scheme)}
	}

	switch u.Scheme {
	case ecadmin.Scheme:
		return "http://" + u.Host, nil
	case "http", "https":
		return strings.TrimRight(u.String(), "/"), nil
	default:
		return "", &ecadmin.ArgumentError{Message: fmt.Sprintf("Wrong FS: %s, expected: %s://", fs, ecadmin.Scheme)}
	}
}
