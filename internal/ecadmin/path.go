package ecadmin

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Scheme is the URL scheme that addresses an ecfs namespace server.
const Scheme = "ecfs"

// Target is a parsed -path value.
type Target struct {
	// Raw is the value as typed; user-facing messages echo it.
	Raw string

	// Endpoint is "host:port" when Raw was an ecfs:// URL, else empty.
	Endpoint string

	// Path is the absolute, cleaned namespace path.
	Path string
}

// ParsePath parses a -path value. Relative paths are resolved against
// workingDir. Failures are *ArgumentError.
func ParsePath(raw, workingDir string) (Target, error) {
	if raw == "" {
		return Target{}, &ArgumentError{Message: "Can not create a Path from an empty string"}
	}

	t := Target{Raw: raw}
	p := raw

	if i := strings.Index(raw, "://"); i > 0 {
		u, err := url.Parse(raw)
		if err != nil {
			return Target{}, &ArgumentError{Message: fmt.Sprintf("Invalid path %s: %v", raw, err)}
		}
		if u.Scheme != Scheme {
			return Target{}, &ArgumentError{Message: fmt.Sprintf("Wrong FS: %s, expected: %s://", raw, Scheme)}
		}
		if u.Host == "" {
			return Target{}, &ArgumentError{Message: fmt.Sprintf("Invalid path %s: missing server address", raw)}
		}
		t.Endpoint = u.Host
		p = u.Path
		if p == "" {
			p = "/"
		}
	}

	if !strings.HasPrefix(p, "/") {
		if workingDir == "" {
			workingDir = "/"
		}
		p = path.Join(workingDir, p)
	}
	t.Path = path.Clean(p)
	return t, nil
}
