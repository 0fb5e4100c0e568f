package apiclient

import (
	"context"

	"github.com/marmos91/ecfs/pkg/namespace"
)

type pathRequest struct {
	Path string `json:"path"`
}

// Mkdirs creates the directory at path along with any missing ancestors.
func (c *Client) Mkdirs(ctx context.Context, path string) (*namespace.Entry, error) {
	return createResource[namespace.Entry](ctx, c, "/api/v1/namespace/directories", pathRequest{Path: path})
}

// CreateFile creates an empty file that takes its parent's effective policy.
func (c *Client) CreateFile(ctx context.Context, path string) (*namespace.Entry, error) {
	return createResource[namespace.Entry](ctx, c, "/api/v1/namespace/files", pathRequest{Path: path})
}

// Stat returns the entry at path.
func (c *Client) Stat(ctx context.Context, path string) (*namespace.Entry, error) {
	return getResource[namespace.Entry](ctx, c, withPath("/api/v1/namespace/entries", path))
}
