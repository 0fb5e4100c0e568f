package apiclient

import (
	"context"

	"github.com/marmos91/ecfs/pkg/namespace"
)

var _ namespace.Service = (*Client)(nil)

type policyList struct {
	Policies []*namespace.Policy `json:"policies"`
}

type effectivePolicy struct {
	Path   string            `json:"path"`
	Policy *namespace.Policy `json:"policy"`
}

type setPolicyRequest struct {
	Path   string `json:"path"`
	Policy string `json:"policy"`
}

// ListPolicies returns every policy known to the server.
func (c *Client) ListPolicies(ctx context.Context) ([]*namespace.Policy, error) {
	resp, err := getResource[policyList](ctx, c, "/api/v1/ec/policies")
	if err != nil {
		return nil, err
	}
	return resp.Policies, nil
}

// GetEffectivePolicy returns the policy governing path, or nil when it is
// unspecified.
func (c *Client) GetEffectivePolicy(ctx context.Context, path string) (*namespace.Policy, error) {
	resp, err := getResource[effectivePolicy](ctx, c, withPath("/api/v1/ec/policy", path))
	if err != nil {
		return nil, err
	}
	return resp.Policy, nil
}

// SetPolicy assigns policy to path.
func (c *Client) SetPolicy(ctx context.Context, path, policy string) error {
	return c.put(ctx, "/api/v1/ec/policy", setPolicyRequest{Path: path, Policy: policy}, nil)
}

// UnsetPolicy removes the explicit assignment at path.
func (c *Client) UnsetPolicy(ctx context.Context, path string) error {
	return c.delete(ctx, withPath("/api/v1/ec/policy", path), nil)
}
