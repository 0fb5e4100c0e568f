package namespace

import (
	"fmt"
	"slices"
	"strings"
)

// PolicyState is the administrative state of an EC policy.
type PolicyState string

const (
	PolicyEnabled  PolicyState = "ENABLED"
	PolicyDisabled PolicyState = "DISABLED"
)

// Schema describes how a stripe is encoded.
type Schema struct {
	Codec       string `json:"codec"`
	DataUnits   int    `json:"data_units"`
	ParityUnits int    `json:"parity_units"`
}

// Policy is a named erasure coding scheme known to the namespace service.
type Policy struct {
	ID       uint8       `json:"id"`
	Name     string      `json:"name"`
	Schema   Schema      `json:"schema"`
	CellSize int         `json:"cell_size"`
	State    PolicyState `json:"state"`
}

// IsEnabled returns true if the policy may be assigned to paths.
func (p *Policy) IsEnabled() bool {
	return p.State == PolicyEnabled
}

func systemPolicy(id uint8, codec string, data, parity, cellKiB int) Policy {
	return Policy{
		ID:       id,
		Name:     fmt.Sprintf("%s-%d-%d-%dk", strings.ToUpper(codec), data, parity, cellKiB),
		Schema:   Schema{Codec: codec, DataUnits: data, ParityUnits: parity},
		CellSize: cellKiB * 1024,
		State:    PolicyDisabled,
	}
}

// SystemPolicies returns the built-in policy set, ordered by ID.
func SystemPolicies() []Policy {
	return []Policy{
		systemPolicy(1, "rs", 6, 3, 1024),
		systemPolicy(2, "rs", 3, 2, 1024),
		systemPolicy(3, "rs", 6, 3, 64),
		systemPolicy(4, "rs-legacy", 6, 3, 1024),
		systemPolicy(5, "xor", 2, 1, 1024),
		systemPolicy(6, "rs", 10, 4, 1024),
	}
}

// DefaultEnabledPolicy is enabled when no explicit enabled set is configured.
const DefaultEnabledPolicy = "RS-6-3-1024k"

// Catalog is the immutable set of policies a namespace service knows about.
type Catalog struct {
	byName map[string]*Policy
	order  []*Policy
}

// NewCatalog builds a catalog of the system policies with the named policies
// enabled. A nil or empty list enables DefaultEnabledPolicy only.
func NewCatalog(enabled []string) (*Catalog, error) {
	if len(enabled) == 0 {
		enabled = []string{DefaultEnabledPolicy}
	}

	c := &Catalog{byName: make(map[string]*Policy)}
	for _, p := range SystemPolicies() {
		c.byName[p.Name] = &p
		c.order = append(c.order, &p)
	}

	for _, name := range enabled {
		p, ok := c.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownPolicy, name, strings.Join(c.names(false), ", "))
		}
		p.State = PolicyEnabled
	}
	return c, nil
}

// List returns copies of all policies ordered by ID.
func (c *Catalog) List() []*Policy {
	out := make([]*Policy, 0, len(c.order))
	for _, p := range c.order {
		cp := *p
		out = append(out, &cp)
	}
	return out
}

// Lookup returns a copy of the named policy or ErrUnknownPolicy.
func (c *Catalog) Lookup(name string) (*Policy, error) {
	p, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
	cp := *p
	return &cp, nil
}

// Assignable returns the named policy if it exists and is enabled.
func (c *Catalog) Assignable(name string) (*Policy, error) {
	p, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: policy '%s' does not match any enabled erasure coding policies: [%s]",
			ErrUnknownPolicy, name, strings.Join(c.names(true), ", "))
	}
	if !p.IsEnabled() {
		return nil, fmt.Errorf("%w: policy '%s' is not enabled; enabled policies: [%s]",
			ErrPolicyDisabled, name, strings.Join(c.names(true), ", "))
	}
	cp := *p
	return &cp, nil
}

func (c *Catalog) names(enabledOnly bool) []string {
	var out []string
	for _, p := range c.order {
		if enabledOnly && !p.IsEnabled() {
			continue
		}
		out = append(out, p.Name)
	}
	slices.Sort(out)
	return out
}
