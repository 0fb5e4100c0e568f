package ecadmin

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/marmos91/ecfs/pkg/namespace"
)

func (c Command) listPolicies(ctx context.Context, env *Env, args []string) (int, error) {
	if _, status, err := c.parse(env, args); status != ExitOK || err != nil {
		return status, err
	}

	svc, err := env.serviceFor(ctx, Target{})
	if err != nil {
		return 0, err
	}

	policies, err := svc.ListPolicies(ctx)
	if err != nil {
		return remoteFailure(env, c.name, err), nil
	}

	list := make(policyList, 0, len(policies))
	for _, p := range policies {
		if p != nil {
			list = append(list, p)
		}
	}
	if err := env.printer().Print(list); err != nil {
		return 0, err
	}
	return ExitOK, nil
}

func (c Command) getPolicy(ctx context.Context, env *Env, args []string) (int, error) {
	opts, status, err := c.parse(env, args)
	if status != ExitOK || err != nil {
		return status, err
	}
	t, err := c.target(env, opts)
	if err != nil {
		return 0, err
	}
	svc, err := env.serviceFor(ctx, t)
	if err != nil {
		return 0, err
	}

	policy, err := svc.GetEffectivePolicy(ctx, t.Path)
	if err != nil {
		return remoteFailure(env, c.name, err), nil
	}
	if err := env.printer().Print(effectivePolicy{Path: t.Raw, Policy: policy}); err != nil {
		return 0, err
	}
	return ExitOK, nil
}

func (c Command) setPolicy(ctx context.Context, env *Env, args []string) (int, error) {
	opts, status, err := c.parse(env, args)
	if status != ExitOK || err != nil {
		return status, err
	}
	t, err := c.target(env, opts)
	if err != nil {
		return 0, err
	}
	name, _ := opts.Value("-policy")
	svc, err := env.serviceFor(ctx, t)
	if err != nil {
		return 0, err
	}

	if err := svc.SetPolicy(ctx, t.Path, name); err != nil {
		return remoteFailure(env, c.name, err), nil
	}
	if err := env.printer().Print(policyChange{Action: "set", Path: t.Raw, Policy: name}); err != nil {
		return 0, err
	}
	return ExitOK, nil
}

func (c Command) unsetPolicy(ctx context.Context, env *Env, args []string) (int, error) {
	opts, status, err := c.parse(env, args)
	if status != ExitOK || err != nil {
		return status, err
	}
	t, err := c.target(env, opts)
	if err != nil {
		return 0, err
	}
	svc, err := env.serviceFor(ctx, t)
	if err != nil {
		return 0, err
	}

	if err := svc.UnsetPolicy(ctx, t.Path); err != nil {
		return remoteFailure(env, c.name, err), nil
	}
	if err := env.printer().Print(policyChange{Action: "unset", Path: t.Raw}); err != nil {
		return 0, err
	}
	return ExitOK, nil
}

// policyList is the result of -listPolicies.
type policyList []*namespace.Policy

func (l policyList) RenderText(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "Erasure Coding Policies:"); err != nil {
		return err
	}
	for _, p := range l {
		if _, err := fmt.Fprintln(w, "\t"+p.Name); err != nil {
			return err
		}
	}
	return nil
}

func (l policyList) Headers() []string {
	return []string{"ID", "Name", "Codec", "Data", "Parity", "Cell Size", "State"}
}

func (l policyList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, p := range l {
		rows = append(rows, []string{
			strconv.Itoa(int(p.ID)),
			p.Name,
			p.Schema.Codec,
			strconv.Itoa(p.Schema.DataUnits),
			strconv.Itoa(p.Schema.ParityUnits),
			strconv.Itoa(p.CellSize),
			string(p.State),
		})
	}
	return rows
}

// effectivePolicy is the result of -getPolicy. A nil Policy is unspecified.
type effectivePolicy struct {
	Path   string            `json:"path" yaml:"path"`
	Policy *namespace.Policy `json:"policy" yaml:"policy"`
}

func (e effectivePolicy) RenderText(w io.Writer) error {
	var err error
	if e.Policy != nil {
		_, err = fmt.Fprintln(w, e.Policy.Name)
	} else {
		_, err = fmt.Fprintf(w, "The erasure coding policy of %s is unspecified\n", e.Path)
	}
	return err
}

// policyChange is the result of -setPolicy and -unsetPolicy.
type policyChange struct {
	Action string `json:"action" yaml:"action"`
	Path   string `json:"path" yaml:"path"`
	Policy string `json:"policy,omitempty" yaml:"policy,omitempty"`
}

func (p policyChange) RenderText(w io.Writer) error {
	var err error
	if p.Action == "set" {
		_, err = fmt.Fprintf(w, "Set erasure coding policy %s on %s\n", p.Policy, p.Path)
	} else {
		_, err = fmt.Fprintf(w, "Unset erasure coding policy from %s\n", p.Path)
	}
	return err
}
