// Package namespace implements the hierarchical path namespace that owns
// erasure coding policy assignments.
//
// A directory may carry one explicit policy. The effective policy of a
// directory is its explicit policy, else the explicit policy of its nearest
// ancestor, else unspecified. Inheritance is resolved at query time and never
// copied to descendants, so unsetting a policy makes the directory fall back
// to whatever its ancestors resolve to. Files freeze the effective policy of
// their parent when they are created.
package namespace

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/marmos91/ecfs/internal/logger"
	"github.com/marmos91/ecfs/internal/telemetry"
)

// Service is the policy control boundary used by ecfsctl. It is implemented
// locally by Namespace and remotely by apiclient.Client.
type Service interface {
	// ListPolicies returns every policy known to the service.
	ListPolicies(ctx context.Context) ([]*Policy, error)

	// GetEffectivePolicy returns the policy governing path, or nil when the
	// policy is unspecified.
	GetEffectivePolicy(ctx context.Context, path string) (*Policy, error)

	// SetPolicy explicitly assigns the named policy to path.
	SetPolicy(ctx context.Context, path, policy string) error

	// UnsetPolicy removes the explicit assignment at path.
	UnsetPolicy(ctx context.Context, path string) error
}

// Namespace resolves and mutates policy assignments over a Store.
//
// Mutations are serialized so that check-then-write sequences are atomic
// within a process. Reads go straight to the store.
type Namespace struct {
	store   Store
	catalog *Catalog
	mu      sync.Mutex
	now     func() time.Time
}

var _ Service = (*Namespace)(nil)

// New creates a Namespace over store and makes sure the root directory exists.
func New(ctx context.Context, store Store, catalog *Catalog) (*Namespace, error) {
	if store == nil {
		return nil, errors.New("namespace: store is required")
	}
	if catalog == nil {
		return nil, errors.New("namespace: catalog is required")
	}

	ns := &Namespace{store: store, catalog: catalog, now: time.Now}

	_, err := store.Get(ctx, Root)
	switch {
	case errors.Is(err, ErrNotFound):
		if err := store.Put(ctx, &Entry{Path: Root, Type: EntryDirectory, UpdatedAt: ns.now()}); err != nil {
			return nil, fmt.Errorf("failed to create root directory: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read root directory: %w", err)
	}
	return ns, nil
}

// Catalog returns the policy catalog backing this namespace.
func (n *Namespace) Catalog() *Catalog {
	return n.catalog
}

// ListPolicies returns all catalog policies ordered by ID.
func (n *Namespace) ListPolicies(ctx context.Context) ([]*Policy, error) {
	_, span := telemetry.StartSpan(ctx, "namespace.ListPolicies")
	defer span.End()
	return n.catalog.List(), nil
}

// GetEffectivePolicy resolves the policy governing path.
func (n *Namespace) GetEffectivePolicy(ctx context.Context, path string) (*Policy, error) {
	ctx, span := telemetry.StartSpan(ctx, "namespace.GetEffectivePolicy",
		telemetry.WithAttributes(attribute.String(telemetry.AttrPath, path)))
	defer span.End()

	p, err := CleanPath(path)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}

	policy, err := n.effective(ctx, p)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	if policy != nil {
		span.SetAttributes(attribute.String(telemetry.AttrPolicy, policy.Name))
	}
	return policy, nil
}

func (n *Namespace) effective(ctx context.Context, p string) (*Policy, error) {
	e, err := n.get(ctx, p)
	if err != nil {
		return nil, err
	}

	if !e.IsDir() {
		return n.resolve(e.Policy)
	}

	for _, ancestor := range Ancestors(p) {
		a := e
		if ancestor != p {
			a, err = n.store.Get(ctx, ancestor)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
		}
		if a.Policy != "" {
			logger.DebugCtx(ctx, "Resolved effective policy", "path", p, "from", ancestor, "policy", a.Policy)
			return n.resolve(a.Policy)
		}
	}
	return nil, nil
}

func (n *Namespace) resolve(name string) (*Policy, error) {
	if name == "" {
		return nil, nil
	}
	return n.catalog.Lookup(name)
}

// SetPolicy assigns policy to the directory at path, replacing any previous
// explicit assignment.
func (n *Namespace) SetPolicy(ctx context.Context, path, policy string) error {
	ctx, span := telemetry.StartSpan(ctx, "namespace.SetPolicy",
		telemetry.WithAttributes(
			attribute.String(telemetry.AttrPath, path),
			attribute.String(telemetry.AttrPolicy, policy),
		))
	defer span.End()

	err := n.setPolicy(ctx, path, policy)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return err
	}
	logger.InfoCtx(ctx, "Erasure coding policy set", "path", path, "policy", policy)
	return nil
}

func (n *Namespace) setPolicy(ctx context.Context, path, policy string) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}
	if _, err := n.catalog.Assignable(policy); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	e, err := n.get(ctx, p)
	if err != nil {
		return err
	}
	if !e.IsDir() {
		return fmt.Errorf("%w: attempt to set an erasure coding policy for a file %s", ErrNotDirectory, p)
	}

	e.Policy = policy
	e.UpdatedAt = n.now()
	return n.store.Put(ctx, e)
}

// UnsetPolicy removes the explicit assignment of the directory at path.
func (n *Namespace) UnsetPolicy(ctx context.Context, path string) error {
	ctx, span := telemetry.StartSpan(ctx, "namespace.UnsetPolicy",
		telemetry.WithAttributes(attribute.String(telemetry.AttrPath, path)))
	defer span.End()

	err := n.unsetPolicy(ctx, path)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return err
	}
	logger.InfoCtx(ctx, "Erasure coding policy unset", "path", path)
	return nil
}

func (n *Namespace) unsetPolicy(ctx context.Context, path string) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	e, err := n.get(ctx, p)
	if err != nil {
		return err
	}
	if !e.IsDir() {
		return fmt.Errorf("%w: cannot unset an erasure coding policy on a file %s", ErrNotDirectory, p)
	}
	if e.Policy == "" {
		return fmt.Errorf("%w: no erasure coding policy explicitly set on %s", ErrNoPolicySet, p)
	}

	e.Policy = ""
	e.UpdatedAt = n.now()
	return n.store.Put(ctx, e)
}

// Mkdirs creates the directory at path along with any missing ancestors.
// Existing directories are left untouched.
func (n *Namespace) Mkdirs(ctx context.Context, path string) error {
	p, err := CleanPath(path)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	chain := Ancestors(p)
	slices.Reverse(chain)
	for _, dir := range chain {
		e, err := n.store.Get(ctx, dir)
		switch {
		case errors.Is(err, ErrNotFound):
			if err := n.store.Put(ctx, &Entry{Path: dir, Type: EntryDirectory, UpdatedAt: n.now()}); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		case err != nil:
			return err
		case !e.IsDir():
			return fmt.Errorf("%w: %s is a file", ErrNotDirectory, dir)
		}
	}
	return nil
}

// CreateFile creates an empty file at path. The parent directory must exist.
// The file takes the parent's effective policy at creation time.
func (n *Namespace) CreateFile(ctx context.Context, path string) (*Entry, error) {
	p, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	if p == Root {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, p)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := n.store.Get(ctx, p); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, p)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	parent, err := n.get(ctx, Parent(p))
	if err != nil {
		return nil, err
	}
	if !parent.IsDir() {
		return nil, fmt.Errorf("%w: parent of %s is a file", ErrNotDirectory, p)
	}

	policy, err := n.effective(ctx, parent.Path)
	if err != nil {
		return nil, err
	}

	e := &Entry{Path: p, Type: EntryFile, UpdatedAt: n.now()}
	if policy != nil {
		e.Policy = policy.Name
	}
	if err := n.store.Put(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Stat returns the entry at path.
func (n *Namespace) Stat(ctx context.Context, path string) (*Entry, error) {
	p, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	return n.get(ctx, p)
}

func (n *Namespace) get(ctx context.Context, p string) (*Entry, error) {
	e, err := n.store.Get(ctx, p)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return e, err
}
