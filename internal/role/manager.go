package role

import (
	"errors"

	"github.com/rolesmith/rolesmith/internal/permission"
)

// Domain errors
var (
	// ErrNoCurrentRole is returned by operations that need a loaded role.
	ErrNoCurrentRole = errors.New("no current role: create or load a role first")
)

// Manager owns the session's mutable current role. It is not safe for
// concurrent use; callers that share a Manager across goroutines (such as the
// serve wrapper) must synchronize externally.
type Manager struct {
	current *Definition
}

// NewManager creates a manager with no role loaded.
func NewManager() *Manager {
	return &Manager{}
}

// Current returns the current role, or nil when none is loaded.
func (m *Manager) Current() *Definition {
	return m.current
}

// HasCurrent reports whether a role is loaded.
func (m *Manager) HasCurrent() bool {
	return m.current != nil
}

// SetCurrent replaces the current role.
func (m *Manager) SetCurrent(d *Definition) {
	m.current = d
}

// Create makes a fresh empty role and sets it as current.
func (m *Manager) Create(name, description string) *Definition {
	m.current = New(name, description)
	return m.current
}

// Require returns the current role or ErrNoCurrentRole.
func (m *Manager) Require() (*Definition, error) {
	if m.current == nil {
		return nil, ErrNoCurrentRole
	}
	return m.current, nil
}

// Merge pulls permissions from the source roles into the current role.
// Existing grants are always preserved: the accumulator is seeded from the
// current role before any source is considered. Each source's grants are
// filtered per category by stringFilter and typeFilter (either may be empty)
// and unioned in. The result is rewritten as exactly one block per category,
// deduplicated and sorted. A source contributing nothing after filtering is
// a no-op, not an error.
func (m *Manager) Merge(sources []*Definition, stringFilter string, typeFilter permission.Type) (*Definition, error) {
	cur, err := m.Require()
	if err != nil {
		return nil, err
	}

	acc := permission.NewActionSet()
	if hasNonEmptyBlock(cur.Permissions) {
		acc = permission.Extract(cur.Permissions)
	}

	for _, src := range sources {
		extracted := permission.Extract(src.Permissions)
		dst := acc.Categories()
		for i, set := range extracted.Categories() {
			filtered := permission.Filter(permission.SortedKeys(set), stringFilter, typeFilter)
			for _, a := range filtered {
				dst[i][a] = struct{}{}
			}
		}
	}

	cur.Permissions = []permission.Block{acc.Block()}
	cur.Touch()
	return cur, nil
}

// Remove deletes the current role's permissions matching the filters,
// independently per category. With both filters empty every permission
// matches, so callers must supply at least one; the CLI enforces this
// before calling. When every category ends up empty, Permissions becomes
// an empty list, which is distinct from a freshly created role's single
// empty block.
func (m *Manager) Remove(stringFilter string, typeFilter permission.Type) (*Definition, error) {
	cur, err := m.Require()
	if err != nil {
		return nil, err
	}

	extracted := permission.Extract(cur.Permissions)
	for _, set := range extracted.Categories() {
		toRemove := permission.Filter(permission.SortedKeys(set), stringFilter, typeFilter)
		for _, a := range toRemove {
			delete(set, a)
		}
	}

	if extracted.IsEmpty() {
		cur.Permissions = []permission.Block{}
	} else {
		cur.Permissions = []permission.Block{extracted.Block()}
	}
	cur.Touch()
	return cur, nil
}

// SetName renames the current role.
func (m *Manager) SetName(name string) (*Definition, error) {
	cur, err := m.Require()
	if err != nil {
		return nil, err
	}
	cur.Name = name
	cur.Touch()
	return cur, nil
}

// SetDescription updates the current role's description.
func (m *Manager) SetDescription(description string) (*Definition, error) {
	cur, err := m.Require()
	if err != nil {
		return nil, err
	}
	cur.Description = description
	cur.Touch()
	return cur, nil
}

// SetScopes replaces the current role's assignable scopes.
func (m *Manager) SetScopes(scopes []string) (*Definition, error) {
	cur, err := m.Require()
	if err != nil {
		return nil, err
	}
	cur.AssignableScopes = scopes
	cur.Touch()
	return cur, nil
}

func hasNonEmptyBlock(blocks []permission.Block) bool {
	for _, b := range blocks {
		if !b.IsEmpty() {
			return true
		}
	}
	return false
}
