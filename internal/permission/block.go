package permission

import "sort"

// Block is one set of grants inside a role definition. JSON keys follow the
// Azure role document format exactly; empty fields are pruned on export.
type Block struct {
	Actions        []string `json:"Actions,omitempty"`
	NotActions     []string `json:"NotActions,omitempty"`
	DataActions    []string `json:"DataActions,omitempty"`
	NotDataActions []string `json:"NotDataActions,omitempty"`
}

// IsEmpty reports whether all four fields are empty.
func (b Block) IsEmpty() bool {
	return len(b.Actions) == 0 &&
		len(b.NotActions) == 0 &&
		len(b.DataActions) == 0 &&
		len(b.NotDataActions) == 0
}

// ActionSet holds the four grant categories as deduplicated sets. It is the
// working form used by merge and remove before re-serializing to a Block.
type ActionSet struct {
	Actions        map[string]struct{}
	NotActions     map[string]struct{}
	DataActions    map[string]struct{}
	NotDataActions map[string]struct{}
}

// NewActionSet returns an ActionSet with all four sets allocated.
func NewActionSet() *ActionSet {
	return &ActionSet{
		Actions:        make(map[string]struct{}),
		NotActions:     make(map[string]struct{}),
		DataActions:    make(map[string]struct{}),
		NotDataActions: make(map[string]struct{}),
	}
}

// Extract unions the corresponding fields of all blocks into one ActionSet.
func Extract(blocks []Block) *ActionSet {
	s := NewActionSet()
	for _, b := range blocks {
		addAll(s.Actions, b.Actions)
		addAll(s.NotActions, b.NotActions)
		addAll(s.DataActions, b.DataActions)
		addAll(s.NotDataActions, b.NotDataActions)
	}
	return s
}

// Categories returns the four sets in canonical order: Actions, NotActions,
// DataActions, NotDataActions. The maps are shared with the receiver, so
// mutations through the returned slice are visible on the set.
func (s *ActionSet) Categories() [4]map[string]struct{} {
	return [4]map[string]struct{}{s.Actions, s.NotActions, s.DataActions, s.NotDataActions}
}

// IsEmpty reports whether all four sets are empty.
func (s *ActionSet) IsEmpty() bool {
	return len(s.Actions) == 0 &&
		len(s.NotActions) == 0 &&
		len(s.DataActions) == 0 &&
		len(s.NotDataActions) == 0
}

// Block serializes the set into a single Block with each field deduplicated
// and sorted lexicographically for deterministic output.
func (s *ActionSet) Block() Block {
	return Block{
		Actions:        SortedKeys(s.Actions),
		NotActions:     SortedKeys(s.NotActions),
		DataActions:    SortedKeys(s.DataActions),
		NotDataActions: SortedKeys(s.NotDataActions),
	}
}

// MergeBlocks unions a delta of grants into existing blocks. It delegates to
// the same set-union algebra the role manager uses: the result is always
// exactly one block holding the union of every existing block and the delta,
// with empty fields dropped on serialization.
func MergeBlocks(existing []Block, delta *ActionSet) []Block {
	merged := Extract(existing)
	if delta != nil {
		dst := merged.Categories()
		src := delta.Categories()
		for i := range src {
			for a := range src[i] {
				dst[i][a] = struct{}{}
			}
		}
	}
	return []Block{merged.Block()}
}

// SortedKeys returns the set members sorted lexicographically (case-sensitive
// on the stored casing). An empty set yields nil, so omitempty pruning works.
func SortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func addAll(set map[string]struct{}, actions []string) {
	for _, a := range actions {
		set[a] = struct{}{}
	}
}
