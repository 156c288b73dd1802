package table

// FilterChain is the ordered column chain driving the dashboard's
// cascading multi-selects. A selection at one link narrows the
// candidate values offered at every later link; earlier links are
// unaffected (one-directional cascade, not constraint propagation).
var FilterChain = []Column{ColBuild, ColTest, ColJob, ColArch, ColDevice}

// Selection holds the user's chosen values per column. A missing or
// empty entry means no constraint at that column.
type Selection map[Column][]string

// IsEmpty reports whether no column has any chosen value.
func (s Selection) IsEmpty() bool {
	for _, values := range s {
		if len(values) > 0 {
			return false
		}
	}
	return true
}

// Values returns the chosen values for a column (nil when unset).
func (s Selection) Values(col Column) []string { return s[col] }

// Cascade resolves candidate sets and the final filtered table for a
// base table under a Selection. Identical inputs always produce
// identical outputs: candidates are sorted and the filtered table
// keeps the base table's row order.
type Cascade struct {
	base Table
	sel  Selection
}

// NewCascade creates a resolver over base with the given selection.
func NewCascade(base Table, sel Selection) *Cascade {
	if sel == nil {
		sel = Selection{}
	}
	return &Cascade{base: base, sel: sel}
}

// Candidates returns the legal choices for col: the distinct values of
// col in the base table restricted by the selections at every column
// that precedes col in the FilterChain. Columns outside the chain get
// unrestricted candidates.
func (c *Cascade) Candidates(col Column) []string {
	restricted := c.base
	for _, upstream := range FilterChain {
		if upstream == col {
			break
		}
		restricted = restricted.Filter(upstream, c.sel.Values(upstream))
	}
	return restricted.Distinct(col)
}

// Apply returns the conjunction of every non-empty selection across
// all chain columns. The result is independent of chain order.
func (c *Cascade) Apply() Table {
	filtered := c.base
	for _, col := range FilterChain {
		filtered = filtered.Filter(col, c.sel.Values(col))
	}
	return filtered
}
