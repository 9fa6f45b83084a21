package catalog

import (
	"fmt"
	"sort"
	"strconv"
)

// FormatID renders a numeric identifier zero-padded to at least three
// digits; values past 999 keep their natural width.
func FormatID(n int) string {
	return fmt.Sprintf("%03d", n)
}

// NextCandidateID returns max(existing numeric ids)+1, or "001" for an
// empty catalog. Kept alongside NextAvailableID because callers choose
// either allocation path.
func (c *Catalog) NextCandidateID() string {
	max := 0
	for id := range c.byID {
		if n, err := strconv.Atoi(id); err == nil && n > max {
			max = n
		}
	}
	return FormatID(max + 1)
}

// NextAvailableID returns the minimum unassigned identifier in the dense
// range [1, size+1]. When a recently deleted identifier is free inside
// that range it is preferred, favouring low-number reuse before the next
// resequencing pass.
func (c *Catalog) NextAvailableID() string {
	var unused []string
	for n := 1; n <= len(c.byID)+1; n++ {
		id := FormatID(n)
		if _, taken := c.byID[id]; !taken {
			unused = append(unused, id)
		}
	}
	for _, id := range unused {
		if _, hinted := c.deleted[id]; hinted {
			return id
		}
	}
	return unused[0]
}

// Resequence restores the dense identifier invariant: sorts current
// identifiers ascending and reassigns 001..N in that order, preserving
// relative order. Calling it twice in a row is a no-op.
func (c *Catalog) Resequence() {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	renumbered := make(map[string]*Product, len(ids))
	for i, id := range ids {
		p := c.byID[id]
		p.ID = FormatID(i + 1)
		renumbered[p.ID] = p
	}
	c.byID = renumbered
}
