package bitmap

// Group holds one Row per page of a blocklet, indexed by page number.
//
// A nil page is allowed only for a page with no rows.
type Group struct {
	pages []*Row
}

// NewGroup returns a group with n empty page slots.
func NewGroup(n int) *Group {
	if n < 0 {
		n = 0
	}
	return &Group{pages: make([]*Row, n)}
}

// Len returns the number of page slots.
func (g *Group) Len() int { return len(g.pages) }

// Page returns the bitmap of page p, or nil if unset or out of range.
func (g *Group) Page(p int) *Row {
	if g == nil || p < 0 || p >= len(g.pages) {
		return nil
	}
	return g.pages[p]
}

// SetPage stores the bitmap of page p.
func (g *Group) SetPage(p int, r *Row) {
	if p < 0 || p >= len(g.pages) {
		return
	}
	g.pages[p] = r
}

// Cardinality returns the number of set rows across all pages.
func (g *Group) Cardinality() int {
	total := 0
	for _, r := range g.pages {
		if r != nil {
			total += r.Cardinality()
		}
	}
	return total
}

// IsEmpty reports whether no row in any page is set.
func (g *Group) IsEmpty() bool {
	for _, r := range g.pages {
		if r != nil && !r.IsEmpty() {
			return false
		}
	}
	return true
}

// And intersects g with other page by page. A page missing from other
// clears the corresponding page of g.
func (g *Group) And(other *Group) {
	for p, r := range g.pages {
		if r == nil {
			continue
		}
		r.And(other.Page(p))
	}
}

// Clone returns a deep copy.
func (g *Group) Clone() *Group {
	out := NewGroup(len(g.pages))
	for p, r := range g.pages {
		if r != nil {
			out.pages[p] = r.Clone()
		}
	}
	return out
}

// Equal reports whether both groups hold equal bitmaps for every page.
func (g *Group) Equal(other *Group) bool {
	if g == nil || other == nil {
		return g == other
	}
	if len(g.pages) != len(other.pages) {
		return false
	}
	for p := range g.pages {
		if !g.pages[p].Equal(other.pages[p]) {
			return false
		}
	}
	return true
}
