// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"github.com/irifrance/xsat/z"
)

// Type ImplCache caches literals implied by unit propagation of a
// single literal, filled by probing.  Single writer: only the
// orchestrator goroutine touches it.  Entries are inter literals and
// are invalidated by cleaning; renumbering requires a clean-until-
// stable loop first, then UpdateVars.
type ImplCache struct {
	s *S

	// imps[m] holds literals implied by m.
	imps [][]z.Lit

	disabled bool
}

func NewImplCache(s *S) *ImplCache {
	return &ImplCache{
		s:    s,
		imps: make([][]z.Lit, 2*(int(s.Vars.Top)+1))}
}

func (c *ImplCache) growToVar(u z.Var) {
	w := make([][]z.Lit, 2*(int(u)+1))
	copy(w, c.imps)
	c.imps = w
}

// Enabled says whether the cache is in use.
func (c *ImplCache) Enabled() bool {
	return !c.disabled
}

// Record notes that assigning m implies o.
func (c *ImplCache) Record(m z.Lit, o z.Lit) {
	if c.disabled {
		return
	}
	c.imps[m] = append(c.imps[m], o)
}

// Implied gives the cached implications of m.
func (c *ImplCache) Implied(m z.Lit) []z.Lit {
	return c.imps[m]
}

// MemUsed approximates the memory held by the cache in bytes.
func (c *ImplCache) MemUsed() int64 {
	n := int64(len(c.imps)) * 24
	for _, sl := range c.imps {
		n += int64(cap(sl)) * 4
	}
	return n
}

// Free drops the cache contents and disables it.
func (c *ImplCache) Free() {
	c.imps = make([][]z.Lit, len(c.imps))
	c.disabled = true
}

// Clean removes entries referring to assigned or removed variables
// and follows replacement of entry literals.  The second return is
// false when unsat was derived (cannot currently happen; kept for
// interface parity with TryBoth).  changed reports whether anything
// was rewritten, for the clean-until-stable loop before renumbering.
func (c *ImplCache) Clean() (changed bool, ok bool) {
	if c.disabled {
		return false, true
	}
	s := c.s
	for mi := range c.imps {
		m := z.Lit(mi)
		if len(c.imps[m]) == 0 {
			continue
		}
		if s.Vars.Vals[m] != 0 || s.Vars.Removed[m.Var()] != RemovedNone {
			c.imps[m] = nil
			changed = true
			continue
		}
		sl := c.imps[m]
		j := 0
		for _, o := range sl {
			o = s.replacer.LitReplacedWith(o)
			if s.Vars.Vals[o] != 0 || s.Vars.Removed[o.Var()] != RemovedNone {
				changed = true
				continue
			}
			if o != sl[j] {
				changed = true
			}
			sl[j] = o
			j++
		}
		c.imps[m] = sl[:j]
	}
	return changed, true
}

// TryBoth derives units from the intersection of the implication
// sets of v and not v.  Returns false when unsat was derived.
func (c *ImplCache) TryBoth() bool {
	if c.disabled {
		return true
	}
	s := c.s
	for v := z.Var(1); v <= s.Vars.Max; v++ {
		if s.Vars.TV(v) != z.TVUndef || s.Vars.Removed[v] != RemovedNone {
			continue
		}
		pos := c.imps[v.Pos()]
		if len(pos) == 0 {
			continue
		}
		neg := c.imps[v.Neg()]
		if len(neg) == 0 {
			continue
		}
		inNeg := map[z.Lit]bool{}
		for _, o := range neg {
			inNeg[o] = true
		}
		for _, o := range pos {
			if !inNeg[o] {
				continue
			}
			if s.Vars.Vals[o] != 0 {
				continue
			}
			// o holds whichever way v goes.
			s.proof.AddUnit(o)
			if !s.enq0Prop(o) {
				return false
			}
		}
	}
	return true
}

// UpdateVars remaps all cache content after renumbering.  The cache
// must have been cleaned until stable beforehand.
func (c *ImplCache) UpdateVars(permLit []z.Lit) {
	if c.disabled {
		return
	}
	w := make([][]z.Lit, len(c.imps))
	for mi := range c.imps {
		sl := c.imps[mi]
		if len(sl) == 0 {
			continue
		}
		for i, o := range sl {
			sl[i] = permLit[o]
		}
		w[permLit[z.Lit(mi)]] = sl
	}
	c.imps = w
}
