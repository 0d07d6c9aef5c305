// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"github.com/irifrance/xsat/z"
)

// Type SubImplicit subsumes and strengthens the implicit (binary)
// clauses with one another, and long clauses with binaries.
type SubImplicit struct {
	s *S

	stSubsumed     int64
	stStrengthened int64
}

func NewSubImplicit(s *S) *SubImplicit {
	return &SubImplicit{s: s}
}

// SubsumeImplicit removes duplicate binary clauses and derives units
// from pairs (a b), (a not b).  Returns false when unsat was derived.
func (si *SubImplicit) SubsumeImplicit() bool {
	s := si.s
	if !s.ok {
		return false
	}
	key := func(a, b z.Lit) [2]z.Lit {
		if a < b {
			return [2]z.Lit{a, b}
		}
		return [2]z.Lit{b, a}
	}
	seen := map[[2]z.Lit]CLoc{}
	var dups []CLoc
	var units []z.Lit
	s.Cdb.ForallBins(func(p CLoc, a, b z.Lit, red bool) {
		k := key(a, b)
		if q, ok := seen[k]; ok {
			// keep the irredundant copy.
			if red {
				dups = append(dups, p)
			} else {
				dups = append(dups, q)
				seen[k] = p
			}
			return
		}
		seen[k] = p
	})
	// (a b) and (a not b) resolve to the unit a.
	for k := range seen {
		a, b := k[0], k[1]
		if _, ok := seen[key(a, b.Not())]; ok {
			units = append(units, a)
		}
		if _, ok := seen[key(a.Not(), b)]; ok {
			units = append(units, b)
		}
	}
	for _, p := range dups {
		si.stSubsumed++
		s.sumStats.Subsumed++
		s.Cdb.RemoveBin(p)
	}
	for _, u := range units {
		if s.Vars.Vals[u] == 1 {
			continue
		}
		s.proof.AddUnit(u)
		if !s.enq0Prop(u) {
			return false
		}
	}
	return s.ok
}

// SubStrClausesWithBin subsumes and strengthens long clauses with
// binary clauses: a binary (a b) subsumes any long clause containing
// both, and strengthens a long clause containing a and not b by
// removing not b.  Returns false when unsat was derived.
func (si *SubImplicit) SubStrClausesWithBin() bool {
	s := si.s
	if !s.ok {
		return false
	}
	var work []CLoc
	s.Cdb.ForallLong(func(p CLoc, hd Chd) {
		work = append(work, p)
	})
	for _, p := range work {
		if s.Cdb.CDat.Chd(p).freed() {
			continue
		}
		ms := s.Cdb.Lits(p, nil)
		inCl := map[z.Lit]bool{}
		for _, m := range ms {
			inCl[m] = true
		}
		subsumed := false
		strengthened := false
		j := 0
		for _, m := range ms {
			dropped := false
			for _, w := range s.Cdb.W[m] {
				// W[m] holds binaries containing not m.
				if !w.IsBinary() {
					continue
				}
				o := w.Other()
				if inCl[o] && o != m.Not() {
					// binary (not m, o) on a clause containing m and
					// o: self subsuming resolution drops m.
					dropped = true
					break
				}
			}
			if dropped {
				strengthened = true
				delete(inCl, m)
				continue
			}
			ms[j] = m
			j++
		}
		ms = ms[:j]
		// subsumption: binary (a b) with both a, b in the clause.
		for _, m := range ms {
			for _, w := range s.Cdb.W[m.Not()] {
				if !w.IsBinary() {
					continue
				}
				if inCl[w.Other()] && w.Other().Var() != m.Var() {
					subsumed = true
					break
				}
			}
			if subsumed {
				break
			}
		}
		if subsumed {
			si.stSubsumed++
			s.sumStats.Subsumed++
			s.Cdb.RemoveLong(p)
			continue
		}
		if !strengthened {
			continue
		}
		si.stStrengthened++
		s.sumStats.Strengthened++
		hd := s.Cdb.CDat.Chd(p)
		s.addClauseInt(ms, hd.Learnt(), hd.Lbd(), true, true, nil)
		if !s.ok {
			return false
		}
		s.Cdb.RemoveLong(p)
	}
	s.Cdb.sweepStores()
	return s.ok
}
