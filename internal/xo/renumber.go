// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"fmt"

	"github.com/irifrance/xsat/z"
)

// CalcRenumberSaving gives 1 - used/total over the inter variables,
// where used counts variables that are undef with removal kind none.
func (s *S) CalcRenumberSaving() float64 {
	if s.Vars.Max == 0 {
		return 0
	}
	used := 0
	for v := z.Var(1); v <= s.Vars.Max; v++ {
		if s.Vars.TV(v) == z.TVUndef && s.Vars.Removed[v] == RemovedNone {
			used++
		}
	}
	return 1.0 - float64(used)/float64(s.Vars.Max)
}

// RenumberVariables permutes the inter space so interesting
// (unassigned, unremoved) variables occupy the low indices, in their
// current order.  Runs only when forced or when the saving reaches
// 0.2.  Returns false when unsat was derived during the level 0
// clean.
func (s *S) RenumberVariables(must bool) bool {
	if s.Vars.Max == 0 {
		return s.ok
	}
	if !must && s.CalcRenumberSaving() < 0.2 {
		return s.ok
	}
	s.Trail.Back(0)
	if !s.Cdb.CleanAll(s.enq0Prop) {
		s.ok = false
		return false
	}
	s.sumStats.Renumbers++

	nOuter := s.Vmap.NVarsOuter()
	max := int(s.Vars.Max)
	perm := make([]z.Var, nOuter+1)
	inv := make([]z.Var, nOuter+1)
	at := z.Var(1)
	var useless []z.Var
	nEffective := 0
	for v := z.Var(1); v <= z.Var(max); v++ {
		if s.Vars.TV(v) != z.TVUndef || s.Vars.Removed[v] != RemovedNone {
			useless = append(useless, v)
			continue
		}
		perm[v] = at
		inv[at] = v
		at++
		nEffective++
	}
	for _, v := range useless {
		perm[v] = at
		inv[at] = v
		at++
	}
	// extend to the outer count as the identity.
	for v := max + 1; v <= nOuter; v++ {
		perm[v] = z.Var(v)
		inv[v] = z.Var(v)
	}

	permLit := make([]z.Lit, 2*(nOuter+1))
	permLit[0] = 0
	permLit[1] = 1
	for v := z.Var(1); int(v) <= nOuter; v++ {
		permLit[v.Pos()] = perm[v].Pos()
		permLit[v.Neg()] = perm[v].Neg()
	}

	// apply everywhere, in a fixed order.
	s.Cdb.UpdateVars(permLit)
	s.Vars.UpdateVars(perm, permLit)
	s.Trail.UpdateVars(permLit)
	s.Guess.UpdateVars(perm)
	if s.stamps != nil {
		s.stamps.UpdateVars()
	}
	s.RenumberXorClauses(perm)
	if s.cache != nil {
		s.cache.UpdateVars(permLit)
	}
	s.datasync.UpdateVars()
	s.Vmap.UpdateVars(perm)

	// assumptions carry inter literals and a membership bitmap.
	for i := range s.assumptionsSet {
		s.assumptionsSet[i] = false
	}
	for i := range s.assumptions {
		s.assumptions[i].Inter = permLit[s.assumptions[i].Inter]
	}
	s.fillAssumptionsSet()

	s.testRenumbering(nEffective)
	if err := s.Vmap.Check(); err != nil {
		panic(err)
	}

	if s.Opts.DoSaveMem {
		s.saveOnVarMemory(nEffective)
	}
	return s.ok
}

// testRenumbering checks that after a renumber every variable below
// the effective count is undef with removal kind none, and the rest
// are uninteresting.
func (s *S) testRenumbering(nEffective int) {
	uninteresting := false
	for v := z.Var(1); v <= s.Vars.Max; v++ {
		interesting := s.Vars.TV(v) == z.TVUndef && s.Vars.Removed[v] == RemovedNone
		if !interesting {
			uninteresting = true
			continue
		}
		if uninteresting {
			panic(fmt.Sprintf("xo: renumbered variables in the wrong order at %s", v))
		}
	}
	for v := z.Var(1); int(v) <= nEffective; v++ {
		if s.Vars.TV(v) != z.TVUndef || s.Vars.Removed[v] != RemovedNone {
			panic(fmt.Sprintf("xo: effective prefix broken at %s", v))
		}
	}
}

// saveOnVarMemory trims allocation slack after a renumber.  The per
// variable master arrays keep their outer length: removal kinds and
// level 0 values of the compacted-away variables are still consulted
// by clause ingress and model extraction.  The searcher side
// structures (heap, watches slack) shrink to the effective prefix.
func (s *S) saveOnVarMemory(nEffective int) {
	s.Guess.Rebuild(s.Vars)
	s.Cdb.FreeUnusedWatches()
}
