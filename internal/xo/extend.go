// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"fmt"

	"github.com/irifrance/xsat/z"
)

// Type Extender reconstructs a full outer model from the partial
// model of the simplified formula: replaced variables copy their
// representative's value, eliminated variables get a polarity
// satisfying every clause their elimination removed, in reverse
// elimination order.
type Extender struct {
	s *S
}

func NewExtender(s *S) *Extender {
	return &Extender{s: s}
}

// Extend completes the outer indexed model in place and verifies the
// result against the full clause database.
func (e *Extender) Extend(model []z.TV) {
	s := e.s

	// replaced variables: copy the representative with sign.
	copyReplaced := func() {
		for ov := z.Var(1); int(ov) < len(model); ov++ {
			iv := s.Vmap.OuterToInter(ov)
			if int(iv) < len(s.Vars.Removed) && s.Vars.Removed[iv] == RemovedReplaced {
				rep := s.replacer.LitReplacedWithOuter(ov.Pos())
				tv := model[rep.Var()]
				if !rep.IsPos() {
					tv = tv.Not()
				}
				model[ov] = tv
			}
		}
	}
	copyReplaced()

	// eliminated variables in reverse elimination order.
	if s.occ != nil {
		order := s.occ.ElimOrder()
		for i := len(order) - 1; i >= 0; i-- {
			ov := order[i]
			clauses := s.occ.ElimedClauses(ov)
			if clauses == nil {
				continue // uneliminated again
			}
			model[ov] = e.pickPolarity(model, ov, clauses)
		}
		// representatives eliminated after the replacement have a
		// value only now.
		copyReplaced()
	}

	// anything still undef is unconstrained.
	for ov := z.Var(1); int(ov) < len(model); ov++ {
		if model[ov] == z.TVUndef {
			model[ov] = z.TVFalse
		}
	}

	e.verify(model)
}

// pickPolarity picks a value for ov satisfying every stored clause.
func (e *Extender) pickPolarity(model []z.TV, ov z.Var, clauses [][]z.Lit) z.TV {
	needPos := false
	needNeg := false
	for _, oms := range clauses {
		sat := false
		through := z.LitNull
		for _, om := range oms {
			if om.Var() == ov {
				through = om
				continue
			}
			if evalLit(model, om) == z.TVTrue {
				sat = true
				break
			}
		}
		if sat || through == z.LitNull {
			continue
		}
		if through.IsPos() {
			needPos = true
		} else {
			needNeg = true
		}
	}
	if needPos && needNeg {
		panic(fmt.Sprintf("xo: cannot extend model over eliminated %s", ov))
	}
	if needNeg {
		return z.TVFalse
	}
	return z.TVTrue
}

func evalLit(model []z.TV, m z.Lit) z.TV {
	if int(m.Var()) >= len(model) {
		return z.TVUndef
	}
	tv := model[m.Var()]
	if !m.IsPos() {
		tv = tv.Not()
	}
	return tv
}

// verify checks the irredundant long and binary clauses, the retained
// xors and the eliminated clause stock against the model.  Redundant
// (learnt) long and binary clauses are not checked.
func (e *Extender) verify(model []z.TV) {
	s := e.s
	evalInter := func(m z.Lit) z.TV {
		return evalLit(model, s.Vmap.InterToOuterLit(m))
	}
	check := func(ms []z.Lit) {
		for _, m := range ms {
			if evalInter(m) == z.TVTrue {
				return
			}
		}
		panic(fmt.Sprintf("xo: model leaves clause unsatisfied: %v", ms))
	}
	s.Cdb.ForallLong(func(p CLoc, hd Chd) {
		if hd.Learnt() {
			return
		}
		check(s.Cdb.Lits(p, nil))
	})
	s.Cdb.ForallBins(func(p CLoc, a, b z.Lit, red bool) {
		if red {
			return
		}
		check([]z.Lit{a, b})
	})
	if s.occ != nil {
		for _, ov := range s.occ.ElimOrder() {
			for _, oms := range s.occ.ElimedClauses(ov) {
				sat := false
				for _, om := range oms {
					if evalLit(model, om) == z.TVTrue {
						sat = true
						break
					}
				}
				if !sat {
					panic(fmt.Sprintf("xo: model leaves eliminated clause unsatisfied: %v", oms))
				}
			}
		}
	}
	for _, x := range s.xors {
		parity := false
		for _, v := range x.Vs {
			if evalInter(v.Pos()) == z.TVTrue {
				parity = !parity
			}
		}
		if parity != x.Rhs {
			panic(fmt.Sprintf("xo: model violates parity constraint %s", x))
		}
	}
}

// Undefine greedily unsets model values that no clause depends on.
// trailLimVars are the inter variables decided during search (level
// boundaries); only those, intersected with the configured
// independent variables when present, are candidates.  A variable is
// flippable iff no clause is singly satisfied through it.  Variables
// replacing others are never unset.  Returns the number of variables
// unset.
func (s *S) Undefine(trailLimVars []z.Var) int {
	// canBeUnset counts sources: 1 from the trail, 1 from the
	// independent set; with an independent set configured only
	// entries reaching 2 survive.
	canBeUnset := make([]uint8, s.Vmap.NVarsOuter()+1)
	sum := 0
	for _, iv := range trailLimVars {
		if int(iv) >= len(s.Vars.Removed) || s.Vars.Removed[iv] != RemovedNone {
			continue
		}
		if s.VarInsideAssumptions(iv) {
			continue
		}
		ov := s.Vmap.InterToOuter(iv)
		if int(ov) < len(s.fullModel) && s.fullModel[ov] != z.TVUndef {
			canBeUnset[ov]++
			if s.Opts.IndependentVars == nil {
				sum++
			}
		}
	}
	if s.Opts.IndependentVars != nil {
		s.rebuildBvaMapIfDirty()
		for _, uv := range s.Opts.IndependentVars {
			v := z.Var(uv)
			if int(v) > s.Vmap.NVarsOutside() {
				continue
			}
			ov := s.Vmap.OutsideToOuterLit(v.Pos()).Var()
			if int(ov) < len(canBeUnset) {
				canBeUnset[ov]++
				if canBeUnset[ov] == 2 {
					sum++
				}
			}
		}
		for i := range canBeUnset {
			if canBeUnset[i] < 2 {
				canBeUnset[i] = 0
			}
		}
	}
	// representatives of equivalence classes stay set.
	for _, iv := range s.replacer.VarsReplacingOthers() {
		ov := s.Vmap.InterToOuter(iv)
		if int(ov) < len(canBeUnset) && canBeUnset[ov] != 0 {
			canBeUnset[ov] = 0
			sum--
		}
	}

	satisfies := make([]int, len(canBeUnset))
	var clauses [][]z.Lit
	s.Cdb.ForallLong(func(p CLoc, hd Chd) {
		if hd.Learnt() {
			return
		}
		ms := s.Cdb.Lits(p, nil)
		oms := make([]z.Lit, len(ms))
		for i, m := range ms {
			oms[i] = s.Vmap.InterToOuterLit(m)
		}
		clauses = append(clauses, oms)
	})
	s.Cdb.ForallBins(func(p CLoc, a, b z.Lit, red bool) {
		if red {
			return
		}
		clauses = append(clauses, []z.Lit{
			s.Vmap.InterToOuterLit(a), s.Vmap.InterToOuterLit(b)})
	})

	// greedily fix variables until every clause is satisfied by a
	// fixed variable.
	for sum > 0 {
		mustFix := false
		for i := range satisfies {
			satisfies[i] = 0
		}
		for _, oms := range clauses {
			numTrue := 0
			var last z.Var
			blocked := false
			for _, om := range oms {
				if evalLit(s.fullModel, om) != z.TVTrue {
					continue
				}
				if canBeUnset[om.Var()] == 0 {
					blocked = true
					break
				}
				numTrue++
				last = om.Var()
			}
			if blocked {
				continue
			}
			if numTrue == 1 {
				canBeUnset[last] = 0
				sum--
				continue
			}
			if numTrue > 1 {
				mustFix = true
				for _, om := range oms {
					if evalLit(s.fullModel, om) == z.TVTrue {
						satisfies[om.Var()]++
					}
				}
			}
		}
		if !mustFix || sum <= 0 {
			break
		}
		maxSat, pick := -1, z.Var(0)
		for i, n := range satisfies {
			if canBeUnset[i] != 0 && n >= maxSat {
				maxSat = n
				pick = z.Var(i)
			}
		}
		if pick == 0 {
			break
		}
		canBeUnset[pick] = 0
		sum--
	}

	unset := 0
	for ov := z.Var(1); int(ov) < len(canBeUnset); ov++ {
		if canBeUnset[ov] != 0 {
			s.fullModel[ov] = z.TVUndef
			unset++
		}
	}
	s.model = s.mapToWithoutBva(s.fullModel)
	return unset
}
