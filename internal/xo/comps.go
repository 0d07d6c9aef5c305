// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"github.com/irifrance/xsat/z"
)

// Type CompHandler finds disconnected components of the variable
// sharing graph and solves small ones in isolation.  Variables of a
// solved component are marked decomposed, their clauses removed and
// retained (in outer space) so they can be re-admitted if the caller
// adds clauses touching the component again.
type CompHandler struct {
	s *S

	// union-find over inter vars, rebuilt per FindComponents run.
	parent []z.Var

	// saved solutions for decomposed variables, outer indexed.
	savedState map[z.Var]z.TV

	// removed clauses in outer space, for re-admission.
	removedClauses [][]z.Lit

	// limit on the size of a component solved in isolation.
	MaxCompVars int

	stComponents int64
	stSolved     int64
}

func NewCompHandler(s *S) *CompHandler {
	return &CompHandler{
		s:           s,
		savedState:  map[z.Var]z.TV{},
		MaxCompVars: 100}
}

func (c *CompHandler) newVar(ov z.Var) {}

func (c *CompHandler) find(v z.Var) z.Var {
	for c.parent[v] != v {
		c.parent[v] = c.parent[c.parent[v]]
		v = c.parent[v]
	}
	return v
}

func (c *CompHandler) union(a, b z.Var) {
	ra, rb := c.find(a), c.find(b)
	if ra != rb {
		c.parent[ra] = rb
	}
}

// FindComponents rebuilds the union-find over the variable sharing
// graph and returns the number of components among free variables.
func (c *CompHandler) FindComponents() int {
	s := c.s
	max := int(s.Vars.Max)
	c.parent = make([]z.Var, max+1)
	for i := range c.parent {
		c.parent[i] = z.Var(i)
	}
	join := func(ms []z.Lit) {
		for i := 1; i < len(ms); i++ {
			c.union(ms[0].Var(), ms[i].Var())
		}
	}
	s.Cdb.ForallLong(func(p CLoc, hd Chd) {
		join(s.Cdb.Lits(p, nil))
	})
	s.Cdb.ForallBins(func(p CLoc, a, b z.Lit, red bool) {
		join([]z.Lit{a, b})
	})
	comps := map[z.Var]bool{}
	for v := z.Var(1); v <= z.Var(max); v++ {
		if s.Vars.TV(v) != z.TVUndef || s.Vars.Removed[v] != RemovedNone {
			continue
		}
		comps[c.find(v)] = true
	}
	c.stComponents = int64(len(comps))
	return len(comps)
}

// Handle picks one small component not containing assumption
// variables, solves it in isolation, stores its solution and removes
// it from the formula.  Returns false when unsat was derived.
func (c *CompHandler) Handle() bool {
	s := c.s
	if !s.ok {
		return false
	}
	// level 0 clean first so clauses mention only unassigned vars.
	s.Trail.Back(0)
	if !s.Cdb.CleanAll(s.enq0Prop) {
		s.ok = false
		return false
	}
	if c.FindComponents() < 2 {
		return true
	}
	// group free vars by root.
	groups := map[z.Var][]z.Var{}
	for v := z.Var(1); v <= s.Vars.Max; v++ {
		if s.Vars.TV(v) != z.TVUndef || s.Vars.Removed[v] != RemovedNone {
			continue
		}
		r := c.find(v)
		groups[r] = append(groups[r], v)
	}
	if len(groups) < 2 {
		return true
	}
	var pick []z.Var
	for _, vs := range groups {
		if len(vs) > c.MaxCompVars {
			continue
		}
		withAssump := false
		for _, v := range vs {
			if s.VarInsideAssumptions(v) {
				withAssump = true
				break
			}
		}
		if withAssump {
			continue
		}
		if pick == nil || len(vs) < len(pick) {
			pick = vs
		}
	}
	if pick == nil || len(pick) == len(groups) {
		return true
	}
	inComp := map[z.Var]bool{}
	for _, v := range pick {
		inComp[v] = true
	}

	// collect the component's clauses; learnt clauses over the
	// component are simply dropped.
	var clauses [][]z.Lit
	var longs []CLoc
	var redLongs []CLoc
	s.Cdb.ForallLong(func(p CLoc, hd Chd) {
		ms := s.Cdb.Lits(p, nil)
		if !inComp[ms[0].Var()] {
			return
		}
		if hd.Learnt() {
			redLongs = append(redLongs, p)
			return
		}
		clauses = append(clauses, append([]z.Lit{}, ms...))
		longs = append(longs, p)
	})
	type bin struct {
		p    CLoc
		a, b z.Lit
	}
	var bins []bin
	var redBins []CLoc
	s.Cdb.ForallBins(func(p CLoc, a, b z.Lit, red bool) {
		if !inComp[a.Var()] {
			return
		}
		if red {
			redBins = append(redBins, p)
			return
		}
		clauses = append(clauses, []z.Lit{a, b})
		bins = append(bins, bin{p, a, b})
	})
	for _, p := range redLongs {
		s.Cdb.RemoveLong(p)
	}
	for _, p := range redBins {
		s.Cdb.RemoveBin(p)
	}

	// solve in isolation with a plain sub-solver.
	sub := NewSOpts(plainOptions())
	maxv := z.Var(0)
	for _, v := range pick {
		if v > maxv {
			maxv = v
		}
	}
	if err := sub.NewVars(int(maxv)); err != nil {
		return s.ok
	}
	for _, ms := range clauses {
		if ok, _ := sub.AddClause(ms, false); !ok {
			break
		}
	}
	res := sub.Solve()
	switch res {
	case -1:
		s.Cdb.SetBot()
		s.proof.AddEmpty()
		s.ok = false
		return false
	case 0:
		// could not solve it in isolation: leave it in place.
		return true
	}
	c.stSolved++
	s.sumStats.Decomposed += int64(len(pick))

	// store the solution and detach the component.
	for _, v := range pick {
		ov := s.Vmap.InterToOuter(v)
		c.savedState[ov] = sub.ModelValue(v.Pos())
		s.Vars.Removed[v] = RemovedDecomp
	}
	for i, p := range longs {
		// keep the clause, in outer space, for re-admission.
		ms := clauses[i]
		oms := make([]z.Lit, len(ms))
		for k, m := range ms {
			oms[k] = s.Vmap.InterToOuterLit(m)
		}
		c.removedClauses = append(c.removedClauses, oms)
		s.Cdb.RemoveLong(p)
	}
	for i, b := range bins {
		ms := clauses[len(longs)+i]
		oms := make([]z.Lit, len(ms))
		for k, m := range ms {
			oms[k] = s.Vmap.InterToOuterLit(m)
		}
		c.removedClauses = append(c.removedClauses, oms)
		s.Cdb.RemoveBin(b.p)
	}
	s.Cdb.sweepStores()
	s.Guess.Rebuild(s.Vars)
	return true
}

// ReaddRemovedClauses re-admits every removed component clause and
// clears the decomposed markers.  Returns false when unsat was
// derived.
func (c *CompHandler) ReaddRemovedClauses() bool {
	s := c.s
	for v := z.Var(1); v <= s.Vars.Max; v++ {
		if s.Vars.Removed[v] == RemovedDecomp {
			s.Vars.Removed[v] = RemovedNone
			if s.Vars.TV(v) == z.TVUndef {
				s.Guess.Push(v.Pos())
			}
		}
	}
	clauses := c.removedClauses
	c.removedClauses = nil
	c.savedState = map[z.Var]z.TV{}
	for _, oms := range clauses {
		ms := make([]z.Lit, len(oms))
		for i, om := range oms {
			om = s.replacer.LitReplacedWithOuter(om)
			ms[i] = s.Vmap.OuterToInterLit(om)
		}
		s.addClauseInt(ms, false, 2, true, true, nil)
		if !s.ok {
			return false
		}
	}
	return true
}

// AddSavedState fills the saved component solutions into an outer
// indexed model.
func (c *CompHandler) AddSavedState(model []z.TV) {
	for ov, tv := range c.savedState {
		if int(ov) < len(model) && model[ov] == z.TVUndef {
			model[ov] = tv
		}
	}
}

// plainOptions configures a sub-solver with inprocessing disabled.
func plainOptions() *Options {
	o := NewOptions()
	o.DoSimplify = false
	o.SimplifyAtStartup = false
	o.DoCompHandler = false
	o.PerformOccurSimp = false
	o.DoCache = false
	o.DoStamp = false
	o.DoRenumberVars = false
	return o
}
