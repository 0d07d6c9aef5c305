// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"github.com/irifrance/xsat/z"
)

// Type VarReplacer tracks equivalence classes of literals found by
// SCC analysis of the binary implication graph and substitutes class
// representatives throughout the formula.  The replacement table is
// kept in outer space so it survives renumbering.
type VarReplacer struct {
	s *S

	// table[v] is the outer literal replacing outer variable v; the
	// identity v.Pos() when not replaced.
	table []z.Lit

	numReplaced int64
}

func NewVarReplacer(s *S) *VarReplacer {
	return &VarReplacer{s: s}
}

func (r *VarReplacer) newVar(ov z.Var) {
	for int(ov) >= len(r.table) {
		r.table = append(r.table, z.Var(len(r.table)).Pos())
	}
}

// LitReplacedWithOuter follows the replacement chain of an outer
// literal to its class representative.
func (r *VarReplacer) LitReplacedWithOuter(m z.Lit) z.Lit {
	for {
		t := r.table[m.Var()]
		if t.Var() == m.Var() {
			return m
		}
		if !m.IsPos() {
			t = t.Not()
		}
		m = t
	}
}

// LitReplacedWith is LitReplacedWithOuter over inter literals.
func (r *VarReplacer) LitReplacedWith(m z.Lit) z.Lit {
	om := r.s.Vmap.InterToOuterLit(m)
	om = r.LitReplacedWithOuter(om)
	return r.s.Vmap.OuterToInterLit(om)
}

// NumReplaced gives the number of variables merged into another
// class representative.
func (r *VarReplacer) NumReplaced() int64 {
	return r.numReplaced
}

// VarsReplacingOthers gives the inter variables acting as class
// representative for at least one merged variable.
func (r *VarReplacer) VarsReplacingOthers() []z.Var {
	seen := map[z.Var]bool{}
	var res []z.Var
	for v := 1; v < len(r.table); v++ {
		t := r.table[v]
		if t.Var() == z.Var(v) {
			continue
		}
		root := r.LitReplacedWithOuter(z.Var(v).Pos()).Var()
		iv := r.s.Vmap.OuterToInter(root)
		if !seen[iv] {
			seen[iv] = true
			res = append(res, iv)
		}
	}
	return res
}

// ReplaceIfEnoughIsFound runs SCC analysis over the binary
// implication graph and merges equivalent literals, provided at
// least min merges are possible.  Returns false when unsat was
// derived.
func (r *VarReplacer) ReplaceIfEnoughIsFound(min int) bool {
	s := r.s
	if !s.ok {
		return false
	}
	s.Trail.Back(0)
	sccs, bad := r.findSCCs()
	if bad {
		s.Cdb.SetBot()
		s.proof.AddEmpty()
		s.ok = false
		return false
	}
	n := 0
	for _, scc := range sccs {
		n += len(scc) - 1
	}
	if n == 0 || n < min {
		return s.ok
	}

	// install the merges in the outer table.
	for _, scc := range sccs {
		rep := scc[0]
		for _, m := range scc {
			if m.Var() < rep.Var() {
				rep = m
			}
		}
		orep := s.Vmap.InterToOuterLit(rep)
		for _, m := range scc {
			if m.Var() == rep.Var() {
				continue
			}
			om := s.Vmap.InterToOuterLit(m)
			t := orep
			if !om.IsPos() {
				t = t.Not()
			}
			r.table[om.Var()] = t
			s.Vars.Removed[m.Var()] = RemovedReplaced
			r.numReplaced++
			s.sumStats.Replaced++
		}
	}

	ok := r.apply()
	s.UpdateAssumptionsAfterVarReplace()
	if ok {
		ok = s.UpdateXorsAfterReplace()
	}
	s.Guess.Rebuild(s.Vars)
	return ok
}

// apply rewrites every clause mentioning a replaced variable.
func (r *VarReplacer) apply() bool {
	s := r.s
	var longs []CLoc
	s.Cdb.ForallLong(func(p CLoc, hd Chd) {
		for _, m := range s.Cdb.Lits(p, nil) {
			if s.Vars.Removed[m.Var()] == RemovedReplaced {
				longs = append(longs, p)
				break
			}
		}
	})
	for _, p := range longs {
		hd := s.Cdb.CDat.Chd(p)
		ms := s.Cdb.Lits(p, nil)
		for i, m := range ms {
			ms[i] = r.LitReplacedWith(m)
		}
		s.addClauseInt(ms, hd.Learnt(), hd.Lbd(), true, true, nil)
		if !s.ok {
			return false
		}
		s.Cdb.RemoveLong(p)
	}
	type bin struct {
		p    CLoc
		a, b z.Lit
		red  bool
	}
	var bins []bin
	s.Cdb.ForallBins(func(p CLoc, a, b z.Lit, red bool) {
		if s.Vars.Removed[a.Var()] == RemovedReplaced ||
			s.Vars.Removed[b.Var()] == RemovedReplaced {
			bins = append(bins, bin{p, a, b, red})
		}
	})
	for _, bc := range bins {
		a := r.LitReplacedWith(bc.a)
		b := r.LitReplacedWith(bc.b)
		s.addClauseInt([]z.Lit{a, b}, bc.red, 2, true, true, nil)
		if !s.ok {
			return false
		}
		s.Cdb.RemoveBin(bc.p)
	}
	s.Cdb.sweepStores()
	if x := s.Trail.Prop(); x != CNull {
		s.Cdb.SetBot()
		s.proof.AddEmpty()
		s.ok = false
		return false
	}
	return true
}

// findSCCs runs Tarjan's algorithm over the binary implication graph
// and returns the non-trivial components.  bad reports a component
// containing a literal and its negation.
func (r *VarReplacer) findSCCs() (sccs [][]z.Lit, bad bool) {
	s := r.s
	n := 2 * (int(s.Vars.Max) + 1)
	index := make([]int32, n)
	low := make([]int32, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var stack []z.Lit
	next := int32(0)

	// succ: binary clause (a b) gives edges ¬a -> b, ¬b -> a.  In the
	// watch scheme, W[m] holds binaries whose other literal is implied
	// when m is true.
	succ := func(m z.Lit) []z.Lit {
		var out []z.Lit
		for _, w := range s.Cdb.W[m] {
			if w.IsBinary() {
				out = append(out, w.Other())
			}
		}
		return out
	}

	eligible := func(m z.Lit) bool {
		v := m.Var()
		return s.Vars.Vals[m] == 0 && s.Vars.Removed[v] == RemovedNone
	}

	type frame struct {
		m    z.Lit
		succ []z.Lit
		at   int
	}
	var rec []frame
	for mi := 2; mi < n; mi++ {
		root := z.Lit(mi)
		if index[root] != -1 || !eligible(root) {
			continue
		}
		rec = append(rec[:0], frame{m: root, succ: succ(root)})
		index[root] = next
		low[root] = next
		next++
		stack = append(stack, root)
		onStack[root] = true
		for len(rec) > 0 {
			f := &rec[len(rec)-1]
			if f.at < len(f.succ) {
				o := f.succ[f.at]
				f.at++
				if !eligible(o) {
					continue
				}
				if index[o] == -1 {
					index[o] = next
					low[o] = next
					next++
					stack = append(stack, o)
					onStack[o] = true
					rec = append(rec, frame{m: o, succ: succ(o)})
				} else if onStack[o] {
					if index[o] < low[f.m] {
						low[f.m] = index[o]
					}
				}
				continue
			}
			m := f.m
			rec = rec[:len(rec)-1]
			if len(rec) > 0 {
				pm := rec[len(rec)-1].m
				if low[m] < low[pm] {
					low[pm] = low[m]
				}
			}
			if low[m] != index[m] {
				continue
			}
			var comp []z.Lit
			for {
				o := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[o] = false
				comp = append(comp, o)
				if o == m {
					break
				}
			}
			if len(comp) < 2 {
				continue
			}
			seenVar := map[z.Var]bool{}
			for _, o := range comp {
				if seenVar[o.Var()] {
					bad = true
				}
				seenVar[o.Var()] = true
			}
			sccs = append(sccs, comp)
		}
	}
	// each equivalence appears twice (dual component); keep one per
	// variable set.
	seen := map[z.Var]bool{}
	kept := sccs[:0]
	for _, comp := range sccs {
		minV := comp[0].Var()
		for _, o := range comp {
			if o.Var() < minV {
				minV = o.Var()
			}
		}
		if seen[minV] {
			continue
		}
		seen[minV] = true
		kept = append(kept, comp)
	}
	sccs = kept
	return sccs, bad
}

// GetAllBinaryXors gives the binary equivalences recorded by the
// replacer, projected to outside space.  Pairs touching hidden
// variables are omitted.
func (s *S) GetAllBinaryXors() [][2]z.Lit {
	wb := s.Vmap.OuterToWithoutBva()
	var res [][2]z.Lit
	for v := 1; v < len(s.replacer.table); v++ {
		t := s.replacer.table[v]
		if t.Var() == z.Var(v) {
			continue
		}
		rep := s.replacer.LitReplacedWithOuter(z.Var(v).Pos())
		if wb[v] == 0 || int(rep.Var()) >= len(wb) || wb[rep.Var()] == 0 {
			continue
		}
		a := wb[z.Var(v)].Pos()
		b := wb[rep.Var()].Pos()
		if !rep.IsPos() {
			b = b.Not()
		}
		res = append(res, [2]z.Lit{a, b})
	}
	return res
}

// saveStateTo / loadStateFrom serialize the replacement table.
func (r *VarReplacer) saveStateTo(f *stateFile) {
	f.putInt(len(r.table))
	for _, m := range r.table {
		f.putU32(uint32(m))
	}
	f.putI64(r.numReplaced)
}

func (r *VarReplacer) loadStateFrom(f *stateFile) error {
	n := f.getInt()
	if n != len(r.table) {
		return ErrCorruptState
	}
	for i := 0; i < n; i++ {
		r.table[i] = z.Lit(f.getU32())
	}
	r.numReplaced = f.getI64()
	return f.err
}
