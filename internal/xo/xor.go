// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"fmt"
	"sort"

	"github.com/irifrance/xsat/z"
)

// Type Xor is a parity constraint over a set of variables: the sum of
// their values equals Rhs.  Stored in inter space; variables may be
// stale (replaced) between passes and are updated before use.
type Xor struct {
	Vs  []z.Var
	Rhs bool
}

func (x Xor) String() string {
	return fmt.Sprintf("x%v=%t", x.Vs, x.Rhs)
}

// AddXorClause adds the parity constraint over the given outside
// variables.  Size >= 3 residues are retained for algebraic reasoning
// and expanded to CNF by linear cutting through fresh hidden
// auxiliary variables.
func (s *S) AddXorClause(vs []z.Var, rhs bool) (bool, error) {
	if !s.ok {
		return false, nil
	}
	if len(vs) > MaxClauseLen {
		return s.ok, ErrTooLongClause
	}
	lits := make([]z.Lit, len(vs))
	for i, v := range vs {
		lits[i] = v.Pos()
	}
	if err := s.checkOutsideLits(lits); err != nil {
		return s.ok, err
	}
	ps, err := s.outsideToOuter(lits)
	if err != nil {
		return s.ok, err
	}
	ps, ok := s.addClauseHelper(ps)
	if !ok {
		return s.ok, nil
	}
	return s.addXorClauseInter(ps, rhs), nil
}

// addXorClauseInter normalizes and installs an inter space parity
// constraint: signs are absorbed into rhs, duplicate pairs cancel,
// assigned variables are absorbed, and the residue is cut into CNF.
func (s *S) addXorClauseInter(lits []z.Lit, rhs bool) bool {
	if s.Trail.Level != 0 {
		panic("xo: xor added above decision level 0")
	}
	ps := make([]z.Lit, len(lits))
	for i, m := range lits {
		if !m.IsPos() {
			rhs = !rhs
			m = m.Not()
		}
		ps[i] = m
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
	vals := s.Vars.Vals
	j := 0
	var prev z.Lit = z.LitNull
	for _, m := range ps {
		if m.Var() == prev.Var() && prev != z.LitNull {
			// pair cancels
			j--
			prev = z.LitNull
			continue
		}
		switch vals[m] {
		case 0:
			ps[j] = m
			prev = m
			j++
			if s.Vars.Removed[m.Var()] == RemovedElim {
				panic(fmt.Sprintf("xo: xor contains eliminated variable %s", m.Var()))
			}
		case 1:
			rhs = !rhs
		case -1:
			// absorbed
		}
	}
	ps = ps[:j]

	if len(ps) == 0 {
		if rhs {
			s.proof.AddEmpty()
			s.Cdb.SetBot()
			s.ok = false
		}
		return s.ok
	}
	if len(ps) > 2 {
		s.xors = append(s.xors, Xor{Vs: litVars(ps), Rhs: rhs})
	}
	// fold rhs into the first literal and expand: the residue then
	// requires an even number of its literals to hold.
	if rhs {
		ps[0] = ps[0].Not()
	}
	s.addEveryCombinationXor(ps)
	return s.ok
}

func litVars(ms []z.Lit) []z.Var {
	vs := make([]z.Var, len(ms))
	for i, m := range ms {
		vs[i] = m.Var()
	}
	return vs
}

// addEveryCombinationXor cuts the xor (rhs already folded into the
// polarity of the first literal, so an even number of the literals
// must hold) into chained 3 input xors through fresh auxiliary
// variables, expanding each cut.
func (s *S) addEveryCombinationXor(lits []z.Lit) {
	at := 0
	var cut []z.Lit
	last := z.LitNull
	for at != len(lits) {
		cut = cut[:0]
		lastAt := at
		for ; at < lastAt+2 && at < len(lits); at++ {
			cut = append(cut, lits[at])
		}
		if last != z.LitNull {
			cut = append(cut, last)
		} else if at < len(lits) {
			cut = append(cut, lits[at])
			at++
		}
		if at+1 == len(lits) {
			cut = append(cut, lits[at])
			at++
		}
		if at != len(lits) {
			v, err := s.NewVarBva()
			if err != nil {
				s.log.WithError(err).Error("xor cut variable")
				return
			}
			iv := s.Vmap.OuterToInter(v)
			toadd := iv.Pos()
			cut = append(cut, toadd)
			last = toadd
		}
		s.addXorCleanedCut(cut)
		if !s.ok {
			return
		}
	}
}

// addXorCleanedCut expands a small even parity constraint into its
// 2^(n-1) clauses, one excluding each odd parity assignment.
func (s *S) addXorCleanedCut(lits []z.Lit) {
	n := uint(len(lits))
	ms := make([]z.Lit, 0, n)
	for i := uint64(0); i < 1<<n; i++ {
		if popcount(i, n)%2 == 0 {
			continue
		}
		ms = ms[:0]
		for at := uint(0); at < n; at++ {
			m := lits[at]
			if (i>>at)&1 == 1 {
				m = m.Not()
			}
			ms = append(ms, m)
		}
		s.addClauseInt(ms, false, 2, true, false, nil)
		if !s.ok {
			return
		}
	}
}

func popcount(x uint64, n uint) uint {
	c := uint(0)
	for i := uint(0); i < n; i++ {
		if (x>>i)&1 == 1 {
			c++
		}
	}
	return c
}

// UpdateXorsAfterReplace substitutes equivalence class
// representatives into the stored xors and renormalizes them.
func (s *S) UpdateXorsAfterReplace() bool {
	if len(s.xors) == 0 {
		return s.ok
	}
	xors := s.xors
	s.xors = s.xors[:0]
	for _, x := range xors {
		rhs := x.Rhs
		vs := make(map[z.Var]bool, len(x.Vs))
		drop := false
		for _, v := range x.Vs {
			m := s.replacer.LitReplacedWith(v.Pos())
			if !m.IsPos() {
				rhs = !rhs
				m = m.Not()
			}
			u := m.Var()
			switch s.Vars.TV(u) {
			case z.TVTrue:
				rhs = !rhs
			case z.TVFalse:
			default:
				if vs[u] {
					delete(vs, u)
				} else {
					vs[u] = true
				}
			}
			if s.Vars.Removed[u] == RemovedElim {
				// an eliminated variable invalidates the xor.
				drop = true
			}
		}
		if drop {
			continue
		}
		if len(vs) == 0 {
			if rhs {
				s.Cdb.SetBot()
				s.proof.AddEmpty()
				s.ok = false
				return false
			}
			continue
		}
		res := make([]z.Var, 0, len(vs))
		for v := range vs {
			res = append(res, v)
		}
		sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
		if len(res) > 2 {
			s.xors = append(s.xors, Xor{Vs: res, Rhs: rhs})
		}
	}
	return s.ok
}

// RenumberXorClauses applies the renumbering permutation to the xor
// store.
func (s *S) RenumberXorClauses(perm []z.Var) {
	for i := range s.xors {
		x := &s.xors[i]
		for j, v := range x.Vs {
			x.Vs[j] = perm[v]
		}
		sort.Slice(x.Vs, func(a, b int) bool { return x.Vs[a] < x.Vs[b] })
	}
}

// XorGauss runs Gaussian elimination over the stored parity
// constraints, deriving units and binary equivalences.  It reports
// false when unsat was derived.
func (s *S) XorGauss() bool {
	if !s.ok || len(s.xors) == 0 {
		return s.ok
	}
	if !s.UpdateXorsAfterReplace() {
		return false
	}
	// dense rows over the participating variables.
	varIdx := map[z.Var]int{}
	var vars []z.Var
	for _, x := range s.xors {
		for _, v := range x.Vs {
			if _, seen := varIdx[v]; !seen {
				varIdx[v] = len(vars)
				vars = append(vars, v)
			}
		}
	}
	rows := make([][]uint64, len(s.xors))
	w := (len(vars) + 63) / 64
	rhs := make([]bool, len(s.xors))
	for i, x := range s.xors {
		rows[i] = make([]uint64, w)
		for _, v := range x.Vs {
			k := varIdx[v]
			rows[i][k/64] ^= 1 << (k % 64)
		}
		rhs[i] = x.Rhs
	}
	// forward elimination
	rank := 0
	for col := 0; col < len(vars) && rank < len(rows); col++ {
		sel := -1
		for r := rank; r < len(rows); r++ {
			if rows[r][col/64]&(1<<(col%64)) != 0 {
				sel = r
				break
			}
		}
		if sel == -1 {
			continue
		}
		rows[rank], rows[sel] = rows[sel], rows[rank]
		rhs[rank], rhs[sel] = rhs[sel], rhs[rank]
		for r := 0; r < len(rows); r++ {
			if r == rank || rows[r][col/64]&(1<<(col%64)) == 0 {
				continue
			}
			for k := 0; k < w; k++ {
				rows[r][k] ^= rows[rank][k]
			}
			rhs[r] = rhs[r] != rhs[rank]
		}
		rank++
	}
	// read off small rows.
	for r := 0; r < len(rows); r++ {
		var ms []z.Lit
		for k, word := range rows[r] {
			for b := 0; word != 0 && b < 64; b++ {
				if word&(1<<b) != 0 {
					ms = append(ms, vars[k*64+b].Pos())
					word &^= 1 << b
				}
			}
		}
		switch len(ms) {
		case 0:
			if rhs[r] {
				s.Cdb.SetBot()
				s.proof.AddEmpty()
				s.ok = false
				return false
			}
		case 1:
			u := ms[0]
			if !rhs[r] {
				u = u.Not()
			}
			s.proof.AddUnit(u)
			s.sumStats.XorUnits++
			if !s.enq0Prop(u) {
				return false
			}
		case 2:
			// a xor b = rhs: two binary clauses.
			a, b := ms[0], ms[1]
			if !rhs[r] {
				b = b.Not()
			}
			s.addClauseInt([]z.Lit{a, b}, false, 2, true, true, nil)
			if s.ok {
				s.addClauseInt([]z.Lit{a.Not(), b.Not()}, false, 2, true, true, nil)
			}
			if !s.ok {
				return false
			}
		}
	}
	return s.ok
}
