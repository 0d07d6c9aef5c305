// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"github.com/irifrance/xsat/z"
)

// Type Stamps holds depth first search timestamps over the binary
// implication graph.  An implication a -> b is visible when b's
// interval nests inside a's on the same DFS tree; this under
// approximates reachability, which is all the strengthening pass
// needs.
type Stamps struct {
	s *S

	in  []int32
	out []int32

	stStrengthened int64
	stRemoved      int64
}

func NewStamps(s *S) *Stamps {
	st := &Stamps{s: s}
	st.growToVar(s.Vars.Top)
	return st
}

func (st *Stamps) growToVar(u z.Var) {
	w := 2 * (int(u) + 1)
	in := make([]int32, w)
	copy(in, st.in)
	st.in = in
	out := make([]int32, w)
	copy(out, st.out)
	st.out = out
}

// FreeMem drops the stamp arrays (used when stamping is switched off
// for memory reasons).
func (st *Stamps) FreeMem() {
	st.in = nil
	st.out = nil
}

// Stamp recomputes the timestamps.
func (st *Stamps) Stamp() {
	for i := range st.in {
		st.in[i] = 0
		st.out[i] = 0
	}
	s := st.s
	tick := int32(1)
	n := 2 * (int(s.Vars.Max) + 1)

	type frame struct {
		m  z.Lit
		at int
	}
	var rec []frame
	for mi := 2; mi < n; mi++ {
		root := z.Lit(mi)
		if st.in[root] != 0 || s.Vars.Vals[root] != 0 ||
			s.Vars.Removed[root.Var()] != RemovedNone {
			continue
		}
		st.in[root] = tick
		tick++
		rec = append(rec[:0], frame{m: root})
		for len(rec) > 0 {
			f := &rec[len(rec)-1]
			ws := s.Cdb.W[f.m]
			advanced := false
			for f.at < len(ws) {
				w := ws[f.at]
				f.at++
				if !w.IsBinary() {
					continue
				}
				o := w.Other()
				if st.in[o] != 0 || s.Vars.Vals[o] != 0 ||
					s.Vars.Removed[o.Var()] != RemovedNone {
					continue
				}
				st.in[o] = tick
				tick++
				rec = append(rec, frame{m: o})
				advanced = true
				break
			}
			if advanced {
				continue
			}
			st.out[f.m] = tick
			tick++
			rec = rec[:len(rec)-1]
		}
	}
}

// Implies says whether a -> b is witnessed by the stamps.
func (st *Stamps) Implies(a, b z.Lit) bool {
	return st.in[a] != 0 && st.in[a] < st.in[b] && st.out[b] < st.out[a] && st.out[b] != 0
}

// StrImpl strengthens ternary clauses using the stamps: a clause
// containing a and b with b -> a drops b.  Binary clauses are neither
// strengthened nor removed.  Returns false when unsat was derived.
func (st *Stamps) StrImpl() bool {
	st.Stamp()
	s := st.s
	var work []CLoc
	s.Cdb.ForallLong(func(p CLoc, hd Chd) {
		if s.Cdb.CDat.Len(p) == 3 {
			work = append(work, p)
		}
	})
	for _, p := range work {
		if s.Cdb.CDat.Chd(p).freed() {
			continue
		}
		ms := s.Cdb.Lits(p, nil)
		removed := make([]bool, len(ms))
		changed := false
		// each drop checks against the literals still in the clause:
		// (m o ...) with m -> o resolves with (not m or o) to drop m.
		for i, m := range ms {
			for k, o := range ms {
				if k == i || removed[k] {
					continue
				}
				if st.Implies(m, o) {
					removed[i] = true
					changed = true
					break
				}
			}
		}
		if !changed {
			continue
		}
		j := 0
		for i, m := range ms {
			if removed[i] {
				continue
			}
			ms[j] = m
			j++
		}
		ms = ms[:j]
		st.stStrengthened++
		s.sumStats.Strengthened++
		s.addClauseInt(ms, s.Cdb.CDat.Chd(p).Learnt(), s.Cdb.CDat.Chd(p).Lbd(), true, true, nil)
		if !s.ok {
			return false
		}
		s.Cdb.RemoveLong(p)
	}
	s.Cdb.sweepStores()
	// binaries subsumed by the stamps' tree edges are left alone: the
	// tree is derived from them.
	return s.ok
}

// UpdateVars invalidates the stamps after renumbering; they are
// recomputed on next use.
func (st *Stamps) UpdateVars() {
	for i := range st.in {
		st.in[i] = 0
		st.out[i] = 0
	}
}
