// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"bytes"
	"fmt"

	"github.com/irifrance/xsat/z"
)

// Type Removal records why a variable no longer takes part in search.
type Removal uint8

const (
	RemovedNone Removal = iota
	RemovedElim
	RemovedReplaced
	RemovedDecomp
)

func (r Removal) String() string {
	switch r {
	case RemovedNone:
		return "none"
	case RemovedElim:
		return "elimed"
	case RemovedReplaced:
		return "replaced"
	case RemovedDecomp:
		return "decomposed"
	}
	return "?"
}

// Type Vars holds the master per-variable state: assignments, levels,
// reasons, removal kinds, polarity hints and BVA flags.  All other
// subsystems keeping per-variable shadow data grow in lockstep with
// Vars via S.ensureLitCap.
type Vars struct {
	Max z.Var
	Top z.Var

	// indexed by literal: 1 true, -1 false, 0 undef.
	Vals []int8
	// indexed by variable.
	Levels   []int32
	Reasons  []CLoc
	Removed  []Removal
	Polarity []int8
}

func NewVars(capHint int) *Vars {
	if capHint < 2 {
		capHint = 2
	}
	top := z.Var(capHint)
	v := &Vars{
		Max: 0,
		Top: top}
	v.alloc(top)
	return v
}

func (v *Vars) alloc(top z.Var) {
	w := int(top) + 1
	v.Vals = make([]int8, 2*w)
	v.Levels = make([]int32, w)
	v.Reasons = make([]CLoc, w)
	v.Removed = make([]Removal, w)
	v.Polarity = make([]int8, w)
}

// Value gives the current value of the literal m: 1 true, -1 false,
// 0 undef.
func (v *Vars) Value(m z.Lit) int8 {
	return v.Vals[m]
}

// TV gives the three valued truth value of the variable u.
func (v *Vars) TV(u z.Var) z.TV {
	switch v.Vals[u.Pos()] {
	case 1:
		return z.TVTrue
	case -1:
		return z.TVFalse
	}
	return z.TVUndef
}

func (v *Vars) growToVar(u z.Var) {
	w := int(u) + 1
	vals := make([]int8, 2*w)
	copy(vals, v.Vals)
	v.Vals = vals

	levels := make([]int32, w)
	copy(levels, v.Levels)
	v.Levels = levels

	reasons := make([]CLoc, w)
	copy(reasons, v.Reasons)
	v.Reasons = reasons

	removed := make([]Removal, w)
	copy(removed, v.Removed)
	v.Removed = removed

	pol := make([]int8, w)
	copy(pol, v.Polarity)
	v.Polarity = pol

	v.Top = u
}

// shrinkToVar truncates the per-variable arrays to u variables.  Used
// by the renumberer in memory save mode; only valid when everything
// past u is dead.
func (v *Vars) shrinkToVar(u z.Var) {
	w := int(u) + 1
	v.Vals = v.Vals[:2*w]
	v.Levels = v.Levels[:w]
	v.Reasons = v.Reasons[:w]
	v.Removed = v.Removed[:w]
	v.Polarity = v.Polarity[:w]
	if v.Max > u {
		v.Max = u
	}
	v.Top = u
}

// UpdateVars permutes the per-variable state after a renumbering.
// perm maps old inter vars to new ones; permLit the doubled variant.
func (v *Vars) UpdateVars(perm []z.Var, permLit []z.Lit) {
	w := len(v.Levels)
	vals := make([]int8, 2*w)
	levels := make([]int32, w)
	reasons := make([]CLoc, w)
	removed := make([]Removal, w)
	pol := make([]int8, w)
	for u := 1; u < w && u < len(perm); u++ {
		nu := perm[u]
		vals[permLit[z.Var(u).Pos()]] = v.Vals[z.Var(u).Pos()]
		vals[permLit[z.Var(u).Neg()]] = v.Vals[z.Var(u).Neg()]
		levels[nu] = v.Levels[u]
		reasons[nu] = v.Reasons[u]
		removed[nu] = v.Removed[u]
		pol[nu] = v.Polarity[u]
	}
	v.Vals = vals
	v.Levels = levels
	v.Reasons = reasons
	v.Removed = removed
	v.Polarity = pol
}

func (v *Vars) set(m z.Lit, level int32, reason CLoc) {
	v.Vals[m] = 1
	v.Vals[m.Not()] = -1
	u := m.Var()
	v.Levels[u] = level
	v.Reasons[u] = reason
}

func (v *Vars) unset(m z.Lit) {
	v.Vals[m] = 0
	v.Vals[m.Not()] = 0
	u := m.Var()
	v.Levels[u] = -1
	v.Reasons[u] = CNull
	if m.IsPos() {
		v.Polarity[u] = 1
	} else {
		v.Polarity[u] = -1
	}
}

func (v *Vars) readStats(st *Stats) {
	st.Vars = int64(v.Max)
}

func (v *Vars) String() string {
	buf := bytes.NewBuffer(nil)
	fmt.Fprintf(buf, "vars max %d:", v.Max)
	for i := z.Var(1); i <= v.Max; i++ {
		fmt.Fprintf(buf, " %s=%s/%s", i, v.TV(i), v.Removed[i])
	}
	return buf.String()
}
