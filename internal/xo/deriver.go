// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"github.com/irifrance/xsat/z"
)

// Type Drvd describes a clause derived from a conflict.
type Drvd struct {
	Unit        z.Lit
	P           CLoc
	TargetLevel int
	Glue        uint32
	Size        int
}

// Type Deriver performs first-UIP conflict analysis with recursive
// and binary self-subsumption minimization.
type Deriver struct {
	cdb   *Cdb
	vars  *Vars
	trail *Trail
	guess *Guess

	seen    []bool
	learnt  []z.Lit
	stack   []z.Lit
	toClear []z.Lit

	// minimization knobs, retuned by effectiveness checks.
	DoRecursiveMinim bool
	DoMinimMore      bool

	// stats for the effectiveness heuristics.
	stConflicts      int64
	stRecMinLitRem   int64
	stLitsRedNonMin  int64
	stRecMinimCost   int64
	stMoreMinimStart int64
	stMoreMinimEnd   int64
	stLearntUnits    int64
	stLearntBins     int64
	stRedInLev0      int64
}

func NewDeriver(cdb *Cdb, guess *Guess, trail *Trail) *Deriver {
	return &Deriver{
		cdb:              cdb,
		vars:             cdb.Vars,
		trail:            trail,
		guess:            guess,
		seen:             make([]bool, int(cdb.Vars.Top)+1),
		DoRecursiveMinim: true,
		DoMinimMore:      true}
}

func (d *Deriver) growToVar(u z.Var) {
	seen := make([]bool, int(u)+1)
	copy(seen, d.seen)
	d.seen = seen
}

// Derive analyzes the conflict at x and installs the learnt clause.
// The result holds the asserting literal, its reason, and the level
// to backjump to.
func (d *Deriver) Derive(x CLoc) *Drvd {
	d.stConflicts++
	vars := d.vars
	trail := d.trail
	d.learnt = append(d.learnt[:0], z.LitNull)

	nCur := 0
	i := len(trail.D) - 1
	var uip z.Lit
	resolved := z.LitNull
	p := x
	for {
		ms := d.cdb.Lits(p, nil)
		d.cdb.Bump(p)
		for _, m := range ms {
			v := m.Var()
			if resolved != z.LitNull && v == resolved.Var() {
				continue
			}
			if d.seen[v] || vars.Levels[v] == 0 {
				continue
			}
			d.seen[v] = true
			d.toClear = append(d.toClear, m)
			d.guess.Bump(m)
			if int(vars.Levels[v]) >= trail.Level {
				nCur++
			} else {
				d.learnt = append(d.learnt, m)
			}
		}
		for !d.seen[trail.D[i].Var()] {
			i--
		}
		uip = trail.D[i]
		d.seen[uip.Var()] = false
		nCur--
		if nCur <= 0 {
			break
		}
		resolved = uip
		p = vars.Reasons[uip.Var()]
		i--
	}
	d.learnt[0] = uip.Not()

	d.minimize()
	d.minimizeMore()

	// glue and backjump level.
	glue := uint32(0)
	target := 0
	levels := map[int32]bool{}
	for k, m := range d.learnt {
		lv := int(vars.Levels[m.Var()])
		if !levels[int32(lv)] {
			levels[int32(lv)] = true
			glue++
		}
		if k > 0 && lv > target {
			target = lv
			d.learnt[1], d.learnt[k] = d.learnt[k], d.learnt[1]
		}
	}

	for _, m := range d.toClear {
		d.seen[m.Var()] = false
	}
	d.toClear = d.toClear[:0]

	res := &Drvd{
		Unit:        d.learnt[0],
		TargetLevel: target,
		Glue:        glue,
		Size:        len(d.learnt)}
	switch len(d.learnt) {
	case 1:
		d.stLearntUnits++
		d.cdb.proof.AddUnit(d.learnt[0])
		res.P = CNull
		res.TargetLevel = 0
	case 2:
		d.stLearntBins++
		d.cdb.proof.Add(d.learnt)
		res.P = d.cdb.AddBin(d.learnt[0], d.learnt[1], true)
	default:
		d.cdb.proof.Add(d.learnt)
		res.P = d.cdb.AddLong(append([]z.Lit{}, d.learnt...), true, glue)
		if glue <= d.cdb.GluePutLev0 {
			d.stRedInLev0++
		}
	}
	return res
}

// minimize removes literals whose reasons are covered by the rest of
// the learnt clause (recursive minimization).
func (d *Deriver) minimize() {
	if !d.DoRecursiveMinim {
		return
	}
	n0 := len(d.learnt)
	j := 1
	for i := 1; i < len(d.learnt); i++ {
		m := d.learnt[i]
		if d.vars.Reasons[m.Var()] == CNull || !d.litRedundant(m) {
			d.learnt[j] = m
			j++
		}
	}
	d.stLitsRedNonMin += int64(n0)
	d.stRecMinLitRem += int64(n0 - j)
	d.learnt = d.learnt[:j]
}

func (d *Deriver) litRedundant(m z.Lit) bool {
	d.stack = append(d.stack[:0], m)
	top := len(d.toClear)
	for len(d.stack) > 0 {
		l := d.stack[len(d.stack)-1]
		d.stack = d.stack[:len(d.stack)-1]
		r := d.vars.Reasons[l.Var()]
		if r == CNull {
			// decision reached: not redundant, undo marks.
			for _, c := range d.toClear[top:] {
				d.seen[c.Var()] = false
			}
			d.toClear = d.toClear[:top]
			return false
		}
		ms := d.cdb.Lits(r, nil)
		d.stRecMinimCost += int64(len(ms))
		for _, o := range ms {
			v := o.Var()
			if v == l.Var() || d.seen[v] || d.vars.Levels[v] == 0 {
				continue
			}
			d.seen[v] = true
			d.toClear = append(d.toClear, o)
			d.stack = append(d.stack, o)
		}
	}
	return true
}

// minimizeMore removes literals by resolving with binary clauses
// whose other literal is already in the learnt clause.
func (d *Deriver) minimizeMore() {
	if !d.DoMinimMore || len(d.learnt) < 3 {
		return
	}
	d.stMoreMinimStart += int64(len(d.learnt))
	j := 1
	for i := 1; i < len(d.learnt); i++ {
		m := d.learnt[i]
		red := false
		for _, w := range d.cdb.W[m] {
			if !w.IsBinary() {
				continue
			}
			o := w.Other()
			if d.seen[o.Var()] && d.inLearnt(o) {
				red = true
				break
			}
		}
		if !red {
			d.learnt[j] = m
			j++
		}
	}
	d.learnt = d.learnt[:j]
	d.stMoreMinimEnd += int64(len(d.learnt))
}

func (d *Deriver) inLearnt(m z.Lit) bool {
	for _, l := range d.learnt {
		if l == m {
			return true
		}
	}
	return false
}

func (d *Deriver) readStats(st *Stats) {
	st.Conflicts += d.stConflicts
	d.stConflicts = 0
	st.RecMinLitRem += d.stRecMinLitRem
	d.stRecMinLitRem = 0
	st.LitsRedNonMin += d.stLitsRedNonMin
	d.stLitsRedNonMin = 0
	st.RecMinimCost += d.stRecMinimCost
	d.stRecMinimCost = 0
	st.MoreMinimLitsStart += d.stMoreMinimStart
	d.stMoreMinimStart = 0
	st.MoreMinimLitsEnd += d.stMoreMinimEnd
	d.stMoreMinimEnd = 0
	st.LearntUnits += d.stLearntUnits
	d.stLearntUnits = 0
	st.LearntBins += d.stLearntBins
	d.stLearntBins = 0
	st.RedInLev0 += d.stRedInLev0
	d.stRedInLev0 = 0
}
