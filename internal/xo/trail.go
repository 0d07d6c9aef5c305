// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"bytes"
	"fmt"

	"github.com/irifrance/xsat/z"
)

// Type Trail is the propagation engine: the sequence of assigned
// literals in assignment order, the decision level boundaries, and
// unit propagation over the watch lists.
type Trail struct {
	Cdb   *Cdb
	Vars  *Vars
	Guess *Guess

	D     []z.Lit
	Lim   []int
	Level int
	Head  int

	Props int64

	stProps int64
	stUnits int64
}

func NewTrail(cdb *Cdb, guess *Guess) *Trail {
	return &Trail{
		Cdb:   cdb,
		Vars:  cdb.Vars,
		Guess: guess,
		D:     make([]z.Lit, 0, 1024),
		Lim:   make([]int, 0, 128)}
}

// Tail gives the number of assigned literals.
func (t *Trail) Tail() int {
	return len(t.D)
}

// LevelStart gives the index in the trail where level d+1 starts.
func (t *Trail) LevelStart(d int) int {
	return t.Lim[d]
}

// Assign assigns m true.  A CNull reason opens a new decision level
// (decisions and assumptions); a clause reason enqueues at the
// current level.
func (t *Trail) Assign(m z.Lit, r CLoc) {
	if r == CNull && t.Level >= 0 {
		t.Lim = append(t.Lim, len(t.D))
		t.Level++
	}
	t.enq(m, r)
}

// Enq0 enqueues m at decision level 0 without opening a level.  m
// must be unassigned.
func (t *Trail) Enq0(m z.Lit) {
	if t.Level != 0 {
		panic("Enq0 above level 0")
	}
	t.enq(m, CNull)
	t.stUnits++
}

// EnqCur enqueues m at the current decision level with no reason,
// without opening a level.  Used for literals pinned under
// assumptions.
func (t *Trail) EnqCur(m z.Lit) {
	t.enq(m, CNull)
}

func (t *Trail) enq(m z.Lit, r CLoc) {
	t.Vars.set(m, int32(t.Level), r)
	t.D = append(t.D, m)
}

// Prop runs unit propagation to fixpoint.  It returns the location of
// a conflicting clause, or CNull.
func (t *Trail) Prop() CLoc {
	vals := t.Vars.Vals
	dat := t.Cdb.CDat
	for t.Head < len(t.D) {
		m := t.D[t.Head]
		t.Head++
		t.Props++
		t.stProps++
		ws := t.Cdb.W[m]
		j := 0
		for i := 0; i < len(ws); i++ {
			w := ws[i]
			if w.IsBinary() {
				o := w.Other()
				switch vals[o] {
				case 1:
					ws[j] = w
					j++
				case 0:
					ws[j] = w
					j++
					t.enq(o, w.CLoc())
				case -1:
					ws[j] = w
					j++
					n := copy(ws[j:], ws[i+1:])
					t.Cdb.W[m] = ws[:j+n]
					t.Head = len(t.D)
					return w.CLoc()
				}
				continue
			}
			if vals[w.Other()] == 1 {
				ws[j] = w
				j++
				continue
			}
			p := w.CLoc()
			D := dat.D
			if D[p] == m.Not() {
				D[p], D[p+1] = D[p+1], D[p]
			}
			first := D[p]
			if vals[first] == 1 {
				ws[j] = MakeWatch(p, first, false)
				j++
				continue
			}
			moved := false
			for q := p + 2; D[q] != z.LitNull; q++ {
				if vals[D[q]] != -1 {
					D[p+1], D[q] = D[q], D[p+1]
					wm := D[p+1].Not()
					t.Cdb.W[wm] = append(t.Cdb.W[wm], MakeWatch(p, first, false))
					moved = true
					break
				}
			}
			if moved {
				continue
			}
			ws[j] = MakeWatch(p, first, false)
			j++
			if vals[first] == -1 {
				n := copy(ws[j:], ws[i+1:])
				t.Cdb.W[m] = ws[:j+n]
				t.Head = len(t.D)
				return p
			}
			t.enq(first, p)
		}
		t.Cdb.W[m] = ws[:j]
	}
	return CNull
}

// Back backtracks to the given decision level, unassigning everything
// above it and restoring the guess heap.
func (t *Trail) Back(level int) {
	if level >= t.Level {
		return
	}
	end := t.Lim[level]
	for i := len(t.D) - 1; i >= end; i-- {
		m := t.D[i]
		t.Vars.unset(m)
		if t.Guess != nil {
			t.Guess.Push(m)
		}
	}
	t.D = t.D[:end]
	t.Lim = t.Lim[:level]
	t.Level = level
	if t.Head > end {
		t.Head = end
	}
}

// UpdateVars remaps the trail literals after a renumbering.
func (t *Trail) UpdateVars(permLit []z.Lit) {
	for i, m := range t.D {
		t.D[i] = permLit[m]
	}
}

func (t *Trail) readStats(st *Stats) {
	st.Props += t.stProps
	t.stProps = 0
	st.Units += t.stUnits
	t.stUnits = 0
}

func (t *Trail) String() string {
	buf := bytes.NewBuffer(nil)
	fmt.Fprintf(buf, "trail level %d:", t.Level)
	lim := 0
	for i, m := range t.D {
		for lim < len(t.Lim) && t.Lim[lim] == i {
			fmt.Fprintf(buf, " |")
			lim++
		}
		fmt.Fprintf(buf, " %s", m)
	}
	return buf.String()
}
