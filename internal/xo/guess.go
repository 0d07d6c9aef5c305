// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"github.com/irifrance/xsat/z"
)

// Polarity modes for Guess.
type PolarityMode int

const (
	PolarityCache PolarityMode = iota
	PolarityPos
	PolarityNeg
)

// Type Guess is the decision heuristic: a max heap over variable
// activities with a saved polarity cache.
type Guess struct {
	heap []z.Var
	pos  []int32
	act  []float64
	// cache[v] == 1 means guess positive, -1 negative.
	cache []int8

	Mode PolarityMode

	vars *Vars

	inc      float64
	decay    float64
	restarts int

	stGuesses int64
}

func newGuess(capHint int) *Guess {
	if capHint < 2 {
		capHint = 2
	}
	g := &Guess{
		heap:  make([]z.Var, 0, capHint),
		pos:   make([]int32, capHint+1),
		act:   make([]float64, capHint+1),
		cache: make([]int8, capHint+1),
		inc:   1.0,
		decay: 0.95}
	for i := range g.pos {
		g.pos[i] = -1
	}
	return g
}

func NewGuessCdb(cdb *Cdb) *Guess {
	g := newGuess(int(cdb.Vars.Top))
	g.vars = cdb.Vars
	return g
}

// SetVarDecay sets the activity decay factor.
func (g *Guess) SetVarDecay(d float64) {
	if d > 0 {
		g.decay = d
	}
}

func (g *Guess) growToVar(u z.Var) {
	w := int(u) + 1
	pos := make([]int32, w)
	copy(pos, g.pos)
	for i := len(g.pos); i < w; i++ {
		pos[i] = -1
	}
	g.pos = pos

	act := make([]float64, w)
	copy(act, g.act)
	g.act = act

	cache := make([]int8, w)
	copy(cache, g.cache)
	g.cache = cache
}

func (g *Guess) Len() int {
	return len(g.heap)
}

// Push makes the variable of m eligible for decisions.
func (g *Guess) Push(m z.Lit) {
	v := m.Var()
	if g.pos[v] != -1 {
		return
	}
	g.heap = append(g.heap, v)
	g.pos[v] = int32(len(g.heap) - 1)
	g.up(len(g.heap) - 1)
}

// Bump increases the activity of the variable of m.
func (g *Guess) Bump(m z.Lit) {
	v := m.Var()
	g.act[v] += g.inc
	if g.act[v] > 1e100 {
		for i := range g.act {
			g.act[i] *= 1e-100
		}
		g.inc *= 1e-100
	}
	if g.pos[v] != -1 {
		g.up(int(g.pos[v]))
	}
}

// Decay ages all activities by inflating the bump increment.
func (g *Guess) Decay() {
	g.inc /= g.decay
}

func (g *Guess) pop() z.Var {
	v := g.heap[0]
	n := len(g.heap) - 1
	g.heap[0] = g.heap[n]
	g.pos[g.heap[0]] = 0
	g.heap = g.heap[:n]
	g.pos[v] = -1
	if n > 0 {
		g.down(0)
	}
	return v
}

// Guess returns the next decision literal, or LitNull when every
// eligible variable is assigned.
func (g *Guess) Guess(vals []int8) z.Lit {
	for len(g.heap) > 0 {
		v := g.pop()
		if vals[v.Pos()] != 0 {
			continue
		}
		if g.vars != nil && g.vars.Removed[v] != RemovedNone {
			continue
		}
		g.stGuesses++
		switch g.Mode {
		case PolarityPos:
			return v.Pos()
		case PolarityNeg:
			return v.Neg()
		}
		if g.cache[v] >= 0 {
			return v.Pos()
		}
		return v.Neg()
	}
	return z.LitNull
}

// has says whether some eligible variable is still unassigned.
func (g *Guess) has(vals []int8) bool {
	for _, v := range g.heap {
		if vals[v.Pos()] != 0 {
			continue
		}
		if g.vars != nil && g.vars.Removed[v] != RemovedNone {
			continue
		}
		return true
	}
	return false
}

// SetCache installs a polarity hint for v.
func (g *Guess) SetCache(v z.Var, sign int8) {
	g.cache[v] = sign
}

func (g *Guess) nextRestart(n int) {
	g.restarts++
}

// Rebuild clears the heap and pushes every unassigned, unremoved
// variable.  Used after simplification rounds.
func (g *Guess) Rebuild(vars *Vars) {
	for _, v := range g.heap {
		g.pos[v] = -1
	}
	g.heap = g.heap[:0]
	for v := z.Var(1); v <= vars.Max; v++ {
		if vars.Vals[v.Pos()] != 0 || vars.Removed[v] != RemovedNone {
			continue
		}
		g.Push(v.Pos())
	}
}

// UpdateVars remaps activities, polarity cache and the heap after a
// renumbering.
func (g *Guess) UpdateVars(perm []z.Var) {
	act := make([]float64, len(g.act))
	cache := make([]int8, len(g.cache))
	for v := 1; v < len(perm) && v < len(g.act); v++ {
		nv := perm[v]
		if int(nv) < len(act) {
			act[nv] = g.act[v]
			cache[nv] = g.cache[v]
		}
	}
	g.act = act
	g.cache = cache
	for i := range g.pos {
		g.pos[i] = -1
	}
	heap := append([]z.Var{}, g.heap...)
	g.heap = g.heap[:0]
	for _, v := range heap {
		g.Push(perm[v].Pos())
	}
}

func (g *Guess) less(i, j int) bool {
	return g.act[g.heap[i]] > g.act[g.heap[j]]
}

func (g *Guess) up(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !g.less(i, p) {
			break
		}
		g.swap(i, p)
		i = p
	}
}

func (g *Guess) down(i int) {
	n := len(g.heap)
	for {
		l, r := 2*i+1, 2*i+2
		s := i
		if l < n && g.less(l, s) {
			s = l
		}
		if r < n && g.less(r, s) {
			s = r
		}
		if s == i {
			return
		}
		g.swap(i, s)
		i = s
	}
}

func (g *Guess) swap(i, j int) {
	g.heap[i], g.heap[j] = g.heap[j], g.heap[i]
	g.pos[g.heap[i]] = int32(i)
	g.pos[g.heap[j]] = int32(j)
}

func (g *Guess) readStats(st *Stats) {
	st.Guesses += g.stGuesses
	g.stGuesses = 0
}
