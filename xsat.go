// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xsat

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/irifrance/xsat/inter"
	"github.com/irifrance/xsat/internal/xo"
	"github.com/irifrance/xsat/z"
)

var _ inter.S = (*Solver)(nil)

// Solver is a concrete inprocessing CDCL solver with xor support.
type Solver struct {
	xo      *xo.S
	adding  []z.Lit
	assumes []z.Lit
}

// New creates a solver with default options.
func New() *Solver {
	return &Solver{xo: xo.NewS()}
}

// NewOpts creates a solver with the given options.
func NewOpts(opts *xo.Options) *Solver {
	return &Solver{xo: xo.NewSOpts(opts)}
}

// Engine exposes the underlying orchestrator for embedders needing
// the full surface (state files, proof control, statistics).
func (s *Solver) Engine() *xo.S {
	return s.xo
}

// MaxVar returns the maximum variable known to the solver.
func (s *Solver) MaxVar() z.Var {
	return z.Var(s.xo.NVars())
}

// Lit declares a fresh variable and returns its positive literal.
func (s *Solver) Lit() z.Lit {
	v, err := s.xo.NewVar()
	if err != nil {
		panic(err)
	}
	return v.Pos()
}

// NewVar declares a fresh variable.
func (s *Solver) NewVar() z.Var {
	v, err := s.xo.NewVar()
	if err != nil {
		panic(err)
	}
	return v
}

// NewVars declares n fresh variables.
func (s *Solver) NewVars(n int) {
	if err := s.xo.NewVars(n); err != nil {
		panic(err)
	}
}

func (s *Solver) ensure(v z.Var) {
	for z.Var(s.xo.NVars()) < v {
		if _, err := s.xo.NewVar(); err != nil {
			panic(err)
		}
	}
}

// Add implements inter.Adder.  To add a clause (x + y + z), one calls
//
//	s.Add(x)
//	s.Add(y)
//	s.Add(z)
//	s.Add(0)
//
// Variables are declared on demand.
func (s *Solver) Add(m z.Lit) {
	if m == z.LitNull {
		ms := s.adding
		s.adding = nil
		if _, err := s.xo.AddClause(ms, false); err != nil {
			panic(err)
		}
		return
	}
	s.ensure(m.Var())
	s.adding = append(s.adding, m)
}

// AddClause adds a clause given as a literal slice.  It returns false
// once the solver is in a terminal unsat state.
func (s *Solver) AddClause(ms []z.Lit, red bool) (bool, error) {
	for _, m := range ms {
		s.ensure(m.Var())
	}
	return s.xo.AddClause(ms, red)
}

// AddXor implements inter.XorAdder: the variables vs must sum to rhs.
func (s *Solver) AddXor(vs []z.Var, rhs bool) bool {
	for _, v := range vs {
		s.ensure(v)
	}
	ok, err := s.xo.AddXorClause(vs, rhs)
	if err != nil {
		panic(err)
	}
	return ok
}

// AddXorClause is AddXor with error reporting instead of panics.
func (s *Solver) AddXorClause(vs []z.Var, rhs bool) (bool, error) {
	for _, v := range vs {
		s.ensure(v)
	}
	return s.xo.AddXorClause(vs, rhs)
}

// Assume causes the solver to assume m true for the next call to
// Solve.  Assumptions are consumed by Solve.
func (s *Solver) Assume(ms ...z.Lit) {
	s.assumes = append(s.assumes, ms...)
}

// Solve decides the formula under the pending assumptions.  It
// returns 1 if sat, -1 if unsat, and 0 if undetermined (limits or
// interrupt).
func (s *Solver) Solve() int {
	if err := s.xo.SetAssumptions(s.assumes); err != nil {
		panic(err)
	}
	s.assumes = s.assumes[:0]
	return s.xo.Solve()
}

// Value returns the truth value of m in the model of the last sat
// result.
func (s *Solver) Value(m z.Lit) bool {
	return s.xo.ModelValue(m) == z.TVTrue
}

// ModelValue gives the three valued model value of m; undef for
// variables unset by Undefine.
func (s *Solver) ModelValue(m z.Lit) z.TV {
	return s.xo.ModelValue(m)
}

// Why returns the final conflict clause over the assumption
// literals, trying to store it in dst.
func (s *Solver) Why(dst []z.Lit) []z.Lit {
	dst = dst[:0]
	return append(dst, s.xo.Conflict()...)
}

// Simplify runs one inprocessing round without searching.  Returns
// -1 if unsat was derived, 0 otherwise.
func (s *Solver) Simplify() int {
	return s.xo.SimplifyProblemOutside()
}

// SetProof directs a DRAT trace of clause additions and deletions to
// w.  Must be set before adding clauses.
func (s *Solver) SetProof(w io.Writer) {
	s.xo.SetProof(w)
}

// SetLog installs a logger for solver progress reporting.
func (s *Solver) SetLog(l *logrus.Logger) {
	s.xo.SetLog(l)
}

// Interrupt makes a running Solve return 0 promptly.  Safe to call
// from other goroutines.
func (s *Solver) Interrupt() {
	s.xo.Interrupt()
}

// ClearInterrupt re-arms the solver after an Interrupt.
func (s *Solver) ClearInterrupt() {
	s.xo.ClearInterrupt()
}

// Okay reports whether the solver is not in a terminal unsat state.
func (s *Solver) Okay() bool {
	return s.xo.Okay()
}

// Stats gives cumulative solving statistics.
func (s *Solver) Stats() *xo.Stats {
	return s.xo.Stats()
}
