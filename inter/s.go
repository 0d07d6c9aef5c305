// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package inter holds the interfaces the solver exposes to embedders.
package inter

import "github.com/irifrance/xsat/z"

// Interface Solvable encapsulates a decision procedure which may run
// for a long time.
//
// Solve returns
//
//	1  If the problem is SAT
//	0  If the problem is undetermined
//	-1 If the problem is UNSAT
//
// These codes are used throughout xsat.
type Solvable interface {
	Solve() int
}

// Adder encapsulates something to which clauses can be added by
// sequences of z.LitNull terminated literals.
type Adder interface {
	// Add adds a literal to the current clause.  If m is z.LitNull,
	// the current clause ends and is installed.
	Add(m z.Lit)
}

// XorAdder encapsulates something accepting parity constraints.
type XorAdder interface {
	// AddXor adds the constraint that the variables vs sum to rhs.
	AddXor(vs []z.Var, rhs bool) bool
}

// Interface MaxVar is something which records the maximum variable
// from a stream of inputs and can return it.
type MaxVar interface {
	MaxVar() z.Var
}

// Liter produces fresh variables and returns the corresponding
// positive literal.
type Liter interface {
	Lit() z.Lit
}

// Model encapsulates something from which a model can be extracted.
type Model interface {
	Value(m z.Lit) bool
}

// Assumable encapsulates a problem which can be solved under unit
// assumptions.  Why gives the final conflict clause over the
// assumption literals after an unsat result.
type Assumable interface {
	Assume(ms ...z.Lit)
	Why(dst []z.Lit) []z.Lit
}

// Interface S encapsulates a complete incremental solver interface
// composing the above.
type S interface {
	MaxVar
	Liter
	Adder
	XorAdder
	Solvable
	Model
	Assumable
}
