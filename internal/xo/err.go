// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"errors"
	"fmt"
)

var (
	// ErrTooLongClause is returned when a clause or xor exceeds 2^28
	// literals.  The solver remains usable afterwards.
	ErrTooLongClause = errors.New("xo: too long clause")

	// ErrTooManyVars is returned when the variable count would exceed
	// representability.
	ErrTooManyVars = errors.New("xo: too many variables")

	// ErrVarOutOfRange is returned when a caller passes a variable
	// not declared with NewVar/NewVars.
	ErrVarOutOfRange = errors.New("xo: variable out of range")

	// ErrBlocking is returned when clauses are added after blocked
	// clause elimination ran.
	ErrBlocking = errors.New("xo: cannot add clauses after blocked clause elimination")

	// ErrCorruptState is returned when a state file does not match
	// the solver it is loaded into.
	ErrCorruptState = errors.New("xo: corrupt or mismatched state")
)

// MaxClauseLen bounds the literal count of a single clause or xor.
const MaxClauseLen = 1 << 28

func varOutOfRange(v int, max int) error {
	return fmt.Errorf("%w: v%d inserted, but max var is %d", ErrVarOutOfRange, v, max)
}
