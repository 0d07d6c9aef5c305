// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package dimacs provides reading of DIMACS formatted CNF, with the
// xor clause ("x" line) and independent variable ("c ind" line)
// extensions.
package dimacs

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/irifrance/xsat/z"
)

// Vis is the visitor interface for reading CNF.
type Vis interface {
	// Init is called with the problem line header, if any.
	Init(nVars, nClauses int)
	// Add is called for each literal; z.LitNull terminates a clause.
	Add(m z.Lit)
	// Eof is called at end of input.
	Eof()
}

// XorVis is implemented by visitors accepting "x" parity lines.
type XorVis interface {
	AddXor(vs []z.Var, rhs bool)
}

// IndVis is implemented by visitors accepting "c ind" lines listing
// independent variables.
type IndVis interface {
	Ind(vs []z.Var)
}

// ReadCnf reads DIMACS CNF from r, forgiving header mismatches and
// missing trailing zeros.
func ReadCnf(r io.Reader, vis Vis) error {
	return ReadCnfStrict(r, vis, false)
}

// ReadCnfStrict reads DIMACS CNF from r.  In strict mode, a problem
// line is required, counts must match, and every clause must be zero
// terminated.
func ReadCnfStrict(r io.Reader, vis Vis, strict bool) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<16), 1<<26)
	var (
		sawProblem bool
		nVars      int
		nClauses   int
		clauses    int
		inClause   bool
		line       int
	)
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		switch {
		case strings.HasPrefix(text, "c"):
			if iv, ok := indLine(text); ok {
				if v, okv := vis.(IndVis); okv {
					v.Ind(iv)
				}
			}
		case strings.HasPrefix(text, "p"):
			if sawProblem {
				return errors.Errorf("dimacs: duplicate problem line at line %d", line)
			}
			flds := strings.Fields(text)
			if len(flds) != 4 || flds[1] != "cnf" {
				return errors.Errorf("dimacs: bad problem line at line %d", line)
			}
			var err error
			if nVars, err = strconv.Atoi(flds[2]); err != nil {
				return errors.Wrapf(err, "dimacs: line %d", line)
			}
			if nClauses, err = strconv.Atoi(flds[3]); err != nil {
				return errors.Wrapf(err, "dimacs: line %d", line)
			}
			sawProblem = true
			vis.Init(nVars, nClauses)
		case strings.HasPrefix(text, "x"):
			vs, rhs, err := xorLine(text, line)
			if err != nil {
				return err
			}
			if v, okv := vis.(XorVis); okv {
				v.AddXor(vs, rhs)
			}
		default:
			done, err := litLine(text, line, vis)
			if err != nil {
				return err
			}
			if done {
				clauses++
				inClause = false
			} else {
				inClause = true
			}
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "dimacs")
	}
	if inClause {
		if strict {
			return errors.New("dimacs: unterminated clause at end of input")
		}
		vis.Add(z.LitNull)
		clauses++
	}
	if strict {
		if !sawProblem {
			return errors.New("dimacs: missing problem line")
		}
		if clauses != nClauses {
			return errors.Errorf("dimacs: clause count %d != header %d", clauses, nClauses)
		}
	}
	vis.Eof()
	return nil
}

// litLine feeds the literals of one input line to the visitor and
// says whether the line closed a clause.
func litLine(text string, line int, vis Vis) (bool, error) {
	done := false
	for _, fld := range strings.Fields(text) {
		iv, err := strconv.Atoi(fld)
		if err != nil {
			return false, errors.Wrapf(err, "dimacs: line %d", line)
		}
		if iv == 0 {
			vis.Add(z.LitNull)
			done = true
			continue
		}
		done = false
		vis.Add(z.Dimacs2Lit(iv))
	}
	return done, nil
}

// xorLine parses "x 1 2 -3 0": a parity constraint whose rhs is
// flipped by each negative variable reference.
func xorLine(text string, line int) ([]z.Var, bool, error) {
	rhs := true
	var vs []z.Var
	for _, fld := range strings.Fields(text[1:]) {
		iv, err := strconv.Atoi(fld)
		if err != nil {
			return nil, false, errors.Wrapf(err, "dimacs: line %d", line)
		}
		if iv == 0 {
			break
		}
		if iv < 0 {
			rhs = !rhs
			iv = -iv
		}
		vs = append(vs, z.Var(iv))
	}
	return vs, rhs, nil
}

// indLine recognizes "c ind 3 5 9 0" independent variable lines.
func indLine(text string) ([]z.Var, bool) {
	flds := strings.Fields(text)
	if len(flds) < 2 || flds[0] != "c" || flds[1] != "ind" {
		return nil, false
	}
	var vs []z.Var
	for _, fld := range flds[2:] {
		iv, err := strconv.Atoi(fld)
		if err != nil || iv <= 0 {
			break
		}
		vs = append(vs, z.Var(iv))
	}
	return vs, true
}
