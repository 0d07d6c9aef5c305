// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"testing"

	"github.com/irifrance/xsat/z"
)

func TestSccReplacesEquivalentLits(t *testing.T) {
	s := NewS()
	if err := s.NewVars(3); err != nil {
		t.Fatal(err)
	}
	// x1 <-> x2
	addc(t, s, 1, -2)
	addc(t, s, -1, 2)
	if !s.replacer.ReplaceIfEnoughIsFound(1) {
		t.Fatalf("replace derived unsat")
	}
	if s.replacer.NumReplaced() != 1 {
		t.Fatalf("replaced %d vars", s.replacer.NumReplaced())
	}
	if s.Vars.Removed[2] != RemovedReplaced {
		t.Fatalf("v2 removal kind %s", s.Vars.Removed[2])
	}
	// a clause over the replaced var is rewritten to the
	// representative on the way in.
	addc(t, s, 3, 2)
	s.Cdb.ForallBins(func(p CLoc, a, b z.Lit, red bool) {
		if a.Var() == 2 || b.Var() == 2 {
			t.Errorf("stored binary mentions replaced var: %s %s", a, b)
		}
	})
	s.Cdb.ForallLong(func(p CLoc, hd Chd) {
		for _, m := range s.Cdb.Lits(p, nil) {
			if m.Var() == 2 {
				t.Errorf("stored clause mentions replaced var")
			}
		}
	})
	if res := s.Solve(); res != 1 {
		t.Fatalf("solve: %d", res)
	}
	// the model agrees on the equivalence.
	if s.ModelValue(lit(1)) != s.ModelValue(lit(2)) {
		t.Errorf("model breaks x1 == x2: %s %s", s.ModelValue(lit(1)), s.ModelValue(lit(2)))
	}
}

func TestSccBinaryXors(t *testing.T) {
	s := NewS()
	if err := s.NewVars(2); err != nil {
		t.Fatal(err)
	}
	addc(t, s, 1, -2)
	addc(t, s, -1, 2)
	if !s.replacer.ReplaceIfEnoughIsFound(1) {
		t.Fatalf("replace derived unsat")
	}
	xs := s.GetAllBinaryXors()
	if len(xs) != 1 {
		t.Fatalf("binary xors: %v", xs)
	}
	if xs[0][0].Var() == xs[0][1].Var() {
		t.Errorf("degenerate pair %v", xs[0])
	}
}

func TestSccOppositePolarity(t *testing.T) {
	s := NewS()
	if err := s.NewVars(2); err != nil {
		t.Fatal(err)
	}
	// x1 <-> not x2
	addc(t, s, 1, 2)
	addc(t, s, -1, -2)
	if !s.replacer.ReplaceIfEnoughIsFound(1) {
		t.Fatalf("replace derived unsat")
	}
	if res := s.Solve(); res != 1 {
		t.Fatalf("solve: %d", res)
	}
	if s.ModelValue(lit(1)) == s.ModelValue(lit(2)) {
		t.Errorf("model breaks x1 == not x2")
	}
}

func TestSccUnsatCycle(t *testing.T) {
	s := NewS()
	if err := s.NewVars(3); err != nil {
		t.Fatal(err)
	}
	// x1 -> x2 -> not x1 and not x1 -> x3 -> x1: a component holding
	// both polarities of x1.
	addc(t, s, -1, 2)
	addc(t, s, -2, -1)
	addc(t, s, 1, 3)
	addc(t, s, -3, 1)
	if s.replacer.ReplaceIfEnoughIsFound(1) {
		t.Fatalf("expected unsat from scc")
	}
	if s.Okay() {
		t.Fatalf("unsat not recorded")
	}
}

func TestSccRenumberCollapsesReplaced(t *testing.T) {
	s := NewS()
	if err := s.NewVars(3); err != nil {
		t.Fatal(err)
	}
	addc(t, s, 1, -2)
	addc(t, s, -1, 2)
	addc(t, s, 1, 3)
	if !s.replacer.ReplaceIfEnoughIsFound(1) {
		t.Fatalf("replace derived unsat")
	}
	if !s.RenumberVariables(true) {
		t.Fatalf("renumber derived unsat")
	}
	// the merged slot sits outside the interesting prefix.
	nEff := 0
	for v := z.Var(1); v <= s.Vars.Max; v++ {
		if s.Vars.TV(v) == z.TVUndef && s.Vars.Removed[v] == RemovedNone {
			nEff++
		}
	}
	if nEff != 2 {
		t.Fatalf("effective vars %d", nEff)
	}
	for v := z.Var(1); v <= z.Var(nEff); v++ {
		if s.Vars.Removed[v] != RemovedNone || s.Vars.TV(v) != z.TVUndef {
			t.Errorf("prefix var %s not interesting", v)
		}
	}
	if err := s.Vmap.Check(); err != nil {
		t.Fatalf("vmap: %v", err)
	}

	// a second immediate renumber never moves any variable.
	before := append([]z.Var{}, s.Vmap.i2o...)
	if !s.RenumberVariables(true) {
		t.Fatalf("second renumber derived unsat")
	}
	for i := range before {
		if s.Vmap.i2o[i] != before[i] {
			t.Fatalf("second renumber moved %d: %s -> %s", i, before[i], s.Vmap.i2o[i])
		}
	}

	if res := s.Solve(); res != 1 {
		t.Fatalf("solve after renumber: %d", res)
	}
	if s.ModelValue(lit(1)) != s.ModelValue(lit(2)) {
		t.Errorf("model breaks equivalence after renumber")
	}
}
