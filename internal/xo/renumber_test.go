// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"testing"

	"github.com/irifrance/xsat/z"
)

func TestRenumberSaving(t *testing.T) {
	s := NewS()
	if err := s.NewVars(4); err != nil {
		t.Fatal(err)
	}
	addc(t, s, 1)
	addc(t, s, 2, 3, 4)
	addc(t, s, -2, 3, 4)
	if sv := s.CalcRenumberSaving(); sv < 0.24 || sv > 0.26 {
		t.Errorf("saving %f", sv)
	}
}

func TestRenumberMovesAssignedOut(t *testing.T) {
	s := NewS()
	if err := s.NewVars(4); err != nil {
		t.Fatal(err)
	}
	addc(t, s, 1)
	addc(t, s, 2, 3, 4)
	addc(t, s, -2, 3, 4)
	if !s.RenumberVariables(false) {
		t.Fatalf("renumber derived unsat")
	}
	// the assigned variable must live past the interesting prefix.
	iv := s.Vmap.OuterToInter(1)
	if iv <= 3 {
		t.Errorf("assigned var at inter %s", iv)
	}
	for v := z.Var(1); v <= 3; v++ {
		if s.Vars.TV(v) != z.TVUndef || s.Vars.Removed[v] != RemovedNone {
			t.Errorf("prefix var %s not interesting", v)
		}
	}
	if err := s.Vmap.Check(); err != nil {
		t.Fatalf("vmap: %v", err)
	}
	// clauses survive renumbering with consistent watches.
	if errs := s.Cdb.CheckWatches(); len(errs) != 0 {
		t.Errorf("watches: %v", errs)
	}
	if res := s.Solve(); res != 1 {
		t.Fatalf("solve after renumber: %d", res)
	}
	if s.ModelValue(lit(1)) != z.TVTrue {
		t.Errorf("unit lost by renumber: %s", s.ModelValue(lit(1)))
	}
}

func TestRenumberBelowThresholdSkips(t *testing.T) {
	s := NewS()
	if err := s.NewVars(10); err != nil {
		t.Fatal(err)
	}
	addc(t, s, 1)
	for d := 2; d < 10; d++ {
		addc(t, s, d, d+1)
	}
	// saving 0.1 < 0.2: nothing happens without must.
	before := append([]z.Var{}, s.Vmap.i2o...)
	if !s.RenumberVariables(false) {
		t.Fatalf("renumber derived unsat")
	}
	for i := range before {
		if s.Vmap.i2o[i] != before[i] {
			t.Fatalf("renumber ran below saving threshold")
		}
	}
	// forced, it runs.
	if !s.RenumberVariables(true) {
		t.Fatalf("forced renumber derived unsat")
	}
	if s.Vmap.OuterToInter(1) == 1 {
		t.Errorf("forced renumber did not move assigned var")
	}
}
