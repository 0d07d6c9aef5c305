// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"testing"

	"github.com/irifrance/xsat/z"
)

func TestBVEAndExtension(t *testing.T) {
	s := NewS()
	if err := s.NewVars(3); err != nil {
		t.Fatal(err)
	}
	addc(t, s, 1, 2)
	addc(t, s, -1, 3)
	if !s.occ.BVE() {
		t.Fatalf("bve derived unsat")
	}
	if s.occ.NumElimedVars() == 0 {
		t.Fatalf("nothing eliminated")
	}
	if res := s.Solve(); res != 1 {
		t.Fatalf("solve: %d", res)
	}
	// the model covers the eliminated variable and satisfies the
	// original clauses.
	m1, m2, m3 := s.ModelValue(lit(1)), s.ModelValue(lit(2)), s.ModelValue(lit(3))
	if m1 != z.TVTrue && m2 != z.TVTrue {
		t.Errorf("clause (1 2) unsatisfied: %s %s", m1, m2)
	}
	if m1 != z.TVFalse && m3 != z.TVTrue {
		t.Errorf("clause (-1 3) unsatisfied: %s %s", m1, m3)
	}
}

func TestUneliminateOnAdd(t *testing.T) {
	s := NewS()
	if err := s.NewVars(3); err != nil {
		t.Fatal(err)
	}
	addc(t, s, 1, 2)
	addc(t, s, -1, 3)
	if !s.occ.BVE() {
		t.Fatalf("bve derived unsat")
	}
	// adding a clause over an eliminated variable restores its
	// clauses first.
	var elim int
	for d := 1; d <= 3; d++ {
		iv := s.Vmap.OuterToInter(z.Var(d))
		if s.Vars.Removed[iv] == RemovedElim {
			elim = d
			break
		}
	}
	if elim == 0 {
		t.Fatalf("no eliminated var found")
	}
	addc(t, s, elim)
	iv := s.Vmap.OuterToInter(z.Var(elim))
	if s.Vars.Removed[iv] != RemovedNone {
		t.Errorf("var %d still elimed after re-add", elim)
	}
	if res := s.Solve(); res != 1 {
		t.Fatalf("solve: %d", res)
	}
	if s.ModelValue(lit(elim)) != z.TVTrue {
		t.Errorf("unit over uneliminated var lost")
	}
}

func TestUndefine(t *testing.T) {
	opts := NewOptions()
	opts.DoSimplify = false
	opts.SimplifyAtStartup = false
	opts.PolarityMode = PolarityPos
	s := NewSOpts(opts)
	if err := s.NewVars(2); err != nil {
		t.Fatal(err)
	}
	addc(t, s, 1, 2)
	if res := s.Solve(); res != 1 {
		t.Fatalf("solve: %d", res)
	}
	if s.ModelValue(lit(1)) != z.TVTrue || s.ModelValue(lit(2)) != z.TVTrue {
		t.Fatalf("expected both true under positive polarity")
	}
	n := s.Undefine([]z.Var{s.Vmap.OuterToInter(1), s.Vmap.OuterToInter(2)})
	if n != 1 {
		t.Fatalf("undefined %d vars", n)
	}
	m1, m2 := s.ModelValue(lit(1)), s.ModelValue(lit(2))
	if m1 != z.TVUndef && m2 != z.TVUndef {
		t.Errorf("no var unset: %s %s", m1, m2)
	}
	if m1 != z.TVTrue && m2 != z.TVTrue {
		t.Errorf("clause no longer satisfied: %s %s", m1, m2)
	}
}

func TestUndefineIndependent(t *testing.T) {
	opts := NewOptions()
	opts.DoSimplify = false
	opts.SimplifyAtStartup = false
	opts.PolarityMode = PolarityPos
	opts.IndependentVars = []uint32{1}
	s := NewSOpts(opts)
	if err := s.NewVars(2); err != nil {
		t.Fatal(err)
	}
	addc(t, s, 1, 2)
	if res := s.Solve(); res != 1 {
		t.Fatalf("solve: %d", res)
	}
	n := s.Undefine([]z.Var{s.Vmap.OuterToInter(1), s.Vmap.OuterToInter(2)})
	if n != 1 {
		t.Fatalf("undefined %d vars", n)
	}
	if s.ModelValue(lit(1)) != z.TVUndef {
		t.Errorf("independent var not unset: %s", s.ModelValue(lit(1)))
	}
	if s.ModelValue(lit(2)) != z.TVTrue {
		t.Errorf("dependent var changed: %s", s.ModelValue(lit(2)))
	}
}
