// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"testing"

	"github.com/irifrance/xsat/z"
)

func addx(t *testing.T, s *S, rhs bool, vs ...int) {
	us := make([]z.Var, len(vs))
	for i, v := range vs {
		us[i] = z.Var(v)
	}
	if _, err := s.AddXorClause(us, rhs); err != nil {
		t.Fatalf("addxor %v: %v", vs, err)
	}
}

func TestXorForcing(t *testing.T) {
	s := NewS()
	if err := s.NewVars(3); err != nil {
		t.Fatal(err)
	}
	addx(t, s, true, 1, 2, 3)
	addc(t, s, 1)
	addc(t, s, 2)
	if res := s.Solve(); res != 1 {
		t.Fatalf("solve: %d", res)
	}
	if s.ModelValue(lit(3)) != z.TVTrue {
		t.Errorf("x3 = %s, want true", s.ModelValue(lit(3)))
	}
}

func TestXorEmpty(t *testing.T) {
	s := NewS()
	if ok, err := s.AddXorClause(nil, false); !ok || err != nil {
		t.Errorf("empty even xor: %t %v", ok, err)
	}
	if ok, err := s.AddXorClause(nil, true); ok || err != nil {
		t.Errorf("empty odd xor should be unsat: %t %v", ok, err)
	}
	if res := s.Solve(); res != -1 {
		t.Errorf("solve: %d", res)
	}
}

func TestXorPairCancels(t *testing.T) {
	s := NewS()
	if err := s.NewVars(1); err != nil {
		t.Fatal(err)
	}
	// x1 xor x1 = true is 0 = 1
	addx(t, s, true, 1, 1)
	if s.Okay() {
		t.Errorf("cancelled pair with odd rhs should be unsat")
	}
}

func TestXorUnit(t *testing.T) {
	s := NewS()
	if err := s.NewVars(1); err != nil {
		t.Fatal(err)
	}
	addx(t, s, true, 1)
	if res := s.Solve(); res != 1 {
		t.Fatalf("solve: %d", res)
	}
	if s.ModelValue(lit(1)) != z.TVTrue {
		t.Errorf("unit xor value %s", s.ModelValue(lit(1)))
	}
}

func TestXorBinaryEquivalence(t *testing.T) {
	s := NewS()
	if err := s.NewVars(2); err != nil {
		t.Fatal(err)
	}
	// x1 xor x2 = false: equal
	addx(t, s, false, 1, 2)
	addc(t, s, 1)
	if res := s.Solve(); res != 1 {
		t.Fatalf("solve: %d", res)
	}
	if s.ModelValue(lit(2)) != z.TVTrue {
		t.Errorf("x2 = %s, want true", s.ModelValue(lit(2)))
	}
}

func TestXorBinaryConflict(t *testing.T) {
	s := NewS()
	if err := s.NewVars(2); err != nil {
		t.Fatal(err)
	}
	addx(t, s, true, 1, 2)
	addx(t, s, false, 1, 2)
	if res := s.Solve(); res != -1 {
		t.Errorf("contradicting binary xors: %d", res)
	}
}

func TestXorLongCutHidesAuxVars(t *testing.T) {
	s := NewS()
	if err := s.NewVars(6); err != nil {
		t.Fatal(err)
	}
	addx(t, s, true, 1, 2, 3, 4, 5, 6)
	if s.NVars() != 6 {
		t.Errorf("outside vars %d after cutting", s.NVars())
	}
	if s.NVarsOuter() <= 6 {
		t.Errorf("no auxiliary variables allocated: %d", s.NVarsOuter())
	}
	if res := s.Solve(); res != 1 {
		t.Fatalf("solve: %d", res)
	}
	parity := false
	for d := 1; d <= 6; d++ {
		switch s.ModelValue(lit(d)) {
		case z.TVTrue:
			parity = !parity
		case z.TVUndef:
			t.Fatalf("x%d undef in model", d)
		}
	}
	if !parity {
		t.Errorf("model violates parity")
	}
}

func TestXorGaussDerives(t *testing.T) {
	s := NewS()
	if err := s.NewVars(4); err != nil {
		t.Fatal(err)
	}
	addx(t, s, true, 1, 2, 3)
	addx(t, s, false, 1, 2, 3, 4)
	// the sum of the two constraints forces x4 = 1.
	if !s.XorGauss() {
		t.Fatalf("gauss derived unsat")
	}
	if res := s.Solve(); res != 1 {
		t.Fatalf("solve: %d", res)
	}
	if s.ModelValue(lit(4)) != z.TVTrue {
		t.Errorf("x4 = %s, want true", s.ModelValue(lit(4)))
	}
}

func TestXorGaussUnsat(t *testing.T) {
	s := NewS()
	if err := s.NewVars(3); err != nil {
		t.Fatal(err)
	}
	addx(t, s, true, 1, 2, 3)
	addx(t, s, false, 1, 2, 3)
	if res := s.Solve(); res != -1 {
		t.Errorf("contradicting xors: %d", res)
	}
}
