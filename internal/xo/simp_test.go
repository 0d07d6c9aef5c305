// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"testing"

	"github.com/irifrance/xsat/z"
)

func TestProbeFailedLiteral(t *testing.T) {
	s := NewS()
	if err := s.NewVars(3); err != nil {
		t.Fatal(err)
	}
	// x1 -> x2, x1 -> not x2: probing x1 fails, so not x1 is forced.
	addc(t, s, -1, 2)
	addc(t, s, -1, -2)
	if !s.prober.Probe() {
		t.Fatalf("probe derived unsat")
	}
	if s.Vars.Value(z.Var(1).Neg()) != 1 {
		t.Errorf("failed literal not learnt")
	}
}

func TestProbeBothImply(t *testing.T) {
	s := NewS()
	if err := s.NewVars(2); err != nil {
		t.Fatal(err)
	}
	// x1 -> x2 and not x1 -> x2: x2 is forced either way.
	addc(t, s, -1, 2)
	addc(t, s, 1, 2)
	if !s.prober.Probe() {
		t.Fatalf("probe derived unsat")
	}
	if s.Vars.Value(z.Var(2).Pos()) != 1 {
		t.Errorf("both-implied literal not learnt")
	}
}

func TestCacheTryBoth(t *testing.T) {
	s := NewS()
	if err := s.NewVars(2); err != nil {
		t.Fatal(err)
	}
	if s.cache == nil {
		t.Skip("cache disabled")
	}
	s.cache.Record(z.Var(1).Pos(), z.Var(2).Pos())
	s.cache.Record(z.Var(1).Neg(), z.Var(2).Pos())
	if !s.cache.TryBoth() {
		t.Fatalf("tryboth derived unsat")
	}
	if s.Vars.Value(z.Var(2).Pos()) != 1 {
		t.Errorf("intersection unit not enqueued")
	}
}

func TestCacheClean(t *testing.T) {
	s := NewS()
	if err := s.NewVars(3); err != nil {
		t.Fatal(err)
	}
	s.cache.Record(z.Var(1).Pos(), z.Var(2).Pos())
	addc(t, s, 2) // assigns x2 at level 0
	changed, ok := s.cache.Clean()
	if !ok {
		t.Fatalf("clean failed")
	}
	if !changed {
		t.Errorf("stale entry not cleaned")
	}
	if len(s.cache.Implied(z.Var(1).Pos())) != 0 {
		t.Errorf("entry to assigned var kept")
	}
}

func TestSubsumeImplicitDup(t *testing.T) {
	s := NewS()
	if err := s.NewVars(2); err != nil {
		t.Fatal(err)
	}
	addc(t, s, 1, 2)
	addc(t, s, 1, 2)
	if !s.subImpl.SubsumeImplicit() {
		t.Fatalf("subsume derived unsat")
	}
	n := 0
	s.Cdb.ForallBins(func(p CLoc, a, b z.Lit, red bool) { n++ })
	if n != 1 {
		t.Errorf("duplicate binary kept: %d", n)
	}
}

func TestSubsumeImplicitUnit(t *testing.T) {
	s := NewS()
	if err := s.NewVars(2); err != nil {
		t.Fatal(err)
	}
	addc(t, s, 1, 2)
	addc(t, s, 1, -2)
	if !s.subImpl.SubsumeImplicit() {
		t.Fatalf("subsume derived unsat")
	}
	if s.Vars.Value(z.Var(1).Pos()) != 1 {
		t.Errorf("resolved unit not derived")
	}
}

func TestSubStrWithBin(t *testing.T) {
	s := NewS()
	if err := s.NewVars(3); err != nil {
		t.Fatal(err)
	}
	addc(t, s, 1, 2, 3)
	addc(t, s, 1, 2)
	if !s.subImpl.SubStrClausesWithBin() {
		t.Fatalf("substr derived unsat")
	}
	if len(s.Cdb.Irred) != 0 {
		t.Errorf("subsumed long clause kept")
	}
}

func TestDistillShortens(t *testing.T) {
	s := NewS()
	if err := s.NewVars(3); err != nil {
		t.Fatal(err)
	}
	// with (1 -2), i.e. 2 -> 1, assuming not 1 propagates not 2, so
	// vivification shrinks (1 2 3) to (1 3).
	addc(t, s, 1, -2)
	addc(t, s, 1, 2, 3)
	if !s.distiller.Distill() {
		t.Fatalf("distill derived unsat")
	}
	shortest := 1 << 20
	s.Cdb.ForallLong(func(p CLoc, hd Chd) {
		if n := s.Cdb.CDat.Len(p); n < shortest {
			shortest = n
		}
	})
	n := 0
	s.Cdb.ForallBins(func(p CLoc, a, b z.Lit, red bool) { n++ })
	if len(s.Cdb.Irred) != 0 {
		t.Errorf("clause not shortened: %d long remain", len(s.Cdb.Irred))
	}
	if n < 2 {
		t.Errorf("expected shortened binary, have %d bins", n)
	}
}

func TestStampsImplication(t *testing.T) {
	s := NewS()
	if err := s.NewVars(3); err != nil {
		t.Fatal(err)
	}
	addc(t, s, -1, 2) // 1 -> 2
	s.stamps.Stamp()
	if !s.stamps.Implies(z.Var(1).Pos(), z.Var(2).Pos()) &&
		!s.stamps.Implies(z.Var(2).Neg(), z.Var(1).Neg()) {
		t.Errorf("stamps miss direct implication in both directions")
	}
}

func TestCompsFindAndHandle(t *testing.T) {
	s := NewS()
	if err := s.NewVars(6); err != nil {
		t.Fatal(err)
	}
	// two disconnected components.
	addc(t, s, 1, 2)
	addc(t, s, -1, 3)
	addc(t, s, 4, 5)
	addc(t, s, -4, 6)
	if n := s.comps.FindComponents(); n != 2 {
		t.Fatalf("components: %d", n)
	}
	if !s.comps.Handle() {
		t.Fatalf("handle derived unsat")
	}
	decomposed := 0
	for v := z.Var(1); v <= s.Vars.Max; v++ {
		if s.Vars.Removed[v] == RemovedDecomp {
			decomposed++
		}
	}
	if decomposed == 0 {
		t.Fatalf("nothing decomposed")
	}
	// solving completes the model with the saved component state.
	if res := s.Solve(); res != 1 {
		t.Fatalf("solve: %d", res)
	}
	for d := 1; d <= 6; d++ {
		if s.ModelValue(lit(d)) == z.TVUndef {
			t.Errorf("x%d undef in model", d)
		}
	}
	// re-adding a clause over a decomposed variable restores it.
	var dv z.Var
	for v := z.Var(1); v <= s.Vars.Max; v++ {
		if s.Vars.Removed[v] == RemovedDecomp {
			dv = v
			break
		}
	}
	if dv != 0 {
		ov := s.Vmap.InterToOuter(dv)
		if _, err := s.AddClause([]z.Lit{ov.Pos()}, false); err != nil {
			t.Fatalf("re-add: %v", err)
		}
		if s.Vars.Removed[s.Vmap.OuterToInter(ov)] == RemovedDecomp {
			t.Errorf("decomposed var not re-admitted")
		}
	}
}
