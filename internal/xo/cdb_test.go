// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"testing"

	"github.com/irifrance/xsat/z"
)

func TestCdbAddAndTiers(t *testing.T) {
	vars := NewVars(64)
	cdb := NewCdb(vars, 256)
	p := cdb.AddLong([]z.Lit{z.Lit(4), z.Lit(6), z.Lit(8)}, false, 2)
	if cdb.CDat.Chd(p).Learnt() {
		t.Errorf("irredundant clause marked learnt")
	}
	if len(cdb.Irred) != 1 {
		t.Errorf("irred store: %d", len(cdb.Irred))
	}
	// tiers by glue cutoffs: <=3 tier 0, <=6 tier 1, else 2.
	for _, tc := range []struct {
		glue uint32
		tier uint32
	}{{2, 0}, {3, 0}, {4, 1}, {6, 1}, {7, 2}} {
		q := cdb.AddLong([]z.Lit{z.Lit(10), z.Lit(12), z.Lit(14)}, true, tc.glue)
		hd := cdb.CDat.Chd(q)
		if !hd.Learnt() {
			t.Errorf("learnt clause not marked")
		}
		if hd.Tier() != tc.tier {
			t.Errorf("glue %d: tier %d != %d", tc.glue, hd.Tier(), tc.tier)
		}
	}
	if len(cdb.Red[0]) != 2 || len(cdb.Red[1]) != 2 || len(cdb.Red[2]) != 1 {
		t.Errorf("tier stores: %d %d %d", len(cdb.Red[0]), len(cdb.Red[1]), len(cdb.Red[2]))
	}
	if errs := cdb.CheckWatches(); len(errs) != 0 {
		t.Errorf("watches: %v", errs)
	}
}

func TestCdbBins(t *testing.T) {
	vars := NewVars(8)
	cdb := NewCdb(vars, 64)
	cdb.AddBin(z.Var(1).Pos(), z.Var(2).Neg(), false)
	cdb.AddBin(z.Var(2).Pos(), z.Var(3).Pos(), true)
	n, nRed := 0, 0
	cdb.ForallBins(func(p CLoc, a, b z.Lit, red bool) {
		n++
		if red {
			nRed++
		}
	})
	if n != 2 || nRed != 1 {
		t.Errorf("bins %d red %d", n, nRed)
	}
	if len(cdb.Irred)+len(cdb.Red[0])+len(cdb.Red[1])+len(cdb.Red[2]) != 0 {
		t.Errorf("binaries leaked into long stores")
	}
}

func TestCdbRemoveAndCompact(t *testing.T) {
	vars := NewVars(64)
	cdb := NewCdb(vars, 64)
	var ps []CLoc
	for i := 0; i < 8; i++ {
		v := z.Var(3*i + 1)
		ps = append(ps, cdb.AddLong([]z.Lit{v.Pos(), (v + 1).Pos(), (v + 2).Pos()}, false, 2))
	}
	for _, p := range ps[:4] {
		cdb.RemoveLong(p)
	}
	cdb.sweepStores()
	if len(cdb.Irred) != 4 {
		t.Errorf("irred after remove: %d", len(cdb.Irred))
	}
	n, _ := cdb.Compact()
	if n == 0 {
		t.Errorf("compact did nothing")
	}
	if errs := cdb.CheckWatches(); len(errs) != 0 {
		t.Errorf("watches after compact: %v", errs)
	}
	for _, p := range cdb.Irred {
		if cdb.CDat.Len(p) != 3 {
			t.Errorf("clause corrupted by compact")
		}
	}
}

func TestCdbCleanAll(t *testing.T) {
	vars := NewVars(8)
	cdb := NewCdb(vars, 64)
	guess := newGuess(8)
	trail := NewTrail(cdb, guess)
	// (1 2 3), (-1 2 4), (1 -4): assign 1 at level 0.
	cdb.AddLong([]z.Lit{z.Var(1).Pos(), z.Var(2).Pos(), z.Var(3).Pos()}, false, 2)
	cdb.AddLong([]z.Lit{z.Var(1).Neg(), z.Var(2).Pos(), z.Var(4).Pos()}, false, 2)
	cdb.AddBin(z.Var(1).Pos(), z.Var(4).Neg(), false)
	trail.Enq0(z.Var(1).Pos())
	if x := trail.Prop(); x != CNull {
		t.Fatalf("conflict: %s", x)
	}
	enq := func(m z.Lit) bool {
		if vars.Vals[m] == 1 {
			return true
		}
		if vars.Vals[m] == -1 {
			return false
		}
		trail.Enq0(m)
		return trail.Prop() == CNull
	}
	if !cdb.CleanAll(enq) {
		t.Fatalf("clean derived unsat")
	}
	// (1 2 3) satisfied: gone.  (-1 2 4) loses -1: becomes binary.
	if len(cdb.Irred) != 0 {
		t.Errorf("satisfied clause kept: %d", len(cdb.Irred))
	}
	found := false
	cdb.ForallBins(func(p CLoc, a, b z.Lit, red bool) {
		if (a == z.Var(2).Pos() && b == z.Var(4).Pos()) || (b == z.Var(2).Pos() && a == z.Var(4).Pos()) {
			found = true
		}
	})
	if !found {
		t.Errorf("shortened clause not rewired as binary")
	}
}

func TestCdbReduceLev2(t *testing.T) {
	vars := NewVars(128)
	cdb := NewCdb(vars, 512)
	for i := 0; i < 20; i++ {
		v := z.Var(3*i + 1)
		p := cdb.AddLong([]z.Lit{v.Pos(), (v + 1).Pos(), (v + 2).Pos()}, true, 10)
		if i < 5 {
			cdb.Bump(p)
		}
	}
	removed := cdb.ReduceLev2(8)
	if removed != 12 {
		t.Errorf("removed %d", removed)
	}
	if len(cdb.Red[2]) != 8 {
		t.Errorf("kept %d", len(cdb.Red[2]))
	}
}
