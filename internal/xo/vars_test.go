// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"testing"

	"github.com/irifrance/xsat/z"
)

func TestVarsSetUnset(t *testing.T) {
	vars := NewVars(8)
	m := z.Var(3).Neg()
	vars.set(m, 2, CLoc(10))
	if vars.Value(m) != 1 || vars.Value(m.Not()) != -1 {
		t.Errorf("set values: %d %d", vars.Value(m), vars.Value(m.Not()))
	}
	if vars.TV(3) != z.TVFalse {
		t.Errorf("tv: %s", vars.TV(3))
	}
	if vars.Levels[3] != 2 || vars.Reasons[3] != CLoc(10) {
		t.Errorf("level/reason: %d %s", vars.Levels[3], vars.Reasons[3])
	}
	vars.unset(m)
	if vars.TV(3) != z.TVUndef {
		t.Errorf("tv after unset: %s", vars.TV(3))
	}
	if vars.Polarity[3] != -1 {
		t.Errorf("polarity hint: %d", vars.Polarity[3])
	}
}

func TestVarsGrow(t *testing.T) {
	vars := NewVars(2)
	vars.set(z.Var(1).Pos(), 0, CNull)
	vars.growToVar(64)
	if vars.Top != 64 {
		t.Errorf("top %d", vars.Top)
	}
	if vars.TV(1) != z.TVTrue {
		t.Errorf("grow lost value")
	}
	if vars.TV(60) != z.TVUndef {
		t.Errorf("fresh var not undef")
	}
}

func TestVarsUpdateVars(t *testing.T) {
	vars := NewVars(3)
	vars.Max = 3
	vars.set(z.Var(1).Pos(), 0, CNull)
	vars.Removed[2] = RemovedReplaced
	// swap 1 and 3
	perm := []z.Var{0, 3, 2, 1}
	permLit := make([]z.Lit, 2*4)
	permLit[0], permLit[1] = 0, 1
	for v := z.Var(1); v <= 3; v++ {
		permLit[v.Pos()] = perm[v].Pos()
		permLit[v.Neg()] = perm[v].Neg()
	}
	vars.UpdateVars(perm, permLit)
	if vars.TV(3) != z.TVTrue {
		t.Errorf("value did not move: %s", vars.TV(3))
	}
	if vars.TV(1) != z.TVUndef {
		t.Errorf("old slot not cleared: %s", vars.TV(1))
	}
	if vars.Removed[2] != RemovedReplaced {
		t.Errorf("fixed point removal moved")
	}
}

func TestRemovalString(t *testing.T) {
	for r, want := range map[Removal]string{
		RemovedNone:     "none",
		RemovedElim:     "elimed",
		RemovedReplaced: "replaced",
		RemovedDecomp:   "decomposed",
	} {
		if r.String() != want {
			t.Errorf("%d: %s != %s", r, r.String(), want)
		}
	}
}
