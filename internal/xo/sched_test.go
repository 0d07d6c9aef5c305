// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"strings"
	"testing"
)

func TestSchedUnknownToken(t *testing.T) {
	s := NewS()
	if err := s.NewVars(2); err != nil {
		t.Fatal(err)
	}
	addc(t, s, 1, 2)
	if err := s.ExecuteInprocessStrategy(false, "bogus-token"); err == nil {
		t.Errorf("unknown token accepted")
	}
	if err := s.ExecuteInprocessStrategy(false, "occ-bogus"); err == nil {
		t.Errorf("unknown occ token accepted")
	}
}

func TestSchedEmptyTokens(t *testing.T) {
	s := NewS()
	if err := s.NewVars(2); err != nil {
		t.Fatal(err)
	}
	addc(t, s, 1, 2)
	if err := s.ExecuteInprocessStrategy(false, ", ,, probe , ,"); err != nil {
		t.Errorf("empty tokens rejected: %v", err)
	}
}

func TestSchedCaseInsensitive(t *testing.T) {
	s := NewS()
	if err := s.NewVars(2); err != nil {
		t.Fatal(err)
	}
	addc(t, s, 1, 2)
	if err := s.ExecuteInprocessStrategy(false, "PROBE, Sub-Impl"); err != nil {
		t.Errorf("tokens should be case insensitive: %v", err)
	}
}

func TestSchedDefaultStrategies(t *testing.T) {
	opts := NewOptions()
	for _, sched := range []string{opts.SimplifySchedStartup, opts.SimplifySchedNonstartup} {
		s := NewSOpts(NewOptions())
		if err := s.NewVars(4); err != nil {
			t.Fatal(err)
		}
		addc(t, s, 1, 2, 3)
		addc(t, s, -1, 2, 4)
		addc(t, s, -2, -3, -4)
		if err := s.ExecuteInprocessStrategy(false, sched); err != nil {
			t.Errorf("default schedule %q rejected: %v", sched, err)
		}
		if !s.Okay() {
			t.Errorf("satisfiable formula became unsat under %q", sched)
		}
	}
}

func TestSchedSimplifyCounts(t *testing.T) {
	s := NewS()
	if err := s.NewVars(3); err != nil {
		t.Fatal(err)
	}
	addc(t, s, 1, 2, 3)
	before := s.numSimplify
	if st := s.SimplifyProblem(false); st != 0 {
		t.Fatalf("simplify: %d", st)
	}
	if s.numSimplify != before+1 {
		t.Errorf("numSimplify %d", s.numSimplify)
	}
}

func TestSchedOccBuffering(t *testing.T) {
	s := NewS()
	if err := s.NewVars(4); err != nil {
		t.Fatal(err)
	}
	addc(t, s, 1, 2, 3)
	addc(t, s, 1, 2, 4)
	// consecutive occ tokens including a trailing batch at end of
	// schedule must dispatch without error.
	if err := s.ExecuteInprocessStrategy(false, "occ-backw-sub-str, occ-bve, probe, occ-gauss"); err != nil {
		t.Errorf("occ buffering: %v", err)
	}
}

func TestSchedReconfigurePresets(t *testing.T) {
	for _, val := range []int{3, 4, 6, 7, 12, 13, 14, 15} {
		s := NewS()
		if err := s.Reconfigure(val); err != nil {
			t.Errorf("preset %d rejected: %v", val, err)
		}
	}
	s := NewS()
	if err := s.Reconfigure(5); err == nil {
		t.Errorf("preset 5 accepted")
	}
	if err := s.Reconfigure(0); err == nil {
		t.Errorf("preset 0 accepted")
	}
}

func TestSchedDefaultSchedulesParse(t *testing.T) {
	// the shipped schedules contain no empty tokens.
	opts := NewOptions()
	for _, sched := range []string{opts.SimplifySchedStartup, opts.SimplifySchedNonstartup} {
		for _, tok := range strings.Split(sched, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				t.Errorf("empty token in default schedule")
			}
		}
	}
}
