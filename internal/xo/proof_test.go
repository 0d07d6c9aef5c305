// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"bytes"
	"strings"
	"testing"

	"github.com/irifrance/xsat/z"
)

func TestProofRecords(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	p := NewProof(buf)
	if !p.Enabled() {
		t.Fatalf("not enabled")
	}
	p.Add([]z.Lit{z.Var(1).Pos(), z.Var(2).Neg()})
	p.Del([]z.Lit{z.Var(1).Pos(), z.Var(2).Neg()})
	p.AddUnit(z.Var(3).Neg())
	p.AddEmpty()
	if err := p.Flush(); err != nil {
		t.Fatal(err)
	}
	want := "1 -2 0\nd 1 -2 0\n-3 0\n0\n"
	if buf.String() != want {
		t.Errorf("proof %q != %q", buf.String(), want)
	}
}

func TestProofDisabled(t *testing.T) {
	p := NewProof(nil)
	if p.Enabled() {
		t.Fatalf("enabled without sink")
	}
	// all no-ops
	p.Add([]z.Lit{z.Var(1).Pos()})
	p.Del(nil)
	p.AddEmpty()
	if err := p.Flush(); err != nil {
		t.Fatal(err)
	}
}

// the multiset of live clauses matches adds minus dels, modulo the
// cleaning the ingress pipeline performs.
func TestProofFaithfulRewrites(t *testing.T) {
	s := NewS()
	buf := bytes.NewBuffer(nil)
	s.SetProof(buf)
	if err := s.NewVars(3); err != nil {
		t.Fatal(err)
	}
	addc(t, s, 1)
	// (Not 1, 2, 3) is cleaned to (2 3): expect the new form added
	// before the original is deleted.
	addc(t, s, -1, 2, 3)
	s.Proof().Flush()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	addAt, delAt := -1, -1
	for i, l := range lines {
		l = strings.TrimSpace(l)
		switch l {
		case "2 3 0":
			addAt = i
		case "d -1 2 3 0":
			delAt = i
		}
	}
	if addAt == -1 || delAt == -1 {
		t.Fatalf("missing rewrite records: %q", buf.String())
	}
	if addAt > delAt {
		t.Errorf("deletion emitted before the new form")
	}
}
