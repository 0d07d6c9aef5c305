// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"testing"

	"github.com/irifrance/xsat/z"
)

func TestGuess(t *testing.T) {
	N := 128
	g := newGuess(N)
	for i := 0; i < N-1; i++ {
		g.Push(z.Var(i + 1).Pos())
	}
	for i := 0; i < N-1; i++ {
		m := z.Var(i + 1).Pos()
		b := (i + 1) % 5
		for j := 0; j < b; j++ {
			g.Bump(m)
		}
	}

	mod := z.Var(4)
	for g.Len() > 0 {
		v := g.pop()
		m := v % 5
		if m == mod {
			continue
		}
		if m == mod-1 {
			mod--
			continue
		}
		t.Errorf("modulus shrank.\n")
	}
}

func TestGuessSkipsAssigned(t *testing.T) {
	g := newGuess(8)
	vals := make([]int8, 2*9)
	for i := 1; i <= 4; i++ {
		g.Push(z.Var(i).Pos())
	}
	vals[z.Var(1).Pos()] = 1
	vals[z.Var(1).Neg()] = -1
	g.Bump(z.Var(1).Pos())
	g.Bump(z.Var(1).Pos())
	m := g.Guess(vals)
	if m == z.LitNull || m.Var() == 1 {
		t.Errorf("guessed assigned var: %s", m)
	}
}

func TestGuessPolarity(t *testing.T) {
	g := newGuess(4)
	vals := make([]int8, 2*5)
	g.Push(z.Var(1).Pos())
	g.SetCache(1, -1)
	if m := g.Guess(vals); m != z.Var(1).Neg() {
		t.Errorf("cache polarity ignored: %s", m)
	}
	g.Push(z.Var(1).Pos())
	g.Mode = PolarityPos
	if m := g.Guess(vals); m != z.Var(1).Pos() {
		t.Errorf("pos polarity ignored: %s", m)
	}
}
