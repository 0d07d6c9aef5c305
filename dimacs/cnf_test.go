// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package dimacs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/irifrance/xsat/z"
)

type dimacsTestData struct {
	D         string
	Strict    bool
	NonStrict bool
}

var cnfs = []dimacsTestData{
	{`c this
c is
c a
c comment
c but
c there
c is
c no
c body
`, false, true},
	{`c
p cng 7 7
1 0
`, false, false},
	{`p cnf 6 6
-1 0
-2 0
-3 0
-4 0
-5 0
-6 0
`, true, true},
	{`p cnf 2 3
1 0
2 0`, false, true},
	{`c hello
c world
10 11 23 44 -55 0`, false, true}}

type vis struct {
	clauses [][]z.Lit
	cur     []z.Lit
	nv, nc  int
	xors    []struct {
		vs  []z.Var
		rhs bool
	}
	ind []z.Var
}

func (v *vis) Add(m z.Lit) {
	if m == z.LitNull {
		v.clauses = append(v.clauses, v.cur)
		v.cur = nil
		return
	}
	v.cur = append(v.cur, m)
}

func (v *vis) Init(nv, nc int) {
	v.nv, v.nc = nv, nc
}

func (v *vis) Eof() {}

func (v *vis) AddXor(vs []z.Var, rhs bool) {
	v.xors = append(v.xors, struct {
		vs  []z.Var
		rhs bool
	}{vs, rhs})
}

func (v *vis) Ind(vs []z.Var) {
	v.ind = append(v.ind, vs...)
}

func TestDimacsStrict(t *testing.T) {
	for i, d := range cnfs {
		e := ReadCnfStrict(strings.NewReader(d.D), &vis{}, true)
		if d.Strict != (e == nil) {
			t.Errorf("%d: strict/error mismatch %t/%t: %v", i, d.Strict, e == nil, e)
		}
	}
}

func TestDimacsNonStrict(t *testing.T) {
	for i, d := range cnfs {
		e := ReadCnf(strings.NewReader(d.D), &vis{})
		if d.NonStrict != (e == nil) {
			t.Errorf("%d: non-strict/error mismatch %t/%t: %v", i, d.NonStrict, e == nil, e)
		}
	}
}

func TestDimacsClauses(t *testing.T) {
	v := &vis{}
	require.NoError(t, ReadCnf(strings.NewReader("p cnf 3 2\n1 -2 0\n2 3 0\n"), v))
	require.Equal(t, 3, v.nv)
	require.Equal(t, 2, v.nc)
	require.Equal(t, [][]z.Lit{
		{z.Dimacs2Lit(1), z.Dimacs2Lit(-2)},
		{z.Dimacs2Lit(2), z.Dimacs2Lit(3)}}, v.clauses)
}

func TestDimacsWrappedClause(t *testing.T) {
	v := &vis{}
	require.NoError(t, ReadCnf(strings.NewReader("1 2\n3 0\n"), v))
	require.Len(t, v.clauses, 1)
	require.Len(t, v.clauses[0], 3)
}

func TestDimacsXorLines(t *testing.T) {
	v := &vis{}
	require.NoError(t, ReadCnf(strings.NewReader("p cnf 3 1\nx 1 2 -3 0\n1 2 0\n"), v))
	require.Len(t, v.xors, 1)
	require.Equal(t, []z.Var{1, 2, 3}, v.xors[0].vs)
	require.False(t, v.xors[0].rhs)
	require.Len(t, v.clauses, 1)
}

func TestDimacsIndLines(t *testing.T) {
	v := &vis{}
	require.NoError(t, ReadCnf(strings.NewReader("c ind 3 5 9 0\np cnf 9 1\n1 2 0\n"), v))
	require.Equal(t, []z.Var{3, 5, 9}, v.ind)
}
