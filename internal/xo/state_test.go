// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/irifrance/xsat/z"
)

func TestStateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.bin")

	s := NewS()
	require.NoError(t, s.NewVars(4))
	addcT(t, s, 1, -2)
	addcT(t, s, -1, 2)
	addcT(t, s, 2, 3, 4)
	require.True(t, s.replacer.ReplaceIfEnoughIsFound(1))
	require.EqualValues(t, 1, s.replacer.NumReplaced())
	addcT(t, s, 1)
	require.NoError(t, s.SaveState(path, 0))

	r := NewS()
	require.NoError(t, r.NewVars(4))
	st, err := r.LoadState(path)
	require.NoError(t, err)
	require.Equal(t, 0, st)
	// the level 0 assignment and the replacement table survive.
	require.Equal(t, z.TVTrue, r.Vars.TV(r.Vmap.OuterToInter(1)))
	require.Equal(t, s.replacer.NumReplaced(), r.replacer.NumReplaced())

	require.Equal(t, 1, r.Solve())
}

func TestStateUnsatStatus(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.bin")

	s := NewS()
	require.NoError(t, s.NewVars(1))
	addcT(t, s, 1)
	addcT(t, s, -1)
	require.NoError(t, s.SaveState(path, -1))

	r := NewS()
	require.NoError(t, r.NewVars(1))
	st, err := r.LoadState(path)
	require.NoError(t, err)
	require.Equal(t, -1, st)
	require.False(t, r.Okay())
}

func TestStateNumberingMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.bin")

	s := NewS()
	require.NoError(t, s.NewVars(3))
	require.NoError(t, s.SaveState(path, 0))

	r := NewS()
	require.NoError(t, r.NewVars(2))
	_, err := r.LoadState(path)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrCorruptState))
}

func TestStateGarbageHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.bin")
	require.NoError(t, os.WriteFile(path, []byte("this is not a state file"), 0644))
	s := NewS()
	_, err := s.LoadState(path)
	require.Error(t, err)
}

func TestLoadSolutionFile(t *testing.T) {
	s := NewS()
	require.NoError(t, s.NewVars(3))
	st, err := s.loadSolution(strings.NewReader("c comment\ns SATISFIABLE\nv 1 -2\nv 3 0\n"))
	require.NoError(t, err)
	require.Equal(t, 1, st)
	require.Equal(t, z.TVTrue, s.partialModel[1])
	require.Equal(t, z.TVFalse, s.partialModel[2])
	require.Equal(t, z.TVTrue, s.partialModel[3])
}

func TestLoadSolutionStatuses(t *testing.T) {
	for in, want := range map[string]int{
		"s UNSATISFIABLE\n": -1,
		"s INDETERMINATE\n": 0,
	} {
		s := NewS()
		require.NoError(t, s.NewVars(1))
		st, err := s.loadSolution(strings.NewReader(in))
		require.NoError(t, err)
		require.Equal(t, want, st)
	}
	s := NewS()
	require.NoError(t, s.NewVars(1))
	_, err := s.loadSolution(strings.NewReader("s NONSENSE\n"))
	require.Error(t, err)
}

func addcT(t *testing.T, s *S, ds ...int) {
	t.Helper()
	ms := make([]z.Lit, len(ds))
	for i, d := range ds {
		ms[i] = z.Dimacs2Lit(d)
	}
	_, err := s.AddClause(ms, false)
	require.NoError(t, err)
}
