// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package xsat provides an inprocessing CDCL SAT solver for CNF
// extended with parity (xor) constraints.
//
// The solver alternates conflict driven search with simplification
// passes (failed literal probing, equivalent literal replacement,
// bounded variable elimination, subsumption and strengthening,
// component decomposition, Gaussian reasoning over xors, variable
// renumbering), supports solving under unit assumptions, and can emit
// DRAT proof traces.
//
// Basic usage:
//
//	s := xsat.New()
//	x, y := s.Lit(), s.Lit()
//	s.Add(x)
//	s.Add(y)
//	s.Add(0)
//	if s.Solve() == 1 {
//		_ = s.Value(x)
//	}
package xsat
