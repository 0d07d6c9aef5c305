// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package xo contains the solving engine and its orchestration core:
// the clause arena and database, the propagation engine, the CDCL
// searcher, the inprocessing simplifier suite, the three-space
// variable numbering, DRAT tracing, and model extension.
//
// The public face of the solver lives in the parent xsat package; xo
// is internal and its API may change.
package xo
