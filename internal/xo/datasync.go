// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"github.com/irifrance/xsat/z"
)

// Type DataSync accumulates outbound binary clause messages for an
// external consumer and keeps the outside->outer (bva) mapping
// current.  The queue is drained externally; the solver only ever
// appends.
type DataSync struct {
	s *S

	// outbound binary clauses, in outer space; clauses over bva vars
	// are not queued.
	out [][2]z.Lit

	stSignalled int64
}

func NewDataSync(s *S) *DataSync {
	return &DataSync{s: s}
}

func (d *DataSync) newVar(ov z.Var) {}

// RebuildBvaMap is a no-op: the outside mapping is kept by the Vmap.
func (d *DataSync) RebuildBvaMap() {}

// SignalNewBinClause queues a newly derived binary clause for
// external consumers, mapped to outer space; a clause over a bva
// variable is dropped.
func (d *DataSync) SignalNewBinClause(a, b z.Lit) {
	s := d.s
	oa := s.Vmap.InterToOuterLit(a)
	ob := s.Vmap.InterToOuterLit(b)
	if s.Vmap.IsBva(oa.Var()) || s.Vmap.IsBva(ob.Var()) {
		return
	}
	d.out = append(d.out, [2]z.Lit{oa, ob})
	d.stSignalled++
}

// Drain hands out and clears the queued binary clauses.
func (d *DataSync) Drain() [][2]z.Lit {
	out := d.out
	d.out = nil
	return out
}

// UpdateVars is a no-op: the queue is kept in outer space already.
func (d *DataSync) UpdateVars() {}
