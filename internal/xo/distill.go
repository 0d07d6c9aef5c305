// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"github.com/irifrance/xsat/z"
)

// Type Distiller shortens long clauses by assuming prefixes of their
// negations and propagating (vivification).
type Distiller struct {
	s *S

	BaseBudget int64

	stDistilled int64
}

func NewDistiller(s *S) *Distiller {
	return &Distiller{s: s, BaseBudget: 10 * 1000 * 1000}
}

// Distill vivifies the irredundant long clauses within a propagation
// budget.  Returns false when unsat was derived.
func (d *Distiller) Distill() bool {
	s := d.s
	if !s.ok {
		return false
	}
	s.Trail.Back(0)
	if x := s.Trail.Prop(); x != CNull {
		s.Cdb.SetBot()
		s.proof.AddEmpty()
		s.ok = false
		return false
	}
	budget := int64(float64(d.BaseBudget) * s.globalTimeoutMult)
	start := s.Trail.Props
	work := append([]CLoc{}, s.Cdb.Irred...)

	for _, p := range work {
		if s.Trail.Props-start > budget || s.Ctl.Expired(s.sumConfl) {
			break
		}
		if s.Cdb.CDat.Chd(p).freed() {
			continue
		}
		ms := s.Cdb.Lits(p, nil)
		var kept []z.Lit
		shortened := false
		satisfied := false
		conflicted := false
		// the clause is detached while the negations of its literals
		// are assumed one at a time.
		s.Cdb.detach(p, ms)
		for _, m := range ms {
			switch s.Vars.Vals[m] {
			case 1:
				// earlier negations imply m: the prefix plus m is a
				// valid strengthening, unless at level 0 where the
				// clause is simply satisfied.
				if s.Trail.Level == 0 {
					satisfied = true
				} else {
					kept = append(kept, m)
					shortened = true
				}
			case -1:
				if s.Trail.Level == 0 {
					// false at level 0: cleaned elsewhere.
					kept = append(kept, m)
					continue
				}
				// implied false: redundant in this clause.
				shortened = true
				continue
			case 0:
				kept = append(kept, m)
				s.Trail.Assign(m.Not(), CNull)
				if s.Trail.Prop() != CNull {
					conflicted = true
				}
			}
			if satisfied || shortened && s.Vars.Vals[m] == 1 || conflicted {
				break
			}
		}
		s.Trail.Back(0)
		s.Cdb.attach(p, ms)
		if satisfied {
			s.Cdb.RemoveLong(p)
			continue
		}
		if !shortened && !conflicted {
			continue
		}
		if len(kept) == len(ms) && !shortened {
			continue
		}
		d.stDistilled++
		s.sumStats.Distilled++
		hd := s.Cdb.CDat.Chd(p)
		s.addClauseInt(kept, hd.Learnt(), hd.Lbd(), true, true, nil)
		if !s.ok {
			return false
		}
		s.Cdb.RemoveLong(p)
	}
	s.Cdb.sweepStores()
	return s.ok
}
