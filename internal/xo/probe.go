// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"github.com/irifrance/xsat/z"
)

// Type Prober performs failed literal probing: assigning a literal,
// propagating, and learning the negation as a unit on conflict.
// Implications discovered on the way fill the implication cache, and
// literals implied by both polarities of a variable become units.
type Prober struct {
	s *S

	// budget in propagations per run, scaled by the global timeout
	// multiplier.
	BaseBudget int64

	stProbed int64
	stFailed int64
}

func NewProber(s *S) *Prober {
	return &Prober{s: s, BaseBudget: 2 * 1000 * 1000}
}

// Probe probes unassigned variables until the budget runs out.
// Returns false when unsat was derived.
func (pr *Prober) Probe() bool {
	return pr.probe(false)
}

// IntreeProbe probes only roots of the binary implication graph,
// which covers the tree of binary implications below each root.
func (pr *Prober) IntreeProbe() bool {
	return pr.probe(true)
}

func (pr *Prober) probe(intreeOnly bool) bool {
	s := pr.s
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
	budget := int64(float64(pr.BaseBudget) * s.globalTimeoutMult)
	start := s.Trail.Props

	for v := z.Var(1); v <= s.Vars.Max; v++ {
		if s.Trail.Props-start > budget {
			break
		}
		if s.Ctl.Expired(s.sumConfl) {
			break
		}
		if s.Vars.TV(v) != z.TVUndef || s.Vars.Removed[v] != RemovedNone {
			continue
		}
		var common map[z.Lit]bool
		failed := false
		for sign := 0; sign < 2; sign++ {
			m := v.Pos()
			if sign == 1 {
				m = v.Neg()
			}
			if intreeOnly && !pr.isRoot(m) {
				common = nil
				continue
			}
			if s.Vars.Vals[m] != 0 {
				break
			}
			pr.stProbed++
			s.sumStats.Probed++
			mark := s.Trail.Tail()
			s.Trail.Assign(m, CNull)
			x := s.Trail.Prop()
			if x != CNull {
				s.Trail.Back(0)
				pr.stFailed++
				s.proof.AddUnit(m.Not())
				if !s.enq0Prop(m.Not()) {
					return false
				}
				failed = true
				break
			}
			imps := map[z.Lit]bool{}
			for _, o := range s.Trail.D[mark+1:] {
				imps[o] = true
				if s.cache != nil {
					s.cache.Record(m, o)
				}
			}
			s.Trail.Back(0)
			if sign == 0 {
				common = imps
			} else if common != nil {
				for o := range common {
					if !imps[o] {
						continue
					}
					// implied both ways: a unit.
					if s.Vars.Vals[o] != 0 {
						continue
					}
					s.proof.AddUnit(o)
					if !s.enq0Prop(o) {
						return false
					}
				}
			}
		}
		if failed {
			continue
		}
	}
	return s.ok
}

// isRoot says whether m has no binary predecessor, making it a root
// of the binary implication forest.
func (pr *Prober) isRoot(m z.Lit) bool {
	// an edge o -> m exists iff the binary clause (not o, m) does,
	// which is watched at W[m.Not()] with other lit not o.
	for _, w := range pr.s.Cdb.W[m.Not()] {
		if w.IsBinary() {
			return false
		}
	}
	return true
}
