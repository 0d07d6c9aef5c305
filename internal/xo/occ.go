// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/irifrance/xsat/z"
)

// Type Occ is the occurrence based simplifier: bounded variable
// elimination with unelimination support, backward subsumption and
// strengthening, bounded variable addition, and the dispatch point
// for occ-* strategy tokens.
type Occ struct {
	s *S

	// elimed clauses per outer variable, in outer space, in the order
	// the eliminations happened; the extender reverses this.
	elimed    map[z.Var][][]z.Lit
	elimOrder []z.Var

	blocked bool

	// per-variable resolvent budget.
	MaxResolvents int
	MaxOccs       int

	stElimed int64
	stSubs   int64
	stStrs   int64
	stBvas   int64
}

func NewOcc(s *S) *Occ {
	return &Occ{
		s:             s,
		elimed:        map[z.Var][][]z.Lit{},
		MaxResolvents: 16,
		MaxOccs:       40}
}

func (o *Occ) newVar(ov z.Var) {}

// AnythingBlocked says whether blocked clause elimination removed
// clauses, after which no new clauses may be added.
func (o *Occ) AnythingBlocked() bool {
	return o.blocked
}

// NumElimedVars gives the number of currently eliminated variables.
func (o *Occ) NumElimedVars() int {
	return len(o.elimed)
}

// Simplify dispatches a buffered occ token string, e.g.
// "occ-backw-sub-str, occ-bve".  Unknown occ tokens are a hard error.
func (o *Occ) Simplify(startup bool, tokens string) (bool, error) {
	s := o.s
	for _, tok := range strings.Split(tokens, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if s.Ctl.Expired(s.sumConfl) || !s.ok || s.Vars.Max == 0 {
			return s.ok, nil
		}
		switch tok {
		case "occ-backw-sub-str":
			if !o.BackwSubStr() {
				return false, nil
			}
		case "occ-bve":
			if !o.BVE() {
				return false, nil
			}
		case "occ-bva":
			if s.Opts.DoBva {
				if !o.BVA() {
					return false, nil
				}
			}
		case "occ-gauss":
			if !s.XorGauss() {
				return false, nil
			}
		case "occ-clean-implicit":
			if !s.subImpl.SubsumeImplicit() {
				return false, nil
			}
		case "occ-xor":
			if !s.UpdateXorsAfterReplace() {
				return false, nil
			}
		default:
			return s.ok, fmt.Errorf("xo: occ strategy %q not recognised", tok)
		}
	}
	return s.ok, nil
}

// occEntry references a clause in the occurrence index; gen detects
// entries stale after the clause was strengthened or removed.
type occEntry struct {
	p   CLoc
	gen uint32
}

// buildOccs indexes the irredundant long clauses by literal.
func (o *Occ) buildOccs() [][]occEntry {
	s := o.s
	occs := make([][]occEntry, 2*(int(s.Vars.Max)+1))
	for _, p := range s.Cdb.Irred {
		hd := s.Cdb.CDat.Chd(p)
		if hd.freed() {
			continue
		}
		for _, m := range s.Cdb.Lits(p, nil) {
			occs[m] = append(occs[m], occEntry{p, hd.Gen()})
		}
	}
	return occs
}

func (o *Occ) live(e occEntry) bool {
	hd := o.s.Cdb.CDat.Chd(e.p)
	return !hd.freed() && hd.Gen() == e.gen
}

// BackwSubStr performs backward subsumption and self subsuming
// resolution (strengthening) over the irredundant long clauses.
// Returns false when unsat was derived.
func (o *Occ) BackwSubStr() bool {
	s := o.s
	if !s.ok {
		return false
	}
	s.Trail.Back(0)
	occs := o.buildOccs()
	work := append([]CLoc{}, s.Cdb.Irred...)
	for _, p := range work {
		if s.Cdb.CDat.Chd(p).freed() {
			continue
		}
		ms := s.Cdb.Lits(p, nil)
		// find candidate clauses sharing the rarest literal.
		best := ms[0]
		for _, m := range ms[1:] {
			if len(occs[m]) < len(occs[best]) {
				best = m
			}
		}
		for _, e := range occs[best] {
			if e.p == p || !o.live(e) {
				continue
			}
			q := e.p
			qs := s.Cdb.Lits(q, nil)
			if len(qs) < len(ms) {
				continue
			}
			sub, strLit := subsumes(ms, qs)
			if sub {
				o.stSubs++
				s.sumStats.Subsumed++
				s.Cdb.RemoveLong(q)
				continue
			}
			if strLit != z.LitNull {
				// self subsuming resolution: drop strLit from q.
				o.stStrs++
				s.sumStats.Strengthened++
				ns := make([]z.Lit, 0, len(qs)-1)
				for _, l := range qs {
					if l != strLit {
						ns = append(ns, l)
					}
				}
				nq := s.addClauseInt(ns, false, 2, true, true, nil)
				if !s.ok {
					return false
				}
				s.Cdb.RemoveLong(q)
				if nq != CNull && len(ns) > 2 {
					hd := s.Cdb.CDat.Chd(nq)
					for _, l := range ns {
						occs[l] = append(occs[l], occEntry{nq, hd.Gen()})
					}
				}
			}
		}
	}
	s.Cdb.sweepStores()
	return s.ok
}

// subsumes checks whether a subsumes b, or whether a self subsumes b
// on exactly one flipped literal, returned as the literal of b to
// drop.
func subsumes(a, b []z.Lit) (bool, z.Lit) {
	inB := map[z.Lit]bool{}
	for _, l := range b {
		inB[l] = true
	}
	flipped := z.LitNull
	for _, l := range a {
		if inB[l] {
			continue
		}
		if inB[l.Not()] && flipped == z.LitNull {
			flipped = l.Not()
			continue
		}
		return false, z.LitNull
	}
	if flipped == z.LitNull {
		return true, z.LitNull
	}
	return false, flipped
}

// BVE runs bounded variable elimination: a variable is eliminated
// when its resolvents do not outnumber the clauses they replace.  The
// removed clauses are retained for unelimination and for model
// extension.  Returns false when unsat was derived.
func (o *Occ) BVE() bool {
	s := o.s
	if !s.ok {
		return false
	}
	s.Trail.Back(0)
	if !s.Cdb.CleanAll(s.enq0Prop) {
		s.ok = false
		return false
	}

	cands := make([]z.Var, 0, s.Vars.Max)
	for v := z.Var(1); v <= s.Vars.Max; v++ {
		if s.Vars.TV(v) != z.TVUndef || s.Vars.Removed[v] != RemovedNone {
			continue
		}
		if s.VarInsideAssumptions(v) {
			continue
		}
		cands = append(cands, v)
	}

	for _, v := range cands {
		if s.Ctl.Expired(s.sumConfl) {
			break
		}
		if s.Vars.TV(v) != z.TVUndef || s.Vars.Removed[v] != RemovedNone {
			continue
		}
		if !o.tryEliminate(v) {
			if !s.ok {
				return false
			}
		}
	}
	s.Cdb.sweepStores()
	s.Guess.Rebuild(s.Vars)
	return s.ok
}

// gather collects the live clauses containing m: long irredundant
// ones and binaries; redundant long clauses are skipped.  It reports
// failure when there are more than MaxOccs occurrences.
func (o *Occ) gather(m z.Lit) ([][]z.Lit, []CLoc, bool) {
	s := o.s
	var lits [][]z.Lit
	var locs []CLoc
	n := 0
	found := true
	s.Cdb.ForallLong(func(p CLoc, hd Chd) {
		if hd.Learnt() {
			return
		}
		ms := s.Cdb.Lits(p, nil)
		for _, l := range ms {
			if l == m {
				lits = append(lits, append([]z.Lit{}, ms...))
				locs = append(locs, p)
				n++
				break
			}
		}
	})
	s.Cdb.ForallBins(func(p CLoc, a, b z.Lit, red bool) {
		if red {
			return
		}
		if a == m || b == m {
			lits = append(lits, []z.Lit{a, b})
			locs = append(locs, p)
			n++
		}
	})
	if n > o.MaxOccs {
		found = false
	}
	return lits, locs, found
}

func (o *Occ) tryEliminate(v z.Var) bool {
	s := o.s
	pos, posLocs, okp := o.gather(v.Pos())
	if !okp {
		return false
	}
	neg, negLocs, okn := o.gather(v.Neg())
	if !okn {
		return false
	}
	// compute non-tautological resolvents.
	var resolvents [][]z.Lit
	for _, pc := range pos {
		for _, nc := range neg {
			r, taut := resolve(pc, nc, v)
			if taut {
				continue
			}
			resolvents = append(resolvents, r)
			if len(resolvents) > len(pos)+len(neg) || len(resolvents) > o.MaxResolvents {
				return false
			}
		}
	}

	// drop redundant clauses mentioning v; they may not survive the
	// elimination.
	var redLongs, redBins []CLoc
	s.Cdb.ForallLong(func(p CLoc, hd Chd) {
		if !hd.Learnt() {
			return
		}
		for _, l := range s.Cdb.Lits(p, nil) {
			if l.Var() == v {
				redLongs = append(redLongs, p)
				break
			}
		}
	})
	s.Cdb.ForallBins(func(p CLoc, a, b z.Lit, red bool) {
		if red && (a.Var() == v || b.Var() == v) {
			redBins = append(redBins, p)
		}
	})
	for _, p := range redLongs {
		s.Cdb.RemoveLong(p)
	}
	for _, p := range redBins {
		s.Cdb.RemoveBin(p)
	}

	// record the eliminated clauses in outer space.
	ov := s.Vmap.InterToOuter(v)
	saved := make([][]z.Lit, 0, len(pos)+len(neg))
	for _, ms := range append(append([][]z.Lit{}, pos...), neg...) {
		oms := make([]z.Lit, len(ms))
		for i, l := range ms {
			oms[i] = s.Vmap.InterToOuterLit(l)
		}
		saved = append(saved, oms)
	}
	o.elimed[ov] = saved
	o.elimOrder = append(o.elimOrder, ov)

	// remove originals, add resolvents.
	for i, p := range posLocs {
		if len(pos[i]) == 2 {
			s.Cdb.RemoveBin(p)
		} else {
			s.Cdb.RemoveLong(p)
		}
	}
	for i, p := range negLocs {
		if len(neg[i]) == 2 {
			s.Cdb.RemoveBin(p)
		} else {
			s.Cdb.RemoveLong(p)
		}
	}
	s.Vars.Removed[v] = RemovedElim
	o.stElimed++
	s.sumStats.Elimed++
	for _, r := range resolvents {
		s.addClauseInt(r, false, 2, true, true, nil)
		if !s.ok {
			return false
		}
	}
	return true
}

// resolve resolves a (containing v) with b (containing not v).
func resolve(a, b []z.Lit, v z.Var) ([]z.Lit, bool) {
	seen := map[z.Lit]bool{}
	var out []z.Lit
	add := func(ms []z.Lit) bool {
		for _, l := range ms {
			if l.Var() == v {
				continue
			}
			if seen[l.Not()] {
				return false
			}
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
		return true
	}
	if !add(a) || !add(b) {
		return nil, true
	}
	return out, false
}

// Uneliminate restores the clauses removed when v (inter) was
// eliminated.  Returns false when unsat was derived.
func (o *Occ) Uneliminate(v z.Var) bool {
	s := o.s
	ov := s.Vmap.InterToOuter(v)
	saved, ok := o.elimed[ov]
	if !ok {
		s.Vars.Removed[v] = RemovedNone
		return true
	}
	delete(o.elimed, ov)
	s.Vars.Removed[v] = RemovedNone
	if s.Vars.TV(v) == z.TVUndef {
		s.Guess.Push(v.Pos())
	}
	for _, oms := range saved {
		ms := make([]z.Lit, len(oms))
		for i, om := range oms {
			om = s.replacer.LitReplacedWithOuter(om)
			ms[i] = s.Vmap.OuterToInterLit(om)
		}
		// stored clauses may mention variables eliminated later;
		// those come back first.
		for _, m := range ms {
			if s.Vars.Removed[m.Var()] == RemovedElim {
				if !o.Uneliminate(m.Var()) {
					return false
				}
			}
		}
		s.addClauseInt(ms, false, 2, true, true, nil)
		if !s.ok {
			return false
		}
	}
	return true
}

// ElimOrder gives the eliminated outer variables in elimination
// order; the extender processes them in reverse.
func (o *Occ) ElimOrder() []z.Var {
	return o.elimOrder
}

// ElimedClauses gives the stored outer space clauses of an
// eliminated outer variable.
func (o *Occ) ElimedClauses(ov z.Var) [][]z.Lit {
	return o.elimed[ov]
}

// BVA performs one round of bounded variable addition: a pair of
// literals sharing at least three clause rests is factored through a
// fresh hidden variable.  Returns false when unsat was derived.
func (o *Occ) BVA() bool {
	s := o.s
	if !s.ok {
		return false
	}
	s.Trail.Back(0)

	// bucket clause rests by signature.
	type rest struct {
		lit z.Lit
		p   CLoc
	}
	buckets := map[string][]rest{}
	for _, p := range s.Cdb.Irred {
		hd := s.Cdb.CDat.Chd(p)
		if hd.freed() {
			continue
		}
		ms := s.Cdb.Lits(p, nil)
		if len(ms) < 3 || len(ms) > 8 {
			continue
		}
		for i, m := range ms {
			var sb strings.Builder
			for k, l := range ms {
				if k == i {
					continue
				}
				fmt.Fprintf(&sb, "%d.", uint32(l))
			}
			buckets[sb.String()] = append(buckets[sb.String()], rest{m, p})
		}
	}
	// count pair sharing.
	pairCount := map[[2]z.Lit][]string{}
	for sig, rs := range buckets {
		for i := 0; i < len(rs); i++ {
			for j := i + 1; j < len(rs); j++ {
				a, b := rs[i].lit, rs[j].lit
				if a == b || a.Var() == b.Var() {
					continue
				}
				if b < a {
					a, b = b, a
				}
				pairCount[[2]z.Lit{a, b}] = append(pairCount[[2]z.Lit{a, b}], sig)
			}
		}
	}
	var bestPair [2]z.Lit
	var bestSigs []string
	for pair, sigs := range pairCount {
		if len(sigs) > len(bestSigs) {
			bestPair, bestSigs = pair, sigs
		}
	}
	if len(bestSigs) < 3 {
		return s.ok
	}
	sort.Strings(bestSigs)

	vOuter, err := s.NewVarBva()
	if err != nil {
		return s.ok
	}
	y := s.Vmap.OuterToInter(vOuter).Pos()
	a, b := bestPair[0], bestPair[1]
	o.stBvas++
	for _, sig := range bestSigs {
		var pa, pb CLoc
		var restLits []z.Lit
		for _, r := range buckets[sig] {
			switch r.lit {
			case a:
				pa = r.p
			case b:
				pb = r.p
			}
		}
		if pa == CNull || pb == CNull {
			continue
		}
		if s.Cdb.CDat.Chd(pa).freed() || s.Cdb.CDat.Chd(pb).freed() {
			continue
		}
		for _, l := range s.Cdb.Lits(pa, nil) {
			if l != a {
				restLits = append(restLits, l)
			}
		}
		// (y or rest) replaces (a or rest) and (b or rest).
		s.addClauseInt(append([]z.Lit{y}, restLits...), false, 2, true, true, nil)
		if !s.ok {
			return false
		}
		s.Cdb.RemoveLong(pa)
		s.Cdb.RemoveLong(pb)
	}
	// y implies a and b.
	s.addClauseInt([]z.Lit{y.Not(), a}, false, 2, true, true, nil)
	if s.ok {
		s.addClauseInt([]z.Lit{y.Not(), b}, false, 2, true, true, nil)
	}
	s.Cdb.sweepStores()
	return s.ok
}
