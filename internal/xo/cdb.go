// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"fmt"
	"sort"

	"github.com/irifrance/xsat/z"
)

// Type Cdb is the clause database.  Long (ternary and longer) clauses
// live in the arena and are listed in Irred or one of the three
// redundant tiers.  Binary clauses are arena resident for uniform
// reason handling but appear only in the watch lists, never in the
// long stores.  Units go directly to the trail and are not stored.
type Cdb struct {
	Vars *Vars
	CDat *CDat

	// W[m] holds the clauses with a watched literal equal to m.Not().
	W [][]Watch

	Irred []CLoc
	Red   [3][]CLoc

	// Bot is the location of the empty clause, or CNull.
	Bot CLoc

	// glue cutoffs selecting the redundant tier.
	GluePutLev0 uint32
	GluePutLev1 uint32

	proof *Proof

	nBinIrred int64
	nBinRed   int64
	nLitsIrr  int64
	nLitsRed  int64

	stAdds    int64
	stRemoved int64

	tmp []z.Lit
}

func NewCdb(vars *Vars, capHint int) *Cdb {
	if capHint < 16 {
		capHint = 16
	}
	c := &Cdb{
		Vars:        vars,
		CDat:        NewCDat(capHint),
		GluePutLev0: 3,
		GluePutLev1: 6,
		proof:       NewProof(nil),
		tmp:         make([]z.Lit, 0, 64)}
	c.W = make([][]Watch, 2*(int(vars.Top)+1))
	return c
}

// SetProof installs the proof sink used by database internal clause
// rewriting.
func (c *Cdb) SetProof(p *Proof) {
	c.proof = p
}

func (c *Cdb) growToVar(u z.Var) {
	w := make([][]Watch, 2*(int(u)+1))
	copy(w, c.W)
	c.W = w
}

func (c *Cdb) shrinkToVar(u z.Var) {
	c.W = c.W[:2*(int(u)+1)]
}

// Tier selects the redundant store for a clause with the given glue.
func (c *Cdb) Tier(glue uint32) uint32 {
	if glue <= c.GluePutLev0 {
		return 0
	}
	if c.GluePutLev1 != 0 && glue <= c.GluePutLev1 {
		return 1
	}
	return 2
}

// AddBin installs the binary clause (a b).
func (c *Cdb) AddBin(a, b z.Lit, red bool) CLoc {
	hd := MakeChd(red, 2, 2)
	p := c.CDat.AddLits(hd, []z.Lit{a, b})
	c.W[a.Not()] = append(c.W[a.Not()], MakeWatch(p, b, true))
	c.W[b.Not()] = append(c.W[b.Not()], MakeWatch(p, a, true))
	if red {
		c.nBinRed++
	} else {
		c.nBinIrred++
	}
	c.stAdds++
	return p
}

// AddLong installs the clause ms, len(ms) >= 3, watching the first two
// literals, and lists it in the store selected by red and glue.
func (c *Cdb) AddLong(ms []z.Lit, red bool, glue uint32) CLoc {
	hd := MakeChd(red, glue, uint32(len(ms)))
	if red {
		hd = hd.WithTier(c.Tier(glue))
	}
	p := c.CDat.AddLits(hd, ms)
	c.attach(p, ms)
	if red {
		c.Red[hd.Tier()] = append(c.Red[hd.Tier()], p)
		c.nLitsRed += int64(len(ms))
	} else {
		c.Irred = append(c.Irred, p)
		c.nLitsIrr += int64(len(ms))
	}
	c.stAdds++
	return p
}

// SetBot records the empty clause.
func (c *Cdb) SetBot() {
	if c.Bot != CNull {
		return
	}
	c.Bot = c.CDat.AddLits(MakeChd(false, 0, 0), nil)
}

func (c *Cdb) attach(p CLoc, ms []z.Lit) {
	c.W[ms[0].Not()] = append(c.W[ms[0].Not()], MakeWatch(p, ms[1], false))
	c.W[ms[1].Not()] = append(c.W[ms[1].Not()], MakeWatch(p, ms[0], false))
}

func (c *Cdb) detach(p CLoc, ms []z.Lit) {
	c.unwatch(ms[0].Not(), p)
	c.unwatch(ms[1].Not(), p)
}

func (c *Cdb) unwatch(m z.Lit, p CLoc) {
	ws := c.W[m]
	for i, w := range ws {
		if w.CLoc() == p {
			ws[i] = ws[len(ws)-1]
			c.W[m] = ws[:len(ws)-1]
			return
		}
	}
}

// Lits appends the literals of the clause at p to ms.
func (c *Cdb) Lits(p CLoc, ms []z.Lit) []z.Lit {
	return c.CDat.Load(p, ms)
}

// IsBinary says whether the clause at p has exactly 2 literals.
func (c *Cdb) IsBinary(p CLoc) bool {
	return c.CDat.Len(p) == 2
}

// RemoveLong detaches and frees the long clause at p, emitting a
// proof deletion.  The store lists are swept lazily.
func (c *Cdb) RemoveLong(p CLoc) {
	ms := c.Lits(p, c.tmp[:0])
	c.tmp = ms
	hd := c.CDat.Chd(p)
	c.detach(p, ms)
	c.proof.Del(ms)
	if hd.Learnt() {
		c.nLitsRed -= int64(len(ms))
	} else {
		c.nLitsIrr -= int64(len(ms))
	}
	c.CDat.Free(p)
	c.stRemoved++
}

// RemoveBin removes the binary clause at p.
func (c *Cdb) RemoveBin(p CLoc) {
	ms := c.Lits(p, c.tmp[:0])
	c.tmp = ms
	hd := c.CDat.Chd(p)
	c.detach(p, ms)
	c.proof.Del(ms)
	if hd.Learnt() {
		c.nBinRed--
	} else {
		c.nBinIrred--
	}
	c.CDat.Free(p)
	c.stRemoved++
}

// ReplaceLong replaces the clause at p by ms (already sorted and
// clean).  The new form is emitted to the proof before the old is
// deleted.  Returns the location of the new clause, which may be a
// binary; for units and the empty clause the caller handles the
// trail/bot updates and ReplaceLong returns CNull after removal.
func (c *Cdb) ReplaceLong(p CLoc, ms []z.Lit) CLoc {
	hd := c.CDat.Chd(p).BumpGen()
	c.proof.Add(ms)
	old := c.Lits(p, nil)
	c.detach(p, old)
	c.proof.Del(old)
	if hd.Learnt() {
		c.nLitsRed -= int64(len(old))
	} else {
		c.nLitsIrr -= int64(len(old))
	}
	c.CDat.Free(p)
	c.stRemoved++
	switch len(ms) {
	case 0, 1:
		return CNull
	case 2:
		return c.AddBin(ms[0], ms[1], hd.Learnt())
	default:
		q := c.AddLong(ms, hd.Learnt(), hd.Lbd())
		c.CDat.SetChd(q, c.CDat.Chd(q).BumpGen())
		return q
	}
}

// sweepStores drops freed locations from the long stores.
func (c *Cdb) sweepStores() {
	c.Irred = sweep(c.CDat, c.Irred)
	for i := range c.Red {
		c.Red[i] = sweep(c.CDat, c.Red[i])
	}
}

func sweep(d *CDat, ps []CLoc) []CLoc {
	j := 0
	for _, p := range ps {
		if d.Chd(p).freed() {
			continue
		}
		ps[j] = p
		j++
	}
	return ps[:j]
}

// Bump increases the activity of the clause at p, decaying all
// redundant clauses on saturation.
func (c *Cdb) Bump(p CLoc) {
	if !c.CDat.Bump(p) {
		return
	}
	for i := range c.Red {
		for _, q := range c.Red[i] {
			if c.CDat.Chd(q).freed() {
				continue
			}
			c.CDat.DecayAt(q)
		}
	}
}

// Decay decays clause activities.  Called once per conflict; the heat
// representation decays lazily on saturation, so this is cheap.
func (c *Cdb) Decay() {}

// ReduceLev2 removes the coldest level 2 redundant clauses down to
// maxKeep, returning the number removed.
func (c *Cdb) ReduceLev2(maxKeep int) int {
	c.sweepStores()
	ps := c.Red[2]
	if len(ps) <= maxKeep {
		return 0
	}
	sort.Slice(ps, func(i, j int) bool {
		hi, hj := c.CDat.Chd(ps[i]), c.CDat.Chd(ps[j])
		if hi.Heat() != hj.Heat() {
			return hi.Heat() > hj.Heat()
		}
		return hi.Lbd() < hj.Lbd()
	})
	n := 0
	for _, p := range ps[maxKeep:] {
		c.RemoveLong(p)
		n++
	}
	c.Red[2] = ps[:maxKeep]
	return n
}

// DemoteLev1 moves the coldest level 1 redundant clauses beyond
// maxKeep down to level 2, returning the number demoted.
func (c *Cdb) DemoteLev1(maxKeep int) int {
	c.sweepStores()
	ps := c.Red[1]
	if len(ps) <= maxKeep {
		return 0
	}
	sort.Slice(ps, func(i, j int) bool {
		return c.CDat.Chd(ps[i]).Heat() > c.CDat.Chd(ps[j]).Heat()
	})
	n := 0
	for _, p := range ps[maxKeep:] {
		c.CDat.SetChd(p, c.CDat.Chd(p).WithTier(2))
		c.Red[2] = append(c.Red[2], p)
		n++
	}
	c.Red[1] = ps[:maxKeep]
	return n
}

// MaybeCompact compacts the arena when enough space is freed.  It
// returns the relocation count and the relocation map (nil when no
// compaction ran).
func (c *Cdb) MaybeCompact() (int, map[CLoc]CLoc) {
	if c.CDat.FreeSlots() < len(c.CDat.D)/3 || c.CDat.FreeSlots() < 1024 {
		return 0, nil
	}
	return c.Compact()
}

// Compact compacts the arena unconditionally and rewires all location
// references.
func (c *Cdb) Compact() (int, map[CLoc]CLoc) {
	relo, _ := c.CDat.Compact(nil)
	reloc := func(ps []CLoc) []CLoc {
		j := 0
		for _, p := range ps {
			q, ok := relo[p]
			if !ok || q == CNull {
				continue
			}
			ps[j] = q
			j++
		}
		return ps[:j]
	}
	c.Irred = reloc(c.Irred)
	for i := range c.Red {
		c.Red[i] = reloc(c.Red[i])
	}
	for m := range c.W {
		ws := c.W[m]
		j := 0
		for _, w := range ws {
			q, ok := relo[w.CLoc()]
			if !ok || q == CNull {
				continue
			}
			ws[j] = w.Relocate(q)
			j++
		}
		c.W[m] = ws[:j]
	}
	for v := range c.Vars.Reasons {
		r := c.Vars.Reasons[v]
		if r == CNull {
			continue
		}
		if q, ok := relo[r]; ok {
			c.Vars.Reasons[v] = q
		}
	}
	if c.Bot != CNull {
		if q, ok := relo[c.Bot]; ok {
			c.Bot = q
		}
	}
	return len(relo), relo
}

// ForallBins calls f once per live binary clause.
func (c *Cdb) ForallBins(f func(p CLoc, a, b z.Lit, red bool)) {
	for mi := range c.W {
		m := z.Lit(mi)
		for _, w := range c.W[m] {
			if !w.IsBinary() {
				continue
			}
			a := m.Not()
			b := w.Other()
			if a >= b {
				continue
			}
			f(w.CLoc(), a, b, c.CDat.Chd(w.CLoc()).Learnt())
		}
	}
}

// ForallLong calls f once per live long clause over all stores.
func (c *Cdb) ForallLong(f func(p CLoc, hd Chd)) {
	for _, p := range c.Irred {
		if c.CDat.Chd(p).freed() {
			continue
		}
		f(p, c.CDat.Chd(p))
	}
	for i := range c.Red {
		for _, p := range c.Red[i] {
			if c.CDat.Chd(p).freed() {
				continue
			}
			f(p, c.CDat.Chd(p))
		}
	}
}

// CleanAll removes satisfied long clauses and false literals at
// decision level 0.  Shortened clauses are reallocated; the proof
// records the new form before the old.  Returns false if the empty
// clause was derived.
func (c *Cdb) CleanAll(enq func(m z.Lit) bool) bool {
	vals := c.Vars.Vals
	ok := true
	work := func(p CLoc) {
		if !ok {
			return
		}
		ms := c.Lits(p, nil)
		sat := false
		j := 0
		for _, m := range ms {
			switch vals[m] {
			case 1:
				sat = true
			case 0:
				ms[j] = m
				j++
			}
		}
		if sat {
			c.RemoveLong(p)
			return
		}
		if j == len(ms) {
			return
		}
		ms = ms[:j]
		c.ReplaceLong(p, ms)
		switch len(ms) {
		case 0:
			c.SetBot()
			ok = false
		case 1:
			if enq != nil && !enq(ms[0]) {
				ok = false
			}
		}
	}
	for _, p := range append([]CLoc{}, c.Irred...) {
		if c.CDat.Chd(p).freed() {
			continue
		}
		work(p)
	}
	for i := range c.Red {
		for _, p := range append([]CLoc{}, c.Red[i]...) {
			if c.CDat.Chd(p).freed() {
				continue
			}
			work(p)
		}
	}
	// binaries: remove satisfied, and binaries with a false literal
	// become units.
	type bin struct {
		p    CLoc
		a, b z.Lit
	}
	var rm []bin
	c.ForallBins(func(p CLoc, a, b z.Lit, red bool) {
		if vals[a] == 1 || vals[b] == 1 || vals[a] == -1 || vals[b] == -1 {
			rm = append(rm, bin{p, a, b})
		}
	})
	for _, r := range rm {
		if !ok {
			break
		}
		va, vb := vals[r.a], vals[r.b]
		if va != 1 && vb != 1 {
			// one literal false: the other becomes a unit.
			u := r.a
			if va == -1 {
				u = r.b
			}
			if vals[u] == -1 {
				c.SetBot()
				c.proof.AddEmpty()
				ok = false
			} else {
				c.proof.AddUnit(u)
				if enq != nil && vals[u] != 1 && !enq(u) {
					ok = false
				}
			}
		}
		c.RemoveBin(r.p)
	}
	c.sweepStores()
	return ok
}

// CheckModel verifies that all irredundant clauses are satisfied
// under the current assignment; learnt clauses are not checked.
func (c *Cdb) CheckModel() []error {
	var errs []error
	vals := c.Vars.Vals
	check := func(ms []z.Lit) {
		for _, m := range ms {
			if vals[m] == 1 {
				return
			}
		}
		errs = append(errs, fmt.Errorf("unsatisfied clause %v", ms))
	}
	c.ForallLong(func(p CLoc, hd Chd) {
		if hd.Learnt() {
			return
		}
		check(c.Lits(p, nil))
	})
	c.ForallBins(func(p CLoc, a, b z.Lit, red bool) {
		if red {
			return
		}
		check([]z.Lit{a, b})
	})
	return errs
}

// CheckWatches verifies watch list integrity for all long clauses.
func (c *Cdb) CheckWatches() []error {
	var errs []error
	c.ForallLong(func(p CLoc, hd Chd) {
		ms := c.Lits(p, nil)
		for _, m := range ms[:2] {
			found := false
			for _, w := range c.W[m.Not()] {
				if w.CLoc() == p {
					found = true
					break
				}
			}
			if !found {
				errs = append(errs, fmt.Errorf("%s: no watch for %s", p, m))
			}
		}
	})
	return errs
}

// UpdateVars applies a renumbering to every stored clause and rebuilds
// the watch lists.  permLit maps old inter literals to new ones.
// Reasons must be dead (level 0 only) when called.
func (c *Cdb) UpdateVars(permLit []z.Lit) {
	type bin struct {
		a, b z.Lit
		red  bool
	}
	var bins []bin
	c.ForallBins(func(p CLoc, a, b z.Lit, red bool) {
		bins = append(bins, bin{permLit[a], permLit[b], red})
		c.CDat.Free(p)
		if red {
			c.nBinRed--
		} else {
			c.nBinIrred--
		}
	})
	for m := range c.W {
		c.W[m] = c.W[m][:0]
	}
	c.sweepStores()
	rewrite := func(p CLoc) {
		d := c.CDat.D
		for q := p; d[q] != z.LitNull; q++ {
			d[q] = permLit[d[q]]
		}
		c.CDat.BumpGen(p)
		ms := c.Lits(p, c.tmp[:0])
		c.tmp = ms
		c.attach(p, ms)
	}
	for _, p := range c.Irred {
		rewrite(p)
	}
	for i := range c.Red {
		for _, p := range c.Red[i] {
			rewrite(p)
		}
	}
	for _, b := range bins {
		c.AddBin(b.a, b.b, b.red)
	}
}

// FreeUnusedWatches reclaims watch slots for literals with no
// watchers.
func (c *Cdb) FreeUnusedWatches() {
	for m := range c.W {
		if len(c.W[m]) == 0 {
			c.W[m] = nil
		}
	}
}

func (c *Cdb) readStats(st *Stats) {
	st.Added += c.stAdds
	c.stAdds = 0
	st.Removed += c.stRemoved
	c.stRemoved = 0
	st.IrredLong = int64(len(c.Irred))
	st.RedLong = int64(len(c.Red[0]) + len(c.Red[1]) + len(c.Red[2]))
	st.IrredBin = c.nBinIrred
	st.RedBin = c.nBinRed
}
