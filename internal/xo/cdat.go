// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"bytes"
	"fmt"

	"github.com/irifrance/xsat/z"
)

// Type CDat is the clause arena.  Clauses are laid out contiguously in
// D as
//
//	[hd-lo] [hd-hi] [lit ...] [LitNull]
//
// and addressed by the CLoc of their first literal.  The two words
// before the literals hold the Chd header.  Offsets are stable until
// Compact runs; Compact returns a relocation map.
type CDat struct {
	D []z.Lit

	// number of literal slots occupied by freed clauses, for deciding
	// when compaction pays off.
	freeSlots int
	// clause count
	count int
}

const cdatHdrLen = 2

func NewCDat(capHint int) *CDat {
	if capHint < 16 {
		capHint = 16
	}
	c := &CDat{
		D: make([]z.Lit, 0, capHint)}
	return c
}

// AddLits adds the literals ms with header hd, returning the location
// of the new clause.  ms may be empty (the empty clause).
func (c *CDat) AddLits(hd Chd, ms []z.Lit) CLoc {
	c.D = append(c.D, z.Lit(uint32(hd)), z.Lit(uint32(hd>>32)))
	p := CLoc(len(c.D))
	c.D = append(c.D, ms...)
	c.D = append(c.D, z.LitNull)
	c.count++
	return p
}

// Load appends the literals of the clause at p to ms.
func (c *CDat) Load(p CLoc, ms []z.Lit) []z.Lit {
	for q := p; ; q++ {
		m := c.D[q]
		if m == z.LitNull {
			break
		}
		ms = append(ms, m)
	}
	return ms
}

// Len gives the number of literals of the clause at p.
func (c *CDat) Len(p CLoc) int {
	n := 0
	for q := p; c.D[q] != z.LitNull; q++ {
		n++
	}
	return n
}

func (c *CDat) Chd(p CLoc) Chd {
	return Chd(uint32(c.D[p-2])) | Chd(uint32(c.D[p-1]))<<32
}

func (c *CDat) SetChd(p CLoc, hd Chd) {
	c.D[p-2] = z.Lit(uint32(hd))
	c.D[p-1] = z.Lit(uint32(hd >> 32))
}

// Bump increases the heat of the clause at p.  It returns true when
// the heat saturated and the caller should Decay.
func (c *CDat) Bump(p CLoc) bool {
	hd, over := c.Chd(p).Bump(1)
	c.SetChd(p, hd)
	return over
}

// DecayAt halves the heat of the clause at p.
func (c *CDat) DecayAt(p CLoc) {
	c.SetChd(p, c.Chd(p).Decay())
}

// BumpGen marks the clause at p strengthened.
func (c *CDat) BumpGen(p CLoc) {
	c.SetChd(p, c.Chd(p).BumpGen())
}

// Free marks the clause at p removed.  The space is reclaimed on the
// next Compact.
func (c *CDat) Free(p CLoc) {
	hd := c.Chd(p)
	if hd.freed() {
		return
	}
	c.SetChd(p, hd.withFreed())
	c.freeSlots += c.Len(p) + cdatHdrLen + 1
	c.count--
}

// FreeSlots gives the number of arena slots occupied by freed clauses.
func (c *CDat) FreeSlots() int {
	return c.freeSlots
}

// Count gives the number of live clauses.
func (c *CDat) Count() int {
	return c.count
}

// Forall calls f for every live clause location.
func (c *CDat) Forall(f func(p CLoc, hd Chd)) {
	i := 0
	for i < len(c.D) {
		p := CLoc(i + cdatHdrLen)
		hd := c.Chd(p)
		n := c.Len(p)
		if !hd.freed() {
			f(p, hd)
		}
		i += cdatHdrLen + n + 1
	}
}

// Compact removes the clauses in rm (in addition to any previously
// freed clauses) and compacts the arena.  It returns a relocation map
// containing an entry for every live clause, and maps removed clauses
// to CNull.  The second result is the number of slots reclaimed.
func (c *CDat) Compact(rm []CLoc) (map[CLoc]CLoc, int) {
	for _, p := range rm {
		c.Free(p)
	}
	relo := make(map[CLoc]CLoc, c.count+len(rm))
	d := c.D
	j := 0
	i := 0
	for i < len(d) {
		p := CLoc(i + cdatHdrLen)
		hd := c.Chd(p)
		n := c.Len(p)
		w := cdatHdrLen + n + 1
		if hd.freed() {
			relo[p] = CNull
			i += w
			continue
		}
		if i != j {
			copy(d[j:j+w], d[i:i+w])
		}
		relo[p] = CLoc(j + cdatHdrLen)
		i += w
		j += w
	}
	freed := i - j
	c.D = d[:j]
	c.freeSlots = 0
	return relo, freed
}

func (c *CDat) String() string {
	buf := bytes.NewBuffer(nil)
	c.Forall(func(p CLoc, hd Chd) {
		fmt.Fprintf(buf, "%s %s:", p, hd)
		for q := p; c.D[q] != z.LitNull; q++ {
			fmt.Fprintf(buf, " %s", c.D[q])
		}
		fmt.Fprintf(buf, "\n")
	})
	return buf.String()
}
