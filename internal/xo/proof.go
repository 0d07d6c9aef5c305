// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"bufio"
	"io"
	"strconv"

	"github.com/irifrance/xsat/z"
)

// Type Proof is an append only DRAT trace sink.  Records are emitted
// in logical time order: every clause addition emits an add record,
// every removal a del record, and a rewritten clause emits its new
// form before the old form's deletion.
type Proof struct {
	w   *bufio.Writer
	on  bool
	buf []byte
}

// NewProof creates a proof sink writing to w.  A nil w disables the
// trace.
func NewProof(w io.Writer) *Proof {
	p := &Proof{}
	if w != nil {
		p.w = bufio.NewWriter(w)
		p.on = true
	}
	return p
}

// Enabled says whether the trace is being recorded.
func (p *Proof) Enabled() bool {
	return p.on
}

// Add emits an addition record for ms.  An empty ms is the empty
// clause.
func (p *Proof) Add(ms []z.Lit) {
	if !p.on {
		return
	}
	p.lits(ms)
}

// AddUnit emits an addition record for the unit clause m.
func (p *Proof) AddUnit(m z.Lit) {
	if !p.on {
		return
	}
	p.lits([]z.Lit{m})
}

// AddEmpty emits the empty clause.
func (p *Proof) AddEmpty() {
	if !p.on {
		return
	}
	p.lits(nil)
}

// Del emits a deletion record for ms.
func (p *Proof) Del(ms []z.Lit) {
	if !p.on {
		return
	}
	p.buf = append(p.buf[:0], 'd', ' ')
	p.w.Write(p.buf)
	p.lits(ms)
}

func (p *Proof) lits(ms []z.Lit) {
	buf := p.buf[:0]
	for _, m := range ms {
		buf = strconv.AppendInt(buf, int64(m.Dimacs()), 10)
		buf = append(buf, ' ')
	}
	buf = append(buf, '0', '\n')
	p.w.Write(buf)
	p.buf = buf
}

// Flush flushes buffered records.
func (p *Proof) Flush() error {
	if !p.on {
		return nil
	}
	return p.w.Flush()
}
