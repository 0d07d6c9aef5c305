// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"fmt"

	"github.com/irifrance/xsat/z"
)

// Watch holds the other blocking literal, the clause location, and 1
// bit for whether the clause is binary.
type Watch uint64

const (
	litBits       = 31
	litMask       = ((1 << litBits) - 1)
	locMask       = uint64(0xffffffff) << litBits
	binMask Watch = 1 << 63
)

// MakeWatch creates a watch object for clause location loc, blocking
// literal o, and isBin indicating whether the referred to clause is
// binary (comprised of 2 literals).
func MakeWatch(loc CLoc, o z.Lit, isBin bool) Watch {
	v := uint64(0)
	if isBin {
		v |= uint64(binMask)
	}
	v |= uint64(o)
	v |= uint64(loc) << litBits
	return Watch(v)
}

// Other returns the other/blocking literal.
func (w Watch) Other() z.Lit {
	return z.Lit(w & litMask)
}

// IsBinary says whether the watched clause is binary.
func (w Watch) IsBinary() bool {
	return w >= binMask
}

// CLoc gives the location of the null-terminated literals of the
// watched clause.
func (w Watch) CLoc() CLoc {
	return CLoc((uint64(w) & locMask) >> litBits)
}

// Relocate returns a watch with all info the same, but the CLoc
// updated to o.
func (w Watch) Relocate(o CLoc) Watch {
	v := uint64(w)
	v &= ^locMask
	v |= uint64(o) << litBits
	return Watch(v)
}

func (w Watch) String() string {
	return fmt.Sprintf("Watch{CLoc: %s, Other: %s, Bin: %t}", w.CLoc(), w.Other(), w.IsBinary())
}
