// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"fmt"

	"github.com/irifrance/xsat/z"
)

// Type Vmap maintains the three variable numbering spaces:
//
//	outside  what the caller sees; excludes BVA auxiliaries
//	outer    outside extended with BVA auxiliaries
//	inter    a permutation of outer used internally, so interesting
//	         variables occupy the low indices
//
// outer<->inter are mutually inverse permutation vectors, with a
// literal-doubled variant of inter->outer for fast literal mapping.
// outside<->outer is the order preserving injection hiding BVA
// variables.  Equivalence classes are tracked by the VarReplacer, not
// here.
type Vmap struct {
	o2i  []z.Var // indexed by outer var
	i2o  []z.Var // indexed by inter var
	i2o2 []z.Lit // indexed by inter lit

	bva  []bool // indexed by outer var
	nBva int

	// indexed by outside var; rebuilt by RebuildBvaMap.
	outsideToOuter []z.Var
}

func NewVmap(capHint int) *Vmap {
	m := &Vmap{
		o2i:            make([]z.Var, 1, capHint+1),
		i2o:            make([]z.Var, 1, capHint+1),
		i2o2:           make([]z.Lit, 2, 2*capHint+2),
		bva:            make([]bool, 1, capHint+1),
		outsideToOuter: make([]z.Var, 1, capHint+1)}
	return m
}

// NVarsOuter gives the number of outer variables.
func (vm *Vmap) NVarsOuter() int {
	return len(vm.o2i) - 1
}

// NVarsOutside gives the number of variables visible to the caller.
func (vm *Vmap) NVarsOutside() int {
	return vm.NVarsOuter() - vm.nBva
}

// NewVar extends every space with one variable, mapped identically,
// and returns the new outer variable.  bva marks the variable as a
// hidden auxiliary.
func (vm *Vmap) NewVar(bva bool) z.Var {
	v := z.Var(len(vm.o2i))
	vm.o2i = append(vm.o2i, v)
	vm.i2o = append(vm.i2o, v)
	vm.i2o2 = append(vm.i2o2, v.Pos(), v.Neg())
	vm.bva = append(vm.bva, bva)
	if bva {
		vm.nBva++
	} else {
		// the outside map extends incrementally: outside numbering is
		// outer with the bva variables squeezed out, order preserved.
		vm.outsideToOuter = append(vm.outsideToOuter, v)
	}
	return v
}

// IsBva says whether the outer variable v is a hidden auxiliary.
func (vm *Vmap) IsBva(v z.Var) bool {
	return vm.bva[v]
}

func (vm *Vmap) OuterToInter(v z.Var) z.Var {
	return vm.o2i[v]
}

func (vm *Vmap) InterToOuter(v z.Var) z.Var {
	return vm.i2o[v]
}

func (vm *Vmap) OuterToInterLit(m z.Lit) z.Lit {
	u := vm.o2i[m.Var()]
	if m.IsPos() {
		return u.Pos()
	}
	return u.Neg()
}

func (vm *Vmap) InterToOuterLit(m z.Lit) z.Lit {
	return vm.i2o2[m]
}

// RebuildBvaMap recomputes the outside->outer vector.  Must be called
// after BVA variables were created before any outside translation.
func (vm *Vmap) RebuildBvaMap() {
	vm.outsideToOuter = append(vm.outsideToOuter[:0], 0)
	for v := z.Var(1); int(v) < len(vm.o2i); v++ {
		if vm.bva[v] {
			continue
		}
		vm.outsideToOuter = append(vm.outsideToOuter, v)
	}
}

// OutsideToOuterLit maps a caller literal to outer space.  The bva map
// must be current.
func (vm *Vmap) OutsideToOuterLit(m z.Lit) z.Lit {
	u := vm.outsideToOuter[m.Var()]
	if m.IsPos() {
		return u.Pos()
	}
	return u.Neg()
}

// OuterToWithoutBva gives a vector indexed by outer var holding the
// outside var, or 0 for hidden (BVA) variables.  Used only when
// exposing results.
func (vm *Vmap) OuterToWithoutBva() []z.Var {
	res := make([]z.Var, len(vm.o2i))
	at := z.Var(1)
	for v := z.Var(1); int(v) < len(vm.o2i); v++ {
		if vm.bva[v] {
			continue
		}
		res[v] = at
		at++
	}
	return res
}

// UpdateVars composes the renumbering permutation perm (a map over
// the current inter space: perm[old]=new) into the outer<->inter
// vectors.
func (vm *Vmap) UpdateVars(perm []z.Var) {
	for ov := z.Var(1); int(ov) < len(vm.o2i); ov++ {
		vm.o2i[ov] = perm[vm.o2i[ov]]
	}
	// rebuild inter->outer as the inverse of outer->inter.
	for ov := z.Var(1); int(ov) < len(vm.o2i); ov++ {
		iv := vm.o2i[ov]
		vm.i2o[iv] = ov
		vm.i2o2[iv.Pos()] = ov.Pos()
		vm.i2o2[iv.Neg()] = ov.Neg()
	}
}

// Check verifies that the outer<->inter vectors are mutually inverse.
func (vm *Vmap) Check() error {
	for v := z.Var(1); int(v) < len(vm.o2i); v++ {
		if vm.i2o[vm.o2i[v]] != v {
			return fmt.Errorf("vmap: outer %s -> inter %s -> outer %s", v, vm.o2i[v], vm.i2o[vm.o2i[v]])
		}
		if vm.i2o2[vm.o2i[v].Pos()] != v.Pos() {
			return fmt.Errorf("vmap: doubled vector out of sync at %s", v)
		}
	}
	return nil
}
