// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import "fmt"

// Type CLoc gives a stable id for a clause in the arena.  It tells
// where the zero terminated sequence of literals starts.
type CLoc uint32

const (
	CNull CLoc = 0
	CInf  CLoc = 0xffffffff
)

func (p CLoc) String() string {
	return fmt.Sprintf("c%d", uint32(p))
}
