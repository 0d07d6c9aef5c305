// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package z

// Type TV is a three valued truth value.
type TV int8

const (
	TVUndef TV = iota
	TVTrue
	TVFalse
)

// Not gives the negation of t, with undef a fixed point.
func (t TV) Not() TV {
	switch t {
	case TVTrue:
		return TVFalse
	case TVFalse:
		return TVTrue
	}
	return TVUndef
}

func (t TV) String() string {
	switch t {
	case TVTrue:
		return "t"
	case TVFalse:
		return "f"
	}
	return "u"
}
