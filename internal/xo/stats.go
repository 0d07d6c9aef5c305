// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"fmt"
	"time"
)

// Type Stats aggregates solver statistics.  Each component holds its
// own counters and folds them into a Stats via readStats, resetting
// cumulative values.
type Stats struct {
	Start     time.Time
	Dur       time.Duration
	Vars      int64
	Added     int64
	Removed   int64
	IrredLong int64
	RedLong   int64
	IrredBin  int64
	RedBin    int64

	Props     int64
	Units     int64
	Guesses   int64
	Conflicts int64
	Restarts  int64
	Sat       int64
	Unsat     int64
	Ended     int64

	Assumptions int64
	Failed      int64

	LearntUnits int64
	LearntBins  int64
	RedInLev0   int64

	RecMinLitRem       int64
	LitsRedNonMin      int64
	RecMinimCost       int64
	MoreMinimLitsStart int64
	MoreMinimLitsEnd   int64

	Simplifies   int64
	SolveCalls   int64
	ZeroLevAdds  int64
	Replaced     int64
	Elimed       int64
	Decomposed   int64
	Probed       int64
	Distilled    int64
	Subsumed     int64
	Strengthened int64
	XorUnits     int64
	Renumbers    int64
}

// Accumulate folds o into st.
func (st *Stats) Accumulate(o *Stats) {
	st.Props += o.Props
	st.Units += o.Units
	st.Guesses += o.Guesses
	st.Conflicts += o.Conflicts
	st.Restarts += o.Restarts
	st.Sat += o.Sat
	st.Unsat += o.Unsat
	st.Ended += o.Ended
	st.Assumptions += o.Assumptions
	st.Failed += o.Failed
	st.LearntUnits += o.LearntUnits
	st.LearntBins += o.LearntBins
	st.RedInLev0 += o.RedInLev0
	st.RecMinLitRem += o.RecMinLitRem
	st.LitsRedNonMin += o.LitsRedNonMin
	st.RecMinimCost += o.RecMinimCost
	st.MoreMinimLitsStart += o.MoreMinimLitsStart
	st.MoreMinimLitsEnd += o.MoreMinimLitsEnd
	st.Added += o.Added
	st.Removed += o.Removed
}

func (st *Stats) String() string {
	return fmt.Sprintf("conflicts %d props %d guesses %d restarts %d", st.Conflicts, st.Props, st.Guesses, st.Restarts)
}
