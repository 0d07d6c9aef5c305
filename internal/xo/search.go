// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"github.com/irifrance/xsat/z"
)

const (
	// luby restart intervals shorter than this many conflicts are
	// skipped.
	// good for incremental solving.
	RestartAfter  uint  = 1000
	RestartFactor       = 768
	PropTick      int64 = 20000
)

// Type Search is the CDCL searcher.  It runs conflict driven search
// with a conflict budget above the assumption level set by the
// orchestrator; the orchestrator owns everything else.
type Search struct {
	Cdb    *Cdb
	Vars   *Vars
	Trail  *Trail
	Guess  *Guess
	Driver *Deriver

	ctl  *Ctl
	opts *Options
	luby *Luby

	// level below which conflicts mean unsat under assumptions.
	AssumptLevel int

	// X is the last conflicting clause, for final conflict analysis.
	X CLoc

	restartStopwatch int
	geomInterval     float64

	// level 2 learnt clause budget, grown by reconfigurable factor.
	maxTempLev2 float64

	sumConfl *int64

	stRestarts int64
	stSat      int64
	stUnsat    int64
	stEnded    int64
}

func NewSearch(cdb *Cdb, trail *Trail, guess *Guess, driver *Deriver, ctl *Ctl, opts *Options, sumConfl *int64) *Search {
	return &Search{
		Cdb:          cdb,
		Vars:         cdb.Vars,
		Trail:        trail,
		Guess:        guess,
		Driver:       driver,
		ctl:          ctl,
		opts:         opts,
		luby:         NewLuby(),
		geomInterval: float64(opts.RestartFirst),
		maxTempLev2:  float64(opts.MaxTempLev2LearntClauses),
		sumConfl:     sumConfl,
		X:            CNull}
}

// Solve runs CDCL for at most budget conflicts.  It returns 1 for
// sat, -1 for unsat (under the assumption level), 0 for out of
// budget or interrupted.
func (s *Search) Solve(budget int64) int {
	trail, guess, vars := s.Trail, s.Guess, s.Vars
	s.X = CNull
	s.nextRestartInterval()
	guess.SetVarDecay(s.opts.VarDecayMax)
	guess.Mode = s.opts.PolarityMode
	confl := int64(0)
	nxtTick := trail.Props + PropTick

	for {
		x := trail.Prop()
		if x != CNull {
			confl++
			*s.sumConfl++
			if trail.Level <= s.AssumptLevel {
				s.X = x
				s.stUnsat++
				return -1
			}
			drvd := s.Driver.Derive(x)
			if drvd.TargetLevel < s.AssumptLevel {
				trail.Back(s.AssumptLevel)
				switch vars.Vals[drvd.Unit] {
				case 0:
					trail.EnqCur(drvd.Unit)
				case -1:
					// the derived literal contradicts the assumptions.
					s.X = drvd.P
					s.stUnsat++
					return -1
				}
			} else {
				trail.Back(drvd.TargetLevel)
				if drvd.Size == 1 {
					trail.EnqCur(drvd.Unit)
				} else {
					trail.Assign(drvd.Unit, drvd.P)
				}
			}
			guess.Decay()
			s.restartStopwatch--
			if confl >= budget {
				s.stEnded++
				trail.Back(s.AssumptLevel)
				return 0
			}
			s.maybeReduce(confl)
			continue
		}

		// cancellation ticker
		if trail.Props > nxtTick {
			nxtTick = trail.Props + PropTick
			if s.ctl.Expired(*s.sumConfl) {
				s.stEnded++
				trail.Back(s.AssumptLevel)
				return 0
			}
		}

		// maybe restart
		if s.restartStopwatch <= 0 {
			trail.Back(s.AssumptLevel)
			s.stRestarts++
			s.nextRestartInterval()
		}

		m := guess.Guess(vars.Vals)
		if m == z.LitNull {
			s.stSat++
			return 1
		}
		s.Cdb.MaybeCompact()
		trail.Assign(m, CNull)
	}
}

func (s *Search) nextRestartInterval() {
	switch s.opts.RestartType {
	case RestartGeom:
		s.restartStopwatch = int(s.geomInterval)
		s.geomInterval *= 1.2
	default:
		for {
			r := s.luby.Next() * RestartFactor
			if r >= RestartAfter {
				s.restartStopwatch = int(r)
				break
			}
		}
	}
	s.Guess.nextRestart(s.restartStopwatch)
}

func (s *Search) maybeReduce(confl int64) {
	if s.opts.EveryLev1Reduce != 0 && confl%s.opts.EveryLev1Reduce == 0 {
		s.Cdb.DemoteLev1(s.opts.MaxTempLev2LearntClauses / 2)
	}
	if s.opts.EveryLev2Reduce != 0 {
		if confl%s.opts.EveryLev2Reduce == 0 {
			s.Cdb.ReduceLev2(s.opts.MaxTempLev2LearntClauses)
		}
		return
	}
	// size triggered cleaning with a growing budget.
	if len(s.Cdb.Red[2]) > int(s.maxTempLev2) {
		s.Cdb.ReduceLev2(int(s.maxTempLev2) / 2)
		if s.opts.IncMaxTempLev2RedCls > 1.0 {
			s.maxTempLev2 *= s.opts.IncMaxTempLev2RedCls
		}
	}
}

// PhaseInit initializes the polarity cache from literal counts of
// short clauses, preferring the polarity occurring in more clauses.
func (s *Search) PhaseInit() {
	M := s.Vars.Max
	N := 2*int(M) + 2
	L := uint64(16)
	counts := make([]uint64, N)
	count := func(ms []z.Lit) {
		sz := uint64(len(ms))
		if sz >= L {
			return
		}
		for _, m := range ms {
			counts[m] += 1 << (L - sz)
		}
	}
	s.Cdb.ForallLong(func(p CLoc, hd Chd) {
		if hd.Learnt() {
			return
		}
		count(s.Cdb.Lits(p, nil))
	})
	s.Cdb.ForallBins(func(p CLoc, a, b z.Lit, red bool) {
		if red {
			return
		}
		count([]z.Lit{a, b})
	})
	for i := z.Var(1); i <= M; i++ {
		m, n := i.Pos(), i.Neg()
		if counts[m] > counts[n] {
			s.Guess.SetCache(i, 1)
		} else {
			s.Guess.SetCache(i, -1)
		}
	}
}

// ResetTempClNum restores the level 2 clause budget, used by
// reconfiguration presets.
func (s *Search) ResetTempClNum() {
	s.maxTempLev2 = float64(s.opts.MaxTempLev2LearntClauses)
}

func (s *Search) readStats(st *Stats) {
	st.Restarts += s.stRestarts
	s.stRestarts = 0
	st.Sat += s.stSat
	s.stSat = 0
	st.Unsat += s.stUnsat
	s.stUnsat = 0
	st.Ended += s.stEnded
	s.stEnded = 0
}
