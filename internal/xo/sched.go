// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"fmt"
	"strings"
)

// SimplifyProblem runs one inprocessing round: the startup or
// nonstartup strategy string, watch reclamation, timeout multiplier
// growth, and scheduled reconfiguration.  Returns -1 when unsat was
// derived, 0 otherwise.
func (s *S) SimplifyProblem(startup bool) int {
	if !s.ok {
		return -1
	}
	s.Trail.Back(0)

	sched := s.Opts.SimplifySchedNonstartup
	if startup {
		sched = s.Opts.SimplifySchedStartup
	}
	if err := s.ExecuteInprocessStrategy(startup, sched); err != nil {
		panic(err)
	}

	s.Cdb.FreeUnusedWatches()

	s.globalTimeoutMult *= s.Opts.GlobalTimeoutMultiplierMultiplier
	if max := s.Opts.GlobalTimeoutMultiplier * s.Opts.GlobalMultiplierMultiplierMax; s.globalTimeoutMult > max {
		s.globalTimeoutMult = max
	}

	// scheduled reconfiguration from problem features.
	if s.Vars.Max > 2 &&
		(len(s.Cdb.Irred) > 1 || s.Cdb.nBinIrred+s.Cdb.nBinRed > 0) &&
		s.numSimplify == s.Opts.ReconfigureAt {
		val := s.Opts.ReconfigureVal
		if val == 100 {
			val = s.reconfFromFeatures()
		}
		if val != 0 {
			if err := s.Reconfigure(val); err != nil {
				panic(err)
			}
		}
	}
	s.numSimplify++

	if !s.ok {
		return -1
	}
	s.Guess.Rebuild(s.Vars)
	return 0
}

// SimplifyProblemOutside is the caller facing simplify: assumption
// installation plus one simplify round.
func (s *S) SimplifyProblemOutside() int {
	s.globalTimeoutMult = s.Opts.GlobalTimeoutMultiplier
	if !s.ok {
		return -1
	}
	s.conflict = nil
	s.rebuildBvaMapIfDirty()
	if !s.setAssumptions() {
		return -1
	}
	st := 0
	if s.Vars.Max > 0 && s.Opts.DoSimplify {
		st = s.SimplifyProblem(false)
	}
	s.unfillAssumptionsSet()
	return st
}

// ExecuteInprocessStrategy interprets a comma separated strategy
// string.  Consecutive occ-* tokens are buffered and dispatched to
// the occurrence simplifier in one batch.  Limits and the sticky
// unsat state are checked between tokens.  Unknown tokens are a hard
// error.
func (s *S) ExecuteInprocessStrategy(startup bool, strategy string) error {
	occBuf := ""
	flushOcc := func() error {
		if occBuf == "" {
			return nil
		}
		toks := occBuf
		occBuf = ""
		if s.Opts.PerformOccurSimp && s.occ != nil {
			s.log.WithField("tokens", toks).Debug("occ strategy")
			if _, err := s.occ.Simplify(startup, toks); err != nil {
				return err
			}
		}
		return nil
	}

	for _, token := range strings.Split(strategy+",", ",") {
		if s.sumConfl >= s.Opts.MaxConfl || s.Ctl.Expired(s.sumConfl) ||
			s.Vars.Max == 0 || !s.ok {
			return nil
		}
		token = strings.ToLower(strings.TrimSpace(token))
		if !strings.HasPrefix(token, "occ") && token != "" {
			s.log.WithField("token", token).Debug("executing strategy token")
		}
		if occBuf != "" && !strings.HasPrefix(token, "occ") {
			if err := flushOcc(); err != nil {
				return err
			}
			if s.sumConfl >= s.Opts.MaxConfl || s.Ctl.Expired(s.sumConfl) ||
				s.Vars.Max == 0 || !s.ok {
				return nil
			}
		}

		switch {
		case token == "find-comps":
			if s.comps != nil && int64(s.NumFreeVars()) < s.Opts.CompVarLimit {
				s.comps.FindComponents()
			}
		case token == "handle-comps":
			if s.comps != nil && s.Opts.DoCompHandler &&
				int64(s.NumFreeVars()) < s.Opts.CompVarLimit &&
				s.numSimplify >= s.Opts.HandlerFromSimpNum &&
				// only every 2nd, since it can be costly to find parts
				s.numSimplify%2 == 0 {
				s.comps.Handle()
			}
		case token == "scc-vrepl":
			if s.Opts.DoFindAndReplaceEqLits {
				s.replacer.ReplaceIfEnoughIsFound(s.NumFreeVars() / 1000)
			}
		case token == "cache-clean":
			if s.Opts.DoCache && s.cache != nil {
				s.cache.Clean()
			}
		case token == "cache-tryboth":
			if s.Opts.DoCache && s.cache != nil {
				s.cache.TryBoth()
			}
		case token == "sub-impl":
			if s.Opts.DoStrSubImplicit {
				s.subImpl.SubsumeImplicit()
			}
		case token == "intree-probe":
			if s.Opts.DoIntreeProbe {
				s.prober.IntreeProbe()
			}
		case token == "probe":
			if s.Opts.DoProbe {
				s.prober.Probe()
			}
		case token == "sub-str-cls-with-bin":
			if s.Opts.DoDistillClauses {
				s.subImpl.SubStrClausesWithBin()
			}
		case token == "distill-cls":
			if s.Opts.DoDistillClauses {
				s.distiller.Distill()
			}
		case token == "str-impl":
			if s.Opts.DoStrSubImplicit && s.stamps != nil {
				s.stamps.StrImpl()
			}
		case token == "check-cache-size":
			if s.Opts.DoCache && s.cache != nil {
				memMB := s.cache.MemUsed() / (1024 * 1024)
				if memMB > int64(s.Opts.MaxCacheSizeMB) {
					s.log.WithField("mb", memMB).Info("turning off cache, memory over limit")
					s.cache.Free()
					s.Opts.DoCache = false
				}
			}
		case token == "renumber" || token == "must-renumber":
			if s.Opts.DoRenumberVars {
				// clean the cache until stable before renumbering,
				// otherwise stale literal identities survive inside.
				if s.Opts.DoCache && s.cache != nil {
					for {
						changed, cok := s.cache.Clean()
						if !cok {
							return nil
						}
						if !changed {
							break
						}
					}
				}
				s.RenumberVariables(token == "must-renumber")
			}
		case token == "":
			// just an empty comma
		case strings.HasPrefix(token, "occ"):
			occBuf += token + ", "
		default:
			return fmt.Errorf("xo: strategy %q not recognised", token)
		}

		if !s.ok {
			return nil
		}
	}
	return flushOcc()
}

// Reconfigure applies a preset and re-syncs derived component state.
func (s *S) Reconfigure(val int) error {
	if err := s.Opts.Reconfigure(val); err != nil {
		return err
	}
	s.Cdb.GluePutLev0 = s.Opts.GluePutLev0IfBelowOrEq
	s.Cdb.GluePutLev1 = s.Opts.GluePutLev1IfBelowOrEq
	s.Guess.SetVarDecay(s.Opts.VarDecayMax)
	s.Guess.Mode = s.Opts.PolarityMode
	s.Search.ResetTempClNum()
	s.log.WithField("config", val).Info("reconfigured solver")
	return nil
}

// reconfFromFeatures extracts coarse problem features and picks a
// preset.
func (s *S) reconfFromFeatures() int {
	nc := len(s.Cdb.Irred) + int(s.Cdb.nBinIrred)
	nv := s.NumFreeVars()
	if nv == 0 || nc == 0 {
		return 0
	}
	ratio := float64(nc) / float64(nv)
	switch {
	case ratio > 10:
		return 12
	case ratio < 2:
		return 7
	default:
		return 3
	}
}
