// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/irifrance/xsat/z"
)

// Type AssumptionPair ties an assumption literal in inter space to
// the literal originally given by the caller.
type AssumptionPair struct {
	Inter   z.Lit
	Outside z.Lit
}

// Type S is the solver orchestrator.  It owns the clause database,
// the variable metadata, the coordinate mapper and the proof trace;
// it composes the propagation engine, the searcher, the simplifier
// suite and the solution extender; and it drives clause ingress, the
// inprocessing schedule, and model extraction.
//
// Subsystems hold back references to S; their lifetimes match S's.
// Optional subsystems are nil when disabled and checked at dispatch.
type S struct {
	Opts *Options
	Ctl  *Ctl

	Vars   *Vars
	Vmap   *Vmap
	Cdb    *Cdb
	Trail  *Trail
	Guess  *Guess
	Driver *Deriver
	Search *Search

	proof *Proof
	log   *logrus.Logger

	// sticky terminal state: false once unsat is derived.
	ok bool

	xors []Xor

	replacer  *VarReplacer
	occ       *Occ
	cache     *ImplCache
	stamps    *Stamps
	comps     *CompHandler
	prober    *Prober
	distiller *Distiller
	subImpl   *SubImplicit
	datasync  *DataSync
	extender  *Extender

	outsideAssumptions []z.Lit
	assumptions        []AssumptionPair
	assumptionsSet     []bool
	conflict           []z.Lit

	// partialModel/fullModel are outer indexed; model is outside
	// indexed and what callers read.
	partialModel []z.TV
	fullModel    []z.TV
	model        []z.TV

	sumConfl       int64
	sumStats       Stats
	numSimplify    int64
	numSolveCalls  int64
	zeroLevAssigns int64

	globalTimeoutMult  float64
	adjustedGlueCutoff bool
	bvaDirty           bool

	tmp []z.Lit
}

// NewS creates a solver with default options.
func NewS() *S {
	return NewSOpts(NewOptions())
}

// NewSOpts creates a solver with the given options.
func NewSOpts(opts *Options) *S {
	vars := NewVars(128)
	cdb := NewCdb(vars, 1024)
	guess := NewGuessCdb(cdb)
	trail := NewTrail(cdb, guess)
	driver := NewDeriver(cdb, guess, trail)
	ctl := NewCtl()
	s := &S{
		Opts:   opts,
		Ctl:    ctl,
		Vars:   vars,
		Vmap:   NewVmap(128),
		Cdb:    cdb,
		Trail:  trail,
		Guess:  guess,
		Driver: driver,
		proof:  NewProof(nil),
		log:    newDiscardLog(),
		ok:     true}
	s.Search = NewSearch(cdb, trail, guess, driver, ctl, opts, &s.sumConfl)
	cdb.GluePutLev0 = opts.GluePutLev0IfBelowOrEq
	cdb.GluePutLev1 = opts.GluePutLev1IfBelowOrEq

	s.replacer = NewVarReplacer(s)
	if opts.PerformOccurSimp {
		s.occ = NewOcc(s)
	}
	if opts.DoCache {
		s.cache = NewImplCache(s)
	}
	if opts.DoStamp {
		s.stamps = NewStamps(s)
	}
	if opts.DoCompHandler {
		s.comps = NewCompHandler(s)
	}
	s.prober = NewProber(s)
	s.distiller = NewDistiller(s)
	s.subImpl = NewSubImplicit(s)
	s.datasync = NewDataSync(s)
	s.extender = NewExtender(s)
	s.globalTimeoutMult = opts.GlobalTimeoutMultiplier
	return s
}

func newDiscardLog() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// SetLog installs a logger; nil restores the discarding default.
func (s *S) SetLog(l *logrus.Logger) {
	if l == nil {
		l = newDiscardLog()
	}
	s.log = l
}

// SetProof installs a DRAT sink; nil disables tracing.
func (s *S) SetProof(w io.Writer) {
	s.proof = NewProof(w)
	s.Cdb.SetProof(s.proof)
}

// Proof gives the current proof sink.
func (s *S) Proof() *Proof {
	return s.proof
}

// Okay says whether the solver has not derived unsat.
func (s *S) Okay() bool {
	return s.ok
}

// NVars gives the number of variables visible to the caller.
func (s *S) NVars() int {
	return s.Vmap.NVarsOutside()
}

// NVarsOuter gives the number of variables including hidden BVA
// auxiliaries.
func (s *S) NVarsOuter() int {
	return s.Vmap.NVarsOuter()
}

// NewVar declares a fresh outside variable and returns it.
func (s *S) NewVar() (z.Var, error) {
	return s.newVar(false)
}

// NewVars declares n fresh outside variables.
func (s *S) NewVars(n int) error {
	for i := 0; i < n; i++ {
		if _, err := s.newVar(false); err != nil {
			return err
		}
	}
	return nil
}

// NewVarBva declares a hidden auxiliary variable (used by xor cutting
// and bounded variable addition) and returns its outer variable.
func (s *S) NewVarBva() (z.Var, error) {
	return s.newVar(true)
}

// newVar extends every space and notifies each subsystem keeping per
// variable data, in a fixed order.
func (s *S) newVar(bva bool) (z.Var, error) {
	if s.Vmap.NVarsOuter() >= (1<<31)-2 {
		return 0, ErrTooManyVars
	}
	ov := s.Vmap.NewVar(bva)
	// identity at creation: inter var == outer var.
	iv := ov
	s.ensureLitCap(iv.Pos())
	s.Guess.Push(iv.Pos())
	s.replacer.newVar(ov)
	if s.occ != nil {
		s.occ.newVar(ov)
	}
	if s.comps != nil {
		s.comps.newVar(ov)
	}
	s.datasync.newVar(ov)
	for int(iv) >= len(s.assumptionsSet) {
		s.assumptionsSet = append(s.assumptionsSet, false)
	}
	if bva {
		s.bvaDirty = true
	}
	return ov, nil
}

// ensureLitCap grows all subcomponents to accommodate m.
func (s *S) ensureLitCap(m z.Lit) {
	vars := s.Vars
	mVar := m.Var()
	top := vars.Top
	if mVar >= top {
		for top <= mVar {
			top *= 2
		}
		vars.growToVar(top)
		s.Cdb.growToVar(top)
		s.Guess.growToVar(top)
		s.Driver.growToVar(top)
		if s.cache != nil {
			s.cache.growToVar(top)
		}
		if s.stamps != nil {
			s.stamps.growToVar(top)
		}
	}
	if mVar > vars.Max {
		vars.Max = mVar
	}
}

// AddClause adds a clause given in outside space.  It returns the
// solver's ok status; an error reports misuse (out of range
// variables, over long clauses, adding after blocking).
func (s *S) AddClause(lits []z.Lit, red bool) (bool, error) {
	if !s.ok {
		return false, nil
	}
	if s.occ != nil && s.occ.AnythingBlocked() {
		return s.ok, ErrBlocking
	}
	if len(lits) > MaxClauseLen {
		return s.ok, ErrTooLongClause
	}
	if err := s.checkOutsideLits(lits); err != nil {
		return s.ok, err
	}
	ps, err := s.outsideToOuter(lits)
	if err != nil {
		return s.ok, err
	}
	ps, helperOk := s.addClauseHelper(ps)
	if !helperOk {
		return s.ok, nil
	}
	origTrail := s.Trail.Tail()

	sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
	orig := append([]z.Lit{}, ps...)
	var final []z.Lit
	s.addClauseInt(ps, red, 2, true, false, &final)

	// the clause was rewritten on the way in: emit the cleaned form
	// before deleting the original.
	if s.proof.Enabled() && !litsEq(orig, final) {
		if len(final) != 0 {
			s.proof.Add(final)
		}
		if !s.ok {
			s.proof.AddEmpty()
		}
		s.proof.Del(orig)
	}

	s.zeroLevAssigns += int64(s.Trail.Tail() - origTrail)
	return s.ok, nil
}

func litsEq(a, b []z.Lit) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (s *S) checkOutsideLits(lits []z.Lit) error {
	n := s.Vmap.NVarsOutside()
	for _, m := range lits {
		if m == z.LitNull {
			return fmt.Errorf("xo: null literal in clause")
		}
		if int(m.Var()) > n {
			return varOutOfRange(int(m.Var()), n)
		}
	}
	return nil
}

// outsideToOuter copies the literals, dropping BVA hiddenness.
func (s *S) outsideToOuter(lits []z.Lit) ([]z.Lit, error) {
	s.rebuildBvaMapIfDirty()
	ps := make([]z.Lit, len(lits))
	for i, m := range lits {
		ps[i] = s.Vmap.OutsideToOuterLit(m)
	}
	return ps, nil
}

func (s *S) rebuildBvaMapIfDirty() {
	if !s.bvaDirty {
		return
	}
	s.Vmap.RebuildBvaMap()
	s.datasync.RebuildBvaMap()
	s.bvaDirty = false
}

// addClauseHelper takes outer literals and prepares them for the
// database: equivalence substitution, outer to inter mapping,
// re-admitting decomposed variables and unelimination.  It reports
// false when the solver became unsat.
func (s *S) addClauseHelper(ps []z.Lit) ([]z.Lit, bool) {
	if !s.ok {
		return ps, false
	}
	if s.Trail.Level != 0 {
		panic("xo: clause added above decision level 0")
	}
	for i, m := range ps {
		// replace by the equivalence class representative (outer).
		m = s.replacer.LitReplacedWithOuter(m)
		ps[i] = s.Vmap.OuterToInterLit(m)
		s.ensureLitCap(ps[i])
	}
	// re-admit decomposed variables first: the component handler
	// restores their removed clauses.
	if s.comps != nil {
		readd := false
		for _, m := range ps {
			if s.Vars.Removed[m.Var()] == RemovedDecomp {
				readd = true
				break
			}
		}
		if readd {
			if !s.comps.ReaddRemovedClauses() {
				return ps, false
			}
		}
	}
	// uneliminate
	for _, m := range ps {
		if s.occ != nil && s.Vars.Removed[m.Var()] == RemovedElim {
			if !s.occ.Uneliminate(m.Var()) {
				s.ok = false
				return ps, false
			}
		}
	}
	return ps, s.ok
}

// sortAndCleanClause sorts ps, removes duplicate literals and
// literals false at level 0.  It reports false when the clause is
// satisfied at level 0 or tautological.  A literal over a removed
// variable at this point is a programming error.
func (s *S) sortAndCleanClause(ps []z.Lit) ([]z.Lit, bool) {
	sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
	vals := s.Vars.Vals
	j := 0
	var prev z.Lit = z.LitNull
	for _, m := range ps {
		if m == prev {
			continue
		}
		if m == prev.Not() {
			return ps, false // tautology
		}
		switch vals[m] {
		case 1:
			return ps, false // satisfied at level 0
		case -1:
			continue // false at level 0: drop
		}
		if s.Vars.Removed[m.Var()] != RemovedNone {
			panic(fmt.Sprintf("xo: clause contains removed variable %s (%s)",
				m.Var(), s.Vars.Removed[m.Var()]))
		}
		ps[j] = m
		prev = m
		j++
	}
	return ps[:j], true
}

// addClauseInt installs a cleaned inter-space clause.  It is the only
// path through which clauses enter the database.  attach controls
// whether a new unit is propagated at once; binary and long clauses
// are always attached to the watches.  drat controls
// emission for internal additions.  finalLits, when non-nil, receives
// the cleaned literal set.
func (s *S) addClauseInt(lits []z.Lit, red bool, glue uint32, attach bool, drat bool, finalLits *[]z.Lit) CLoc {
	if !s.ok {
		return CNull
	}
	if s.Trail.Level != 0 {
		panic("xo: internal add above decision level 0")
	}
	ps := append(s.tmp[:0], lits...)
	ps, keep := s.sortAndCleanClause(ps)
	s.tmp = ps
	if !keep {
		// dropped (satisfied or tautological): callers tracking the
		// proof see an empty final set.
		return CNull
	}
	if finalLits != nil {
		*finalLits = append([]z.Lit{}, ps...)
	}
	if drat {
		s.proof.Add(ps)
	}
	switch len(ps) {
	case 0:
		s.ok = false
		s.Cdb.SetBot()
		return CNull
	case 1:
		s.Trail.Enq0(ps[0])
		if attach {
			if x := s.Trail.Prop(); x != CNull {
				s.ok = false
				s.Cdb.SetBot()
			}
		}
		return CNull
	case 2:
		p := s.Cdb.AddBin(ps[0], ps[1], red)
		s.datasync.SignalNewBinClause(ps[0], ps[1])
		return p
	default:
		return s.Cdb.AddLong(append([]z.Lit{}, ps...), red, glue)
	}
}

// SetAssumptions installs the unit assumptions, given in outside
// space, for subsequent calls to Solve.
func (s *S) SetAssumptions(lits []z.Lit) error {
	if err := s.checkOutsideLits(lits); err != nil {
		return err
	}
	s.outsideAssumptions = append(s.outsideAssumptions[:0], lits...)
	return nil
}

// setAssumptions does the outside->outer->inter translation of the
// stored assumptions, unelimination and decomposed re-admission
// included, and fills the membership set.
func (s *S) setAssumptions() bool {
	s.conflict = nil
	s.assumptions = s.assumptions[:0]
	for i := range s.assumptionsSet {
		s.assumptionsSet[i] = false
	}
	if len(s.outsideAssumptions) == 0 {
		return true
	}
	ps, err := s.outsideToOuter(s.outsideAssumptions)
	if err != nil {
		return false
	}
	ps, ok := s.addClauseHelper(ps)
	if !ok {
		return s.ok
	}
	for i, m := range ps {
		s.assumptions = append(s.assumptions, AssumptionPair{
			Inter:   m,
			Outside: s.outsideAssumptions[i]})
	}
	s.fillAssumptionsSet()
	return true
}

func (s *S) fillAssumptionsSet() {
	for _, p := range s.assumptions {
		v := p.Inter.Var()
		if int(v) < len(s.assumptionsSet) {
			s.assumptionsSet[v] = true
		}
	}
}

func (s *S) unfillAssumptionsSet() {
	for _, p := range s.assumptions {
		v := p.Inter.Var()
		if int(v) < len(s.assumptionsSet) {
			s.assumptionsSet[v] = false
		}
	}
}

// UpdateAssumptionsAfterVarReplace re-follows equivalence class
// representatives for assumption literals and shifts the membership
// bits.
func (s *S) UpdateAssumptionsAfterVarReplace() {
	for i := range s.assumptions {
		p := &s.assumptions[i]
		v := p.Inter.Var()
		if int(v) < len(s.assumptionsSet) {
			s.assumptionsSet[v] = false
		}
		p.Inter = s.replacer.LitReplacedWith(p.Inter)
		v = p.Inter.Var()
		if int(v) < len(s.assumptionsSet) {
			s.assumptionsSet[v] = true
		}
	}
}

// VarInsideAssumptions says whether the inter variable v appears in
// the current assumptions.
func (s *S) VarInsideAssumptions(v z.Var) bool {
	return int(v) < len(s.assumptionsSet) && s.assumptionsSet[v]
}

// NumFreeVars counts variables that are unassigned and not removed.
func (s *S) NumFreeVars() int {
	n := 0
	for v := z.Var(1); v <= s.Vars.Max; v++ {
		if s.Vars.TV(v) == z.TVUndef && s.Vars.Removed[v] == RemovedNone {
			n++
		}
	}
	return n
}

// Solve decides the formula under the current assumptions.  It
// returns 1 for sat, -1 for unsat, 0 for unknown (limits or
// interrupt).
func (s *S) Solve() int {
	s.numSolveCalls++
	s.conflict = nil
	s.partialModel = nil
	if err := s.Opts.Check(); err != nil {
		panic(err)
	}
	s.Ctl.MaxConfl = s.Opts.MaxConfl
	s.Ctl.MaxTime = s.Opts.MaxTime
	s.Ctl.ResetClock()
	s.globalTimeoutMult = s.Opts.GlobalTimeoutMultiplier
	s.sumStats.Start = time.Now()

	status := 0
	if !s.ok {
		status = -1
		s.handleFoundSolution(status)
		return status
	}

	s.rebuildBvaMapIfDirty()
	if !s.setAssumptions() {
		status = -1
		s.handleFoundSolution(status)
		s.unfillAssumptionsSet()
		return status
	}

	solved := false
	if s.Opts.Preprocess == PreprocReplay {
		st, err := s.LoadState(s.Opts.SavedStateFile)
		if err != nil {
			s.log.WithError(err).Error("loading saved state")
			return 0
		}
		status = st
		if status != -1 {
			s.loadPartialModelFromTrail()
			st, err = s.LoadSolutionFromFile(s.Opts.SolutionFile)
			if err != nil {
				s.log.WithError(err).Error("loading solution file")
				return 0
			}
			status = st
		}
		solved = status != 0
	}

	if status == 0 && s.Vars.Max > 0 &&
		s.Opts.DoSimplify && s.Opts.SimplifyAtStartup &&
		(s.numSimplify == 0 || s.Opts.SimplifyAtEveryStartup) {
		status = s.SimplifyProblem(!s.Opts.FullSimplifyAtStartup)
	}

	if status == 0 && s.Opts.Preprocess == PreprocNone {
		if !s.XorGauss() {
			status = -1
		} else {
			status = s.iterateUntilSolved()
		}
	}

	if s.Opts.Preprocess == PreprocOnly && !solved {
		s.Trail.Back(0)
		if status != -1 {
			s.Cdb.CleanAll(s.enq0Prop)
		}
		if status == 1 && s.Opts.WriteCNFOnSolvedPreproc {
			s.log.Warn("solution found during preprocessing, but putting simplified CNF to file")
		}
		if err := s.SaveState(s.Opts.SavedStateFile, status); err != nil {
			s.log.WithError(err).Error("saving state")
		}
		if err := s.DumpSimplifiedCNF(s.Opts.SimplifiedCNF, status); err != nil {
			s.log.WithError(err).Error("writing simplified cnf")
		}
	}

	s.handleFoundSolution(status)
	s.unfillAssumptionsSet()
	if err := s.proof.Flush(); err != nil {
		s.log.WithError(err).Error("flushing proof")
	}
	// limits apply per call.
	s.Opts.MaxConfl = math.MaxInt64
	s.Opts.MaxTime = time.Duration(1<<62 - 1)
	s.sumStats.Dur += time.Since(s.sumStats.Start)
	return status
}

// enq0Prop enqueues a level 0 fact and propagates; used as the
// callback for database level cleaning.
func (s *S) enq0Prop(m z.Lit) bool {
	if s.Vars.Vals[m] == 1 {
		return true
	}
	if s.Vars.Vals[m] == -1 {
		s.ok = false
		return false
	}
	s.Trail.Enq0(m)
	if x := s.Trail.Prop(); x != CNull {
		s.ok = false
		s.Cdb.SetBot()
		s.proof.AddEmpty()
		return false
	}
	return true
}

func (s *S) calcNumConflToDo(iter int) int64 {
	mult := math.Pow(s.Opts.NumConflSearchInc, float64(iter))
	if mult > s.Opts.NumConflSearchIncMax {
		mult = s.Opts.NumConflSearchIncMax
	}
	n := int64(float64(s.Opts.NumConflSearch) * mult)
	if s.Opts.NeverStopSearch {
		n = 500 * 1000 * 1000
	}
	if rem := s.Opts.MaxConfl - s.sumConfl; n > rem {
		n = rem
	}
	return n
}

func (s *S) iterateUntilSolved() int {
	status := 0
	iter := 0
	for status == 0 && !s.Ctl.Expired(s.sumConfl) {
		iter++
		n := s.calcNumConflToDo(iter)
		if n <= 0 {
			break
		}
		if !s.installAssumptions() {
			status = -1
			break
		}
		if iter == 1 {
			s.Search.PhaseInit()
		}
		status = s.Search.Solve(n)
		if status == -1 && len(s.assumptions) > 0 {
			if s.Search.X != CNull {
				// conflict clause over the assumptions, while the
				// trail still witnesses the reasons.
				s.computeConflictFromClause(s.Search.X)
			} else {
				// no witnessing clause survived: fall back to the
				// full negated assumption set.
				out := make([]z.Lit, 0, len(s.assumptions))
				for _, p := range s.assumptions {
					out = append(out, p.Outside.Not())
				}
				s.conflict = out
			}
		}
		s.foldStats()
		s.checkRecursiveMinimEffectiveness(status)
		s.checkMinimEffectiveness(status)
		s.checkTooManyLowGlues()
		if status != 0 {
			break
		}
		if s.Ctl.Expired(s.sumConfl) {
			break
		}
		if s.Opts.DoSimplify {
			status = s.SimplifyProblem(false)
		}
	}
	return status
}

// installAssumptions backtracks to level 0, propagates, and assigns
// the assumption literals each on its own decision level.  On a
// conflict it computes the final conflict clause and returns false.
func (s *S) installAssumptions() bool {
	trail := s.Trail
	trail.Back(0)
	s.Search.AssumptLevel = 0
	if s.Cdb.Bot != CNull {
		s.ok = false
		return false
	}
	if x := trail.Prop(); x != CNull {
		s.ok = false
		s.Cdb.SetBot()
		s.proof.AddEmpty()
		return false
	}
	vals := s.Vars.Vals
	for _, p := range s.assumptions {
		m := p.Inter
		switch vals[m] {
		case 0:
			trail.Assign(m, CNull)
			if x := trail.Prop(); x != CNull {
				s.computeConflictFromClause(x)
				return false
			}
		case 1:
			// already true
		case -1:
			s.computeConflictFromLit(m)
			return false
		}
	}
	s.Search.AssumptLevel = trail.Level
	s.sumStats.Assumptions += int64(len(s.assumptions))
	return true
}

// computeConflictFromClause derives the conflict clause over the
// assumption literals from a conflicting clause, in outside space.
func (s *S) computeConflictFromClause(x CLoc) {
	ms := s.Cdb.Lits(x, nil)
	s.conflict = s.finalizeConflict(ms, z.LitNull)
}

// computeConflictFromLit handles an assumption already false under
// propagation: the conflict is the assumption itself plus whatever
// made it false.
func (s *S) computeConflictFromLit(m z.Lit) {
	s.sumStats.Failed++
	s.conflict = s.finalizeConflict([]z.Lit{m}, m)
}

// finalizeConflict walks reasons back to assumption decisions; the
// resulting failed assumptions, plus the optional seed assumption,
// are negated and translated to outside space.  Level 0 facts do not
// contribute.
func (s *S) finalizeConflict(ms []z.Lit, seed z.Lit) []z.Lit {
	marks := make([]bool, s.Vars.Max+1)
	var failed []z.Lit
	if seed != z.LitNull {
		failed = append(failed, seed)
	}
	var rec func(m z.Lit)
	rec = func(m z.Lit) {
		v := m.Var()
		if marks[v] || s.Vars.Levels[v] == 0 {
			return
		}
		marks[v] = true
		r := s.Vars.Reasons[v]
		if r == CNull {
			// a decision: under assumptions these are exactly the
			// assumption literals, recorded positively.
			failed = append(failed, m.Not())
			return
		}
		for _, o := range s.Cdb.Lits(r, nil) {
			if o.Var() == v {
				continue
			}
			rec(o)
		}
	}
	for _, m := range ms {
		rec(m)
	}
	// negate and translate to outside via the stored originals.
	byInter := make(map[z.Lit]z.Lit, len(s.assumptions))
	for _, p := range s.assumptions {
		byInter[p.Inter] = p.Outside
	}
	out := make([]z.Lit, 0, len(failed))
	seen := map[z.Lit]bool{}
	for _, f := range failed {
		o, okm := byInter[f]
		if !okm || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o.Not())
	}
	return out
}

// Conflict gives the final conflict clause over the assumption
// literals, in outside space, after an unsat result.
func (s *S) Conflict() []z.Lit {
	return s.conflict
}

func (s *S) foldStats() {
	s.Search.readStats(&s.sumStats)
	s.Trail.readStats(&s.sumStats)
	s.Guess.readStats(&s.sumStats)
	s.Driver.readStats(&s.sumStats)
	s.Cdb.readStats(&s.sumStats)
	s.Vars.readStats(&s.sumStats)
	s.sumStats.Conflicts = s.sumConfl
	s.sumStats.SolveCalls = s.numSolveCalls
	s.sumStats.Simplifies = s.numSimplify
	s.sumStats.ZeroLevAdds = s.zeroLevAssigns
}

// Stats gives the cumulative statistics.
func (s *S) Stats() *Stats {
	s.foldStats()
	return &s.sumStats
}

func (s *S) checkRecursiveMinimEffectiveness(status int) {
	st := &s.sumStats
	if status != 0 || !s.Driver.DoRecursiveMinim {
		return
	}
	if st.RecMinLitRem+st.LitsRedNonMin <= 100000 {
		return
	}
	remPercent := float64(st.RecMinLitRem) / float64(st.LitsRedNonMin) * 100.0
	costPerGained := float64(st.RecMinimCost) / remPercent
	if costPerGained > 200.0*1000.0*1000.0 {
		s.Driver.DoRecursiveMinim = false
		s.log.WithField("kcost", costPerGained/1000.0).
			Info("recursive minimization too costly, disabling")
	}
}

func (s *S) checkMinimEffectiveness(status int) {
	st := &s.sumStats
	if status != 0 || !s.Driver.DoMinimMore {
		return
	}
	if st.MoreMinimLitsStart <= 100000 {
		return
	}
	remPercent := float64(st.MoreMinimLitsStart-st.MoreMinimLitsEnd) /
		float64(st.MoreMinimLitsStart) * 100.0
	if remPercent < 1.0 {
		s.Driver.DoMinimMore = false
		s.log.WithField("percent", remPercent).
			Info("more minimization effectiveness low, disabling")
	}
}

func (s *S) checkTooManyLowGlues() {
	if s.Opts.GluePutLev0IfBelowOrEq == 2 ||
		s.sumConfl < s.Opts.MinNumConflAdjustGlue ||
		s.adjustedGlueCutoff ||
		s.Opts.AdjustGlueIfTooManyLow >= 1.0 {
		return
	}
	perc := float64(s.sumStats.RedInLev0) / float64(s.sumConfl)
	if perc > s.Opts.AdjustGlueIfTooManyLow {
		s.Opts.GluePutLev0IfBelowOrEq--
		s.Cdb.GluePutLev0 = s.Opts.GluePutLev0IfBelowOrEq
		s.adjustedGlueCutoff = true
		s.log.WithField("cutoff", s.Opts.GluePutLev0IfBelowOrEq).
			Info("adjusted glue cutoff due to too many low glues")
	}
}

func (s *S) handleFoundSolution(status int) {
	switch status {
	case 1:
		s.extendSolution()
	case -1:
		if s.conflict == nil {
			s.conflict = []z.Lit{}
		}
		if len(s.assumptions) == 0 {
			// terminal unsat is sticky only without assumptions.
			s.ok = false
			s.conflict = []z.Lit{}
		}
	}
	s.Trail.Back(0)
}

// loadPartialModelFromTrail snapshots the current assignment into the
// outer indexed partial model.  Values already present (from a replay
// solution file) are kept.
func (s *S) loadPartialModelFromTrail() {
	n := s.Vmap.NVarsOuter()
	if len(s.partialModel) != n+1 {
		s.partialModel = make([]z.TV, n+1)
	}
	for ov := z.Var(1); int(ov) <= n; ov++ {
		if s.partialModel[ov] != z.TVUndef {
			continue
		}
		iv := s.Vmap.OuterToInter(ov)
		if int(iv) <= int(s.Vars.Max) {
			s.partialModel[ov] = s.Vars.TV(iv)
		}
	}
	s.fullModel = append(s.fullModel[:0], s.partialModel...)
}

// extendSolution reconstructs the outside model from the inner state:
// inter to outer translation, component saved states, reversal of
// eliminations and replacements, BVA hiding, and verification.
func (s *S) extendSolution() {
	s.loadPartialModelFromTrail()
	if s.comps != nil {
		s.comps.AddSavedState(s.partialModel)
		s.comps.AddSavedState(s.fullModel)
	}
	s.extender.Extend(s.fullModel)
	s.model = s.mapToWithoutBva(s.fullModel)
	s.checkModelForAssumptions()
}

func (s *S) mapToWithoutBva(outer []z.TV) []z.TV {
	res := make([]z.TV, s.Vmap.NVarsOutside()+1)
	at := 1
	for ov := z.Var(1); int(ov) < len(outer); ov++ {
		if s.Vmap.IsBva(ov) {
			continue
		}
		res[at] = outer[ov]
		at++
	}
	return res
}

func (s *S) checkModelForAssumptions() {
	for _, p := range s.assumptions {
		v := s.ModelValue(p.Outside)
		if v != z.TVTrue {
			panic(fmt.Sprintf("xo: assumption %s not satisfied by model (%s)", p.Outside, v))
		}
	}
}

// ModelValue gives the value of the outside literal m in the model of
// the last sat result.
func (s *S) ModelValue(m z.Lit) z.TV {
	if int(m.Var()) >= len(s.model) {
		return z.TVUndef
	}
	tv := s.model[m.Var()]
	if !m.IsPos() {
		tv = tv.Not()
	}
	return tv
}

// Model gives the outside model vector (1 based) of the last sat
// result.
func (s *S) Model() []z.TV {
	return s.model
}

// Interrupt asks the solver to return unknown promptly.  Safe to call
// from other goroutines.
func (s *S) Interrupt() {
	s.Ctl.Interrupt()
}

// ClearInterrupt resets the interrupt flag before a new Solve.
func (s *S) ClearInterrupt() {
	s.Ctl.ClearInterrupt()
}
