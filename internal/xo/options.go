// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"fmt"
	"math"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Restart policies.
type RestartType int

const (
	RestartLuby RestartType = iota
	RestartGeom
)

// Preprocessing modes.
const (
	PreprocNone   = 0
	PreprocOnly   = 1
	PreprocReplay = 2
)

// Type Options holds the configuration the core recognizes.  Zero
// value is not useful; use NewOptions for defaults.
type Options struct {
	MaxConfl int64         `mapstructure:"maxConfl"`
	MaxTime  time.Duration `mapstructure:"maxTime"`

	DoSimplify             bool `mapstructure:"do_simplify_problem"`
	SimplifyAtStartup      bool `mapstructure:"simplify_at_startup"`
	SimplifyAtEveryStartup bool `mapstructure:"simplify_at_every_startup"`
	FullSimplifyAtStartup  bool `mapstructure:"full_simplify_at_startup"`

	SimplifySchedStartup    string `mapstructure:"simplify_schedule_startup"`
	SimplifySchedNonstartup string `mapstructure:"simplify_schedule_nonstartup"`

	EveryLev1Reduce int64 `mapstructure:"every_lev1_reduce"`
	EveryLev2Reduce int64 `mapstructure:"every_lev2_reduce"`

	GluePutLev0IfBelowOrEq uint32 `mapstructure:"glue_put_lev0_if_below_or_eq"`
	GluePutLev1IfBelowOrEq uint32 `mapstructure:"glue_put_lev1_if_below_or_eq"`

	MaxTempLev2LearntClauses int     `mapstructure:"max_temp_lev2_learnt_clauses"`
	IncMaxTempLev2RedCls     float64 `mapstructure:"inc_max_temp_lev2_red_cls"`

	DoProbe                bool `mapstructure:"doProbe"`
	DoIntreeProbe          bool `mapstructure:"doIntreeProbe"`
	DoCache                bool `mapstructure:"doCache"`
	MaxCacheSizeMB         int  `mapstructure:"maxCacheSizeMB"`
	PerformOccurSimp       bool `mapstructure:"perform_occur_based_simp"`
	DoStamp                bool `mapstructure:"doStamp"`
	DoStrSubImplicit       bool `mapstructure:"doStrSubImplicit"`
	DoCompHandler          bool `mapstructure:"doCompHandler"`
	DoRenumberVars         bool `mapstructure:"doRenumberVars"`
	DoDistillClauses       bool `mapstructure:"do_distill_clauses"`
	DoFindAndReplaceEqLits bool `mapstructure:"doFindAndReplaceEqLits"`
	DoSaveMem              bool `mapstructure:"doSaveMem"`
	DoBva                  bool `mapstructure:"do_bva"`

	CompVarLimit       int64 `mapstructure:"compVarLimit"`
	HandlerFromSimpNum int64 `mapstructure:"handlerFromSimpNum"`

	RestartType  RestartType  `mapstructure:"restartType"`
	RestartFirst int          `mapstructure:"restart_first"`
	PolarityMode PolarityMode `mapstructure:"polarity_mode"`
	VarDecayMax  float64      `mapstructure:"var_decay_max"`

	NumConflSearch       int64   `mapstructure:"num_conflicts_of_search"`
	NumConflSearchInc    float64 `mapstructure:"num_conflicts_of_search_inc"`
	NumConflSearchIncMax float64 `mapstructure:"num_conflicts_of_search_inc_max"`
	NeverStopSearch      bool    `mapstructure:"never_stop_search"`

	GlobalTimeoutMultiplier           float64 `mapstructure:"global_timeout_multiplier"`
	GlobalTimeoutMultiplierMultiplier float64 `mapstructure:"global_timeout_multiplier_multiplier"`
	GlobalMultiplierMultiplierMax     float64 `mapstructure:"global_multiplier_multiplier_max"`

	AdjustGlueIfTooManyLow float64 `mapstructure:"adjust_glue_if_too_many_low"`
	MinNumConflAdjustGlue  int64   `mapstructure:"min_num_confl_adjust_glue_cutoff"`

	ReconfigureAt  int64 `mapstructure:"reconfigure_at"`
	ReconfigureVal int   `mapstructure:"reconfigure_val"`

	Preprocess     int    `mapstructure:"preprocess"`
	SavedStateFile string `mapstructure:"saved_state_file"`
	SimplifiedCNF  string `mapstructure:"simplified_cnf"`
	SolutionFile   string `mapstructure:"solution_file"`

	// WriteCNFOnSolvedPreproc keeps the original behavior of writing
	// the simplified CNF even when preprocessing already solved the
	// problem.
	WriteCNFOnSolvedPreproc bool `mapstructure:"write_cnf_on_solved_preproc"`

	// IndependentVars restricts Undefine candidates; outside space.
	IndependentVars []uint32 `mapstructure:"independent_vars"`

	Verbosity int `mapstructure:"verbosity"`
}

// NewOptions gives the default configuration.
func NewOptions() *Options {
	return &Options{
		MaxConfl: math.MaxInt64,
		MaxTime:  time.Duration(1<<62 - 1),

		DoSimplify:             true,
		SimplifyAtStartup:      true,
		SimplifyAtEveryStartup: false,
		FullSimplifyAtStartup:  false,

		SimplifySchedStartup: "sub-impl, occ-backw-sub-str, occ-clean-implicit, occ-bve," +
			" occ-bva, occ-gauss, intree-probe, probe, sub-str-cls-with-bin, distill-cls," +
			" scc-vrepl, sub-impl, str-impl, sub-impl, check-cache-size, renumber",
		SimplifySchedNonstartup: "find-comps, handle-comps, scc-vrepl, cache-clean, cache-tryboth," +
			" sub-impl, intree-probe, probe, sub-str-cls-with-bin, distill-cls, str-impl," +
			" cache-clean, sub-impl, occ-backw-sub-str, occ-bve, occ-bva, occ-gauss," +
			" str-impl, cache-clean, sub-impl, renumber, check-cache-size",

		EveryLev1Reduce: 10000,
		EveryLev2Reduce: 15000,

		GluePutLev0IfBelowOrEq: 3,
		GluePutLev1IfBelowOrEq: 6,

		MaxTempLev2LearntClauses: 30000,
		IncMaxTempLev2RedCls:     1.0,

		DoProbe:                true,
		DoIntreeProbe:          true,
		DoCache:                true,
		MaxCacheSizeMB:         2048,
		PerformOccurSimp:       true,
		DoStamp:                true,
		DoStrSubImplicit:       true,
		DoCompHandler:          true,
		DoRenumberVars:         true,
		DoDistillClauses:       true,
		DoFindAndReplaceEqLits: true,
		DoSaveMem:              true,
		DoBva:                  true,

		CompVarLimit:       1000 * 1000,
		HandlerFromSimpNum: 0,

		RestartType:  RestartLuby,
		RestartFirst: 300,
		PolarityMode: PolarityCache,
		VarDecayMax:  0.95,

		NumConflSearch:       50000,
		NumConflSearchInc:    1.4,
		NumConflSearchIncMax: 3.0,
		NeverStopSearch:      false,

		GlobalTimeoutMultiplier:           2.0,
		GlobalTimeoutMultiplierMultiplier: 1.4,
		GlobalMultiplierMultiplierMax:     3.0,

		AdjustGlueIfTooManyLow: 0.65,
		MinNumConflAdjustGlue:  100000,

		ReconfigureAt:  2,
		ReconfigureVal: 0,

		Preprocess:              PreprocNone,
		WriteCNFOnSolvedPreproc: true,

		Verbosity: 0}
}

// Load decodes an option map (string keys as in the mapstructure
// tags) into o.  Unknown keys are an error.
func (o *Options) Load(m map[string]interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           o,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc()})
	if err != nil {
		return err
	}
	return dec.Decode(m)
}

// Check validates the configuration.
func (o *Options) Check() error {
	if o.MaxConfl < 0 {
		return fmt.Errorf("maxConfl must be >= 0")
	}
	if o.NumConflSearchInc < 1.0 {
		return fmt.Errorf("num_conflicts_of_search_inc must be >= 1")
	}
	return nil
}

// Reconfigure applies one of the named preset bundles.  Any value not
// in {3,4,6,7,12,13,14,15} is an error.
func (o *Options) Reconfigure(val int) error {
	switch val {
	case 3:
		// glue based clause cleaning
		o.EveryLev1Reduce = 0
		o.EveryLev2Reduce = 0
		o.GluePutLev1IfBelowOrEq = 0
		o.AdjustGlueIfTooManyLow = 0
		o.IncMaxTempLev2RedCls = 1.03
	case 4:
		o.EveryLev1Reduce = 0
		o.EveryLev2Reduce = 0
		o.GluePutLev1IfBelowOrEq = 0
		o.MaxTempLev2LearntClauses = 10000
	case 6:
		o.NeverStopSearch = true
	case 7:
		// geometric restarts but keep low glue clauses
		o.RestartType = RestartGeom
		o.PolarityMode = PolarityNeg
		o.EveryLev1Reduce = 0
		o.EveryLev2Reduce = 0
		o.GluePutLev1IfBelowOrEq = 0
		o.IncMaxTempLev2RedCls = 1.02
	case 12:
		// mix of keeping clauses
		o.DoBva = false
		o.EveryLev1Reduce = 0
		o.EveryLev2Reduce = 0
		o.GluePutLev0IfBelowOrEq = 2
		o.GluePutLev1IfBelowOrEq = 4
		o.IncMaxTempLev2RedCls = 1.04
		o.VarDecayMax = 0.90
	case 13:
		o.GlobalTimeoutMultiplier = 5
		o.GlobalMultiplierMultiplierMax = 5
		o.NumConflSearchInc = 1.15
		o.MaxTempLev2LearntClauses = 10000
		o.VarDecayMax = 0.99
	case 14:
		// longer short term glue history; nothing else
	case 15:
		// like very old minisat
		o.RestartType = RestartGeom
		o.PolarityMode = PolarityNeg
		o.EveryLev1Reduce = 0
		o.EveryLev2Reduce = 0
		o.GluePutLev0IfBelowOrEq = 0
		o.GluePutLev1IfBelowOrEq = 0
		o.IncMaxTempLev2RedCls = 1.02
	default:
		return fmt.Errorf("xo: unknown reconfigure value %d", val)
	}
	return nil
}
