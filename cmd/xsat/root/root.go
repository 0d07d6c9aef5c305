// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package root implements the xsat command line.
package root

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/irifrance/xsat"
	"github.com/irifrance/xsat/dimacs"
	"github.com/irifrance/xsat/internal/xo"
	"github.com/irifrance/xsat/z"
)

type flags struct {
	timeout   time.Duration
	maxConfl  int64
	model     bool
	satcomp   bool
	stats     bool
	proofPath string
	verbosity int
	assume    []int
	sets      []string
}

// NewCmd builds the xsat command.
func NewCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:          "xsat [flags] <cnf>",
		Short:        "xsat is an inprocessing SAT solver with xor support",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(f, args[0])
		},
	}
	cmd.Flags().DurationVar(&f.timeout, "timeout", 30*time.Second, "solve timeout")
	cmd.Flags().Int64Var(&f.maxConfl, "max-confl", 0, "conflict limit (0 for none)")
	cmd.Flags().BoolVar(&f.model, "model", false, "output model")
	cmd.Flags().BoolVar(&f.satcomp, "satcomp", false, "sat competition output and exit codes")
	cmd.Flags().BoolVar(&f.stats, "stats", false, "print statistics after solving")
	cmd.Flags().StringVar(&f.proofPath, "proof", "", "write DRAT proof to file")
	cmd.Flags().CountVarP(&f.verbosity, "verbose", "v", "increase verbosity")
	cmd.Flags().IntSliceVar(&f.assume, "assume", nil, "assumption literals (dimacs coded)")
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "set a solver option, key=value")
	return cmd
}

func run(f *flags, path string) error {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	switch {
	case f.verbosity >= 2:
		log.SetLevel(logrus.DebugLevel)
	case f.verbosity == 1:
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}

	opts := xo.NewOptions()
	opts.Verbosity = f.verbosity
	if f.timeout > 0 {
		opts.MaxTime = f.timeout
	}
	if f.maxConfl > 0 {
		opts.MaxConfl = f.maxConfl
	}
	if err := applySets(opts, f.sets); err != nil {
		return err
	}

	s := xsat.NewOpts(opts)
	s.SetLog(log)

	if f.proofPath != "" {
		pf, err := os.Create(f.proofPath)
		if err != nil {
			return err
		}
		defer pf.Close()
		s.SetProof(pf)
	}

	r, closer, err := pathToReader(path)
	if err != nil {
		return err
	}
	defer closer()

	vis := &solverVis{s: s, opts: opts}
	if err := dimacs.ReadCnf(r, vis); err != nil {
		return fmt.Errorf("error reading dimacs: %v", err)
	}

	for _, a := range f.assume {
		if a == 0 {
			return fmt.Errorf("zero assumption")
		}
		s.Assume(z.Dimacs2Lit(a))
	}

	start := time.Now()
	res := s.Solve()
	log.WithField("dur", time.Since(start)).Info("solve finished")

	if f.stats {
		log.WithField("stats", s.Stats().String()).Info("statistics")
	}
	return output(f, s, vis.maxVar, res)
}

func output(f *flags, s *xsat.Solver, maxVar z.Var, res int) error {
	switch res {
	case 1:
		fmt.Println("s SATISFIABLE")
		if f.model || f.satcomp {
			printModel(s, maxVar)
		}
		if f.satcomp {
			os.Exit(10)
		}
	case -1:
		fmt.Println("s UNSATISFIABLE")
		if f.satcomp {
			os.Exit(20)
		}
	default:
		fmt.Println("s INDETERMINATE")
	}
	return nil
}

func printModel(s *xsat.Solver, maxVar z.Var) {
	line := "v"
	for v := z.Var(1); v <= maxVar; v++ {
		d := v.Pos().Dimacs()
		if !s.Value(v.Pos()) {
			d = -d
		}
		part := fmt.Sprintf(" %d", d)
		if len(line)+len(part) > 76 {
			fmt.Println(line)
			line = "v"
		}
		line += part
	}
	fmt.Println(line + " 0")
}

// applySets decodes --set key=value pairs into the options.
func applySets(opts *xo.Options, sets []string) error {
	if len(sets) == 0 {
		return nil
	}
	m := map[string]interface{}{}
	for _, kv := range sets {
		i := strings.IndexByte(kv, '=')
		if i < 0 {
			return fmt.Errorf("bad --set %q, want key=value", kv)
		}
		m[kv[:i]] = kv[i+1:]
	}
	return opts.Load(m)
}

func pathToReader(p string) (io.Reader, func(), error) {
	if p == "-" {
		return os.Stdin, func() {}, nil
	}
	fd, err := os.Open(p)
	if err != nil {
		return nil, nil, err
	}
	if strings.HasSuffix(p, ".gz") {
		r, err := gzip.NewReader(fd)
		if err != nil {
			fd.Close()
			return nil, nil, err
		}
		return r, func() { fd.Close() }, nil
	}
	if strings.HasSuffix(p, ".bz2") {
		return bzip2.NewReader(fd), func() { fd.Close() }, nil
	}
	return fd, func() { fd.Close() }, nil
}

// solverVis feeds parsed clauses into the solver.
type solverVis struct {
	s      *xsat.Solver
	opts   *xo.Options
	maxVar z.Var
}

func (v *solverVis) Init(nVars, nClauses int) {
	v.s.NewVars(nVars)
	v.maxVar = z.Var(nVars)
}

func (v *solverVis) Add(m z.Lit) {
	if m != z.LitNull && m.Var() > v.maxVar {
		v.maxVar = m.Var()
	}
	v.s.Add(m)
}

func (v *solverVis) AddXor(vs []z.Var, rhs bool) {
	for _, u := range vs {
		if u > v.maxVar {
			v.maxVar = u
		}
	}
	v.s.AddXor(vs, rhs)
}

func (v *solverVis) Ind(vs []z.Var) {
	for _, u := range vs {
		v.opts.IndependentVars = append(v.opts.IndependentVars, uint32(u))
	}
}

func (v *solverVis) Eof() {}
