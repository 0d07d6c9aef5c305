// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/irifrance/xsat/z"
)

const (
	stateMagic   = uint32(0x78736154) // "xsaT"
	stateVersion = uint32(1)
)

// stateFile is a positional binary reader/writer for the persisted
// solver state.  The format is deliberately schema-less: a state file
// is only loadable against the exact same outer variable numbering it
// was saved from.
type stateFile struct {
	w   *bufio.Writer
	r   *bufio.Reader
	err error
}

func (f *stateFile) putU32(v uint32) {
	if f.err != nil {
		return
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, f.err = f.w.Write(b[:])
}

func (f *stateFile) putI64(v int64) {
	if f.err != nil {
		return
	}
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	_, f.err = f.w.Write(b[:])
}

func (f *stateFile) putInt(v int)     { f.putI64(int64(v)) }
func (f *stateFile) putF64(v float64) { f.putI64(int64(math.Float64bits(v))) }
func (f *stateFile) putI8(v int8)     { f.putU32(uint32(uint8(v))) }
func (f *stateFile) putLits(ms []z.Lit) {
	f.putInt(len(ms))
	for _, m := range ms {
		f.putU32(uint32(m))
	}
}

func (f *stateFile) getU32() uint32 {
	if f.err != nil {
		return 0
	}
	var b [4]byte
	_, f.err = io.ReadFull(f.r, b[:])
	return binary.LittleEndian.Uint32(b[:])
}

func (f *stateFile) getI64() int64 {
	if f.err != nil {
		return 0
	}
	var b [8]byte
	_, f.err = io.ReadFull(f.r, b[:])
	return int64(binary.LittleEndian.Uint64(b[:]))
}

func (f *stateFile) getInt() int     { return int(f.getI64()) }
func (f *stateFile) getF64() float64 { return math.Float64frombits(uint64(f.getI64())) }
func (f *stateFile) getI8() int8     { return int8(uint8(f.getU32())) }
func (f *stateFile) getLits() []z.Lit {
	n := f.getInt()
	if f.err != nil || n < 0 || n > MaxClauseLen {
		if f.err == nil {
			f.err = ErrCorruptState
		}
		return nil
	}
	ms := make([]z.Lit, n)
	for i := range ms {
		ms[i] = z.Lit(f.getU32())
	}
	return ms
}

// SaveState writes a versioned binary snapshot: header and status,
// searcher state, equivalence replacer state, occurrence simplifier
// state.
func (s *S) SaveState(path string, status int) error {
	fd, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "save state")
	}
	defer fd.Close()
	f := &stateFile{w: bufio.NewWriter(fd)}

	f.putU32(stateMagic)
	f.putU32(stateVersion)
	f.putInt(s.Vmap.NVarsOuter())
	f.putI8(int8(status))

	// searcher state: level 0 assignment, polarity cache, removal
	// kinds.
	f.putInt(int(s.Vars.Max))
	for v := z.Var(1); v <= s.Vars.Max; v++ {
		f.putI8(s.Vars.Vals[v.Pos()])
		f.putI8(int8(s.Vars.Removed[v]))
		f.putI8(s.Vars.Polarity[v])
		f.putF64(s.Guess.act[v])
	}
	// coordinate mapper
	for v := z.Var(1); int(v) <= s.Vmap.NVarsOuter(); v++ {
		f.putU32(uint32(s.Vmap.OuterToInter(v)))
		bva := uint32(0)
		if s.Vmap.IsBva(v) {
			bva = 1
		}
		f.putU32(bva)
	}

	s.replacer.saveStateTo(f)

	if s.occ != nil {
		f.putU32(1)
		// entries uneliminated in the meantime are not part of the
		// state.
		var order []z.Var
		for _, ov := range s.occ.elimOrder {
			if _, ok := s.occ.elimed[ov]; ok {
				order = append(order, ov)
			}
		}
		f.putInt(len(order))
		for _, ov := range order {
			f.putU32(uint32(ov))
			clauses := s.occ.elimed[ov]
			f.putInt(len(clauses))
			for _, ms := range clauses {
				f.putLits(ms)
			}
		}
	} else {
		f.putU32(0)
	}

	if f.err != nil {
		return errors.Wrap(f.err, "save state")
	}
	return errors.Wrap(f.w.Flush(), "save state")
}

// LoadState restores a snapshot produced by SaveState.  The file must
// match the solver's current outer numbering exactly.
func (s *S) LoadState(path string) (int, error) {
	fd, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "load state")
	}
	defer fd.Close()
	f := &stateFile{r: bufio.NewReader(fd)}

	if f.getU32() != stateMagic || f.getU32() != stateVersion {
		return 0, errors.Wrap(ErrCorruptState, "header")
	}
	if f.getInt() != s.Vmap.NVarsOuter() {
		return 0, errors.Wrap(ErrCorruptState, "variable numbering mismatch")
	}
	status := int(f.getI8())

	max := z.Var(f.getInt())
	if max > s.Vars.Max {
		s.ensureLitCap(max.Pos())
		s.Vars.Max = max
	}
	for v := z.Var(1); v <= max; v++ {
		val := f.getI8()
		s.Vars.Removed[v] = Removal(f.getI8())
		s.Vars.Polarity[v] = f.getI8()
		s.Guess.act[v] = f.getF64()
		if val != 0 && s.Vars.TV(v) == z.TVUndef {
			m := v.Pos()
			if val == -1 {
				m = v.Neg()
			}
			s.Trail.Enq0(m)
		}
	}
	perm := make([]z.Var, s.Vmap.NVarsOuter()+1)
	for v := z.Var(1); int(v) <= s.Vmap.NVarsOuter(); v++ {
		perm[s.Vmap.OuterToInter(v)] = z.Var(f.getU32())
		f.getU32() // bva flag: fixed by numbering, validated implicitly
	}
	s.Vmap.UpdateVars(perm)

	if err := s.replacer.loadStateFrom(f); err != nil {
		return 0, errors.Wrap(err, "load state")
	}

	if f.getU32() == 1 {
		if s.occ == nil {
			return 0, errors.Wrap(ErrCorruptState, "occ state without occ simplifier")
		}
		s.occ.elimed = map[z.Var][][]z.Lit{}
		s.occ.elimOrder = nil
		n := f.getInt()
		for i := 0; i < n && f.err == nil; i++ {
			ov := z.Var(f.getU32())
			nc := f.getInt()
			clauses := make([][]z.Lit, 0, nc)
			for k := 0; k < nc; k++ {
				clauses = append(clauses, f.getLits())
			}
			s.occ.elimOrder = append(s.occ.elimOrder, ov)
			s.occ.elimed[ov] = clauses
		}
	}

	if f.err != nil {
		return 0, errors.Wrap(f.err, "load state")
	}
	if x := s.Trail.Prop(); x != CNull {
		s.ok = false
		return -1, nil
	}
	if status == -1 {
		s.ok = false
	}
	return status, nil
}

// LoadSolutionFromFile reads a DIMACS-like solution file: an "s"
// status line followed by zero terminated "v" lines of signed
// integers, wrapped or one per line.  Values fill the partial model
// for variables currently undef with removal kind none.
func (s *S) LoadSolutionFromFile(path string) (int, error) {
	fd, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "load solution")
	}
	defer fd.Close()
	return s.loadSolution(fd)
}

func (s *S) loadSolution(r io.Reader) (int, error) {
	status := 0
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<16), 1<<24)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			s.log.WithField("line", line).Warn("empty line in solution file")
			continue
		}
		switch text[0] {
		case 's':
			switch strings.TrimSpace(text[1:]) {
			case "SATISFIABLE":
				status = 1
			case "UNSATISFIABLE":
				return -1, nil
			case "INDETERMINATE":
				return 0, nil
			default:
				return 0, errors.Errorf("load solution: cannot parse status line %d", line)
			}
		case 'v':
			if err := s.parseVLine(text[1:], line); err != nil {
				return 0, err
			}
		default:
			// comments and anything else are skipped.
		}
	}
	if err := sc.Err(); err != nil {
		return 0, errors.Wrap(err, "load solution")
	}
	return status, nil
}

func (s *S) parseVLine(text string, line int) error {
	if s.partialModel == nil {
		s.partialModel = make([]z.TV, s.Vmap.NVarsOuter()+1)
	}
	for _, fld := range strings.Fields(text) {
		iv, err := strconv.Atoi(fld)
		if err != nil {
			return errors.Wrapf(err, "load solution: line %d", line)
		}
		if iv == 0 {
			return nil
		}
		v := z.Var(iv)
		if iv < 0 {
			v = z.Var(-iv)
		}
		if int(v) > int(s.Vars.Max) {
			return errors.Errorf("load solution: variable %d too large at line %d", v, line)
		}
		// don't overwrite previously computed values.
		if s.Vars.Removed[v] != RemovedNone {
			continue
		}
		ov := s.Vmap.InterToOuter(v)
		if s.partialModel[ov] != z.TVUndef {
			continue
		}
		if iv < 0 {
			s.partialModel[ov] = z.TVFalse
		} else {
			s.partialModel[ov] = z.TVTrue
		}
	}
	return nil
}

// DumpSimplifiedCNF writes the current irredundant clauses in DIMACS
// form, or the canonical unsat CNF when status is -1.  Used by
// preprocess mode 1.
func (s *S) DumpSimplifiedCNF(path string, status int) error {
	fd, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "dump cnf")
	}
	defer fd.Close()
	w := bufio.NewWriter(fd)

	if status == -1 {
		if _, err := io.WriteString(w, "p cnf 0 1\n0\n"); err != nil {
			return errors.Wrap(err, "dump cnf")
		}
		return errors.Wrap(w.Flush(), "dump cnf")
	}

	var lines []string
	put := func(ms []z.Lit) {
		var sb strings.Builder
		for _, m := range ms {
			om := s.Vmap.InterToOuterLit(m)
			sb.WriteString(strconv.Itoa(om.Dimacs()))
			sb.WriteByte(' ')
		}
		sb.WriteString("0")
		lines = append(lines, sb.String())
	}
	for _, m := range s.Trail.D {
		put([]z.Lit{m})
	}
	s.Cdb.ForallBins(func(p CLoc, a, b z.Lit, red bool) {
		if !red {
			put([]z.Lit{a, b})
		}
	})
	s.Cdb.ForallLong(func(p CLoc, hd Chd) {
		if !hd.Learnt() {
			put(s.Cdb.Lits(p, nil))
		}
	})

	if _, err := io.WriteString(w,
		"p cnf "+strconv.Itoa(s.Vmap.NVarsOuter())+" "+strconv.Itoa(len(lines))+"\n"); err != nil {
		return errors.Wrap(err, "dump cnf")
	}
	for _, l := range lines {
		if _, err := io.WriteString(w, l+"\n"); err != nil {
			return errors.Wrap(err, "dump cnf")
		}
	}
	return errors.Wrap(w.Flush(), "dump cnf")
}
