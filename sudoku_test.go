// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xsat_test

import (
	"testing"

	"github.com/irifrance/xsat"
	"github.com/irifrance/xsat/z"
)

func BenchmarkSudoku(b *testing.B) {
	for i := 0; i < b.N; i++ {
		solveSudoku(nil)
	}
}

func TestSudoku(t *testing.T) {
	solveSudoku(t)
}

// solveSudoku encodes an empty 9x9 sudoku board and checks that the
// model puts one number in each position and repeats no number in a
// row or column; boxes are not checked.  One variable per triple
// (row, col, n) indicating
// whether the number n appears in position (row, col).
func solveSudoku(t *testing.T) {
	g := xsat.New()
	var lit = func(row, col, num int) z.Lit {
		n := num
		n += col * 9
		n += row * 81
		return z.Var(n + 1).Pos()
	}

	// every position on the board has a number
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			for n := 0; n < 9; n++ {
				g.Add(lit(row, col, n))
			}
			g.Add(0)
		}
	}

	// every row has unique numbers
	for n := 0; n < 9; n++ {
		for row := 0; row < 9; row++ {
			for colA := 0; colA < 9; colA++ {
				a := lit(row, colA, n)
				for colB := colA + 1; colB < 9; colB++ {
					b := lit(row, colB, n)
					g.Add(a.Not())
					g.Add(b.Not())
					g.Add(0)
				}
			}
		}
	}

	// every column has unique numbers
	for n := 0; n < 9; n++ {
		for col := 0; col < 9; col++ {
			for rowA := 0; rowA < 9; rowA++ {
				a := lit(rowA, col, n)
				for rowB := rowA + 1; rowB < 9; rowB++ {
					b := lit(rowB, col, n)
					g.Add(a.Not())
					g.Add(b.Not())
					g.Add(0)
				}
			}
		}
	}

	// every box rooted at (x, y) has unique numbers
	var box = func(x, y int) {
		offs := []struct{ x, y int }{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}, {2, 0}, {2, 1}, {2, 2}}
		for n := 0; n < 9; n++ {
			for i, offA := range offs {
				a := lit(x+offA.x, y+offA.y, n)
				for j := i + 1; j < len(offs); j++ {
					offB := offs[j]
					b := lit(x+offB.x, y+offB.y, n)
					g.Add(a.Not())
					g.Add(b.Not())
					g.Add(0)
				}
			}
		}
	}
	for x := 0; x < 9; x += 3 {
		for y := 0; y < 9; y += 3 {
			box(x, y)
		}
	}

	if g.Solve() != 1 {
		if t != nil {
			t.Fatalf("error, unsat sudoku.")
		}
		return
	}
	if t == nil {
		return
	}

	// read off the board and validate it.
	var board [9][9]int
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			board[row][col] = -1
			for n := 0; n < 9; n++ {
				if g.Value(lit(row, col, n)) {
					if board[row][col] != -1 {
						t.Errorf("two numbers at (%d,%d)", row, col)
					}
					board[row][col] = n
				}
			}
			if board[row][col] == -1 {
				t.Errorf("no number at (%d,%d)", row, col)
			}
		}
	}
	for i := 0; i < 9; i++ {
		var rowSeen, colSeen [9]bool
		for j := 0; j < 9; j++ {
			if n := board[i][j]; n >= 0 {
				if rowSeen[n] {
					t.Errorf("row %d repeats %d", i, n+1)
				}
				rowSeen[n] = true
			}
			if n := board[j][i]; n >= 0 {
				if colSeen[n] {
					t.Errorf("col %d repeats %d", i, n+1)
				}
				colSeen[n] = true
			}
		}
	}
}
