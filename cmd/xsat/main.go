// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Command xsat solves DIMACS CNF problems, with xor clause and
// independent variable extensions.
package main

import (
	"fmt"
	"os"

	"github.com/irifrance/xsat/cmd/xsat/root"
)

func main() {
	if err := root.NewCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
