// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package z provides literals, variables and truth values shared by
// all xsat packages.
package z
