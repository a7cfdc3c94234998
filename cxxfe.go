// Copyright 2026 The CXXFE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cxxfe implements the preprocessing front end of a C/C++ source
// code analyzer.
//
// Installation
//
// To install or update cxxfe and its command
//
//     $ go get [-u] modernc.org/cxxfe/cmd/cxxfe
//
// Online documentation
//
// GoDoc: https://godoc.org/modernc.org/cxxfe
//
// The heavy lifting is done by the internal packages: internal/cxx lexes
// C/C++ source into preprocessing tokens and evaluates the controlling
// constant expressions of conditional inclusion, internal/config stores the
// compile options, defines and include directories, the analysis needs.
package cxxfe // import "modernc.org/cxxfe"
