// Copyright 2026 The CXXFE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cxx

import (
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"modernc.org/xc"

	"modernc.org/cxxfe/internal/config"
)

func writeTestFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("\n"), 0o600))
}

func testArgs(t *testing.T, src string) []xc.Token {
	t.Helper()
	toks, err := NewLexer(token.NewFileSet()).Lex("args.cpp", []byte(src))
	require.NoError(t, err)
	return trimAllSpace(toks[:len(toks)-1])
}

func TestDefineForms(t *testing.T) {
	pp := NewPreprocessor(config.New(""), "")

	pp.Define("FOO")
	v, ok := pp.ValueOf("FOO")
	require.True(t, ok)
	require.Equal(t, "", v)

	pp.Define("BAR 42")
	v, ok = pp.ValueOf("BAR")
	require.True(t, ok)
	require.Equal(t, "42", v)

	pp.Define("#define BAZ 1")
	_, ok = pp.ValueOf("BAZ")
	require.True(t, ok)

	pp.Define("MAX(a, b) ((a) > (b) ? (a) : (b))")
	_, ok = pp.ValueOf("MAX")
	require.True(t, ok)

	pp.Undefine("FOO")
	_, ok = pp.ValueOf("FOO")
	require.False(t, ok)
}

func TestDefinesLoadedFromConfig(t *testing.T) {
	cfg := config.New("")
	cfg.Add(config.Global, config.Defines, "GLOBAL 1")
	cfg.Add("/src/a.cpp", config.Defines, "LOCAL 2")

	pp := NewPreprocessor(cfg, "/src/a.cpp")
	v, ok := pp.ValueOf("LOCAL")
	require.True(t, ok)
	require.Equal(t, "2", v)

	// the file level falls back to Global
	v, ok = pp.ValueOf("GLOBAL")
	require.True(t, ok)
	require.Equal(t, "1", v)

	// a Global-only preprocessor does not see file level macros
	pp = NewPreprocessor(cfg, "")
	_, ok = pp.ValueOf("LOCAL")
	require.False(t, ok)
}

func TestExpandFunctionLikeMacro(t *testing.T) {
	pp := NewPreprocessor(config.New(""), "")
	pp.Define("ADD(a,b) a + b")
	pp.Define("SQR(x) ((x) * (x))")
	pp.Define("ID(x) x")

	require.Equal(t, "1 + 2", pp.ExpandFunctionLikeMacro("ADD", testArgs(t, "(1, 2)")))
	require.Equal(t, "((3) * (3))", pp.ExpandFunctionLikeMacro("SQR", testArgs(t, "(3)")))

	// nested invocations in arguments expand during rescan
	require.Equal(t, "7", pp.ExpandFunctionLikeMacro("ID", testArgs(t, "(ID(7))")))

	// commas inside parentheses do not split arguments
	pp.Define("FST(p) p")
	require.Equal(t, "(1, 2)", pp.ExpandFunctionLikeMacro("FST", testArgs(t, "((1, 2))")))

	// unknown or object like names expand to nothing
	require.Equal(t, "", pp.ExpandFunctionLikeMacro("NOPE", testArgs(t, "(1)")))
}

func TestExpandStringizeAndPaste(t *testing.T) {
	pp := NewPreprocessor(config.New(""), "")

	pp.Define("STR(x) #x")
	require.Equal(t, `"abc"`, pp.ExpandFunctionLikeMacro("STR", testArgs(t, "(abc)")))

	pp.Define("CAT(a,b) a ## b")
	require.Equal(t, "foobar", pp.ExpandFunctionLikeMacro("CAT", testArgs(t, "(foo, bar)")))
}

func TestExpandVariadic(t *testing.T) {
	pp := NewPreprocessor(config.New(""), "")
	pp.Define("FIRST(a, ...) a")
	require.Equal(t, "1", pp.ExpandFunctionLikeMacro("FIRST", testArgs(t, "(1, 2, 3)")))

	pp.Define("REST(a, ...) __VA_ARGS__")
	require.Equal(t, "2,3", pp.ExpandFunctionLikeMacro("REST", testArgs(t, "(1, 2, 3)")))
}

func TestExpandHideSet(t *testing.T) {
	pp := NewPreprocessor(config.New(""), "")

	// the macro under expansion is hidden from its own rescan
	pp.Define("REC(x) REC(x)")
	require.Equal(t, "REC(1)", pp.ExpandFunctionLikeMacro("REC", testArgs(t, "(1)")))
}

func TestHasIncludeQuotedSearchesCurrentDir(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "local.h")

	cfg := config.New("")
	pp := NewPreprocessor(cfg, dir+"/unit.cpp")

	require.True(t, pp.HasInclude("local.h", true))
	// the angle form does not search the unit's directory
	require.False(t, pp.HasInclude("local.h", false))
}
