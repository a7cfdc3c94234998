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

	"modernc.org/cxxfe/internal/config"
)

func testPP(t *testing.T, defines ...string) *Preprocessor {
	t.Helper()
	cfg := config.New("")
	cfg.Add(config.Global, config.Defines, defines...)
	return NewPreprocessor(cfg, "")
}

func testEval(t *testing.T, pp *Preprocessor, expr string) bool {
	t.Helper()
	v, err := EvalString(pp, expr)
	require.NoError(t, err, "%q", expr)
	return v
}

func TestEvalArithmetic(t *testing.T) {
	pp := testPP(t)
	for _, tc := range []struct {
		expr string
		want bool
	}{
		{"1 + 2 * 3 == 7", true},
		{"(1 + 2) * 3 == 9", true},
		{"10 / 3 == 3", true},
		{"10 % 3 == 1", true},
		{"-1 < 0", true},
		{"+1 > 0", true},
		{"7 - 7", false},
		{"0", false},
		{"1", true},
	} {
		require.Equal(t, tc.want, testEval(t, pp, tc.expr), "%q", tc.expr)
	}
}

func TestEvalBases(t *testing.T) {
	pp := testPP(t)
	for _, tc := range []struct {
		expr string
		want bool
	}{
		{"0xFF == 255", true},
		{"0b1010 == 10", true},
		{"0755 == 493", true},
		{"1'000'000 == 1000000", true},
		{"42ull == 42", true},
		{"0x0 || 0b0", false},
	} {
		require.Equal(t, tc.want, testEval(t, pp, tc.expr), "%q", tc.expr)
	}
}

func TestEvalBitwise(t *testing.T) {
	pp := testPP(t)
	for _, tc := range []struct {
		expr string
		want bool
	}{
		// ~ wraps around within 64 bits
		{"~0 == 0xFFFFFFFFFFFFFFFF", true},
		{"~0xFFFFFFFFFFFFFFFF == 0", true},
		{"(1 << 64) == 0", true},
		{"(1 << 3) == 8", true},
		{"(16 >> 2) == 4", true},
		{"(1 | 2 | 4) == 7", true},
		{"(6 & 3) == 2", true},
		{"(5 ^ 1) == 4", true},
	} {
		require.Equal(t, tc.want, testEval(t, pp, tc.expr), "%q", tc.expr)
	}
}

func TestEvalLogic(t *testing.T) {
	pp := testPP(t)
	for _, tc := range []struct {
		expr string
		want bool
	}{
		{"1 && 2", true},
		{"1 && 0", false},
		{"0 || 3", true},
		{"!1", false},
		{"!0", true},
		{"true", true},
		{"false || true", true},
		// short circuit: the right side would be a division by zero
		{"0 && (1 / 0)", false},
		{"1 || (1 / 0)", true},
	} {
		require.Equal(t, tc.want, testEval(t, pp, tc.expr), "%q", tc.expr)
	}
}

func TestEvalConditional(t *testing.T) {
	pp := testPP(t)
	// only the taken branch is evaluated
	require.True(t, testEval(t, pp, "1 ? 10 : (1 / 0)"))
	require.True(t, testEval(t, pp, "0 ? (1 / 0) : 10"))
	require.False(t, testEval(t, pp, "1 ? 0 : 1"))
	// GNU a ?: b
	require.True(t, testEval(t, pp, "5 ?: (1 / 0)"))
	require.True(t, testEval(t, pp, "0 ?: 7"))
}

func TestEvalComparisonChain(t *testing.T) {
	pp := testPP(t)
	for _, tc := range []struct {
		expr string
		want bool
	}{
		{"3 > 2", true},
		{"2 >= 2", true},
		{"2 <= 1", false},
		{"1 == 1 == 1", true}, // (1==1) -> 1, 1==1
		{"2 == 2 == 1", true},
		{"3 < 4 < 2", true},  // (3<4) -> 1, 1<2
		{"3 < 4 < 1", false}, // (3<4) -> 1, !(1<1)
		{"1 != 2 != 1", false},
	} {
		require.Equal(t, tc.want, testEval(t, pp, tc.expr), "%q", tc.expr)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	pp := testPP(t)
	_, err := EvalString(pp, "1 / 0")
	require.Error(t, err)
	_, err = EvalString(pp, "1 % 0")
	require.Error(t, err)
}

func TestEvalCharacter(t *testing.T) {
	pp := testPP(t)
	require.False(t, testEval(t, pp, `'\0'`))
	require.True(t, testEval(t, pp, `'a'`))
	require.True(t, testEval(t, pp, `'\n'`))
}

func TestEvalMacros(t *testing.T) {
	pp := testPP(t, "FOO 1", "BAR 0", "BAZ FOO")

	require.True(t, testEval(t, pp, "FOO"))
	require.False(t, testEval(t, pp, "BAR"))
	require.True(t, testEval(t, pp, "BAZ")) // expands to FOO, then 1

	// undefined macros evaluate to 0
	require.False(t, testEval(t, pp, "UNDEFINED"))
	require.True(t, testEval(t, pp, "!UNDEFINED"))
}

func TestEvalDefined(t *testing.T) {
	pp := testPP(t, "FOO 1")
	require.True(t, testEval(t, pp, "defined FOO"))
	require.True(t, testEval(t, pp, "defined(FOO)"))
	require.False(t, testEval(t, pp, "defined(BAR)"))
	require.True(t, testEval(t, pp, "defined(FOO) && FOO"))
}

func TestEvalSelfReferentialMacro(t *testing.T) {
	// #define X X must not recurse; it evaluates to true
	pp := testPP(t, "X X")
	require.True(t, testEval(t, pp, "X"))

	// mutual recursion
	pp = testPP(t, "A B", "B A")
	require.True(t, testEval(t, pp, "A"))
}

func TestEvalBadNumberFallsBackToOne(t *testing.T) {
	// an undecodable replacement number evaluates to 1
	pp := testPP(t, "V 0x")
	require.False(t, testEval(t, pp, "V")) // "0x" decodes to 0
	pp = testPP(t, "W 018")
	require.True(t, testEval(t, pp, "W")) // bad octal digit, falls back to 1
}

func TestEvalFunctionLikeMacro(t *testing.T) {
	pp := testPP(t, "ADD(a,b) a + b", "ONE() 1")
	require.True(t, testEval(t, pp, "ADD(1, 2) == 3"))
	require.True(t, testEval(t, pp, "ONE()"))
	require.False(t, testEval(t, pp, "ADD(0, 0)"))

	// unknown function-like macros evaluate to 0
	require.False(t, testEval(t, pp, "NOPE(1)"))
}

func TestEvalHasInclude(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "present.h"), []byte("\n"), 0o600))

	cfg := config.New("")
	cfg.Add(config.Global, config.IncludeDirectories, dir)
	pp := NewPreprocessor(cfg, "")

	require.True(t, testEval(t, pp, `__has_include(<present.h>)`))
	require.True(t, testEval(t, pp, `__has_include("present.h")`))
	require.False(t, testEval(t, pp, `__has_include(<absent.h>)`))
}

func TestEvalParseErrorMeansFalse(t *testing.T) {
	pp := testPP(t)
	require.False(t, testEval(t, pp, "1 +"))
	require.False(t, testEval(t, pp, ")("))
}

func TestParseConstExprRejectsTrailingInput(t *testing.T) {
	_, err := ParseConstExpr(token.NewFileSet(), "t", "1 1")
	require.Error(t, err)
	_, err = ParseConstExpr(token.NewFileSet(), "t", "")
	require.Error(t, err)
}
