// Copyright 2026 The CXXFE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cxx

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/require"
	"modernc.org/xc"
)

func testLex(t *testing.T, src string) []xc.Token {
	t.Helper()
	toks, err := NewLexer(token.NewFileSet()).Lex("test.cpp", []byte(src))
	require.NoError(t, err)
	require.NotEmpty(t, toks)
	require.Equal(t, rune(ccEOF), toks[len(toks)-1].Rune)
	return toks[:len(toks)-1]
}

func kinds(toks []xc.Token) []rune {
	var r []rune
	for _, t := range toks {
		r = append(r, t.Rune)
	}
	return r
}

func sources(toks []xc.Token) []string {
	var r []string
	for _, t := range toks {
		r = append(r, TokSrc(t))
	}
	return r
}

func TestWhitespaceMerged(t *testing.T) {
	toks := testLex(t, "a \t\n\n  b")
	require.Equal(t, []rune{IDENTIFIER, WS, IDENTIFIER}, kinds(toks))
	require.Equal(t, " ", TokSrc(toks[1]))
}

func TestComments(t *testing.T) {
	for _, tc := range []struct {
		src  string
		want string
	}{
		{"// line comment", "// line comment"},
		{"/* block */", "/* block */"},
		{"/* multi\nline */", "/* multi\nline */"},
		{"/* unterminated", "/* unterminated"},
	} {
		toks := testLex(t, tc.src)
		require.Equal(t, []rune{COMMENT}, kinds(toks), "%q", tc.src)
		require.Equal(t, tc.want, TokSrc(toks[0]), "%q", tc.src)
	}

	toks := testLex(t, "a//c\nb")
	require.Equal(t, []rune{IDENTIFIER, COMMENT, WS, IDENTIFIER}, kinds(toks))
}

func TestCharacterLiterals(t *testing.T) {
	for _, src := range []string{
		`'a'`, `'\0'`, `'\''`, `L'x'`, `u'x'`, `U'x'`, `u8'x'`,
	} {
		toks := testLex(t, src)
		require.Equal(t, []rune{CHARCONST}, kinds(toks), "%q", src)
		require.Equal(t, src, TokSrc(toks[0]), "%q", src)
	}
}

func TestStringLiterals(t *testing.T) {
	for _, src := range []string{
		`"abc"`, `"a\"b"`, `L"wide"`, `u8"utf8"`, `""`,
	} {
		toks := testLex(t, src)
		require.Equal(t, []rune{STRINGLITERAL}, kinds(toks), "%q", src)
		require.Equal(t, src, TokSrc(toks[0]), "%q", src)
	}

	// u alone is an identifier, not an encoding prefix
	toks := testLex(t, `u + 1`)
	require.Equal(t, []rune{IDENTIFIER, WS, '+', WS, NUMBER}, kinds(toks))
}

func TestNumbers(t *testing.T) {
	for _, src := range []string{
		"0", "42", "0x1F", "0Xabc", "0b1010", "0755",
		"3.14", ".5", "1e10", "1E-5", "6.02e+23",
		"0x1.8p3", "0xAp-2",
		"1'000'000", "0b1100'0011",
		"42ull", "1.0f", "123_km",
	} {
		toks := testLex(t, src)
		require.Equal(t, []rune{NUMBER}, kinds(toks), "%q", src)
		require.Equal(t, src, TokSrc(toks[0]), "%q", src)
	}

	// a lone dot is a punctuator
	toks := testLex(t, "a.b")
	require.Equal(t, []rune{IDENTIFIER, '.', IDENTIFIER}, kinds(toks))
}

func TestDirectives(t *testing.T) {
	toks := testLex(t, "#define FOO 1")
	require.Equal(t, []rune{DIRECTIVE, WS, IDENTIFIER, WS, NUMBER}, kinds(toks))
	require.Equal(t, "#define", TokSrc(toks[0]))

	// spaces between # and the keyword are normalized away
	toks = testLex(t, "#  include <stdio.h>")
	require.Equal(t, "#include", TokSrc(toks[0]))

	// unknown directive words fall through to punctuator + identifier
	toks = testLex(t, "#foo")
	require.Equal(t, []rune{'#', IDENTIFIER}, kinds(toks))
}

func TestPunctuatorsLongestMatch(t *testing.T) {
	for _, tc := range []struct {
		src  string
		want []rune
	}{
		{"<<=", []rune{LSHASSIGN}},
		{"<<", []rune{LSH}},
		{"<=>", []rune{SPACESHIP}},
		{"<=", []rune{LEQ}},
		{"...", []rune{DDD}},
		{"##", []rune{PPPASTE}},
		{"->*", []rune{ARROWSTAR}},
		{"->", []rune{ARROW}},
		{"::", []rune{COLONCOLON}},
		{"+++", []rune{INC, '+'}},
	} {
		require.Equal(t, tc.want, kinds(testLex(t, tc.src)), "%q", tc.src)
	}
}

func TestBOMSkipped(t *testing.T) {
	toks := testLex(t, "\ufeffint")
	require.Equal(t, []rune{IDENTIFIER}, kinds(toks))
}

func TestUnknownCharacter(t *testing.T) {
	toks := testLex(t, "a @ b")
	require.Equal(t, []rune{IDENTIFIER, WS, UNKNOWN, WS, IDENTIFIER}, kinds(toks))
	require.Equal(t, "@", TokSrc(toks[2]))
}

func TestRightAngleBrackets(t *testing.T) {
	// no active left angle bracket: >> is a shift
	toks := testLex(t, "a >> b")
	require.Equal(t, []rune{IDENTIFIER, WS, RSH, WS, IDENTIFIER}, kinds(toks))

	// nested template argument lists: >> is two closing brackets
	toks = testLex(t, "vector<vector<int>> v;")
	require.Equal(t,
		[]rune{IDENTIFIER, '<', IDENTIFIER, '<', IDENTIFIER, '>', '>', WS, IDENTIFIER, ';'},
		kinds(toks))

	// a > within parentheses inside the angle brackets is an operator
	toks = testLex(t, "A<(X>Y)> a;")
	require.Equal(t,
		[]rune{IDENTIFIER, '<', '(', IDENTIFIER, '>', IDENTIFIER, ')', '>', WS, IDENTIFIER, ';'},
		kinds(toks))

	// >= never closes a template argument list
	toks = testLex(t, "a<b >= c;")
	require.Equal(t,
		[]rune{IDENTIFIER, '<', IDENTIFIER, WS, GEQ, WS, IDENTIFIER, ';'},
		kinds(toks))

	// ; resets the bracket state
	toks = testLex(t, "a<b; c >> d")
	require.Equal(t,
		[]rune{IDENTIFIER, '<', IDENTIFIER, ';', WS, IDENTIFIER, WS, RSH, WS, IDENTIFIER},
		kinds(toks))
}

func TestIncludeLexer(t *testing.T) {
	toks, err := NewIncludeLexer(token.NewFileSet()).Lex("inc.cpp", []byte("#include \"a.h\"\n"))
	require.NoError(t, err)
	require.Equal(t, []rune{DIRECTIVE, WS, STRINGLITERAL, WS, ccEOF}, kinds(toks))
	require.Equal(t, []string{"#include", " ", `"a.h"`, " ", ""}, sources(toks))
}

func TestPositions(t *testing.T) {
	fset := token.NewFileSet()
	toks, err := NewLexer(fset).Lex("pos.cpp", []byte("int\nx"))
	require.NoError(t, err)
	require.Equal(t, "pos.cpp:1:1", fset.Position(toks[0].Pos()).String())
	require.Equal(t, "pos.cpp:2:1", fset.Position(toks[2].Pos()).String())
}
