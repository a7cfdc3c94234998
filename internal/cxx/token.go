// Copyright 2026 The CXXFE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cxx

import (
	"modernc.org/xc"
)

var dict = xc.Dict

// Token kinds. Single character tokens use their rune value, multi character
// tokens and lexical categories get values outside the Unicode range.
const (
	ccEOF = iota + 0xe000
	ADDASSIGN
	ANDAND
	ANDASSIGN
	ARROW
	ARROWSTAR
	CHARCONST
	COLONCOLON
	COMMENT
	DDD
	DEC
	DIRECTIVE
	DIVASSIGN
	DOTSTAR
	EQ
	GEQ
	IDENTIFIER
	INC
	LEQ
	LSH
	LSHASSIGN
	MODASSIGN
	MULASSIGN
	NEQ
	NUMBER
	ORASSIGN
	OROR
	PPPASTE
	RSH
	RSHASSIGN
	SPACESHIP
	STRINGLITERAL
	SUBASSIGN
	UNKNOWN
	WS
	XORASSIGN
)

// tokHasVal lists kinds whose tokens carry an interned spelling.
var tokHasVal = map[rune]struct{}{
	CHARCONST:     {},
	COMMENT:       {},
	DIRECTIVE:     {},
	IDENTIFIER:    {},
	NUMBER:        {},
	STRINGLITERAL: {},
	UNKNOWN:       {},
}

// tokSrc spells the fixed multi character tokens.
var tokSrc = map[rune]string{
	ADDASSIGN:  "+=",
	ANDAND:     "&&",
	ANDASSIGN:  "&=",
	ARROW:      "->",
	ARROWSTAR:  "->*",
	COLONCOLON: "::",
	DDD:        "...",
	DEC:        "--",
	DIVASSIGN:  "/=",
	DOTSTAR:    ".*",
	EQ:         "==",
	GEQ:        ">=",
	INC:        "++",
	LEQ:        "<=",
	LSH:        "<<",
	LSHASSIGN:  "<<=",
	MODASSIGN:  "%=",
	MULASSIGN:  "*=",
	NEQ:        "!=",
	ORASSIGN:   "|=",
	OROR:       "||",
	PPPASTE:    "##",
	RSH:        ">>",
	RSHASSIGN:  ">>=",
	SPACESHIP:  "<=>",
	SUBASSIGN:  "-=",
	WS:         " ",
	XORASSIGN:  "^=",
}

// TokSrc returns the source form of t.
func TokSrc(t xc.Token) string {
	if t.Val != 0 {
		return string(dict.S(t.Val))
	}

	if s, ok := tokSrc[t.Rune]; ok {
		return s
	}

	if t.Rune < 0x80 {
		return string(t.Rune)
	}

	return ""
}

func toksDump(toks []xc.Token) string {
	var b []byte
	for _, t := range toks {
		b = append(b, TokSrc(t)...)
	}
	return string(b)
}

func trimSpace(toks []xc.Token) []xc.Token {
	for len(toks) != 0 && toks[0].Rune == WS {
		toks = toks[1:]
	}
	for len(toks) != 0 && toks[len(toks)-1].Rune == WS {
		toks = toks[:len(toks)-1]
	}
	return toks
}

func trimAllSpace(toks []xc.Token) []xc.Token {
	w := 0
	for _, v := range toks {
		switch v.Rune {
		case WS, COMMENT:
			// nop
		default:
			toks[w] = v
			w++
		}
	}
	return toks[:w]
}
