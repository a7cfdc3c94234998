// Copyright 2026 The CXXFE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cxx

import (
	"fmt"
	"reflect"

	"modernc.org/strutil"
	"modernc.org/xc"
)

var tokNames = map[rune]string{
	ccEOF:         "EOF",
	CHARCONST:     "CHARCONST",
	COMMENT:       "COMMENT",
	DIRECTIVE:     "DIRECTIVE",
	IDENTIFIER:    "IDENTIFIER",
	NUMBER:        "NUMBER",
	STRINGLITERAL: "STRINGLITERAL",
	UNKNOWN:       "UNKNOWN",
	WS:            "WS",
}

// TokName returns the name of a token kind.
func TokName(r rune) string {
	if s, ok := tokNames[r]; ok {
		return s
	}

	if s, ok := tokSrc[r]; ok {
		return fmt.Sprintf("%q", s)
	}

	return fmt.Sprintf("%q", string(r))
}

var printHooks = strutil.PrettyPrintHooks{
	reflect.TypeOf(xc.Token{}): func(f strutil.Formatter, v interface{}, prefix, suffix string) {
		t := v.(xc.Token)
		if t.Rune == 0 {
			return
		}

		f.Format(prefix)
		f.Format("%s", TokName(t.Rune))
		if _, ok := tokHasVal[t.Rune]; ok {
			f.Format(" %q", TokSrc(t))
		}
		f.Format(suffix)
	},
	reflect.TypeOf(ExprCase(0)): func(f strutil.Formatter, v interface{}, prefix, suffix string) {
		f.Format(prefix)
		f.Format("%v", v.(ExprCase))
		f.Format(suffix)
	},
}

// PrettyString returns pretty strings for things produced by this package.
func PrettyString(v interface{}) string {
	return strutil.PrettyString(v, "", "", printHooks)
}
