// Copyright 2026 The CXXFE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cxx

import (
	"go/token"
	"unicode/utf8"

	"modernc.org/golex/lex"
	"modernc.org/xc"
)

// codeReader is a cursor addressable view of one source. Channels inspect it
// via peek/charAt and advance it via pop.
type codeReader struct {
	file *token.File
	off  int
	src  []byte
}

func newCodeReader(file *token.File, src []byte) *codeReader {
	return &codeReader{file: file, src: src}
}

func (r *codeReader) eof() bool { return r.off >= len(r.src) }

// peek returns the rune at the cursor without consuming it, lex.RuneEOF at
// end of source.
func (r *codeReader) peek() rune { return r.charAt(0) }

// charAt returns the i-th rune after the cursor, lex.RuneEOF past the end.
func (r *codeReader) charAt(i int) rune {
	off := r.off
	for {
		if off >= len(r.src) {
			return lex.RuneEOF
		}

		c, sz := utf8.DecodeRune(r.src[off:])
		if i == 0 {
			return c
		}

		off += sz
		i--
	}
}

// pop consumes and returns the rune at the cursor.
func (r *codeReader) pop() rune {
	if r.off >= len(r.src) {
		return lex.RuneEOF
	}

	c, sz := utf8.DecodeRune(r.src[r.off:])
	r.off += sz
	return c
}

func (r *codeReader) pos() token.Pos { return r.file.Pos(r.off) }

func (r *codeReader) position() token.Position { return r.file.Position(r.pos()) }

// token builds a token of the given kind spanning [start, cursor). Kinds
// listed in tokHasVal intern their spelling.
func (r *codeReader) token(kind rune, start int) xc.Token {
	t := xc.Token{Char: lex.NewChar(r.file.Pos(start), kind)}
	if _, ok := tokHasVal[kind]; ok {
		t.Val = dict.ID(r.src[start:r.off])
	}
	return t
}
