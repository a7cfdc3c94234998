// Copyright 2026 The CXXFE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cxx

import (
	"fmt"
	"go/token"
	"sort"
	"unicode"

	"modernc.org/golex/lex"
	"modernc.org/mathutil"
	"modernc.org/xc"

	"modernc.org/cxxfe/internal/logger"
)

// channel recognizes one lexical category. consume is offered the current
// read position; it returns whether it consumed input, and if so it has
// appended exactly the tokens it judges correct and advanced the cursor past
// the consumed characters.
type channel interface {
	consume(r *codeReader, out *[]xc.Token) bool
}

// Lexer turns a character stream into tokens by trying channels in a fixed
// priority order per position. The first channel to consume wins; the
// configuration must guarantee some channel always consumes at least one
// character.
type Lexer struct {
	channels []channel
	fset     *token.FileSet
}

// NewLexer returns a lexer with the full C/C++ channel configuration.
func NewLexer(fset *token.FileSet) *Lexer {
	return &Lexer{
		fset: fset,
		channels: []channel{
			&whitespaceChannel{},
			&commentChannel{},
			&characterLiteralsChannel{},
			&stringLiteralsChannel{},
			&numberChannel{},
			&keywordChannel{},
			&identifierChannel{},
			&rightAngleBracketsChannel{},
			newPunctuatorChannel(),
			&bomChannel{},
			&unknownCharacterChannel{},
		},
	}
}

// NewIncludeLexer returns a reduced lexer sufficient for scanning sources for
// #include directives only.
func NewIncludeLexer(fset *token.FileSet) *Lexer {
	return &Lexer{
		fset: fset,
		channels: []channel{
			&whitespaceChannel{},
			&commentChannel{},
			&stringLiteralsChannel{},
			&keywordChannel{},
			&identifierChannel{},
			newPunctuatorChannel(),
			&bomChannel{},
			&unknownCharacterChannel{},
		},
	}
}

// Lex tokenizes src, recording positions under name. The returned stream is
// terminated by a ccEOF token.
func (l *Lexer) Lex(name string, src []byte) ([]xc.Token, error) {
	if len(src) > mathutil.MaxInt-1 {
		return nil, fmt.Errorf("%v: source too big: %v", name, len(src))
	}

	file := l.fset.AddFile(name, -1, len(src))
	file.SetLinesForContent(src)
	r := newCodeReader(file, src)
	var toks []xc.Token
	for !r.eof() {
		consumed := false
		for _, ch := range l.channels {
			if ch.consume(r, &toks) {
				consumed = true
				break
			}
		}
		if !consumed {
			return nil, fmt.Errorf("%v: no channel consumed input", r.position())
		}
	}
	toks = append(toks, xc.Token{Char: lex.NewChar(r.pos(), ccEOF)})
	return toks, nil
}

// whitespaceChannel merges consecutive whitespace characters, newlines
// included, into a single synthetic space token.
type whitespaceChannel struct{}

func (*whitespaceChannel) consume(r *codeReader, out *[]xc.Token) bool {
	if !unicode.IsSpace(r.peek()) {
		return false
	}

	pos := r.pos()
	for unicode.IsSpace(r.peek()) {
		r.pop()
	}
	t := xc.Token{Char: lex.NewChar(pos, WS)}
	t.Val = idSpace
	*out = append(*out, t)
	return true
}

// commentChannel handles //... and /*...*/ comments. An unterminated block
// comment extends to the end of the source.
type commentChannel struct{}

func (*commentChannel) consume(r *codeReader, out *[]xc.Token) bool {
	if r.peek() != '/' {
		return false
	}

	switch r.charAt(1) {
	case '/':
		start := r.off
		for !r.eof() && r.peek() != '\n' {
			r.pop()
		}
		*out = append(*out, r.token(COMMENT, start))
		return true
	case '*':
		start := r.off
		r.pop()
		r.pop()
		for !r.eof() {
			if r.peek() == '*' && r.charAt(1) == '/' {
				r.pop()
				r.pop()
				break
			}

			r.pop()
		}
		*out = append(*out, r.token(COMMENT, start))
		return true
	}
	return false
}

// literalPrefix consumes an optional encoding prefix (L, u, U, u8) followed
// by the quote rune. Reports whether it consumed anything.
func literalPrefix(r *codeReader, quote rune) bool {
	i := 0
	switch r.peek() {
	case 'L', 'U':
		i = 1
	case 'u':
		i = 1
		if r.charAt(1) == '8' {
			i = 2
		}
	}
	if r.charAt(i) != quote {
		return false
	}

	for ; i >= 0; i-- {
		r.pop()
	}
	return true
}

// scanQuoted consumes the body and closing quote, honoring backslash
// escapes. An unterminated literal stops at the newline or end of source.
func scanQuoted(r *codeReader, quote rune) {
	for !r.eof() {
		switch c := r.pop(); c {
		case quote:
			return
		case '\\':
			if !r.eof() {
				r.pop()
			}
		case '\n':
			return
		}
	}
}

type characterLiteralsChannel struct{}

func (*characterLiteralsChannel) consume(r *codeReader, out *[]xc.Token) bool {
	start := r.off
	if !literalPrefix(r, '\'') {
		return false
	}

	scanQuoted(r, '\'')
	*out = append(*out, r.token(CHARCONST, start))
	return true
}

type stringLiteralsChannel struct{}

func (*stringLiteralsChannel) consume(r *codeReader, out *[]xc.Token) bool {
	start := r.off
	if !literalPrefix(r, '"') {
		return false
	}

	scanQuoted(r, '"')
	*out = append(*out, r.token(STRINGLITERAL, start))
	return true
}

// numberChannel accepts hexadecimal (0x/0X prefix, optional fraction,
// optional binary exponent), binary (0b/0B), decimal integer/float with
// optional exponent, leading-dot floats, digit separators and an optional
// ud-suffix.
type numberChannel struct{}

func (*numberChannel) consume(r *codeReader, out *[]xc.Token) bool {
	start := r.off
	switch c := r.peek(); {
	case c == '.':
		if !isDigit(r.charAt(1)) {
			return false
		}

		r.pop()
		digitSeq(r, isDigit)
		exponent(r, 'e', 'E', isDigit)
	case c == '0' && (r.charAt(1) == 'x' || r.charAt(1) == 'X'):
		r.pop()
		r.pop()
		digitSeq(r, isHexDigit)
		if r.peek() == '.' {
			r.pop()
			digitSeq(r, isHexDigit)
		}
		exponent(r, 'p', 'P', isDigit)
	case c == '0' && (r.charAt(1) == 'b' || r.charAt(1) == 'B') && isBinDigit(r.charAt(2)):
		r.pop()
		r.pop()
		digitSeq(r, isBinDigit)
	case isDigit(c):
		digitSeq(r, isDigit)
		if r.peek() == '.' {
			r.pop()
			digitSeq(r, isDigit)
		}
		exponent(r, 'e', 'E', isDigit)
	default:
		return false
	}

	// ud-suffix
	if isIdentStart(r.peek()) {
		for isIdentPart(r.peek()) {
			r.pop()
		}
	}
	*out = append(*out, r.token(NUMBER, start))
	return true
}

// digitSeq consumes digits with ' separators permitted inside the run.
func digitSeq(r *codeReader, digit func(rune) bool) {
	for {
		switch {
		case digit(r.peek()):
			r.pop()
		case r.peek() == '\'' && digit(r.charAt(1)):
			r.pop()
		default:
			return
		}
	}
}

// exponent consumes [eEpP][+-]?digit-seq when present.
func exponent(r *codeReader, lo, up rune, digit func(rune) bool) {
	if c := r.peek(); c != lo && c != up {
		return
	}

	i := 1
	if c := r.charAt(1); c == '+' || c == '-' {
		i = 2
	}
	if !digit(r.charAt(i)) {
		return
	}

	for ; i >= 0; i-- {
		r.pop()
	}
	digitSeq(r, digit)
}

func isDigit(c rune) bool    { return c >= '0' && c <= '9' }
func isBinDigit(c rune) bool { return c == '0' || c == '1' }

func isHexDigit(c rune) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func isIdentStart(c rune) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c rune) bool { return isIdentStart(c) || isDigit(c) }

// keywordChannel recognizes preprocessor directives: '#', optional
// whitespace, a lower case word. The emitted token spells the normalized
// directive, e.g. "#define".
type keywordChannel struct{}

var directives = map[string]struct{}{
	"#define":       {},
	"#elif":         {},
	"#else":         {},
	"#endif":        {},
	"#error":        {},
	"#if":           {},
	"#ifdef":        {},
	"#ifndef":       {},
	"#include":      {},
	"#include_next": {},
	"#line":         {},
	"#pragma":       {},
	"#undef":        {},
	"#warning":      {},
}

func (*keywordChannel) consume(r *codeReader, out *[]xc.Token) bool {
	if r.peek() != '#' {
		return false
	}

	i := 1
	for r.charAt(i) == ' ' || r.charAt(i) == '\t' {
		i++
	}
	if c := r.charAt(i); c < 'a' || c > 'z' {
		return false
	}

	word := []byte{'#'}
	for c := r.charAt(i); isIdentPart(c); c = r.charAt(i) {
		word = append(word, byte(c))
		i++
	}
	if _, ok := directives[string(word)]; !ok {
		return false
	}

	pos := r.pos()
	for ; i > 0; i-- {
		r.pop()
	}
	t := xc.Token{Char: lex.NewChar(pos, DIRECTIVE), Val: dict.ID(word)}
	*out = append(*out, t)
	return true
}

type identifierChannel struct{}

func (*identifierChannel) consume(r *codeReader, out *[]xc.Token) bool {
	if !isIdentStart(r.peek()) {
		return false
	}

	start := r.off
	for isIdentPart(r.peek()) {
		r.pop()
	}
	*out = append(*out, r.token(IDENTIFIER, start))
	return true
}

// punctuatorChannel matches operators and punctuation, longest first.
// Single character punctuators keep their rune as the token kind.
type punctuatorChannel struct {
	punctuators []punctuator
}

type punctuator struct {
	src  string
	kind rune
}

func newPunctuatorChannel() *punctuatorChannel {
	c := &punctuatorChannel{}
	for kind, src := range tokSrc {
		switch kind {
		case WS:
			// nop
		default:
			c.punctuators = append(c.punctuators, punctuator{src, kind})
		}
	}
	for _, v := range "{}[]()<>;:?.+-*/%^&|~!=,#" {
		c.punctuators = append(c.punctuators, punctuator{string(v), v})
	}
	sort.Slice(c.punctuators, func(i, j int) bool {
		a, b := c.punctuators[i], c.punctuators[j]
		if len(a.src) != len(b.src) {
			return len(a.src) > len(b.src)
		}

		return a.src < b.src
	})
	return c
}

func (c *punctuatorChannel) consume(r *codeReader, out *[]xc.Token) bool {
	for _, p := range c.punctuators {
		if !matchAt(r, p.src) {
			continue
		}

		pos := r.pos()
		for range p.src {
			r.pop()
		}
		*out = append(*out, xc.Token{Char: lex.NewChar(pos, p.kind)})
		return true
	}
	return false
}

func matchAt(r *codeReader, s string) bool {
	for i, v := range s {
		if r.charAt(i) != v {
			return false
		}
	}
	return true
}

// bomChannel eats a byte order mark without producing a token.
type bomChannel struct{}

func (*bomChannel) consume(r *codeReader, out *[]xc.Token) bool {
	if r.peek() != '\ufeff' {
		return false
	}

	r.pop()
	return true
}

// unknownCharacterChannel is the fallback: it consumes a single character so
// lexing always makes progress.
type unknownCharacterChannel struct{}

func (*unknownCharacterChannel) consume(r *codeReader, out *[]xc.Token) bool {
	start := r.off
	c := r.pop()
	logger.Debugf("%v: unknown character %q", r.file.Position(r.file.Pos(start)), c)
	*out = append(*out, r.token(UNKNOWN, start))
	return true
}

var idSpace = dict.SID(" ")
