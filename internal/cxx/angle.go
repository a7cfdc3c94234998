// Copyright 2026 The CXXFE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cxx

import (
	"modernc.org/golex/lex"
	"modernc.org/xc"
)

// rightAngleBracketsChannel decides whether a > closes a template argument
// list or belongs to a shift/comparison operator.
//
// Decree that if a left angle bracket is active (not yet matched by a right
// angle bracket) the >> token is treated as two right angle brackets instead
// of a shift operator, except within parentheses that are themselves within
// the angle brackets (N1757, Right Angle Brackets, Revision 2).
//
//	A<(X>Y)> a; // the first > appears within parentheses and therefore is
//	            // not a right angle bracket; the second one is, because a
//	            // left angle bracket is active and no parentheses are more
//	            // recently active.
type rightAngleBracketsChannel struct {
	angleBracketLevel int // angle brackets < >
	parenthesesLevel  int // parentheses nested inside the angle brackets
}

func (c *rightAngleBracketsChannel) consume(r *codeReader, out *[]xc.Token) bool {
	switch r.peek() {
	case '(':
		if c.angleBracketLevel > 0 {
			c.parenthesesLevel++
		}
	case ')':
		if c.parenthesesLevel > 0 {
			c.parenthesesLevel--
		}
	case ';': // end of expression, reset
		c.angleBracketLevel = 0
		c.parenthesesLevel = 0
	case '<':
		if c.parenthesesLevel == 0 {
			next := r.charAt(1)
			if next != '<' && next != '=' { // not <<, <=, <<=, <=>
				c.angleBracketLevel++
			}
		}
	case '>':
		if c.angleBracketLevel > 0 {
			next := r.charAt(1)
			consume := c.parenthesesLevel == 0
			consume = consume && next != '='                                 // not >=
			consume = consume && !(next == '>' && c.angleBracketLevel == 1) // not dangling >>

			if consume {
				pos := r.pos()
				r.pop()
				*out = append(*out, xc.Token{Char: lex.NewChar(pos, '>')})
				c.angleBracketLevel--
				return true
			}
		}
	}
	return false
}
