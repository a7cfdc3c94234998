// Copyright 2026 The CXXFE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cxx

import (
	"fmt"
	"go/token"

	"modernc.org/xc"
)

// ExprCase tags constant expression tree nodes.
type ExprCase int

const (
	ExprNumber ExprCase = iota
	ExprCharacter
	ExprBool
	ExprIdentifier
	ExprDefined
	ExprCall
	ExprHasInclude
	ExprParen
	ExprUnary
	ExprConditional
	ExprMultiplicative
	ExprAdditive
	ExprShift
	ExprRelational
	ExprEquality
	ExprAnd
	ExprExclusiveOr
	ExprInclusiveOr
	ExprLogicalAnd
	ExprLogicalOr

	maxExprCase
)

var exprCaseSrc = [maxExprCase]string{
	ExprNumber:         "ExprNumber",
	ExprCharacter:      "ExprCharacter",
	ExprBool:           "ExprBool",
	ExprIdentifier:     "ExprIdentifier",
	ExprDefined:        "ExprDefined",
	ExprCall:           "ExprCall",
	ExprHasInclude:     "ExprHasInclude",
	ExprParen:          "ExprParen",
	ExprUnary:          "ExprUnary",
	ExprConditional:    "ExprConditional",
	ExprMultiplicative: "ExprMultiplicative",
	ExprAdditive:       "ExprAdditive",
	ExprShift:          "ExprShift",
	ExprRelational:     "ExprRelational",
	ExprEquality:       "ExprEquality",
	ExprAnd:            "ExprAnd",
	ExprExclusiveOr:    "ExprExclusiveOr",
	ExprInclusiveOr:    "ExprInclusiveOr",
	ExprLogicalAnd:     "ExprLogicalAnd",
	ExprLogicalOr:      "ExprLogicalOr",
}

func (c ExprCase) String() string {
	if c >= 0 && c < maxExprCase {
		return exprCaseSrc[c]
	}

	return fmt.Sprintf("ExprCase(%d)", int(c))
}

// Expr is one node of a parsed constant expression. Operands are owned left
// to right; for chain nodes Ops holds the operator kinds between consecutive
// operands (len(Ops) == len(Operands)-1). Nodes are scoped to a single
// evaluation call.
type Expr struct {
	Case     ExprCase
	Token    xc.Token // leaf token, macro name or unary operator
	Operands []*Expr
	Ops      []rune

	// ExprCall: the raw argument tokens including the parentheses.
	Args []xc.Token

	// ExprHasInclude: the include target.
	Include string
	Quoted  bool
}

// Pos implements Node-ish position reporting for diagnostics.
func (n *Expr) Pos() token.Pos { return n.Token.Pos() }

type exprParser struct {
	toks []xc.Token
	pos  int
}

// ParseConstExpr parses the text of one #if/#elif controlling expression.
func ParseConstExpr(fset *token.FileSet, name, src string) (*Expr, error) {
	lx := NewLexer(fset)
	toks, err := lx.Lex(name, []byte(src))
	if err != nil {
		return nil, err
	}

	toks = trimAllSpace(toks[:len(toks)-1])
	if len(toks) == 0 {
		return nil, fmt.Errorf("%s: empty constant expression", name)
	}

	p := &exprParser{toks: toks}
	n, err := p.conditional()
	if err != nil {
		return nil, err
	}

	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("unexpected %q", TokSrc(p.peek()))
	}

	return n, nil
}

func (p *exprParser) peek() (t xc.Token) {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}

	t.Rune = ccEOF
	return t
}

func (p *exprParser) next() xc.Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *exprParser) expect(kind rune) (xc.Token, error) {
	t := p.peek()
	if t.Rune != kind {
		return t, fmt.Errorf("expected %q, got %q", string(kind), TokSrc(t))
	}

	return p.next(), nil
}

// conditional = logical-or [ '?' [ conditional ] ':' conditional ] .
func (p *exprParser) conditional() (*Expr, error) {
	cond, err := p.binary(ExprLogicalOr)
	if err != nil {
		return nil, err
	}

	if p.peek().Rune != '?' {
		return cond, nil
	}

	op := p.next()
	n := &Expr{Case: ExprConditional, Token: op, Operands: []*Expr{cond}}
	if p.peek().Rune != ':' { // a ?: b has no true branch
		trueCase, err := p.conditional()
		if err != nil {
			return nil, err
		}

		n.Operands = append(n.Operands, trueCase)
	}
	if _, err = p.expect(':'); err != nil {
		return nil, err
	}

	falseCase, err := p.conditional()
	if err != nil {
		return nil, err
	}

	n.Operands = append(n.Operands, falseCase)
	return n, nil
}

// binaryOps orders the binary production chain from lowest to highest
// precedence. Each level folds left to right into a single chain node.
var binaryOps = map[ExprCase]struct {
	next ExprCase
	ops  []rune
}{
	ExprLogicalOr:      {ExprLogicalAnd, []rune{OROR}},
	ExprLogicalAnd:     {ExprInclusiveOr, []rune{ANDAND}},
	ExprInclusiveOr:    {ExprExclusiveOr, []rune{'|'}},
	ExprExclusiveOr:    {ExprAnd, []rune{'^'}},
	ExprAnd:            {ExprEquality, []rune{'&'}},
	ExprEquality:       {ExprRelational, []rune{EQ, NEQ}},
	ExprRelational:     {ExprShift, []rune{'<', '>', LEQ, GEQ}},
	ExprShift:          {ExprAdditive, []rune{LSH, RSH}},
	ExprAdditive:       {ExprMultiplicative, []rune{'+', '-'}},
	ExprMultiplicative: {exprUnaryLevel, []rune{'*', '/', '%'}},
}

const exprUnaryLevel = ExprCase(-1)

func (p *exprParser) binary(level ExprCase) (*Expr, error) {
	if level == exprUnaryLevel {
		return p.unary()
	}

	prod := binaryOps[level]
	first, err := p.binary(prod.next)
	if err != nil {
		return nil, err
	}

	var n *Expr
	for {
		op := p.peek().Rune
		hit := false
		for _, v := range prod.ops {
			if op == v {
				hit = true
				break
			}
		}
		if !hit {
			break
		}

		t := p.next()
		operand, err := p.binary(prod.next)
		if err != nil {
			return nil, err
		}

		if n == nil {
			n = &Expr{Case: level, Token: first.Token, Operands: []*Expr{first}}
		}
		n.Operands = append(n.Operands, operand)
		n.Ops = append(n.Ops, t.Rune)
	}
	if n == nil { // pass-through
		return first, nil
	}

	return n, nil
}

func (p *exprParser) unary() (*Expr, error) {
	switch t := p.peek(); t.Rune {
	case '+', '-', '!', '~':
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}

		return &Expr{Case: ExprUnary, Token: t, Operands: []*Expr{operand}}, nil
	}
	return p.primary()
}

func (p *exprParser) primary() (*Expr, error) {
	switch t := p.peek(); t.Rune {
	case NUMBER:
		p.next()
		return &Expr{Case: ExprNumber, Token: t}, nil
	case CHARCONST:
		p.next()
		return &Expr{Case: ExprCharacter, Token: t}, nil
	case '(':
		p.next()
		inner, err := p.conditional()
		if err != nil {
			return nil, err
		}

		if _, err = p.expect(')'); err != nil {
			return nil, err
		}

		return &Expr{Case: ExprParen, Token: t, Operands: []*Expr{inner}}, nil
	case IDENTIFIER:
		switch string(dict.S(t.Val)) {
		case "true", "false":
			p.next()
			return &Expr{Case: ExprBool, Token: t}, nil
		case "defined":
			return p.defined()
		case "__has_include":
			return p.hasInclude()
		}
		p.next()
		if p.peek().Rune == '(' {
			return p.functionLikeMacro(t)
		}

		return &Expr{Case: ExprIdentifier, Token: t}, nil
	default:
		return nil, fmt.Errorf("unexpected %q in constant expression", TokSrc(t))
	}
}

// defined = 'defined' ( IDENTIFIER | '(' IDENTIFIER ')' ) .
func (p *exprParser) defined() (*Expr, error) {
	t := p.next()
	switch p.peek().Rune {
	case IDENTIFIER:
		return &Expr{Case: ExprDefined, Token: p.next()}, nil
	case '(':
		p.next()
		id, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}

		if _, err = p.expect(')'); err != nil {
			return nil, err
		}

		return &Expr{Case: ExprDefined, Token: id}, nil
	default:
		return nil, fmt.Errorf("%v: malformed defined operator", TokSrc(t))
	}
}

// hasInclude = '__has_include' '(' ( STRINGLITERAL | '<' h-chars '>' ) ')' .
func (p *exprParser) hasInclude() (*Expr, error) {
	t := p.next()
	if _, err := p.expect('('); err != nil {
		return nil, err
	}

	n := &Expr{Case: ExprHasInclude, Token: t}
	switch p.peek().Rune {
	case STRINGLITERAL:
		s := TokSrc(p.next())
		n.Include = s[1 : len(s)-1]
		n.Quoted = true
	case '<':
		p.next()
		var nm string
		for p.peek().Rune != '>' {
			if p.peek().Rune == ccEOF {
				return nil, fmt.Errorf("unterminated __has_include header name")
			}

			nm += TokSrc(p.next())
		}
		p.next()
		n.Include = nm
	default:
		return nil, fmt.Errorf("malformed __has_include operand")
	}
	if _, err := p.expect(')'); err != nil {
		return nil, err
	}

	return n, nil
}

// functionLikeMacro collects the raw argument tokens, parentheses included,
// leaving argument substitution to the macro table.
func (p *exprParser) functionLikeMacro(name xc.Token) (*Expr, error) {
	n := &Expr{Case: ExprCall, Token: name}
	lvl := 0
	for {
		t := p.peek()
		switch t.Rune {
		case ccEOF:
			return nil, fmt.Errorf("unterminated invocation of macro %q", TokSrc(name))
		case '(':
			lvl++
		case ')':
			lvl--
		}
		n.Args = append(n.Args, p.next())
		if lvl == 0 {
			return n, nil
		}
	}
}
