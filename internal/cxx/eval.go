// Copyright 2026 The CXXFE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cxx

import (
	"fmt"
	"go/token"
	"math/big"
	"strings"

	"modernc.org/cxxfe/internal/logger"
)

// uint64Max masks bitwise-not and left-shift results to emulate unsigned
// 64-bit wrap around semantics. Other operators do not mask.
var uint64Max = new(big.Int).SetUint64(^uint64(0))

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
)

// evaluator computes one conditional compilation verdict. The macro
// evaluation stack lives here, not on the Preprocessor, keeping evaluation
// reentrant across concurrent per-file passes.
type evaluator struct {
	fset  *token.FileSet
	pp    *Preprocessor
	stack []string // in-flight macro identifiers, innermost last
}

// EvalString evaluates the text of a #if/#elif controlling expression
// against pp's macro table. Recoverable problems are logged and substituted
// with their defined fallback values; only structurally fatal situations
// (division by zero, an unknown tree kind) surface as errors.
func EvalString(pp *Preprocessor, constExpr string) (bool, error) {
	e := &evaluator{fset: token.NewFileSet(), pp: pp}
	v, err := e.toIntString(constExpr, "")
	if err != nil {
		return false, err
	}

	return v.Sign() != 0, nil
}

// EvalExpr is EvalString for an already parsed expression tree.
func EvalExpr(pp *Preprocessor, n *Expr) (bool, error) {
	e := &evaluator{fset: token.NewFileSet(), pp: pp}
	v, err := e.toInt(n)
	if err != nil {
		return false, err
	}

	return v.Sign() != 0, nil
}

func (e *evaluator) toIntString(constExpr, within string) (*big.Int, error) {
	n, err := ParseConstExpr(e.fset, within, constExpr)
	if err != nil {
		if within != "" {
			logger.Warnf("preprocessor error evaluating expression %q for macro %q, assuming 0: %v", constExpr, within, err)
		} else {
			logger.Warnf("preprocessor error evaluating expression %q, assuming 0: %v", constExpr, err)
		}
		return bigZero, nil
	}

	return e.toInt(n)
}

func (e *evaluator) toBool(n *Expr) (bool, error) {
	v, err := e.toInt(n)
	if err != nil {
		return false, err
	}

	return v.Sign() != 0, nil
}

func (e *evaluator) toInt(n *Expr) (*big.Int, error) {
	switch n.Case {
	case ExprNumber:
		return e.number(n), nil
	case ExprCharacter:
		// '\0' is zero, any other character literal is one. The exact
		// character value is not computed.
		if TokSrc(n.Token) == `'\0'` {
			return bigZero, nil
		}

		return bigOne, nil
	case ExprBool:
		if strings.EqualFold(TokSrc(n.Token), "true") {
			return bigOne, nil
		}

		return bigZero, nil
	case ExprIdentifier:
		return e.identifier(n)
	case ExprDefined:
		if _, ok := e.pp.ValueOf(string(dict.S(n.Token.Val))); ok {
			return bigOne, nil
		}

		return bigZero, nil
	case ExprCall:
		return e.functionLikeMacro(n)
	case ExprHasInclude:
		if e.pp.HasInclude(n.Include, n.Quoted) {
			return bigOne, nil
		}

		return bigZero, nil
	case ExprParen:
		return e.toInt(n.Operands[0])
	case ExprUnary:
		return e.unary(n)
	case ExprConditional:
		return e.conditional(n)
	case ExprLogicalOr:
		return e.logicalOr(n)
	case ExprLogicalAnd:
		return e.logicalAnd(n)
	case ExprInclusiveOr, ExprExclusiveOr, ExprAnd:
		return e.bitwise(n)
	case ExprEquality, ExprRelational:
		return e.comparison(n)
	case ExprShift:
		return e.shift(n)
	case ExprAdditive, ExprMultiplicative:
		return e.arithmetic(n)
	default:
		panic(fmt.Errorf("internal error: %v", n.Case))
	}
}

// number decodes a numeric literal. A decode failure is not fatal: fall back
// to one and log a warning.
func (e *evaluator) number(n *Expr) *big.Int {
	s := TokSrc(n.Token)
	v, err := decodeNumber(s)
	if err != nil {
		logger.Warnf("preprocessor cannot decode the number %q, falling back to value 1", s)
		return bigOne
	}

	return v
}

// decodeNumber decodes a preprocessor integer literal: 0x/0X means base 16,
// 0b/0B base 2, a leading 0 base 8, anything else base 10. A trailing
// alphabetic suffix and ' digit separators are stripped before parsing.
func decodeNumber(s string) (*big.Int, error) {
	base := 10
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base = 16
			s = s[2:]
		case 'b', 'B':
			base = 2
			s = s[2:]
		default:
			base = 8
		}
	}

	var b strings.Builder
out:
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
			b.WriteRune(c)
		case c == '\'': // digit separator
			// nop
		default: // suffix
			break out
		}
	}
	v, ok := new(big.Int).SetString(b.String(), base)
	if !ok {
		return nil, fmt.Errorf("invalid numeric literal %q", s)
	}

	return v, nil
}

func (e *evaluator) identifier(n *Expr) (*big.Int, error) {
	id := string(dict.S(n.Token.Val))
	for _, v := range e.stack {
		if v == id {
			logger.Debugf("preprocessor: self-referential macro %q detected, assuming true; evaluation stack = [%s]",
				id, strings.Join(e.stack, " <- "))
			return bigOne, nil
		}
	}

	value, ok := e.pp.ValueOf(id)
	if !ok {
		// Undefined macros are false in conditional context.
		return bigZero, nil
	}

	e.stack = append(e.stack, id)
	v, err := e.toIntString(value, id)
	e.stack = e.stack[:len(e.stack)-1]
	return v, err
}

func (e *evaluator) functionLikeMacro(n *Expr) (*big.Int, error) {
	name := string(dict.S(n.Token.Val))
	value := e.pp.ExpandFunctionLikeMacro(name, n.Args)
	if value == "" {
		logger.Errorf("preprocessor: undefined function-like macro %q, assuming 0", name)
		return bigZero, nil
	}

	return e.toIntString(value, name)
}

func (e *evaluator) unary(n *Expr) (*big.Int, error) {
	switch n.Token.Rune {
	case '+':
		return e.toInt(n.Operands[0])
	case '-':
		v, err := e.toInt(n.Operands[0])
		if err != nil {
			return nil, err
		}

		return new(big.Int).Neg(v), nil
	case '!':
		v, err := e.toBool(n.Operands[0])
		if err != nil {
			return nil, err
		}

		if v {
			return bigZero, nil
		}

		return bigOne, nil
	case '~':
		v, err := e.toInt(n.Operands[0])
		if err != nil {
			return nil, err
		}

		return new(big.Int).And(new(big.Int).Not(v), uint64Max), nil
	default:
		panic(fmt.Errorf("internal error: unary %q", TokSrc(n.Token)))
	}
}

// conditional evaluates exactly one branch; the untaken branch must not be
// evaluated so that dead code cannot raise errors.
func (e *evaluator) conditional(n *Expr) (*big.Int, error) {
	if len(n.Operands) == 3 {
		decision, err := e.toBool(n.Operands[0])
		if err != nil {
			return nil, err
		}

		if decision {
			return e.toInt(n.Operands[1])
		}

		return e.toInt(n.Operands[2])
	}

	// GNU a ?: b reuses the decision value.
	decision, err := e.toInt(n.Operands[0])
	if err != nil {
		return nil, err
	}

	if decision.Sign() != 0 {
		return decision, nil
	}

	return e.toInt(n.Operands[1])
}

func (e *evaluator) logicalOr(n *Expr) (*big.Int, error) {
	result := false
	for _, operand := range n.Operands {
		v, err := e.toBool(operand)
		if err != nil {
			return nil, err
		}

		if result = v; result {
			break // short circuit
		}
	}
	if result {
		return bigOne, nil
	}

	return bigZero, nil
}

func (e *evaluator) logicalAnd(n *Expr) (*big.Int, error) {
	result := true
	for _, operand := range n.Operands {
		v, err := e.toBool(operand)
		if err != nil {
			return nil, err
		}

		if result = v; !result {
			break // short circuit
		}
	}
	if result {
		return bigOne, nil
	}

	return bigZero, nil
}

func (e *evaluator) bitwise(n *Expr) (*big.Int, error) {
	result, err := e.toInt(n.Operands[0])
	if err != nil {
		return nil, err
	}

	for i, operand := range n.Operands[1:] {
		v, err := e.toInt(operand)
		if err != nil {
			return nil, err
		}

		r := new(big.Int)
		switch op := n.Ops[i]; op {
		case '&':
			r.And(result, v)
		case '|':
			r.Or(result, v)
		case '^':
			r.Xor(result, v)
		default:
			panic(fmt.Errorf("internal error: bitwise %q", string(op)))
		}
		result = r
	}
	return result, nil
}

// comparison evaluates equality and relational chains. The first comparison
// uses both operand values; every further comparison compares the running
// 0/1 verdict against the next operand. That is not standard C++ semantics
// for a<b<c, but it reproduces the established behavior downstream consumers
// rely on, so it stays.
func (e *evaluator) comparison(n *Expr) (*big.Int, error) {
	lhs, err := e.toInt(n.Operands[0])
	if err != nil {
		return nil, err
	}

	rhs, err := e.toInt(n.Operands[1])
	if err != nil {
		return nil, err
	}

	result, err := compare(n.Ops[0], lhs, rhs)
	if err != nil {
		return nil, err
	}

	for i, operand := range n.Operands[2:] {
		rhs, err = e.toInt(operand)
		if err != nil {
			return nil, err
		}

		verdict := bigZero
		if result {
			verdict = bigOne
		}
		if result, err = compare(n.Ops[i+1], verdict, rhs); err != nil {
			return nil, err
		}
	}
	if result {
		return bigOne, nil
	}

	return bigZero, nil
}

func compare(op rune, lhs, rhs *big.Int) (bool, error) {
	c := lhs.Cmp(rhs)
	switch op {
	case EQ:
		return c == 0, nil
	case NEQ:
		return c != 0, nil
	case '<':
		return c < 0, nil
	case '>':
		return c > 0, nil
	case LEQ:
		return c <= 0, nil
	case GEQ:
		return c >= 0, nil
	default:
		panic(fmt.Errorf("internal error: comparison %v", op))
	}
}

// shift masks left shift results to 64 bits; right shift is arithmetic and
// unmasked.
func (e *evaluator) shift(n *Expr) (*big.Int, error) {
	result, err := e.toInt(n.Operands[0])
	if err != nil {
		return nil, err
	}

	for i, operand := range n.Operands[1:] {
		v, err := e.toInt(operand)
		if err != nil {
			return nil, err
		}

		// Shift counts beyond the 64-bit mask width are clamped; the
		// masked result is identical and the clamp keeps a bogus huge
		// count from allocating.
		count := uint(64)
		if v.Sign() >= 0 && v.Cmp(big.NewInt(64)) <= 0 {
			count = uint(v.Int64())
		}
		switch op := n.Ops[i]; op {
		case LSH:
			result = new(big.Int).Lsh(result, count)
			result.And(result, uint64Max)
		case RSH:
			result = new(big.Int).Rsh(result, count)
		default:
			panic(fmt.Errorf("internal error: shift %v", op))
		}
	}
	return result, nil
}

func (e *evaluator) arithmetic(n *Expr) (*big.Int, error) {
	result, err := e.toInt(n.Operands[0])
	if err != nil {
		return nil, err
	}

	for i, operand := range n.Operands[1:] {
		v, err := e.toInt(operand)
		if err != nil {
			return nil, err
		}

		r := new(big.Int)
		switch op := n.Ops[i]; op {
		case '+':
			r.Add(result, v)
		case '-':
			r.Sub(result, v)
		case '*':
			r.Mul(result, v)
		case '/':
			if v.Sign() == 0 {
				return nil, fmt.Errorf("division by zero in constant expression")
			}

			r.Quo(result, v)
		case '%':
			if v.Sign() == 0 {
				return nil, fmt.Errorf("modulo by zero in constant expression")
			}

			r.Rem(result, v)
		default:
			panic(fmt.Errorf("internal error: arithmetic %q", string(op)))
		}
		result = r
	}
	return result, nil
}
