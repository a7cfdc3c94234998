// Copyright 2026 The CXXFE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cxx

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"modernc.org/xc"

	"modernc.org/cxxfe/internal/config"
	"modernc.org/cxxfe/internal/logger"
)

// Macro represents one preprocessor macro.
type Macro struct {
	Name            string
	Params          []string   // parameter names, function like macros only
	ReplacementToks []xc.Token // the tokens that replace the macro

	IsFnLike   bool // whether the macro is function like
	IsVariadic bool
}

// Body returns the replacement list source text.
func (m *Macro) Body() string {
	return strings.TrimSpace(toksDump(m.ReplacementToks))
}

func (m *Macro) param(nm string, ap [][]xc.Token) ([]xc.Token, bool) {
	if nm == "__VA_ARGS__" {
		if !m.IsVariadic {
			return nil, false
		}

		var out []xc.Token
		if i := len(m.Params); i < len(ap) {
			for j, v := range ap[i:] {
				if j != 0 {
					var t xc.Token
					t.Rune = ','
					out = append(out, t)
				}
				out = append(out, v...)
			}
		}
		return out, true
	}

	for i, v := range m.Params {
		if v == nm {
			if i < len(ap) {
				return ap[i], true
			}

			return nil, true
		}
	}
	return nil, false
}

// Preprocessor binds the configuration database's macro table to one
// translation unit. It answers the evaluator's macro queries; the database
// itself stays read only during evaluation.
type Preprocessor struct {
	cfg    *config.Config
	file   string // unified path of the translation unit, "" for Global
	fset   *token.FileSet
	lx     *Lexer
	macros map[string]*Macro
}

// NewPreprocessor loads the macro table for file (its Defines with the
// parent chain fallback) from cfg.
func NewPreprocessor(cfg *config.Config, file string) *Preprocessor {
	fset := token.NewFileSet()
	p := &Preprocessor{
		cfg:    cfg,
		file:   file,
		fset:   fset,
		lx:     NewLexer(fset),
		macros: map[string]*Macro{},
	}
	level := file
	if level == "" {
		level = config.Global
	}
	// GetValues lists the nearest level first; apply in reverse so a
	// file level define overrides a Global one of the same name.
	values := cfg.GetValues(level, config.Defines)
	for i := len(values) - 1; i >= 0; i-- {
		p.Define(values[i])
	}
	return p
}

// Define adds a macro definition. Accepted forms are the value of a -D flag
// ("NAME", "NAME value", "NAME(params) value") and full directive text
// ("#define NAME ...").
func (p *Preprocessor) Define(def string) {
	def = strings.TrimSpace(def)
	if s, ok := strings.CutPrefix(def, "#define"); ok {
		def = strings.TrimSpace(s)
	}
	if def == "" {
		return
	}

	toks, err := p.lx.Lex("", []byte(def))
	if err != nil {
		logger.Warnf("preprocessor: cannot lex macro definition %q: %v", def, err)
		return
	}

	toks = toks[:len(toks)-1] // drop ccEOF
	toks = trimSpace(toks)
	if len(toks) == 0 || toks[0].Rune != IDENTIFIER {
		logger.Warnf("preprocessor: malformed macro definition %q", def)
		return
	}

	m := &Macro{Name: string(dict.S(toks[0].Val))}
	rest := toks[1:]
	// A '(' immediately after the name, no whitespace, opens the
	// parameter list.
	if len(rest) != 0 && rest[0].Rune == '(' {
		var ok bool
		if rest, ok = p.defineParams(m, rest[1:]); !ok {
			logger.Warnf("preprocessor: malformed parameter list in %q", def)
			return
		}

		m.IsFnLike = true
	}
	m.ReplacementToks = trimSpace(rest)
	p.macros[m.Name] = m
}

func (p *Preprocessor) defineParams(m *Macro, toks []xc.Token) ([]xc.Token, bool) {
	wantIdent := true
	for i := 0; i < len(toks); i++ {
		switch t := toks[i]; t.Rune {
		case IDENTIFIER:
			if !wantIdent {
				return nil, false
			}

			m.Params = append(m.Params, string(dict.S(t.Val)))
			wantIdent = false
		case DDD:
			m.IsVariadic = true
			wantIdent = false
		case ',':
			if wantIdent {
				return nil, false
			}

			wantIdent = true
		case ')':
			return toks[i+1:], true
		case WS:
			// nop
		default:
			return nil, false
		}
	}
	return nil, false
}

// Undefine removes a macro, the #undef analog.
func (p *Preprocessor) Undefine(name string) { delete(p.macros, name) }

// ValueOf returns the raw replacement text of name, or ok == false when the
// macro table has no value for it. It does not expand the result.
func (p *Preprocessor) ValueOf(name string) (string, bool) {
	m := p.macros[name]
	if m == nil {
		return "", false
	}

	return m.Body(), true
}

// ExpandFunctionLikeMacro substitutes the raw argument tokens, parentheses
// included, into name's replacement list and rescans the result. An unknown
// macro yields the empty string.
func (p *Preprocessor) ExpandFunctionLikeMacro(name string, rest []xc.Token) string {
	m := p.macros[name]
	if m == nil || !m.IsFnLike {
		return ""
	}

	ap, ok := actuals(rest)
	if !ok {
		logger.Warnf("preprocessor: malformed invocation of macro %q", name)
		return ""
	}

	hideSet := map[string]int{name: 1}
	out := p.subst(m, ap, hideSet)
	out = p.rescan(out, hideSet)
	return strings.TrimSpace(toksDump(out))
}

// actuals splits the raw argument tokens "( a , b )" into per parameter
// token lists. Commas nested in parentheses do not separate arguments.
func actuals(toks []xc.Token) (out [][]xc.Token, ok bool) {
	toks = trimSpace(toks)
	if len(toks) < 2 || toks[0].Rune != '(' || toks[len(toks)-1].Rune != ')' {
		return nil, false
	}

	toks = toks[1 : len(toks)-1]
	lvl, n := 0, 0
	for _, t := range toks {
		switch t.Rune {
		case ',':
			if lvl == 0 {
				n++
				continue
			}
		case '(':
			lvl++
		case ')':
			lvl--
		}

		for len(out) <= n {
			out = append(out, []xc.Token{})
		}
		out[n] = append(out[n], t)
	}
	for len(out) <= n {
		out = append(out, []xc.Token{})
	}
	for i, v := range out {
		out[i] = trimSpace(v)
	}
	return out, true
}

// subst substitutes arguments into m's replacement list, handling stringize
// and paste.
func (p *Preprocessor) subst(m *Macro, ap [][]xc.Token, hideSet map[string]int) (out []xc.Token) {
	repl := substTokens(m.ReplacementToks)
	for len(repl) != 0 {
		t := repl[0]

		// # parameter
		if t.Rune == '#' && len(repl) > 1 && repl[1].Rune == IDENTIFIER {
			if arg, ok := m.param(string(dict.S(repl[1].Val)), ap); ok {
				out = append(out, stringize(arg))
				repl = repl[2:]
				continue
			}
		}

		// ## rhs
		if t.Rune == PPPASTE && len(repl) > 1 {
			rhs := repl[1]
			var toks []xc.Token
			if rhs.Rune == IDENTIFIER {
				if arg, ok := m.param(string(dict.S(rhs.Val)), ap); ok {
					toks = arg
				} else {
					toks = []xc.Token{rhs}
				}
			} else {
				toks = []xc.Token{rhs}
			}
			out = glue(out, toks)
			repl = repl[2:]
			continue
		}

		// parameter (possibly followed by ##, which suppresses the
		// argument rescan)
		if t.Rune == IDENTIFIER {
			if arg, ok := m.param(string(dict.S(t.Val)), ap); ok {
				if len(repl) > 1 && repl[1].Rune == PPPASTE {
					out = append(out, arg...)
				} else {
					// Arguments expand in the invocation context,
					// before the macro itself went on the hide set.
					hideSet[m.Name]--
					out = append(out, p.rescan(arg, hideSet)...)
					hideSet[m.Name]++
				}
				repl = repl[1:]
				continue
			}
		}

		out = append(out, t)
		repl = repl[1:]
	}
	return trimSpace(out)
}

// rescan expands remaining macro invocations in toks. hideSet suppresses the
// macros already in flight, so self references survive unexpanded.
func (p *Preprocessor) rescan(toks []xc.Token, hideSet map[string]int) (out []xc.Token) {
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Rune != IDENTIFIER {
			out = append(out, t)
			continue
		}

		nm := string(dict.S(t.Val))
		m := p.macros[nm]
		if m == nil || hideSet[nm] != 0 {
			out = append(out, t)
			continue
		}

		if !m.IsFnLike {
			hideSet[nm]++
			out = append(out, p.rescan(m.ReplacementToks, hideSet)...)
			hideSet[nm]--
			continue
		}

		// function like: require an argument list
		j := i + 1
		for j < len(toks) && toks[j].Rune == WS {
			j++
		}
		if j >= len(toks) || toks[j].Rune != '(' {
			out = append(out, t)
			continue
		}

		lvl := 0
		k := j
	scan:
		for ; k < len(toks); k++ {
			switch toks[k].Rune {
			case '(':
				lvl++
			case ')':
				lvl--
				if lvl == 0 {
					break scan
				}
			}
		}
		if k >= len(toks) {
			out = append(out, t)
			continue
		}

		ap, ok := actuals(toks[j : k+1])
		if !ok {
			out = append(out, t)
			continue
		}

		hideSet[nm]++
		out = append(out, p.subst(m, ap, hideSet)...)
		hideSet[nm]--
		i = k
	}
	return out
}

// stringize returns a single string literal token containing the
// concatenated spellings of s.
func stringize(s []xc.Token) xc.Token {
	var a []string
	for _, v := range s {
		switch v.Rune {
		case CHARCONST, STRINGLITERAL:
			q := fmt.Sprintf("%q", TokSrc(v))
			a = append(a, q[1:len(q)-1])
		case WS:
			a = append(a, " ")
		default:
			a = append(a, TokSrc(v))
		}
	}
	var t xc.Token
	if len(s) != 0 {
		t = s[0]
	}
	t.Rune = STRINGLITERAL
	t.Val = dict.SID(fmt.Sprintf("%q", strings.Join(a, "")))
	return t
}

// glue pastes the last token of the left side with the first token of the
// right side.
func glue(ls, rs []xc.Token) []xc.Token {
	ls = trimSpace(ls)
	rs = trimSpace(rs)
	if len(rs) == 0 {
		return ls
	}

	if len(ls) == 0 {
		return rs
	}

	l := ls[len(ls)-1]
	r := rs[0]
	l.Rune = IDENTIFIER
	l.Val = dict.SID(TokSrc(ls[len(ls)-1]) + TokSrc(r))
	return append(append(ls[:len(ls)-1], l), rs[1:]...)
}

// substTokens prepares a replacement list for substitution: comments are
// dropped, whitespace runs collapse to single WS tokens and whitespace
// around # and ## operators is removed, it does not affect the result.
func substTokens(toks []xc.Token) []xc.Token {
	var out []xc.Token
	for _, v := range toks {
		switch v.Rune {
		case COMMENT:
			// nop
		case WS:
			if len(out) == 0 {
				continue
			}

			switch out[len(out)-1].Rune {
			case WS, PPPASTE, '#':
				// nop
			default:
				out = append(out, v)
			}
		case PPPASTE:
			if len(out) != 0 && out[len(out)-1].Rune == WS {
				out = out[:len(out)-1]
			}
			out = append(out, v)
		default:
			out = append(out, v)
		}
	}
	return trimSpace(out)
}

// HasInclude resolves a __has_include operand against the configured
// include directories. The quoted form additionally searches the directory
// of the current translation unit first.
func (p *Preprocessor) HasInclude(name string, quoted bool) bool {
	var paths []string
	if quoted && p.file != "" {
		paths = append(paths, filepath.Dir(p.file))
	}
	level := p.file
	if level == "" {
		level = config.Global
	}
	paths = append(paths, p.cfg.GetValues(level, config.IncludeDirectories)...)
	for _, v := range paths {
		fi, err := os.Stat(filepath.Join(v, name))
		if err == nil && !fi.IsDir() {
			return true
		}
	}
	return false
}

// Macros returns the names of all defined macros, for diagnostics.
func (p *Preprocessor) Macros() []string {
	a := make([]string, 0, len(p.macros))
	for nm := range p.macros {
		a = append(a, nm)
	}
	return a
}
