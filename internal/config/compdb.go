// Copyright 2026 The CXXFE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	jsoniter "github.com/json-iterator/go"

	"modernc.org/cxxfe/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// globalUnit is the pseudo translation unit whose settings apply to the
// Global level.
const globalUnit = "__global__"

// compileCommand is one entry of a JSON compilation database. Next to the
// standard fields the defines/includes extension ingests preprocessor
// settings directly, without a command line.
type compileCommand struct {
	Directory string            `json:"directory"`
	File      string            `json:"file"`
	Command   string            `json:"command"`
	Arguments argumentList      `json:"arguments"`
	Defines   map[string]string `json:"defines"`
	Includes  []string          `json:"includes"`
}

// argumentList accepts both the array form and the single string form of
// the arguments field. The string form is tokenized like a command line.
type argumentList []string

func (a *argumentList) UnmarshalJSON(data []byte) error {
	if len(data) != 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*a = splitCommandLine(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}

	*a = list
	return nil
}

// ReadJsonDb ingests a JSON compilation database. A missing file or
// malformed JSON is an error and leaves previously ingested state
// untouched.
func (c *Config) ReadJsonDb(dbFile string) error {
	b, err := os.ReadFile(dbFile)
	if err != nil {
		return err
	}

	var commands []compileCommand
	if err := json.Unmarshal(b, &commands); err != nil {
		return fmt.Errorf("cannot parse compilation database %s: %v", dbFile, err)
	}

	for _, cmd := range commands {
		c.addCompileCommand(&cmd)
	}
	return nil
}

// ReadJsonCompilationDb ingests the database stored under
// SonarProjectProperties/JsonCompilationDatabase, if set. Failures are
// logged, not returned; the remaining configuration stays usable.
func (c *Config) ReadJsonCompilationDb() {
	dbFile, ok := c.Get(SonarProjectProperties, JsonCompilationDatabase)
	if !ok {
		return
	}

	if err := c.ReadJsonDb(dbFile); err != nil {
		logger.Errorf("cannot access Json DB File: %v", err)
	}
}

func (c *Config) addCompileCommand(cmd *compileCommand) {
	level := Global
	if cmd.File != globalUnit {
		level = cmd.File
		if !filepath.IsAbs(level) {
			level = filepath.Join(cmd.Directory, level)
		}
		if abs, err := filepath.Abs(level); err == nil {
			level = abs
		}
	}

	switch {
	case cmd.Defines != nil || cmd.Includes != nil:
		for name, value := range cmd.Defines {
			c.addDefine(level, name+"="+value)
		}
		for _, dir := range cmd.Includes {
			c.addInclude(level, cmd.Directory, dir)
		}
	case len(cmd.Arguments) != 0:
		c.parseCommandLine(level, cmd.Directory, cmd.Arguments)
	case cmd.Command != "":
		c.parseCommandLine(level, cmd.Directory, splitCommandLine(cmd.Command))
	}
}

// ParseCompilerArguments extracts preprocessor settings from compiler
// arguments, argv[0] being the executable, and stores them at level.
// Relative include paths resolve against dir.
func (c *Config) ParseCompilerArguments(level, dir string, args []string) {
	c.parseCommandLine(level, dir, args)
}

// parseCommandLine extracts preprocessor settings from compiler arguments.
// args[0] is the compiler executable and is skipped.
func (c *Config) parseCommandLine(level, dir string, args []string) {
	if len(args) != 0 {
		args = args[1:]
	}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() string {
			if i+1 < len(args) {
				i++
				return args[i]
			}

			return ""
		}
		switch {
		case arg == "-D":
			c.addDefine(level, next())
		case strings.HasPrefix(arg, "-D"):
			c.addDefine(level, arg[len("-D"):])
		case arg == "-idirafter", arg == "-isystem", arg == "-iquote":
			c.addInclude(level, dir, next())
		case strings.HasPrefix(arg, "-idirafter"):
			c.addInclude(level, dir, arg[len("-idirafter"):])
		case strings.HasPrefix(arg, "-isystem"):
			c.addInclude(level, dir, arg[len("-isystem"):])
		case strings.HasPrefix(arg, "-iquote"):
			c.addInclude(level, dir, arg[len("-iquote"):])
		case arg == "-include":
			c.addForceInclude(level, dir, next())
		case arg == "-I":
			c.addInclude(level, dir, next())
		case strings.HasPrefix(arg, "-I"):
			c.addInclude(level, dir, arg[len("-I"):])
		}
	}
}

// addDefine stores a name[=value] macro definition as "NAME value", the
// replacement defaulting to 1. Quotes in the value are kept verbatim.
func (c *Config) addDefine(level, def string) {
	if def == "" {
		return
	}

	name, value, ok := strings.Cut(def, "=")
	if !ok || value == "" {
		value = "1"
	}
	c.Add(level, Defines, name+" "+value)
}

// addInclude stores an include directory. Relative paths are resolved
// against the directory the compile command ran in.
func (c *Config) addInclude(level, dir, include string) {
	include = unquote(include)
	if include == "" {
		return
	}

	if !filepath.IsAbs(include) {
		include = filepath.Join(dir, include)
	}
	c.Add(level, IncludeDirectories, filepath.Clean(include))
}

func (c *Config) addForceInclude(level, dir, file string) {
	file = unquote(file)
	if file == "" {
		return
	}

	if !filepath.IsAbs(file) {
		file = filepath.Join(dir, file)
	}
	c.Add(level, ForceIncludes, filepath.Clean(file))
}

// splitCommandLine splits a command line at unquoted whitespace. Quoted
// sections keep their quote characters so that macro replacement texts
// survive verbatim; backslash is an ordinary character.
func splitCommandLine(s string) []string {
	var args []string
	var b strings.Builder
	var quote rune
	for _, r := range s {
		switch {
		case quote != 0:
			b.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
			b.WriteRune(r)
		case unicode.IsSpace(r):
			if b.Len() != 0 {
				args = append(args, b.String())
				b.Reset()
			}
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() != 0 {
		args = append(args, b.String())
	}
	return args
}

// unquote strips one level of matching surrounding quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if q := s[0]; (q == '"' || q == '\'') && s[len(s)-1] == q {
			return s[1 : len(s)-1]
		}
	}
	return s
}
