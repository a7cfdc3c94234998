// Copyright 2026 The CXXFE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"modernc.org/cxxfe/internal/logger"
)

// vcProjectRE matches a MSBuild project file path anywhere in a log line.
// The surrounding words differ per display language, the path does not.
var vcProjectRE = regexp.MustCompile(`(?i)([A-Za-z]:[^"*?<>|]*?\.vcxproj)`)

// ReadMsBuildFiles ingests MSBuild build logs. A missing log file is
// reported per file; the remaining files are still processed.
func (c *Config) ReadMsBuildFiles(logFiles []string) {
	for _, logFile := range logFiles {
		if _, err := os.Stat(logFile); err != nil {
			logger.Errorf("MsBuild log file not found: %q", logFile)
			continue
		}

		if err := c.parseMsBuildLog(logFile); err != nil {
			logger.Errorf("cannot parse MsBuild log file %q: %v", logFile, err)
		}
	}
}

// parseMsBuildLog scans one build log. The project directory is recovered
// from any line naming a .vcxproj file; compile settings come from cl.exe
// command lines only. Both are language independent, MSBuild localizes just
// the words around them.
func (c *Config) parseMsBuildLog(logFile string) error {
	f, err := os.Open(logFile)
	if err != nil {
		return err
	}
	defer f.Close()

	// UTF-16 logs carry a BOM, everything else is treated as UTF-8.
	dec := unicode.UTF8.NewDecoder()
	sc := bufio.NewScanner(transform.NewReader(f, unicode.BOMOverride(dec)))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	projectDir := c.baseDir
	for sc.Scan() {
		line := sc.Text()
		if m := vcProjectRE.FindString(line); m != "" {
			if i := strings.LastIndexAny(m, `\/`); i > 0 {
				projectDir = m[:i]
			}
			continue
		}

		if i := strings.Index(strings.ToLower(line), "cl.exe"); i >= 0 {
			c.parseVCppCommand(line[i+len("cl.exe"):], projectDir)
		}
	}
	return sc.Err()
}

// parseVCppCommand extracts defines, include directories and force
// includes from the arguments of one cl.exe invocation and attaches them
// to the source files compiled by it.
func (c *Config) parseVCppCommand(args, projectDir string) {
	args = strings.TrimPrefix(strings.TrimSpace(args), `"`)

	var defines, includes, forceIncludes, units []string
	toks := splitWindowsCommandLine(args)
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		next := func() string {
			if i+1 < len(toks) {
				i++
				return toks[i]
			}

			return ""
		}
		switch {
		case tok == "/D", tok == "-D":
			defines = append(defines, next())
		case strings.HasPrefix(tok, "/D"), strings.HasPrefix(tok, "-D"):
			defines = append(defines, tok[len("/D"):])
		case tok == "/FI", tok == "-FI":
			forceIncludes = append(forceIncludes, next())
		case strings.HasPrefix(tok, "/FI"), strings.HasPrefix(tok, "-FI"):
			forceIncludes = append(forceIncludes, tok[len("/FI"):])
		case tok == "/I", tok == "-I":
			includes = append(includes, next())
		case strings.HasPrefix(tok, "/I"), strings.HasPrefix(tok, "-I"):
			includes = append(includes, tok[len("/I"):])
		case strings.HasPrefix(tok, "/"), strings.HasPrefix(tok, "-"):
			// other compiler option
		case isVCppSource(tok):
			units = append(units, tok)
		}
	}

	seen := map[string]bool{}
	var dirs []string
	for _, v := range includes {
		dir := winResolve(projectDir, unquote(v))
		if dir == "" || seen[dir] {
			continue
		}

		seen[dir] = true
		dirs = append(dirs, dir)
	}

	for _, unit := range units {
		level := winResolve(projectDir, unquote(unit))
		for _, d := range defines {
			c.addDefine(level, unquote(d))
		}
		c.Add(level, IncludeDirectories, dirs...)
		for _, v := range forceIncludes {
			c.Add(level, ForceIncludes, winResolve(projectDir, unquote(v)))
		}
	}
}

func isVCppSource(s string) bool {
	s = strings.ToLower(unquote(s))
	for _, suffix := range []string{".cpp", ".cxx", ".cc", ".c"} {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

// splitWindowsCommandLine splits at unquoted whitespace with Windows
// quoting rules: only double quotes group, backslash is an ordinary path
// separator, never an escape. Quote characters are kept in the tokens.
func splitWindowsCommandLine(s string) []string {
	var args []string
	var b strings.Builder
	inQuotes := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			b.WriteRune(r)
		case !inQuotes && (r == ' ' || r == '\t'):
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

// winResolve makes p absolute relative to dir using Windows path rules,
// independent of the host platform. The result keeps backslash separators.
func winResolve(dir, p string) string {
	if p == "" {
		return ""
	}

	if !isWindowsAbs(p) {
		p = strings.TrimSuffix(dir, `\`) + `\` + p
	}
	return winNormalize(p)
}

func isWindowsAbs(p string) bool {
	if strings.HasPrefix(p, `\\`) { // UNC
		return true
	}

	return len(p) >= 3 && p[1] == ':' && (p[2] == '\\' || p[2] == '/') &&
		(p[0] >= 'a' && p[0] <= 'z' || p[0] >= 'A' && p[0] <= 'Z')
}

// winNormalize resolves "." and ".." elements and normalizes separators to
// backslash.
func winNormalize(p string) string {
	parts := strings.FieldsFunc(p, func(r rune) bool { return r == '\\' || r == '/' })
	var out []string
	for _, v := range parts {
		switch v {
		case ".":
			// nop
		case "..":
			if len(out) > 1 { // keep the drive element
				out = out[:len(out)-1]
			}
		default:
			out = append(out, v)
		}
	}
	prefix := ""
	if strings.HasPrefix(p, `\\`) {
		prefix = `\\`
	}
	return prefix + strings.Join(out, `\`)
}
