// Copyright 2026 The CXXFE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config implements the compile option database.
//
// Analyzing C/C++ source needs additional information, defines and include
// directories above all, before the preprocessor can produce a complete
// token stream. The database stores that information as key/value-list
// pairs arranged hierarchically. A key not found on one level is searched
// on the next higher level. Pre-defined levels, lowest first:
//
//	Files (one File node per translation unit)
//	Global
//	SonarProjectProperties
//	PredefinedMacros
//
// Add inserts key/value pairs at a level. The level argument is either a
// level name, creating a node directly under the root, or a path, creating
// a File node under Files. Paths are unified, forward slashes and lower
// case, before they are used as node identity.
//
// Get returns the first value found for a key, starting at the given level
// and climbing the parent chain. GetValues collects the values of all
// levels on the chain, starting level first.
package config // import "modernc.org/cxxfe/internal/config"

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

// Pre-defined level names.
const (
	PredefinedMacros       = "PredefinedMacros"
	SonarProjectProperties = "SonarProjectProperties"
	Global                 = "Global"
	Files                  = "Files"
)

// Keys used on the SonarProjectProperties level.
const (
	ErrorRecoveryEnabled        = "ErrorRecoveryEnabled"
	CpdIgnoreLiterals           = "CpdIgnoreLiterals"
	CpdIgnoreIdentifiers        = "CpdIgnoreIdentifiers"
	FunctionComplexityThreshold = "FunctionComplexityThreshold"
	FunctionSizeThreshold       = "FunctionSizeThreshold"
	ApiFileSuffixes             = "ApiFileSuffixes"
	JsonCompilationDatabase     = "JsonCompilationDatabase"
)

// Keys used on the Global and Files levels.
const (
	Defines            = "Defines"
	IncludeDirectories = "IncludeDirectories"
	ForceIncludes      = "ForceIncludes"
)

const noNode = int32(-1)

type keyEntry struct {
	name   string
	values []string
}

// node is one element of the database tree. Nodes are allocated from
// Config.nodes and referenced by index, never by pointer.
type node struct {
	name     string // element name; "File" for translation unit nodes
	path     string // unified path, File nodes only
	parent   int32
	children []int32
	keyIndex map[string]int // key name -> index into keys
	keys     []keyEntry     // insertion order preserved for the dump
}

func (n *node) key(name string) *keyEntry {
	if i, ok := n.keyIndex[name]; ok {
		return &n.keys[i]
	}

	return nil
}

// Config is the database. The zero value is not usable, use New.
//
// Mutation takes a writer lock; lookups are lock-free, so ingestion must be
// finished before concurrent per-file passes start reading.
type Config struct {
	mu      sync.Mutex
	nodes   []node
	levels  map[string]int32 // level name -> node, direct children of root
	files   map[string]int32 // unified path -> File node
	chain   []int32          // Files, Global, SonarProjectProperties, PredefinedMacros
	baseDir string
}

// New creates the initial level hierarchy.
func New(baseDir string) *Config {
	c := &Config{
		levels:  map[string]int32{},
		files:   map[string]int32{},
		baseDir: baseDir,
	}
	root := c.newNode("CompilationDatabase", noNode)
	pre := c.newNode(PredefinedMacros, root)
	props := c.newNode(SonarProjectProperties, root)
	global := c.newNode(Global, root)
	files := c.newNode(Files, root)
	// Lookup climbs this list front to back; Files must come first.
	c.chain = []int32{files, global, props, pre}
	return c
}

func (c *Config) newNode(name string, parent int32) int32 {
	i := int32(len(c.nodes))
	c.nodes = append(c.nodes, node{name: name, parent: parent, keyIndex: map[string]int{}})
	if parent != noNode {
		c.nodes[parent].children = append(c.nodes[parent].children, i)
	}
	if parent == 0 && name != "File" {
		c.levels[name] = i
	}
	return i
}

// BaseDir returns the base directory the database was created with.
func (c *Config) BaseDir() string { return c.baseDir }

// Add inserts values for key at level. Empty values are dropped; an Add
// with no remaining values creates nothing.
func (c *Config) Add(level, key string, values ...string) {
	var vals []string
	for _, v := range values {
		if v != "" {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	n := &c.nodes[c.getLevel(level)]
	k := n.key(key)
	if k == nil {
		n.keyIndex[key] = len(n.keys)
		n.keys = append(n.keys, keyEntry{name: key})
		k = &n.keys[len(n.keys)-1]
	}
	k.values = append(k.values, vals...)
}

// Get returns the first value found for key. The search starts at level and
// continues on the parent chain. ok is false when no level on the chain has
// the key.
func (c *Config) Get(level, key string) (value string, ok bool) {
	for i := c.findLevel(level, c.chain[0]); i != noNode; i = c.parentOf(i) {
		if k := c.nodes[i].key(key); k != nil && len(k.values) != 0 {
			return k.values[0], true
		}
	}
	return "", false
}

// GetValues collects the values for key over all levels on the parent
// chain, the given level first.
func (c *Config) GetValues(level, key string) []string {
	var result []string
	for i := c.findLevel(level, c.chain[0]); i != noNode; i = c.parentOf(i) {
		if k := c.nodes[i].key(key); k != nil {
			result = append(result, k.values...)
		}
	}
	return result
}

// GetLevelValues returns the values for key on exactly level, without any
// parent fallback.
func (c *Config) GetLevelValues(level, key string) []string {
	i := c.findLevel(level, noNode)
	if i == noNode {
		return nil
	}

	var result []string
	if k := c.nodes[i].key(key); k != nil {
		result = append(result, k.values...)
	}
	return result
}

// GetChildrenValues collects the values for key over all children of level.
// Values of the shared parent levels are appended once at the end.
func (c *Config) GetChildrenValues(level, key string) []string {
	var result []string
	i := c.findLevel(level, c.chain[0])
	if i != noNode {
		for _, child := range c.nodes[i].children {
			if k := c.nodes[child].key(key); k != nil {
				result = append(result, k.values...)
			}
		}
	}
	// shared parents contribute once, at the end
	for i = c.parentOf(i); i != noNode; i = c.parentOf(i) {
		if k := c.nodes[i].key(key); k != nil {
			result = append(result, k.values...)
		}
	}
	return result
}

// GetBoolean returns the effective value of key as bool: true for the value
// "true", case insensitive, false for any other value. ok is false when the
// key has no value.
func (c *Config) GetBoolean(level, key string) (value, ok bool) {
	s, ok := c.Get(level, key)
	if !ok {
		return false, false
	}

	return strings.EqualFold(strings.TrimSpace(s), "true"), true
}

// GetInt returns the effective value of key as int. ok is false when the
// key has no value; a present but unparsable value is an error.
func (c *Config) GetInt(level, key string) (value int, ok bool, err error) {
	s, ok := c.Get(level, key)
	if !ok {
		return 0, false, nil
	}

	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false, fmt.Errorf("the property %q is not an int value: %v", key, err)
	}

	return v, true, nil
}

// GetLong is GetInt for int64 values.
func (c *Config) GetLong(level, key string) (value int64, ok bool, err error) {
	s, ok := c.Get(level, key)
	if !ok {
		return 0, false, nil
	}

	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("the property %q is not a long value: %v", key, err)
	}

	return v, true, nil
}

// GetFloat is GetInt for float32 values.
func (c *Config) GetFloat(level, key string) (value float32, ok bool, err error) {
	s, ok := c.Get(level, key)
	if !ok {
		return 0, false, nil
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, false, fmt.Errorf("the property %q is not a float value: %v", key, err)
	}

	return float32(v), true, nil
}

// GetDouble is GetInt for float64 values.
func (c *Config) GetDouble(level, key string) (value float64, ok bool, err error) {
	s, ok := c.Get(level, key)
	if !ok {
		return 0, false, nil
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false, fmt.Errorf("the property %q is not a double value: %v", key, err)
	}

	return v, true, nil
}

// parentOf returns the next level on the search chain. The pre-defined
// levels link Files -> Global -> SonarProjectProperties -> PredefinedMacros;
// after the last one the tree parent, the root, is searched once. All other
// nodes continue at their tree parent, File nodes at Files.
func (c *Config) parentOf(i int32) int32 {
	if i == noNode {
		return noNode
	}

	for n, v := range c.chain {
		if v == i {
			if n+1 < len(c.chain) {
				return c.chain[n+1]
			}

			break
		}
	}
	return c.nodes[i].parent
}

// findLevel resolves a level argument to a node. A level name selects a
// direct child of the root, a path selects a File node with the matching
// unified path. def is returned when no node matches.
func (c *Config) findLevel(level string, def int32) int32 {
	if isLevelName(level) {
		if i, ok := c.levels[level]; ok {
			return i
		}

		return def
	}

	if i, ok := c.files[unifyPath(level)]; ok {
		return i
	}

	return def
}

// getLevel is findLevel for Add: a missing node is created. Called with
// c.mu held.
func (c *Config) getLevel(level string) int32 {
	if i := c.findLevel(level, noNode); i != noNode {
		return i
	}

	if isLevelName(level) {
		return c.newNode(level, 0)
	}

	p := unifyPath(level)
	i := c.newNode("File", c.chain[0])
	c.nodes[i].path = p
	c.files[p] = i
	return i
}

// isLevelName reports whether level is a well-formed XML element name.
// Anything else, a path in practice, is stored as a File node.
func isLevelName(s string) bool {
	for i, r := range s {
		switch {
		case unicode.IsLetter(r) || r == '_':
			// nop
		case i > 0 && (unicode.IsDigit(r) || r == '.' || r == '-'):
			// nop
		default:
			return false
		}
	}
	return s != ""
}

// unifyPath creates the uniform notation of path names: file separators
// become forward slashes, "." and ".." elements are resolved and the result
// is converted to lower case. A path escaping above its root unifies to
// "unknown".
func unifyPath(s string) string {
	r := path.Clean(strings.ReplaceAll(s, "\\", "/"))
	if r == ".." || strings.HasPrefix(r, "../") {
		return "unknown"
	}

	return strings.ToLower(r)
}
