// Copyright 2026 The CXXFE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command cxxfe ingests compile option sources into the configuration
// database, optionally dumps the database as XML and evaluates conditional
// compilation expressions.
//
//	cxxfe [options]
//
//	-compdb file   ingest a JSON compilation database
//	-msbuild file  ingest a MSBuild build log, may repeat
//	-cflags args   ingest compiler arguments at the Global level
//	-base dir      base directory for relative paths
//	-dump file     write the database as XML, "-" for stdout
//	-eval expr     evaluate a conditional compilation expression
//	-file path     translation unit whose macro table -eval uses
//	-debug         enable debug logging
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kballard/go-shellquote"

	"modernc.org/cxxfe/internal/config"
	"modernc.org/cxxfe/internal/cxx"
	"modernc.org/cxxfe/internal/logger"
)

type repeated []string

func (r *repeated) String() string     { return fmt.Sprint(*r) }
func (r *repeated) Set(s string) error { *r = append(*r, s); return nil }

func main() {
	var (
		compdb  = flag.String("compdb", "", "JSON compilation database to ingest")
		cflags  = flag.String("cflags", "", "compiler arguments to ingest at the Global level")
		base    = flag.String("base", "", "base directory for relative paths")
		dump    = flag.String("dump", "", "write the database as XML to this file, - for stdout")
		eval    = flag.String("eval", "", "conditional compilation expression to evaluate")
		file    = flag.String("file", "", "translation unit whose macro table -eval uses")
		debug   = flag.Bool("debug", false, "enable debug logging")
		msbuild repeated
	)
	flag.Var(&msbuild, "msbuild", "MSBuild build log to ingest, may repeat")
	flag.Parse()
	logger.Debug = *debug

	if err := run(*compdb, *cflags, *base, *dump, *eval, *file, msbuild); err != nil {
		fmt.Fprintf(os.Stderr, "cxxfe: %v\n", err)
		os.Exit(1)
	}
}

func run(compdb, cflags, base, dump, eval, file string, msbuild []string) error {
	cfg := config.New(base)

	if compdb != "" {
		cfg.Add(config.SonarProjectProperties, config.JsonCompilationDatabase, compdb)
		if err := cfg.ReadJsonDb(compdb); err != nil {
			return err
		}
	}
	if cflags != "" {
		args, err := shellquote.Split(cflags)
		if err != nil {
			return fmt.Errorf("cannot split -cflags: %v", err)
		}

		// ParseCompilerArguments expects argv including the executable.
		cfg.ParseCompilerArguments(config.Global, base, append([]string{"cc"}, args...))
	}
	if len(msbuild) != 0 {
		cfg.ReadMsBuildFiles(msbuild)
	}

	if dump != "" {
		w := os.Stdout
		if dump != "-" {
			f, err := os.Create(dump)
			if err != nil {
				return err
			}

			defer f.Close()
			w = f
		}
		if err := cfg.Save(w); err != nil {
			return err
		}
	}

	if eval != "" {
		pp := cxx.NewPreprocessor(cfg, file)
		v, err := cxx.EvalString(pp, eval)
		if err != nil {
			return err
		}

		fmt.Println(v)
	}
	return nil
}
