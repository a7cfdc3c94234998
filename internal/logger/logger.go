// Copyright 2026 The CXXFE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logger

import (
	"io"
	"log"
	"os"
)

var (
	// Default logger writes to stderr.
	std = log.New(os.Stderr, "[cxxfe] ", log.LstdFlags)

	// Debug enables the Debugf channel.
	Debug = false
)

func SetOutput(w io.Writer) { std.SetOutput(w) }

func Printf(format string, v ...interface{}) {
	std.Printf(format, v...)
}

func Debugf(format string, v ...interface{}) {
	if Debug {
		std.Printf("DEBUG "+format, v...)
	}
}

func Warnf(format string, v ...interface{}) {
	std.Printf("WARN "+format, v...)
}

func Errorf(format string, v ...interface{}) {
	std.Printf("ERROR "+format, v...)
}
