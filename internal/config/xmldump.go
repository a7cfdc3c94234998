// Copyright 2026 The CXXFE Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Save writes the database to w as pretty printed XML, UTF-8 encoded.
func (c *Config) Save(w io.Writer) error {
	e := xml.NewEncoder(w)
	e.Indent("", "  ")
	if err := e.EncodeToken(xml.ProcInst{
		Target: "xml",
		Inst:   []byte(`version="1.0" encoding="UTF-8"`),
	}); err != nil {
		return err
	}

	root := xml.StartElement{
		Name: xml.Name{Local: "CompilationDatabase"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "version"}, Value: "1.0"}},
	}
	if err := e.EncodeToken(root); err != nil {
		return err
	}

	for _, child := range c.nodes[0].children {
		if err := c.saveNode(e, child); err != nil {
			return err
		}
	}
	if err := e.EncodeToken(root.End()); err != nil {
		return err
	}

	return e.Flush()
}

func (c *Config) saveNode(e *xml.Encoder, i int32) error {
	n := &c.nodes[i]
	start := xml.StartElement{Name: xml.Name{Local: n.name}}
	if n.name == "File" {
		start.Attr = []xml.Attr{{Name: xml.Name{Local: "path"}, Value: n.path}}
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	for _, k := range n.keys {
		if err := saveKey(e, k); err != nil {
			return err
		}
	}
	for _, child := range n.children {
		if err := c.saveNode(e, child); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func saveKey(e *xml.Encoder, k keyEntry) error {
	start := xml.StartElement{Name: xml.Name{Local: k.name}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	for _, v := range k.values {
		value := xml.StartElement{Name: xml.Name{Local: "Value"}}
		if err := e.EncodeToken(value); err != nil {
			return err
		}

		if err := e.EncodeToken(xml.CharData(v)); err != nil {
			return err
		}

		if err := e.EncodeToken(value.End()); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// String returns the XML encoded form of the database.
func (c *Config) String() string {
	var b bytes.Buffer
	if err := c.Save(&b); err != nil {
		return fmt.Sprintf("config: %v", err)
	}

	return b.String()
}
