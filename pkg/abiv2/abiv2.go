// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package abiv2 converts abiproto contract descriptions into Solidity programs
// that check the ABI coder by passing all declared values through an external call.
//
// For an input that declares one uint8 value the output is:
//
//	contract C {
//		function f() public returns (bool) {
//			uint8 x_0 = 200;
//			(uint8 y_0) = this.g(x_0);
//			if (y_0 != x_0) return false;
//			return true;
//		}
//		function g(uint8 g_0) public returns (uint8) {
//			return (g_0);
//		}
//	}
//
// f returns false if the coder breaks a value on the way to g or back.
// Conversion never fails on any input: unset and unsupported variants produce no output.
package abiv2

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/abifuzz/pkg/abiproto"
)

// Program is the result of a conversion.
type Program struct {
	Source []byte
	// Decls lists declared values in declaration order,
	// they match parameters and results of the callee one-to-one.
	Decls []Decl
}

// Generate converts the contract. It returns an error only if opts are invalid.
// Every call starts from a clean state, so the same input always yields the same program.
func Generate(c *abiproto.Contract, opts Options) (*Program, error) {
	if err := opts.Check(); err != nil {
		return nil, err
	}
	if c == nil {
		c = new(abiproto.Contract)
	}
	cv := newConverter(opts)
	for _, pragma := range opts.Pragmas {
		cv.printf("pragma %v;\n", pragma)
	}
	cv.printf("contract %v {\n", opts.Contract)
	for _, s := range c.Statements {
		cv.contractStatement(s)
	}
	cv.local = true
	cv.producer(c.Test)
	cv.callee(c.Coder)
	cv.printf("}\n")
	return &Program{
		Source: cv.buf.Bytes(),
		Decls:  cv.ledger.decls,
	}, nil
}

// Write is like Generate, but returns only the source text.
func Write(c *abiproto.Contract, opts Options) ([]byte, error) {
	p, err := Generate(c, opts)
	if err != nil {
		return nil, err
	}
	return p.Source, nil
}

var (
	declRe   = regexp.MustCompile(`(?m)^\t+(.+) (x_[0-9]+) = .*;$`)
	calleeRe = regexp.MustCompile(`(?m)^\tfunction ` + calleeName + `\((.*)\) public (?:returns \((.*)\) )?\{$`)
)

// verify cross-checks the program text against the declaration list.
// It parses the text independently of the code that produced it.
func (p *Program) verify() error {
	for i, d := range p.Decls {
		if d.Index != i || d.Name != varName("x", i) {
			return fmt.Errorf("declaration #%v is %+v", i, d)
		}
	}
	decls := declRe.FindAllSubmatch(p.Source, -1)
	if len(decls) != len(p.Decls) {
		return fmt.Errorf("emitted %v declarations, recorded %v", len(decls), len(p.Decls))
	}
	for i, m := range decls {
		typ, name := strings.TrimSuffix(string(m[1]), " memory"), string(m[2])
		if d := p.Decls[i]; typ != d.Type || name != d.Name {
			return fmt.Errorf("declaration #%v is emitted as %q %q, recorded as %+v", i, typ, name, d)
		}
	}
	m := calleeRe.FindSubmatch(p.Source)
	if m == nil {
		return fmt.Errorf("no callee in the program")
	}
	var params []string
	if len(m[1]) != 0 {
		params = strings.Split(string(m[1]), ", ")
	}
	var results []string
	if len(m[2]) != 0 {
		results = strings.Split(string(m[2]), ", ")
	}
	if len(params) != len(p.Decls) || len(results) != len(p.Decls) {
		return fmt.Errorf("callee has %v params and %v results for %v declarations",
			len(params), len(results), len(p.Decls))
	}
	for i, d := range p.Decls {
		if want := d.Typ(true) + " " + varName(calleeName, i); params[i] != want {
			return fmt.Errorf("callee param #%v is %q, want %q", i, params[i], want)
		}
		if results[i] != d.Typ(true) {
			return fmt.Errorf("callee result #%v is %q, want %q", i, results[i], d.Typ(true))
		}
	}
	return nil
}
