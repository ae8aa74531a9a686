// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package abiv2

import (
	"fmt"
	"strings"
)

// Decl is a single declared value that takes part in the round trip.
type Decl struct {
	Index   int
	Type    string // without data location, e.g. "uint8" or "bytes"
	Name    string // x_<Index>
	Dynamic bool   // requires a data location inside functions
}

// Typ returns the type as written in the given scope.
func (d Decl) Typ(local bool) string {
	if d.Dynamic && local {
		return d.Type + " memory"
	}
	return d.Type
}

// ledger records declarations in emission order.
// Identifiers are derived from the position only, so they are never reused.
type ledger struct {
	decls []Decl
}

func (l *ledger) add(typ string, dynamic bool) Decl {
	idx := len(l.decls)
	d := Decl{
		Index:   idx,
		Type:    typ,
		Name:    varName("x", idx),
		Dynamic: dynamic,
	}
	l.decls = append(l.decls, d)
	return d
}

func (l *ledger) empty() bool {
	return len(l.decls) == 0
}

func varName(prefix string, idx int) string {
	return fmt.Sprintf("%v_%v", prefix, idx)
}

// names returns "prefix_0, prefix_1, ..." for every declaration.
func (l *ledger) names(prefix string) string {
	names := make([]string, len(l.decls))
	for i := range l.decls {
		names[i] = varName(prefix, i)
	}
	return strings.Join(names, ", ")
}

// params returns "T0 prefix_0, T1 prefix_1, ..." as used in parameter lists and tuples.
func (l *ledger) params(prefix string) string {
	params := make([]string, len(l.decls))
	for i, d := range l.decls {
		params[i] = d.Typ(true) + " " + varName(prefix, i)
	}
	return strings.Join(params, ", ")
}

// types returns "T0, T1, ..." as used in return lists.
func (l *ledger) types() string {
	types := make([]string, len(l.decls))
	for i, d := range l.decls {
		types[i] = d.Typ(true)
	}
	return strings.Join(types, ", ")
}
