// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package abiv2

import (
	"bytes"
	"fmt"

	"github.com/google/abifuzz/pkg/abiproto"
)

// converter holds the state of a single conversion.
// It must not be reused: the ledger and the scope only move forward.
type converter struct {
	opts   Options
	buf    *bytes.Buffer
	ledger ledger
	local  bool // false while at contract (storage) scope
}

func newConverter(opts Options) *converter {
	return &converter{
		opts: opts,
		buf:  new(bytes.Buffer),
	}
}

func (cv *converter) printf(msg string, args ...any) {
	fmt.Fprintf(cv.buf, msg, args...)
}

func (cv *converter) indent() string {
	if cv.local {
		return "\t\t"
	}
	return "\t"
}

// declare emits "<type> x_N = <value>;" and records the declaration.
func (cv *converter) declare(typ string, dynamic bool, value string) {
	d := cv.ledger.add(typ, dynamic)
	cv.printf("%v%v %v = %v;\n", cv.indent(), d.Typ(cv.local), d.Name, value)
}

func (cv *converter) contractStatement(s *abiproto.ContractStatement) {
	if s == nil {
		return
	}
	switch stmt := s.Stmt.(type) {
	case nil:
	case *abiproto.VarDecl:
		cv.varDecl(stmt)
	case *abiproto.StructTypeDefinition:
		cv.structDef(stmt)
	default:
		panic(fmt.Sprintf("unknown contract statement %#v", stmt))
	}
}

func (cv *converter) statement(s *abiproto.Statement) {
	if s == nil {
		return
	}
	switch stmt := s.Stmt.(type) {
	case nil:
	case *abiproto.VarDecl:
		cv.varDecl(stmt)
	case *abiproto.Assignment:
		// Assignments to declared values are not generated yet.
	case *abiproto.StructTypeDefinition:
		cv.structDef(stmt)
	default:
		panic(fmt.Sprintf("unknown statement %#v", stmt))
	}
}

func (cv *converter) varDecl(decl *abiproto.VarDecl) {
	if decl == nil {
		return
	}
	cv.typ(decl.Type)
}

// structDef is a placeholder: struct members can't be composed yet,
// so definitions produce no output and no declarations.
func (cv *converter) structDef(*abiproto.StructTypeDefinition) {
}

func (cv *converter) typ(t *abiproto.Type) {
	if t == nil {
		return
	}
	switch kind := t.Kind.(type) {
	case nil:
	case *abiproto.StaticType:
		cv.staticType(kind)
	case *abiproto.DynamicType:
		cv.dynamicType(kind)
	default:
		panic(fmt.Sprintf("unknown type %#v", kind))
	}
}

func (cv *converter) staticType(t *abiproto.StaticType) {
	if t == nil {
		return
	}
	switch kind := t.Kind.(type) {
	case nil:
	case *abiproto.IntegerType:
		cv.integerType(kind)
	case *abiproto.FixedByteArrayType:
		cv.fixedByteArray(kind)
	case *abiproto.AddressType:
		cv.address(kind)
	case *abiproto.FixedSizeArrayType:
		// Element types of fixed-size arrays are not supported yet.
	default:
		panic(fmt.Sprintf("unknown static type %#v", kind))
	}
}

func (cv *converter) dynamicType(t *abiproto.DynamicType) {
	if t == nil {
		return
	}
	switch kind := t.Kind.(type) {
	case nil:
	case *abiproto.StructType:
		// Struct values need struct definitions, see structDef.
	case *abiproto.DynamicByteArrayType:
		cv.dynamicByteArray(kind)
	default:
		panic(fmt.Sprintf("unknown dynamic type %#v", kind))
	}
}

func (cv *converter) integerType(t *abiproto.IntegerType) {
	if t == nil {
		return
	}
	switch kind := t.Kind.(type) {
	case nil:
	case *abiproto.SignedIntegerType:
		if kind == nil {
			return
		}
		bits := IntegerWidth(kind.Width)
		cv.declare(fmt.Sprintf("int%v", bits), false, SignedValue(kind.Value, bits).String())
	case *abiproto.UnsignedIntegerType:
		if kind == nil {
			return
		}
		bits := IntegerWidth(kind.Width)
		cv.declare(fmt.Sprintf("uint%v", bits), false, UnsignedValue(kind.Value, bits).String())
	default:
		panic(fmt.Sprintf("unknown integer type %#v", kind))
	}
}

func (cv *converter) fixedByteArray(t *abiproto.FixedByteArrayType) {
	if t == nil {
		return
	}
	n := FixedBytesWidth(t.Width)
	cv.declare(fmt.Sprintf("bytes%v", n), false, fixedBytesLiteral(t.Value, n))
}

func (cv *converter) address(t *abiproto.AddressType) {
	if t == nil {
		return
	}
	typ := "address"
	if t.Kind == abiproto.AddressPayable {
		typ = "address payable"
	}
	cv.declare(typ, false, addressLiteral(t.Value))
}

func (cv *converter) dynamicByteArray(t *abiproto.DynamicByteArrayType) {
	if t == nil {
		return
	}
	switch kind := t.Kind.(type) {
	case nil:
	case *abiproto.DynamicByteType:
		if kind == nil {
			return
		}
		cv.declare("bytes", true, quote(Sanitize(kind.Value)))
	case *abiproto.DynamicStringType:
		if kind == nil {
			return
		}
		cv.declare("string", true, quote(Sanitize([]byte(kind.Value))))
	default:
		panic(fmt.Sprintf("unknown byte array type %#v", kind))
	}
}
