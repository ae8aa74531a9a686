// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package abiproto

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the fuzzer schema in protobuf wire format.
//
//	Contract             { repeated ContractStatement cstatements = 1; TestFunction testfunction = 2; CoderFunction coderfunction = 3; }
//	ContractStatement    { oneof { VarDecl decl = 1; StructTypeDefinition structdef = 2; } }
//	TestFunction         { repeated Statement statements = 1; }
//	Statement            { oneof { VarDecl decl = 1; Assignment assignment = 2; StructTypeDefinition structdef = 3; } }
//	VarDecl              { Type type = 1; }
//	StructTypeDefinition { repeated Type t = 1; }
//	Type                 { oneof { StaticType stype = 1; DynamicType dtype = 2; } }
//	StaticType           { oneof { IntegerType integer = 1; FixedByteArrayType fbarray = 2; AddressType address = 3; FixedSizeArrayType fsarray = 4; } }
//	DynamicType          { oneof { StructType structtype = 1; DynamicByteArrayType dynbytearray = 2; } }
//	IntegerType          { oneof { SignedIntegerType sint = 1; UnsignedIntegerType uint = 2; } }
//	(Un)SignedIntegerType{ uint32 width = 1; IntegerValue value = 2; }
//	IntegerValue         { uint64 value64 = 1; uint64 value128 = 2; uint64 value192 = 3; uint64 value256 = 4; }
//	FixedByteArrayType   { uint32 width = 1; FixedByteArrayValue value = 2; }
//	AddressType          { AddressTypeEnum atype = 1; AddressValue value = 2; }
//	AddressValue         { uint64 value64 = 1; uint64 value128 = 2; uint64 value160 = 3; }
//	FixedSizeArrayType   { uint32 size = 1; Type t = 2; }
//	DynamicByteArrayType { oneof { DynamicByteType byte = 1; DynamicStringType string = 2; } }
//	DynamicByteType      { DynamicByteValue value = 1; }
//	DynamicStringType    { DynamicStringValue value = 1; }
//	*Value (bytes)       { bytes value = 1; }
const (
	fieldFirst  protowire.Number = 1
	fieldSecond protowire.Number = 2
	fieldThird  protowire.Number = 3
	fieldFourth protowire.Number = 4
)

// MaxDepth limits message nesting accepted by Unmarshal.
const MaxDepth = 100

var ErrTooDeep = errors.New("message nesting is too deep")

// Unmarshal parses a Contract from protobuf wire format.
// Unknown fields and fields with unexpected wire types are skipped,
// the last member of a oneof group wins, absent messages read as unset.
// Repeated occurrences of a singular message are merged like protobuf does:
// scalars of the later one override, repeated fields are appended.
func Unmarshal(data []byte) (*Contract, error) {
	d := new(decoder)
	c := new(Contract)
	if err := d.contract(data, c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contract: %w", err)
	}
	return c, nil
}

type field struct {
	num protowire.Number
	typ protowire.Type
	val uint64
	buf []byte
}

func (f *field) is(num protowire.Number, typ protowire.Type) bool {
	return f.num == num && f.typ == typ
}

func (f *field) message(num protowire.Number) bool {
	return f.is(num, protowire.BytesType)
}

func (f *field) varint(num protowire.Number) bool {
	return f.is(num, protowire.VarintType)
}

type decoder struct {
	depth int
}

// message calls fn for every field of the encoded message b.
func (d *decoder) message(b []byte, fn func(f *field) error) error {
	if d.depth++; d.depth > MaxDepth {
		return ErrTooDeep
	}
	defer func() { d.depth-- }()
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		f := &field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.val, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.buf, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// variant returns cur if it already holds a *T, so that repeated occurrences
// of the same oneof member are merged. Otherwise it returns a new *T.
func variant[T any](cur any) *T {
	if v, ok := cur.(*T); ok && v != nil {
		return v
	}
	return new(T)
}

// skip validates an encoded message that carries no fields we care about.
func (d *decoder) skip(b []byte) error {
	return d.message(b, func(*field) error { return nil })
}

func (d *decoder) contract(b []byte, c *Contract) error {
	return d.message(b, func(f *field) error {
		switch {
		case f.message(fieldFirst):
			s := new(ContractStatement)
			if err := d.contractStatement(f.buf, s); err != nil {
				return err
			}
			c.Statements = append(c.Statements, s)
		case f.message(fieldSecond):
			if c.Test == nil {
				c.Test = new(TestFunction)
			}
			return d.testFunction(f.buf, c.Test)
		case f.message(fieldThird):
			if c.Coder == nil {
				c.Coder = new(CoderFunction)
			}
			return d.skip(f.buf)
		}
		return nil
	})
}

func (d *decoder) contractStatement(b []byte, s *ContractStatement) error {
	return d.message(b, func(f *field) error {
		switch {
		case f.message(fieldFirst):
			decl := variant[VarDecl](s.Stmt)
			s.Stmt = decl
			return d.varDecl(f.buf, decl)
		case f.message(fieldSecond):
			def := variant[StructTypeDefinition](s.Stmt)
			s.Stmt = def
			return d.structDef(f.buf, def)
		}
		return nil
	})
}

func (d *decoder) testFunction(b []byte, fn *TestFunction) error {
	return d.message(b, func(f *field) error {
		if !f.message(fieldFirst) {
			return nil
		}
		s := new(Statement)
		if err := d.statement(f.buf, s); err != nil {
			return err
		}
		fn.Statements = append(fn.Statements, s)
		return nil
	})
}

func (d *decoder) statement(b []byte, s *Statement) error {
	return d.message(b, func(f *field) error {
		switch {
		case f.message(fieldFirst):
			decl := variant[VarDecl](s.Stmt)
			s.Stmt = decl
			return d.varDecl(f.buf, decl)
		case f.message(fieldSecond):
			s.Stmt = variant[Assignment](s.Stmt)
			return d.skip(f.buf)
		case f.message(fieldThird):
			def := variant[StructTypeDefinition](s.Stmt)
			s.Stmt = def
			return d.structDef(f.buf, def)
		}
		return nil
	})
}

func (d *decoder) varDecl(b []byte, decl *VarDecl) error {
	return d.message(b, func(f *field) error {
		if !f.message(fieldFirst) {
			return nil
		}
		if decl.Type == nil {
			decl.Type = new(Type)
		}
		return d.typ(f.buf, decl.Type)
	})
}

func (d *decoder) structDef(b []byte, def *StructTypeDefinition) error {
	return d.message(b, func(f *field) error {
		if !f.message(fieldFirst) {
			return nil
		}
		t := new(Type)
		if err := d.typ(f.buf, t); err != nil {
			return err
		}
		def.Members = append(def.Members, t)
		return nil
	})
}

func (d *decoder) typ(b []byte, t *Type) error {
	return d.message(b, func(f *field) error {
		switch {
		case f.message(fieldFirst):
			st := variant[StaticType](t.Kind)
			t.Kind = st
			return d.staticType(f.buf, st)
		case f.message(fieldSecond):
			dt := variant[DynamicType](t.Kind)
			t.Kind = dt
			return d.dynamicType(f.buf, dt)
		}
		return nil
	})
}

func (d *decoder) staticType(b []byte, t *StaticType) error {
	return d.message(b, func(f *field) error {
		switch {
		case f.message(fieldFirst):
			it := variant[IntegerType](t.Kind)
			t.Kind = it
			return d.integerType(f.buf, it)
		case f.message(fieldSecond):
			fb := variant[FixedByteArrayType](t.Kind)
			t.Kind = fb
			return d.fixedByteArray(f.buf, fb)
		case f.message(fieldThird):
			at := variant[AddressType](t.Kind)
			t.Kind = at
			return d.addressType(f.buf, at)
		case f.message(fieldFourth):
			fa := variant[FixedSizeArrayType](t.Kind)
			t.Kind = fa
			return d.fixedSizeArray(f.buf, fa)
		}
		return nil
	})
}

func (d *decoder) dynamicType(b []byte, t *DynamicType) error {
	return d.message(b, func(f *field) error {
		switch {
		case f.message(fieldFirst):
			t.Kind = variant[StructType](t.Kind)
			return d.skip(f.buf)
		case f.message(fieldSecond):
			arr := variant[DynamicByteArrayType](t.Kind)
			t.Kind = arr
			return d.dynamicByteArray(f.buf, arr)
		}
		return nil
	})
}

func (d *decoder) integerType(b []byte, t *IntegerType) error {
	return d.message(b, func(f *field) error {
		switch {
		case f.message(fieldFirst):
			st := variant[SignedIntegerType](t.Kind)
			t.Kind = st
			return d.message(f.buf, func(f *field) error {
				return d.integer(f, &st.Width, &st.Value)
			})
		case f.message(fieldSecond):
			ut := variant[UnsignedIntegerType](t.Kind)
			t.Kind = ut
			return d.message(f.buf, func(f *field) error {
				return d.integer(f, &ut.Width, &ut.Value)
			})
		}
		return nil
	})
}

func (d *decoder) integer(f *field, width *uint32, val *IntegerValue) error {
	switch {
	case f.varint(fieldFirst):
		*width = uint32(f.val)
	case f.message(fieldSecond):
		return d.message(f.buf, func(f *field) error {
			switch {
			case f.varint(fieldFirst):
				val.V64 = f.val
			case f.varint(fieldSecond):
				val.V128 = f.val
			case f.varint(fieldThird):
				val.V192 = f.val
			case f.varint(fieldFourth):
				val.V256 = f.val
			}
			return nil
		})
	}
	return nil
}

func (d *decoder) fixedByteArray(b []byte, t *FixedByteArrayType) error {
	return d.message(b, func(f *field) error {
		switch {
		case f.varint(fieldFirst):
			t.Width = uint32(f.val)
		case f.message(fieldSecond):
			return d.bytesValue(f.buf, func(v []byte) { t.Value = v })
		}
		return nil
	})
}

func (d *decoder) addressType(b []byte, t *AddressType) error {
	return d.message(b, func(f *field) error {
		switch {
		case f.varint(fieldFirst):
			// Closed enum: unknown values are dropped like in proto2.
			if kind := AddressKind(int32(f.val)); kind == Address || kind == AddressPayable {
				t.Kind = kind
			}
		case f.message(fieldSecond):
			return d.message(f.buf, func(f *field) error {
				switch {
				case f.varint(fieldFirst):
					t.Value.V64 = f.val
				case f.varint(fieldSecond):
					t.Value.V128 = f.val
				case f.varint(fieldThird):
					t.Value.V160 = f.val
				}
				return nil
			})
		}
		return nil
	})
}

func (d *decoder) fixedSizeArray(b []byte, t *FixedSizeArrayType) error {
	return d.message(b, func(f *field) error {
		switch {
		case f.varint(fieldFirst):
			t.Size = uint32(f.val)
		case f.message(fieldSecond):
			if t.Elem == nil {
				t.Elem = new(Type)
			}
			return d.typ(f.buf, t.Elem)
		}
		return nil
	})
}

func (d *decoder) dynamicByteArray(b []byte, t *DynamicByteArrayType) error {
	return d.message(b, func(f *field) error {
		switch {
		case f.message(fieldFirst):
			bt := variant[DynamicByteType](t.Kind)
			t.Kind = bt
			return d.message(f.buf, func(f *field) error {
				if !f.message(fieldFirst) {
					return nil
				}
				return d.bytesValue(f.buf, func(v []byte) { bt.Value = v })
			})
		case f.message(fieldSecond):
			st := variant[DynamicStringType](t.Kind)
			t.Kind = st
			return d.message(f.buf, func(f *field) error {
				if !f.message(fieldFirst) {
					return nil
				}
				return d.bytesValue(f.buf, func(v []byte) { st.Value = string(v) })
			})
		}
		return nil
	})
}

// bytesValue decodes a single-field { bytes value = 1; } message.
func (d *decoder) bytesValue(b []byte, set func([]byte)) error {
	return d.message(b, func(f *field) error {
		if f.message(fieldFirst) {
			set(append([]byte(nil), f.buf...))
		}
		return nil
	})
}

// Marshal serializes the contract into protobuf wire format.
// Zero scalars are omitted, present messages are always written.
func Marshal(c *Contract) []byte {
	if c == nil {
		return nil
	}
	var b []byte
	for _, s := range c.Statements {
		b = appendMessage(b, fieldFirst, encodeContractStatement(s))
	}
	if c.Test != nil {
		var tb []byte
		for _, s := range c.Test.Statements {
			tb = appendMessage(tb, fieldFirst, encodeStatement(s))
		}
		b = appendMessage(b, fieldSecond, tb)
	}
	if c.Coder != nil {
		b = appendMessage(b, fieldThird, nil)
	}
	return b
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytesValue(b []byte, num protowire.Number, v []byte) []byte {
	var msg []byte
	if len(v) != 0 {
		msg = appendMessage(msg, fieldFirst, v)
	}
	return appendMessage(b, num, msg)
}

func encodeContractStatement(s *ContractStatement) []byte {
	if s == nil {
		return nil
	}
	switch stmt := s.Stmt.(type) {
	case nil:
		return nil
	case *VarDecl:
		return appendMessage(nil, fieldFirst, encodeVarDecl(stmt))
	case *StructTypeDefinition:
		return appendMessage(nil, fieldSecond, encodeStructDef(stmt))
	default:
		panic(fmt.Sprintf("unknown contract statement %#v", stmt))
	}
}

func encodeStatement(s *Statement) []byte {
	if s == nil {
		return nil
	}
	switch stmt := s.Stmt.(type) {
	case nil:
		return nil
	case *VarDecl:
		return appendMessage(nil, fieldFirst, encodeVarDecl(stmt))
	case *Assignment:
		return appendMessage(nil, fieldSecond, nil)
	case *StructTypeDefinition:
		return appendMessage(nil, fieldThird, encodeStructDef(stmt))
	default:
		panic(fmt.Sprintf("unknown statement %#v", stmt))
	}
}

func encodeVarDecl(decl *VarDecl) []byte {
	if decl == nil || decl.Type == nil {
		return nil
	}
	return appendMessage(nil, fieldFirst, encodeType(decl.Type))
}

func encodeStructDef(def *StructTypeDefinition) []byte {
	if def == nil {
		return nil
	}
	var b []byte
	for _, t := range def.Members {
		b = appendMessage(b, fieldFirst, encodeType(t))
	}
	return b
}

func encodeType(t *Type) []byte {
	if t == nil {
		return nil
	}
	switch kind := t.Kind.(type) {
	case nil:
		return nil
	case *StaticType:
		return appendMessage(nil, fieldFirst, encodeStaticType(kind))
	case *DynamicType:
		return appendMessage(nil, fieldSecond, encodeDynamicType(kind))
	default:
		panic(fmt.Sprintf("unknown type %#v", kind))
	}
}

func encodeStaticType(t *StaticType) []byte {
	if t == nil {
		return nil
	}
	switch kind := t.Kind.(type) {
	case nil:
		return nil
	case *IntegerType:
		return appendMessage(nil, fieldFirst, encodeIntegerType(kind))
	case *FixedByteArrayType:
		var b []byte
		if kind != nil {
			b = appendVarint(b, fieldFirst, uint64(kind.Width))
			b = appendBytesValue(b, fieldSecond, kind.Value)
		}
		return appendMessage(nil, fieldSecond, b)
	case *AddressType:
		var b []byte
		if kind != nil {
			b = appendVarint(b, fieldFirst, uint64(kind.Kind))
			var vb []byte
			vb = appendVarint(vb, fieldFirst, kind.Value.V64)
			vb = appendVarint(vb, fieldSecond, kind.Value.V128)
			vb = appendVarint(vb, fieldThird, kind.Value.V160)
			b = appendMessage(b, fieldSecond, vb)
		}
		return appendMessage(nil, fieldThird, b)
	case *FixedSizeArrayType:
		var b []byte
		if kind != nil {
			b = appendVarint(b, fieldFirst, uint64(kind.Size))
			if kind.Elem != nil {
				b = appendMessage(b, fieldSecond, encodeType(kind.Elem))
			}
		}
		return appendMessage(nil, fieldFourth, b)
	default:
		panic(fmt.Sprintf("unknown static type %#v", kind))
	}
}

func encodeIntegerType(t *IntegerType) []byte {
	if t == nil {
		return nil
	}
	switch kind := t.Kind.(type) {
	case nil:
		return nil
	case *SignedIntegerType:
		if kind == nil {
			return appendMessage(nil, fieldFirst, nil)
		}
		return appendMessage(nil, fieldFirst, encodeInteger(kind.Width, kind.Value))
	case *UnsignedIntegerType:
		if kind == nil {
			return appendMessage(nil, fieldSecond, nil)
		}
		return appendMessage(nil, fieldSecond, encodeInteger(kind.Width, kind.Value))
	default:
		panic(fmt.Sprintf("unknown integer type %#v", kind))
	}
}

func encodeInteger(width uint32, val IntegerValue) []byte {
	b := appendVarint(nil, fieldFirst, uint64(width))
	var vb []byte
	vb = appendVarint(vb, fieldFirst, val.V64)
	vb = appendVarint(vb, fieldSecond, val.V128)
	vb = appendVarint(vb, fieldThird, val.V192)
	vb = appendVarint(vb, fieldFourth, val.V256)
	return appendMessage(b, fieldSecond, vb)
}

func encodeDynamicType(t *DynamicType) []byte {
	if t == nil {
		return nil
	}
	switch kind := t.Kind.(type) {
	case nil:
		return nil
	case *StructType:
		return appendMessage(nil, fieldFirst, nil)
	case *DynamicByteArrayType:
		return appendMessage(nil, fieldSecond, encodeDynamicByteArray(kind))
	default:
		panic(fmt.Sprintf("unknown dynamic type %#v", kind))
	}
}

func encodeDynamicByteArray(t *DynamicByteArrayType) []byte {
	if t == nil {
		return nil
	}
	switch kind := t.Kind.(type) {
	case nil:
		return nil
	case *DynamicByteType:
		var b []byte
		if kind != nil {
			b = appendBytesValue(b, fieldFirst, kind.Value)
		}
		return appendMessage(nil, fieldFirst, b)
	case *DynamicStringType:
		var b []byte
		if kind != nil {
			b = appendBytesValue(b, fieldFirst, []byte(kind.Value))
		}
		return appendMessage(nil, fieldSecond, b)
	default:
		panic(fmt.Sprintf("unknown dynamic byte array %#v", kind))
	}
}
