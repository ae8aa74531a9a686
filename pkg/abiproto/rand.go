// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package abiproto

import (
	"math/rand"
)

const (
	// Max nesting of generated fixed-size arrays and struct members.
	maxTypeDepth = 3
	// Payloads are sometimes longer than what a literal can hold.
	maxPayloadLen = 48
)

type randGen struct {
	*rand.Rand
}

// Generate creates a random contract with up to ncalls declarations in each scope.
// Every schema variant, including unset oneof groups, is produced with non-zero probability.
func Generate(rs rand.Source, ncalls int) *Contract {
	r := &randGen{rand.New(rs)}
	c := &Contract{
		Test:  new(TestFunction),
		Coder: new(CoderFunction),
	}
	for i := r.Intn(ncalls + 1); i > 0; i-- {
		c.Statements = append(c.Statements, r.contractStatement())
	}
	for i := r.Intn(ncalls + 1); i > 0; i-- {
		c.Test.Statements = append(c.Test.Statements, r.statement())
	}
	return c
}

func (r *randGen) oneOf(n int) bool {
	return r.Intn(n) == 0
}

func (r *randGen) bin() bool {
	return r.Intn(2) == 0
}

func (r *randGen) contractStatement() *ContractStatement {
	switch {
	case r.oneOf(20):
		return &ContractStatement{}
	case r.oneOf(10):
		return &ContractStatement{Stmt: r.structDef(0)}
	default:
		return &ContractStatement{Stmt: &VarDecl{Type: r.typ(0)}}
	}
}

func (r *randGen) statement() *Statement {
	switch {
	case r.oneOf(20):
		return &Statement{}
	case r.oneOf(15):
		return &Statement{Stmt: new(Assignment)}
	case r.oneOf(10):
		return &Statement{Stmt: r.structDef(0)}
	default:
		return &Statement{Stmt: &VarDecl{Type: r.typ(0)}}
	}
}

func (r *randGen) structDef(depth int) *StructTypeDefinition {
	def := new(StructTypeDefinition)
	for i := r.Intn(4); i > 0; i-- {
		def.Members = append(def.Members, r.typ(depth+1))
	}
	return def
}

func (r *randGen) typ(depth int) *Type {
	switch {
	case r.oneOf(30):
		return &Type{}
	case r.oneOf(3):
		return &Type{Kind: r.dynamicType()}
	default:
		return &Type{Kind: r.staticType(depth)}
	}
}

func (r *randGen) staticType(depth int) *StaticType {
	switch n := r.Intn(10); {
	case n == 0:
		return &StaticType{}
	case n == 1 && depth < maxTypeDepth:
		return &StaticType{Kind: &FixedSizeArrayType{
			Size: uint32(r.Intn(5)),
			Elem: r.typ(depth + 1),
		}}
	case n <= 3:
		return &StaticType{Kind: &FixedByteArrayType{
			Width: r.width(),
			Value: r.payload(),
		}}
	case n <= 5:
		kind := Address
		if r.bin() {
			kind = AddressPayable
		}
		return &StaticType{Kind: &AddressType{
			Kind: kind,
			Value: AddressValue{
				V64:  r.chunk(),
				V128: r.chunk(),
				V160: r.chunk(),
			},
		}}
	default:
		return &StaticType{Kind: r.integerType()}
	}
}

func (r *randGen) integerType() *IntegerType {
	switch {
	case r.oneOf(20):
		return &IntegerType{}
	case r.bin():
		return &IntegerType{Kind: &SignedIntegerType{Width: r.width(), Value: r.integerValue()}}
	default:
		return &IntegerType{Kind: &UnsignedIntegerType{Width: r.width(), Value: r.integerValue()}}
	}
}

func (r *randGen) dynamicType() *DynamicType {
	switch {
	case r.oneOf(20):
		return &DynamicType{}
	case r.oneOf(8):
		return &DynamicType{Kind: new(StructType)}
	}
	arr := new(DynamicByteArrayType)
	switch {
	case r.oneOf(20):
	case r.bin():
		arr.Kind = &DynamicByteType{Value: r.payload()}
	default:
		arr.Kind = &DynamicStringType{Value: string(r.payload())}
	}
	return &DynamicType{Kind: arr}
}

// width returns a raw width, mostly small but sometimes far out of the 0..31 range.
func (r *randGen) width() uint32 {
	if r.oneOf(10) {
		return r.Uint32()
	}
	return uint32(r.Intn(32))
}

func (r *randGen) integerValue() IntegerValue {
	v := IntegerValue{V64: r.chunk()}
	if r.oneOf(3) {
		v.V128 = r.chunk()
		v.V192 = r.chunk()
		v.V256 = r.chunk()
	}
	return v
}

var specialChunks = []uint64{
	0, 1, 2, 127, 128, 255, 256,
	1<<15 - 1, 1 << 15, 1<<16 - 1,
	1<<31 - 1, 1 << 31, 1<<32 - 1,
	1<<63 - 1, 1 << 63, 1<<64 - 1,
}

func (r *randGen) chunk() uint64 {
	switch {
	case r.oneOf(5):
		return 0
	case r.oneOf(3):
		return specialChunks[r.Intn(len(specialChunks))]
	case r.bin():
		return uint64(r.Intn(1000))
	default:
		return r.Uint64()
	}
}

func (r *randGen) payload() []byte {
	n := r.Intn(maxPayloadLen + 1)
	if n == 0 {
		return nil
	}
	b := make([]byte, n)
	if r.bin() {
		const alnum = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
		for i := range b {
			b[i] = alnum[r.Intn(len(alnum))]
		}
		return b
	}
	r.Read(b)
	return b
}
