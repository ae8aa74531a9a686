// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package abiproto describes the message tree consumed by the ABI coder converter.
// The tree mirrors the fuzzer protobuf schema: every oneof group is an interface
// field that holds exactly one variant or nil ("none set").
// Trees are produced by Unmarshal (protobuf wire format), ParseText (YAML) or Generate.
package abiproto

type Contract struct {
	Statements []*ContractStatement `yaml:"statements,omitempty"`
	Test       *TestFunction        `yaml:"test,omitempty"`
	Coder      *CoderFunction       `yaml:"coder,omitempty"`
}

// ContractStatement is a declaration at contract (storage) scope.
type ContractStatement struct {
	Stmt ContractStmt // *VarDecl, *StructTypeDefinition or nil
}

type ContractStmt interface {
	isContractStmt()
}

type TestFunction struct {
	Statements []*Statement `yaml:"statements,omitempty"`
}

// Statement is a statement inside the test function body.
type Statement struct {
	Stmt Stmt // *VarDecl, *Assignment, *StructTypeDefinition or nil
}

type Stmt interface {
	isStmt()
}

type CoderFunction struct{}

type VarDecl struct {
	Type *Type `yaml:"type,omitempty"`
}

type Assignment struct{}

type StructTypeDefinition struct {
	Members []*Type `yaml:"members,omitempty"`
}

type Type struct {
	Kind TypeKind // *StaticType, *DynamicType or nil
}

type TypeKind interface {
	isTypeKind()
}

type StaticType struct {
	Kind StaticKind // *IntegerType, *FixedByteArrayType, *AddressType, *FixedSizeArrayType or nil
}

type StaticKind interface {
	isStaticKind()
}

type DynamicType struct {
	Kind DynamicKind // *StructType, *DynamicByteArrayType or nil
}

type DynamicKind interface {
	isDynamicKind()
}

type IntegerType struct {
	Kind IntegerKind // *SignedIntegerType, *UnsignedIntegerType or nil
}

type IntegerKind interface {
	isIntegerKind()
}

// IntegerValue is a 256-bit magnitude split into 64-bit chunks,
// V64 holds the least significant bits.
type IntegerValue struct {
	V64  uint64 `yaml:"v64,omitempty"`
	V128 uint64 `yaml:"v128,omitempty"`
	V192 uint64 `yaml:"v192,omitempty"`
	V256 uint64 `yaml:"v256,omitempty"`
}

type SignedIntegerType struct {
	Width uint32       `yaml:"width,omitempty"`
	Value IntegerValue `yaml:"value,omitempty"`
}

type UnsignedIntegerType struct {
	Width uint32       `yaml:"width,omitempty"`
	Value IntegerValue `yaml:"value,omitempty"`
}

type FixedByteArrayType struct {
	Width uint32 `yaml:"width,omitempty"`
	Value Bytes  `yaml:"value,omitempty"`
}

type AddressKind int32

const (
	Address AddressKind = iota
	AddressPayable
)

// AddressValue is a 160-bit magnitude, V160 holds bits 128..191 of which only 32 are used.
type AddressValue struct {
	V64  uint64 `yaml:"v64,omitempty"`
	V128 uint64 `yaml:"v128,omitempty"`
	V160 uint64 `yaml:"v160,omitempty"`
}

type AddressType struct {
	Kind  AddressKind  `yaml:"kind,omitempty"`
	Value AddressValue `yaml:"value,omitempty"`
}

type FixedSizeArrayType struct {
	Size uint32 `yaml:"size,omitempty"`
	Elem *Type  `yaml:"elem,omitempty"`
}

type StructType struct{}

type DynamicByteArrayType struct {
	Kind DynamicByteKind // *DynamicByteType, *DynamicStringType or nil
}

type DynamicByteKind interface {
	isDynamicByteKind()
}

type DynamicByteType struct {
	Value Bytes `yaml:"value,omitempty"`
}

type DynamicStringType struct {
	Value string `yaml:"value,omitempty"`
}

// Bytes is a raw byte payload, it is rendered as a string in text form.
type Bytes []byte

func (*VarDecl) isContractStmt()              {}
func (*StructTypeDefinition) isContractStmt() {}

func (*VarDecl) isStmt()              {}
func (*Assignment) isStmt()           {}
func (*StructTypeDefinition) isStmt() {}

func (*StaticType) isTypeKind()  {}
func (*DynamicType) isTypeKind() {}

func (*IntegerType) isStaticKind()        {}
func (*FixedByteArrayType) isStaticKind() {}
func (*AddressType) isStaticKind()        {}
func (*FixedSizeArrayType) isStaticKind() {}

func (*StructType) isDynamicKind()           {}
func (*DynamicByteArrayType) isDynamicKind() {}

func (*SignedIntegerType) isIntegerKind()   {}
func (*UnsignedIntegerType) isIntegerKind() {}

func (*DynamicByteType) isDynamicByteKind()   {}
func (*DynamicStringType) isDynamicByteKind() {}
