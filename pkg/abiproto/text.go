// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package abiproto

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseText parses the YAML form of a contract.
// Each oneof group is a mapping with at most one key naming the variant, e.g.:
//
//	statements:
//	  - decl: {type: {static: {integer: {uint: {width: 0, value: {v64: 200}}}}}}
//	test:
//	  statements:
//	    - decl: {type: {dynamic: {bytearray: {string: {value: abc}}}}}
//	coder: {}
func ParseText(data []byte) (*Contract, error) {
	c := new(Contract)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse contract: %w", err)
	}
	return c, nil
}

// FormatText is the inverse of ParseText.
func FormatText(c *Contract) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to format contract: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type variants map[string]func() any

// decodeOneof decodes a single-key mapping into the variant named by the key.
// An empty mapping or null means that no variant is set.
func decodeOneof(node *yaml.Node, group string, vars variants) (any, error) {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %v: %v must be a mapping", node.Line, group)
	}
	switch len(node.Content) {
	case 0:
		return nil, nil
	case 2:
	default:
		return nil, fmt.Errorf("line %v: %v has more than one variant set", node.Line, group)
	}
	key := node.Content[0].Value
	ctor := vars[key]
	if ctor == nil {
		return nil, fmt.Errorf("line %v: unknown %v variant %q", node.Line, group, key)
	}
	v := ctor()
	if err := decodeStrict(node.Content[1], v); err != nil {
		return nil, fmt.Errorf("line %v: %v %v: %w", node.Line, group, key, err)
	}
	return v, nil
}

// decodeStrict decodes node into v rejecting unknown fields at any depth.
// yaml.Node.Decode does not inherit KnownFields from the outer decoder,
// so the node is re-encoded and decoded with a strict decoder.
func decodeStrict(node *yaml.Node, v any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}

func encodeOneof(name string, v any) map[string]any {
	if name == "" {
		return map[string]any{}
	}
	return map[string]any{name: v}
}

func (s *ContractStatement) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeOneof(node, "contract statement", variants{
		"decl":      func() any { return new(VarDecl) },
		"structdef": func() any { return new(StructTypeDefinition) },
	})
	s.Stmt, _ = v.(ContractStmt)
	return err
}

func (s *ContractStatement) MarshalYAML() (any, error) {
	switch stmt := s.Stmt.(type) {
	case nil:
		return encodeOneof("", nil), nil
	case *VarDecl:
		return encodeOneof("decl", stmt), nil
	case *StructTypeDefinition:
		return encodeOneof("structdef", stmt), nil
	default:
		return nil, fmt.Errorf("unknown contract statement %#v", stmt)
	}
}

func (s *Statement) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeOneof(node, "statement", variants{
		"decl":       func() any { return new(VarDecl) },
		"assignment": func() any { return new(Assignment) },
		"structdef":  func() any { return new(StructTypeDefinition) },
	})
	s.Stmt, _ = v.(Stmt)
	return err
}

func (s *Statement) MarshalYAML() (any, error) {
	switch stmt := s.Stmt.(type) {
	case nil:
		return encodeOneof("", nil), nil
	case *VarDecl:
		return encodeOneof("decl", stmt), nil
	case *Assignment:
		return encodeOneof("assignment", stmt), nil
	case *StructTypeDefinition:
		return encodeOneof("structdef", stmt), nil
	default:
		return nil, fmt.Errorf("unknown statement %#v", stmt)
	}
}

func (t *Type) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeOneof(node, "type", variants{
		"static":  func() any { return new(StaticType) },
		"dynamic": func() any { return new(DynamicType) },
	})
	t.Kind, _ = v.(TypeKind)
	return err
}

func (t *Type) MarshalYAML() (any, error) {
	switch kind := t.Kind.(type) {
	case nil:
		return encodeOneof("", nil), nil
	case *StaticType:
		return encodeOneof("static", kind), nil
	case *DynamicType:
		return encodeOneof("dynamic", kind), nil
	default:
		return nil, fmt.Errorf("unknown type %#v", kind)
	}
}

func (t *StaticType) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeOneof(node, "static type", variants{
		"integer": func() any { return new(IntegerType) },
		"fbarray": func() any { return new(FixedByteArrayType) },
		"address": func() any { return new(AddressType) },
		"fsarray": func() any { return new(FixedSizeArrayType) },
	})
	t.Kind, _ = v.(StaticKind)
	return err
}

func (t *StaticType) MarshalYAML() (any, error) {
	switch kind := t.Kind.(type) {
	case nil:
		return encodeOneof("", nil), nil
	case *IntegerType:
		return encodeOneof("integer", kind), nil
	case *FixedByteArrayType:
		return encodeOneof("fbarray", kind), nil
	case *AddressType:
		return encodeOneof("address", kind), nil
	case *FixedSizeArrayType:
		return encodeOneof("fsarray", kind), nil
	default:
		return nil, fmt.Errorf("unknown static type %#v", kind)
	}
}

func (t *DynamicType) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeOneof(node, "dynamic type", variants{
		"struct":    func() any { return new(StructType) },
		"bytearray": func() any { return new(DynamicByteArrayType) },
	})
	t.Kind, _ = v.(DynamicKind)
	return err
}

func (t *DynamicType) MarshalYAML() (any, error) {
	switch kind := t.Kind.(type) {
	case nil:
		return encodeOneof("", nil), nil
	case *StructType:
		return encodeOneof("struct", kind), nil
	case *DynamicByteArrayType:
		return encodeOneof("bytearray", kind), nil
	default:
		return nil, fmt.Errorf("unknown dynamic type %#v", kind)
	}
}

func (t *IntegerType) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeOneof(node, "integer type", variants{
		"sint": func() any { return new(SignedIntegerType) },
		"uint": func() any { return new(UnsignedIntegerType) },
	})
	t.Kind, _ = v.(IntegerKind)
	return err
}

func (t *IntegerType) MarshalYAML() (any, error) {
	switch kind := t.Kind.(type) {
	case nil:
		return encodeOneof("", nil), nil
	case *SignedIntegerType:
		return encodeOneof("sint", kind), nil
	case *UnsignedIntegerType:
		return encodeOneof("uint", kind), nil
	default:
		return nil, fmt.Errorf("unknown integer type %#v", kind)
	}
}

func (t *DynamicByteArrayType) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeOneof(node, "byte array type", variants{
		"bytes":  func() any { return new(DynamicByteType) },
		"string": func() any { return new(DynamicStringType) },
	})
	t.Kind, _ = v.(DynamicByteKind)
	return err
}

func (t *DynamicByteArrayType) MarshalYAML() (any, error) {
	switch kind := t.Kind.(type) {
	case nil:
		return encodeOneof("", nil), nil
	case *DynamicByteType:
		return encodeOneof("bytes", kind), nil
	case *DynamicStringType:
		return encodeOneof("string", kind), nil
	default:
		return nil, fmt.Errorf("unknown byte array type %#v", kind)
	}
}

func (k AddressKind) String() string {
	if k == AddressPayable {
		return "payable"
	}
	return "address"
}

func (k AddressKind) MarshalYAML() (any, error) {
	return k.String(), nil
}

func (k *AddressKind) UnmarshalYAML(node *yaml.Node) error {
	switch node.Value {
	case "address":
		*k = Address
	case "payable":
		*k = AddressPayable
	default:
		return fmt.Errorf("line %v: unknown address kind %q", node.Line, node.Value)
	}
	return nil
}

func (b Bytes) MarshalYAML() (any, error) {
	return string(b), nil
}

func (b *Bytes) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	*b = Bytes(s)
	return nil
}
