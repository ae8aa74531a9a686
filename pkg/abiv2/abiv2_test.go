// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package abiv2

import (
	"bytes"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/abifuzz/pkg/abiproto"
	"github.com/google/abifuzz/pkg/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGolden(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".yaml")
		t.Run(name, func(t *testing.T) {
			data, err := os.ReadFile(file)
			require.NoError(t, err)
			c, err := abiproto.ParseText(data)
			require.NoError(t, err)
			p, err := Generate(c, DefaultOptions())
			require.NoError(t, err)
			require.NoError(t, p.verify())
			testutil.CheckGolden(t, strings.TrimSuffix(file, ".yaml")+".sol", p.Source)
		})
	}
}

func uintDecl(width uint32, v uint64) *abiproto.Statement {
	return &abiproto.Statement{Stmt: &abiproto.VarDecl{Type: &abiproto.Type{Kind: &abiproto.StaticType{
		Kind: &abiproto.IntegerType{Kind: &abiproto.UnsignedIntegerType{
			Width: width,
			Value: abiproto.IntegerValue{V64: v},
		}},
	}}}}
}

func bytesDecl(data string) *abiproto.VarDecl {
	return &abiproto.VarDecl{Type: &abiproto.Type{Kind: &abiproto.DynamicType{
		Kind: &abiproto.DynamicByteArrayType{Kind: &abiproto.DynamicByteType{Value: abiproto.Bytes(data)}},
	}}}
}

func TestEmpty(t *testing.T) {
	want := "contract C {\n" +
		"\tfunction f() public returns (bool) {\n" +
		"\t\treturn true;\n" +
		"\t}\n" +
		"\tfunction g() public {\n" +
		"\t}\n" +
		"}\n"
	for _, c := range []*abiproto.Contract{
		nil,
		{},
		{Test: &abiproto.TestFunction{}, Coder: &abiproto.CoderFunction{}},
		{Statements: []*abiproto.ContractStatement{nil, {}}},
	} {
		p, err := Generate(c, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, want, string(p.Source))
		assert.Empty(t, p.Decls)
	}
}

func TestRoundTrip(t *testing.T) {
	c := &abiproto.Contract{
		Test: &abiproto.TestFunction{Statements: []*abiproto.Statement{uintDecl(0, 200)}},
	}
	p, err := Generate(c, DefaultOptions())
	require.NoError(t, err)
	src := string(p.Source)
	assert.Contains(t, src, "\t\tuint8 x_0 = 200;\n")
	assert.Contains(t, src, "\t\t(uint8 y_0) = this.g(x_0);\n")
	assert.Contains(t, src, "\t\tif (y_0 != x_0) return false;\n")
	assert.Contains(t, src, "\tfunction g(uint8 g_0) public returns (uint8) {\n\t\treturn (g_0);\n\t}\n")
	assert.Equal(t, []Decl{{Index: 0, Type: "uint8", Name: "x_0"}}, p.Decls)
}

func TestTruncation(t *testing.T) {
	fixed := func(width uint32, data string) *abiproto.Statement {
		return &abiproto.Statement{Stmt: &abiproto.VarDecl{Type: &abiproto.Type{Kind: &abiproto.StaticType{
			Kind: &abiproto.FixedByteArrayType{Width: width, Value: abiproto.Bytes(data)},
		}}}}
	}
	c := &abiproto.Contract{Test: &abiproto.TestFunction{Statements: []*abiproto.Statement{
		fixed(3, "abcdef"),
		fixed(31, "ab"),
		fixed(35, "a.b.c.d.e"),
		fixed(0, ""),
	}}}
	src, err := Write(c, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, string(src), "\t\tbytes4 x_0 = \"abcd\";\n")
	assert.Contains(t, string(src), "\t\tbytes32 x_1 = \"ab\";\n")
	assert.Contains(t, string(src), "\t\tbytes4 x_2 = \"abcd\";\n")
	assert.Contains(t, string(src), "\t\tbytes1 x_3 = \"\";\n")
}

// Payable addresses are initialized from a plain address(N) cast,
// which pre-0.8 compilers accept.
func TestAddress(t *testing.T) {
	addr := func(kind abiproto.AddressKind, v abiproto.AddressValue) *abiproto.Statement {
		return &abiproto.Statement{Stmt: &abiproto.VarDecl{Type: &abiproto.Type{Kind: &abiproto.StaticType{
			Kind: &abiproto.AddressType{Kind: kind, Value: v},
		}}}}
	}
	c := &abiproto.Contract{Test: &abiproto.TestFunction{Statements: []*abiproto.Statement{
		addr(abiproto.Address, abiproto.AddressValue{V64: 5, V160: 1}),
		addr(abiproto.AddressPayable, abiproto.AddressValue{V64: 7}),
	}}}
	src, err := Write(c, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, string(src), "\t\taddress x_0 = address(340282366920938463463374607431768211461);\n")
	assert.Contains(t, string(src), "\t\taddress payable x_1 = address(7);\n")
	assert.NotContains(t, string(src), "payable(")
}

// Placeholders must not emit anything or touch the ledger.
func TestStubs(t *testing.T) {
	empty, err := Write(nil, DefaultOptions())
	require.NoError(t, err)
	stubs := []*abiproto.Statement{
		{Stmt: new(abiproto.Assignment)},
		{Stmt: &abiproto.StructTypeDefinition{Members: []*abiproto.Type{{Kind: &abiproto.StaticType{}}}}},
		{Stmt: &abiproto.VarDecl{Type: &abiproto.Type{Kind: &abiproto.DynamicType{Kind: new(abiproto.StructType)}}}},
		{Stmt: &abiproto.VarDecl{Type: &abiproto.Type{Kind: &abiproto.StaticType{
			Kind: &abiproto.FixedSizeArrayType{Size: 3, Elem: uintDecl(0, 1).Stmt.(*abiproto.VarDecl).Type},
		}}}},
		{Stmt: &abiproto.VarDecl{}},
		{Stmt: &abiproto.VarDecl{Type: &abiproto.Type{}}},
		{Stmt: &abiproto.VarDecl{Type: &abiproto.Type{Kind: &abiproto.DynamicType{
			Kind: &abiproto.DynamicByteArrayType{},
		}}}},
		{Stmt: &abiproto.VarDecl{Type: &abiproto.Type{Kind: &abiproto.StaticType{
			Kind: &abiproto.IntegerType{},
		}}}},
		{},
		nil,
	}
	for i, stub := range stubs {
		c := &abiproto.Contract{Test: &abiproto.TestFunction{Statements: []*abiproto.Statement{stub}}}
		p, err := Generate(c, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, string(empty), string(p.Source), "stub #%v", i)
		assert.Empty(t, p.Decls, "stub #%v", i)
	}
	c := &abiproto.Contract{Statements: []*abiproto.ContractStatement{
		{Stmt: &abiproto.StructTypeDefinition{}},
	}}
	src, err := Write(c, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, string(empty), string(src))
}

func TestScope(t *testing.T) {
	c := &abiproto.Contract{
		Statements: []*abiproto.ContractStatement{{Stmt: bytesDecl("abc")}},
		Test: &abiproto.TestFunction{Statements: []*abiproto.Statement{
			{Stmt: bytesDecl("d\"e\\f\ng")},
		}},
	}
	p, err := Generate(c, DefaultOptions())
	require.NoError(t, err)
	src := string(p.Source)
	assert.Contains(t, src, "\n\tbytes x_0 = \"abc\";\n")
	assert.Contains(t, src, "\n\t\tbytes memory x_1 = \"defg\";\n")
	assert.Contains(t, src, "(bytes memory y_0, bytes memory y_1) = this.g(x_0, x_1);")
	assert.Contains(t, src, "function g(bytes memory g_0, bytes memory g_1) public returns (bytes memory, bytes memory) {")
	want := []Decl{
		{Index: 0, Type: "bytes", Name: "x_0", Dynamic: true},
		{Index: 1, Type: "bytes", Name: "x_1", Dynamic: true},
	}
	if diff := cmp.Diff(want, p.Decls); diff != "" {
		t.Fatal(diff)
	}
	require.NoError(t, p.verify())
}

func TestOptions(t *testing.T) {
	c := &abiproto.Contract{
		Test: &abiproto.TestFunction{Statements: []*abiproto.Statement{uintDecl(1, 7)}},
	}
	opts := Options{
		Contract: "AbiTest",
		Pragmas:  []string{"solidity >=0.6.0", "experimental ABIEncoderV2"},
	}
	src, err := Write(c, opts)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(src),
		"pragma solidity >=0.6.0;\npragma experimental ABIEncoderV2;\ncontract AbiTest {\n"), "%s", src)

	for _, bad := range []Options{
		{},
		{Contract: "1C"},
		{Contract: "a b"},
		{Contract: "f"},
		{Contract: "g"},
		{Contract: "C", Pragmas: []string{" "}},
		{Contract: "C", Pragmas: []string{"solidity ^0.8.0;"}},
		{Contract: "C", Pragmas: []string{"a\ncontract D {}"}},
	} {
		_, err := Generate(c, bad)
		assert.Error(t, err, "options %+v", bad)
	}
}

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	yamlFile := filepath.Join(dir, "opts.yaml")
	require.NoError(t, os.WriteFile(yamlFile, []byte("pragmas:\n  - experimental ABIEncoderV2\n"), 0644))
	opts, err := LoadOptions(yamlFile)
	require.NoError(t, err)
	assert.Equal(t, Options{Contract: "C", Pragmas: []string{"experimental ABIEncoderV2"}}, opts)

	jsonFile := filepath.Join(dir, "opts.cfg")
	require.NoError(t, os.WriteFile(jsonFile, []byte("# name\n{\"contract\": \"D\"}\n"), 0644))
	opts, err = LoadOptions(jsonFile)
	require.NoError(t, err)
	assert.Equal(t, Options{Contract: "D"}, opts)

	badFile := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badFile, []byte("contract: f\n"), 0644))
	_, err = LoadOptions(badFile)
	assert.Error(t, err)
	require.NoError(t, os.WriteFile(badFile, []byte("name: D\n"), 0644))
	_, err = LoadOptions(badFile)
	assert.Error(t, err)
}

func TestRandom(t *testing.T) {
	rs := testutil.RandSource(t)
	opts := DefaultOptions()
	for i := 0; i < testutil.IterCount(); i++ {
		c := abiproto.Generate(rs, 10)
		p, err := Generate(c, opts)
		require.NoError(t, err)
		if err := p.verify(); err != nil {
			t.Fatalf("%v\n%s", err, p.Source)
		}
		p1, err := Generate(c, opts)
		require.NoError(t, err)
		if !bytes.Equal(p.Source, p1.Source) {
			t.Fatalf("conversion is not deterministic:\n%s\n%s", p.Source, p1.Source)
		}
		checkValues(t, p.Source)
	}
}

var (
	intDeclRe   = regexp.MustCompile(`(?m)^\t+(u?)int([0-9]+) x_[0-9]+ = (-?[0-9]+);$`)
	bytesDeclRe = regexp.MustCompile(`(?m)^\t+bytes([0-9]+) x_[0-9]+ = "([A-Za-z0-9]*)";$`)
	dynDeclRe   = regexp.MustCompile(`(?m)^\t+(?:bytes|string)(?: memory)? x_[0-9]+ = "([A-Za-z0-9]*)";$`)
	addrDeclRe  = regexp.MustCompile(`(?m)^\t+address(?: payable)? x_[0-9]+ = address\(([0-9]+)\);$`)
)

// checkValues checks that every emitted literal fits into its declared type.
func checkValues(t *testing.T, src []byte) {
	t.Helper()
	total := 0
	for _, m := range intDeclRe.FindAllSubmatch(src, -1) {
		total++
		bits, err := strconv.Atoi(string(m[2]))
		require.NoError(t, err)
		if bits < 8 || bits > 256 || bits%8 != 0 {
			t.Fatalf("bad integer width: %s", m[0])
		}
		v, ok := new(big.Int).SetString(string(m[3]), 10)
		require.True(t, ok)
		lo, hi := new(big.Int), new(big.Int).Lsh(big.NewInt(1), uint(bits))
		if len(m[1]) == 0 {
			hi.Rsh(hi, 1)
			lo.Neg(hi)
		}
		if v.Cmp(lo) < 0 || v.Cmp(hi) >= 0 {
			t.Fatalf("value out of range: %s", m[0])
		}
	}
	for _, m := range bytesDeclRe.FindAllSubmatch(src, -1) {
		total++
		n, err := strconv.Atoi(string(m[1]))
		require.NoError(t, err)
		if n < 1 || n > 32 || len(m[2]) > n {
			t.Fatalf("bad fixed bytes: %s", m[0])
		}
	}
	for _, m := range dynDeclRe.FindAllSubmatch(src, -1) {
		total++
		if len(m[1]) > MaxLiteralLen {
			t.Fatalf("literal is too long: %s", m[0])
		}
	}
	limit := new(big.Int).Lsh(big.NewInt(1), addressBits)
	for _, m := range addrDeclRe.FindAllSubmatch(src, -1) {
		total++
		v, ok := new(big.Int).SetString(string(m[1]), 10)
		require.True(t, ok)
		if v.Cmp(limit) >= 0 {
			t.Fatalf("address out of range: %s", m[0])
		}
	}
	if want := len(declRe.FindAll(src, -1)); total != want {
		t.Fatalf("checked %v declarations out of %v", total, want)
	}
}

func TestConcurrent(t *testing.T) {
	rs := testutil.RandSource(t)
	var inputs []*abiproto.Contract
	var want [][]byte
	for i := 0; i < 50; i++ {
		c := abiproto.Generate(rs, 10)
		src, err := Write(c, DefaultOptions())
		require.NoError(t, err)
		inputs = append(inputs, c)
		want = append(want, src)
	}
	var wg sync.WaitGroup
	errs := make(chan error, len(inputs))
	for i := range inputs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			src, err := Write(inputs[i], DefaultOptions())
			if err == nil && !bytes.Equal(src, want[i]) {
				err = fmt.Errorf("input #%v converted differently", i)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
