// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package abiproto

import (
	"fmt"
	"math/rand"
	"reflect"
	"sort"
	"testing"

	"github.com/google/abifuzz/pkg/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestGenerateDeterminism(t *testing.T) {
	seed := rand.NewSource(0).Int63()
	for i := 0; i < 10; i++ {
		c0 := Generate(rand.NewSource(seed+int64(i)), 10)
		c1 := Generate(rand.NewSource(seed+int64(i)), 10)
		if diff := cmp.Diff(c0, c1); diff != "" {
			t.Fatalf("same seed produced different contracts:\n%v", diff)
		}
	}
}

func TestGenerateCoverage(t *testing.T) {
	seen := make(map[string]bool)
	rs := rand.NewSource(1)
	for i := 0; i < 1000; i++ {
		c := Generate(rs, 10)
		walk(t, reflect.ValueOf(c), func(name string) { seen[name] = true })
	}
	var kinds []string
	for name := range seen {
		kinds = append(kinds, name)
	}
	sort.Strings(kinds)
	t.Logf("generated: %v", kinds)
	for _, want := range []string{
		"*abiproto.VarDecl", "*abiproto.Assignment", "*abiproto.StructTypeDefinition",
		"*abiproto.StaticType", "*abiproto.DynamicType",
		"*abiproto.IntegerType", "*abiproto.FixedByteArrayType", "*abiproto.AddressType",
		"*abiproto.FixedSizeArrayType", "*abiproto.StructType", "*abiproto.DynamicByteArrayType",
		"*abiproto.SignedIntegerType", "*abiproto.UnsignedIntegerType",
		"*abiproto.DynamicByteType", "*abiproto.DynamicStringType",
		"unset abiproto.ContractStmt", "unset abiproto.Stmt", "unset abiproto.TypeKind",
		"unset abiproto.StaticKind", "unset abiproto.DynamicKind", "unset abiproto.IntegerKind",
		"unset abiproto.DynamicByteKind",
	} {
		assert.True(t, seen[want], "%v is never generated", want)
	}
}

func TestGenerateWidths(t *testing.T) {
	rs := testutil.RandSource(t)
	wide := false
	for i := 0; i < testutil.IterCount(); i++ {
		c := Generate(rs, 10)
		for _, s := range c.Statements {
			if decl, ok := s.Stmt.(*VarDecl); ok && decl.Type != nil {
				if st, ok := decl.Type.Kind.(*StaticType); ok {
					if fb, ok := st.Kind.(*FixedByteArrayType); ok && fb.Width >= 32 {
						wide = true
					}
				}
			}
		}
	}
	// Out of range widths must reach the converter too.
	if testutil.IterCount() >= 1000 {
		assert.True(t, wide)
	}
}

// walk reports the dynamic type of every set oneof member, and "unset <group>" for empty ones.
// It fails the test on typed nil pointers inside oneof groups.
func walk(t *testing.T, v reflect.Value, visit func(string)) {
	switch v.Kind() {
	case reflect.Ptr:
		if !v.IsNil() {
			walk(t, v.Elem(), visit)
		}
	case reflect.Interface:
		if v.IsNil() {
			visit(fmt.Sprintf("unset %v", v.Type()))
			return
		}
		elem := v.Elem()
		if elem.Kind() == reflect.Ptr && elem.IsNil() {
			t.Fatalf("typed nil %v in %v", elem.Type(), v.Type())
		}
		visit(elem.Type().String())
		walk(t, elem, visit)
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			walk(t, v.Field(i), visit)
		}
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return
		}
		for i := 0; i < v.Len(); i++ {
			walk(t, v.Index(i), visit)
		}
	}
}
