// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package abiv2

import (
	"math/rand"
	"testing"

	"github.com/google/abifuzz/pkg/abiproto"
	"github.com/stretchr/testify/assert"
)

func FuzzGenerate(f *testing.F) {
	rs := rand.NewSource(0)
	for i := 0; i < 20; i++ {
		f.Add(abiproto.Marshal(abiproto.Generate(rs, 5)))
	}
	f.Add([]byte{})
	f.Add([]byte{0x0a, 0x05})
	f.Fuzz(func(t *testing.T, data []byte) {
		Fuzz(data)
	})
}

func TestFuzz(t *testing.T) {
	assert.Equal(t, 0, Fuzz([]byte{0x0a}))
	assert.Equal(t, 1, Fuzz(nil))
	rs := rand.NewSource(1)
	for i := 0; i < 100; i++ {
		data := abiproto.Marshal(abiproto.Generate(rs, 10))
		assert.Equal(t, 1, Fuzz(data))
		// Mangled inputs must not crash the converter either.
		for j := 0; j < len(data); j += 7 {
			mangled := append([]byte{}, data...)
			mangled[j] ^= 0x5a
			Fuzz(mangled)
			Fuzz(mangled[:j])
		}
	}
}
