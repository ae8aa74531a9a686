// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package abiv2

import (
	"bytes"
	"fmt"

	"github.com/google/abifuzz/pkg/abiproto"
)

// Fuzz is the go-fuzz entry point: data is a contract in protobuf wire format.
func Fuzz(data []byte) int {
	c, err := abiproto.Unmarshal(data)
	if err != nil {
		return 0
	}
	opts := DefaultOptions()
	p, err := Generate(c, opts)
	if err != nil {
		panic(err)
	}
	if err := p.verify(); err != nil {
		panic(fmt.Sprintf("%v\n%s", err, p.Source))
	}
	p1, err := Generate(c, opts)
	if err != nil {
		panic(err)
	}
	if !bytes.Equal(p.Source, p1.Source) {
		panic(fmt.Sprintf("conversion is not deterministic:\n%s\n%s", p.Source, p1.Source))
	}
	return 1
}
