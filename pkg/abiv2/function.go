// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package abiv2

import (
	"github.com/google/abifuzz/pkg/abiproto"
)

const (
	producerName = "f"
	calleeName   = "g"
)

// producer emits the test function: it declares local values, passes all declared
// values through the callee and returns false if any of them comes back different.
func (cv *converter) producer(fn *abiproto.TestFunction) {
	cv.printf("\tfunction %v() public returns (bool) {\n", producerName)
	if fn != nil {
		for _, s := range fn.Statements {
			cv.statement(s)
		}
	}
	if !cv.ledger.empty() {
		cv.printf("\t\t(%v) = this.%v(%v);\n", cv.ledger.params("y"), calleeName, cv.ledger.names("x"))
		for _, d := range cv.ledger.decls {
			cv.printf("\t\tif (%v) return false;\n", differs(d, varName("y", d.Index)))
		}
	}
	cv.printf("\t\treturn true;\n")
	cv.printf("\t}\n")
}

// differs returns an expression that is true if res is not equal to the declared value.
// Dynamic values can't be compared directly, so their hashes are compared instead.
func differs(d Decl, res string) string {
	if d.Dynamic {
		return "keccak256(abi.encodePacked(" + res + ")) != keccak256(abi.encodePacked(" + d.Name + "))"
	}
	return res + " != " + d.Name
}

// callee emits the coder function: the identity function over all declared types.
func (cv *converter) callee(*abiproto.CoderFunction) {
	cv.printf("\tfunction %v(%v) public ", calleeName, cv.ledger.params(calleeName))
	if !cv.ledger.empty() {
		cv.printf("returns (%v) ", cv.ledger.types())
	}
	cv.printf("{\n")
	if !cv.ledger.empty() {
		cv.printf("\t\treturn (%v);\n", cv.ledger.names(calleeName))
	}
	cv.printf("\t}\n")
}
