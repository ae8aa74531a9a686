// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package abiv2

import (
	"fmt"
	"math/big"

	"github.com/google/abifuzz/pkg/abiproto"
)

const (
	// Number of distinct integer widths and fixed byte array sizes.
	numWidths = 32
	// Widest integer type in bits.
	maxIntBits = 256
	// Addresses are 160-bit integers.
	addressBits = 160
)

// IntegerWidth maps any raw width onto one of 8, 16, ..., 256 bits.
func IntegerWidth(raw uint32) int {
	return 8 * (int(raw%numWidths) + 1)
}

// FixedBytesWidth maps any raw width onto one of 1, 2, ..., 32 bytes.
func FixedBytesWidth(raw uint32) int {
	return int(raw%numWidths) + 1
}

// combine assembles a magnitude from 64-bit chunks, chunks[0] is the least significant.
func combine(chunks ...uint64) *big.Int {
	v := new(big.Int)
	for i := len(chunks) - 1; i >= 0; i-- {
		v.Lsh(v, 64)
		v.Or(v, new(big.Int).SetUint64(chunks[i]))
	}
	return v
}

// truncate keeps the low bits of v, i.e. reduces it modulo 2^bits.
func truncate(v *big.Int, bits int) *big.Int {
	mask := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	mask.Sub(mask, big.NewInt(1))
	return v.And(v, mask)
}

func integerChunks(v abiproto.IntegerValue) []uint64 {
	return []uint64{v.V64, v.V128, v.V192, v.V256}
}

// UnsignedValue reduces the value into [0, 2^bits-1].
func UnsignedValue(v abiproto.IntegerValue, bits int) *big.Int {
	return truncate(combine(integerChunks(v)...), bits)
}

// SignedValue reduces the value into [-2^(bits-1), 2^(bits-1)-1]
// by reading the low bits as a two's complement number.
func SignedValue(v abiproto.IntegerValue, bits int) *big.Int {
	x := UnsignedValue(v, bits)
	if x.Bit(bits-1) != 0 {
		x.Sub(x, new(big.Int).Lsh(big.NewInt(1), uint(bits)))
	}
	return x
}

// AddressValue reduces the value to 160 bits.
func AddressValue(v abiproto.AddressValue) *big.Int {
	return truncate(combine(v.V64, v.V128, v.V160), addressBits)
}

func addressLiteral(v abiproto.AddressValue) string {
	return fmt.Sprintf("address(%v)", AddressValue(v))
}
