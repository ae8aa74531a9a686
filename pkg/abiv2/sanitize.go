// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package abiv2

// MaxLiteralLen is the longest string literal emitted for byte and string values.
// Longer payloads are clipped, so dynamic values never exceed a single 32-byte word.
const MaxLiteralLen = 32

// Sanitize keeps only ASCII letters and digits of data, in order, up to MaxLiteralLen of them.
// The result is safe to embed in a double-quoted literal.
func Sanitize(data []byte) string {
	res := make([]byte, 0, min(len(data), MaxLiteralLen))
	for _, c := range data {
		if len(res) == MaxLiteralLen {
			break
		}
		if isAlnum(c) {
			res = append(res, c)
		}
	}
	return string(res)
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func quote(s string) string {
	return `"` + s + `"`
}

// fixedBytesLiteral renders a literal that fits into bytesN.
func fixedBytesLiteral(data []byte, n int) string {
	s := Sanitize(data)
	return quote(s[:min(n, len(s))])
}
