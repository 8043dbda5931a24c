/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package size provides a byte-size type with binary-prefix parsing and formatting.
//
// Size wraps int64 bytes and adds:
//   - binary-prefix parsing ("5MB", "1.5KB", "0.5TB", ...)
//   - multiple encoding support (JSON, YAML, TOML, CBOR, text)
//   - Viper configuration integration
package size

import "strings"

type Size int64

const (
	SizeNul  Size = 0
	SizeUnit Size = 1
	SizeKilo Size = SizeUnit << 10
	SizeMega Size = SizeKilo << 10
	SizeGiga Size = SizeMega << 10
	SizeTera Size = SizeGiga << 10
	SizePeta Size = SizeTera << 10
	SizeExa  Size = SizePeta << 10
)

// Parse parses a human string representing a byte size and returns a Size.
//
// Accepted suffixes (case-insensitive): B, K/KB, M/MB, G/GB, T/TB, P/PB, E/EB.
// Surrounding whitespace and a single layer of quoting (", ', `) are trimmed
// before parsing. A bare number with no suffix is interpreted as bytes.
func Parse(s string) (Size, error) {
	return parseString(s)
}

// ParseBytes parses a byte slice the same way Parse does.
func ParseBytes(p []byte) (Size, error) {
	return parseString(string(p))
}

func trimQuotesAndSpace(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range []string{`"`, `'`, "`"} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			s = strings.TrimPrefix(s, q)
			s = strings.TrimSuffix(s, q)
		}
	}
	return strings.TrimSpace(s)
}
